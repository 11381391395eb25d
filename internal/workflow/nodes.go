package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/schemata/internal/compiler"
)

// State keys carried between graph nodes.
const (
	KeyRequest = "request"
	KeyTarget  = "target"
	KeyText    = "text"
	KeyOutcome = "outcome"
	KeyError   = "error"
)

// settled reports whether a node has already produced the outcome or the
// error for the request.
func settled(s state.State) bool {
	_, done := s.Get(KeyOutcome)
	_, failed := s.Get(KeyError)
	return done || failed
}

// LoadNode resolves the scheme and returns the stored result when the run
// already has one.
func LoadNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("load: %w", err)
		}

		scheme, err := rt.Schemes.Find(ctx, req.SchemeID)
		if err != nil {
			return s.Set(KeyError, fmt.Errorf("load scheme %s: %w", req.SchemeID, err)), nil
		}

		existing, err := findExisting(ctx, rt, req.Key())
		switch {
		case err != nil:
			return s.Set(KeyError, err), nil
		case existing != nil:
			return s.Set(KeyOutcome, existing), nil
		}

		target, err := scheme.Compile()
		if err != nil {
			return s.Set(KeyError, err), nil
		}

		return s.Set(KeyTarget, target), nil
	})
}

// PrepareNode loads the document text.
func PrepareNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("prepare: %w", err)
		}

		text, err := rt.Documents.Text(ctx, req.DocumentID)
		if err != nil {
			return s.Set(KeyError, fmt.Errorf("load document %s: %w", req.DocumentID, err)), nil
		}

		return s.Set(KeyText, text), nil
	})
}

// ClassifyNode runs the shared classification for the request's result key.
func ClassifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		target, text, err := extractClassifyState(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		out, err := share(ctx, rt, req, target, text)
		if err != nil {
			return s.Set(KeyError, err), nil
		}

		return s.Set(KeyOutcome, out), nil
	})
}

// FinalizeNode logs how the request settled.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		if val, failed := s.Get(KeyError); failed {
			rt.Logger.DebugContext(ctx, "classify workflow failed", "key", req.Key().String(), "error", val)
			return s, nil
		}

		if val, ok := s.Get(KeyOutcome); ok {
			if out, ok := val.(*Outcome); ok {
				rt.Logger.DebugContext(ctx, "classify workflow complete",
					"key", req.Key().String(),
					"result_id", out.Result.ID,
					"created", out.Created,
				)
			}
		}

		return s, nil
	})
}

func extractRequest(s state.State) (Request, error) {
	val, ok := s.Get(KeyRequest)
	if !ok {
		return Request{}, fmt.Errorf("missing %s in state", KeyRequest)
	}

	req, ok := val.(Request)
	if !ok {
		return Request{}, fmt.Errorf("%s is not Request", KeyRequest)
	}

	return req, nil
}

func extractClassifyState(s state.State) (*compiler.TargetType, string, error) {
	targetVal, ok := s.Get(KeyTarget)
	if !ok {
		return nil, "", fmt.Errorf("missing %s in state", KeyTarget)
	}

	target, ok := targetVal.(*compiler.TargetType)
	if !ok {
		return nil, "", fmt.Errorf("%s is not *compiler.TargetType", KeyTarget)
	}

	textVal, ok := s.Get(KeyText)
	if !ok {
		return nil, "", fmt.Errorf("missing %s in state", KeyText)
	}

	text, ok := textVal.(string)
	if !ok {
		return nil, "", fmt.Errorf("%s is not string", KeyText)
	}

	return target, text, nil
}
