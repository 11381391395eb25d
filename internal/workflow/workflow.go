package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/gateway"
	"github.com/JaimeStill/schemata/internal/lease"
	"github.com/JaimeStill/schemata/internal/metrics"
	"github.com/JaimeStill/schemata/internal/results"
	"github.com/JaimeStill/schemata/internal/validator"
)

// Request identifies one classification of a document under a scheme.
// An empty RunID is the default run.
type Request struct {
	SchemeID       uuid.UUID
	DocumentID     uuid.UUID
	RunID          string
	RunName        *string
	RunDescription *string
	Provider       string
	Model          string
	APIKey         string
}

// Key returns the normalized result key of the request.
func (r Request) Key() results.Key {
	return results.Key{DocumentID: r.DocumentID, SchemeID: r.SchemeID, RunID: r.RunID}.Normalize()
}

// Outcome is the stored result for a request. Created is false when the
// result already existed, including when a concurrent caller wrote it first.
type Outcome struct {
	Result  *results.Result
	Created bool
}

// Execute classifies a document under a scheme and stores the result.
// Repeating a request returns the stored result without calling the
// classifier. Nothing is written when ctx is canceled or the output fails
// validation.
func Execute(ctx context.Context, rt *Runtime, req Request) (*Outcome, error) {
	start := time.Now()

	out, err := execute(ctx, rt, req)
	rt.observeClassify(classifyOutcome(out, err), time.Since(start))

	if err != nil {
		return nil, err
	}
	return out, nil
}

func execute(ctx context.Context, rt *Runtime, req Request) (*Outcome, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyRequest, req)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractOutcome(finalState)
}

// buildGraph assembles load → prepare → classify → finalize. Any node that
// settles the request, by finding a stored result or failing, routes
// straight to finalize.
func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("schemata-classify")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("load", LoadNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("prepare", PrepareNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("classify", ClassifyNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	// load → finalize (existing result or lookup failure)
	if err := graph.AddEdge("load", "finalize", settled); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("load", "prepare", state.Not(settled)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("prepare", "finalize", settled); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("prepare", "classify", state.Not(settled)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("classify", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("load"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractOutcome(s state.State) (*Outcome, error) {
	if val, ok := s.Get(KeyError); ok {
		err, ok := val.(error)
		if !ok {
			return nil, fmt.Errorf("%s is not error", KeyError)
		}
		return nil, err
	}

	val, ok := s.Get(KeyOutcome)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyOutcome)
	}

	out, ok := val.(*Outcome)
	if !ok {
		return nil, fmt.Errorf("%s is not *Outcome", KeyOutcome)
	}

	return out, nil
}

func run(
	ctx context.Context,
	rt *Runtime,
	req Request,
	key results.Key,
	target *compiler.TargetType,
	text string,
) (*Outcome, error) {
	release, err := rt.locker().Acquire(ctx, key.String())
	switch {
	case errors.Is(err, lease.ErrHeld):
		rt.Logger.InfoContext(ctx, "run held by another instance, waiting", "key", key.String())
		return await(ctx, rt, key)
	case err != nil:
		rt.Logger.WarnContext(ctx, "run lease unavailable, continuing without it", "key", key.String(), "error", err)
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				rt.Logger.WarnContext(ctx, "release run lease", "key", key.String(), "error", err)
			}
		}()
	}

	if existing, err := findExisting(ctx, rt, key); err != nil || existing != nil {
		return existing, err
	}

	value, out, err := classify(ctx, rt, target, gateway.Request{
		Target:   target,
		Text:     text,
		Provider: req.Provider,
		Model:    req.Model,
		APIKey:   req.APIKey,
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, created, err := rt.Results.Put(ctx, results.PutCommand{
		Key:            key,
		RunName:        req.RunName,
		RunDescription: req.RunDescription,
		Value:          value,
		Provider:       out.Provider,
		Model:          out.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	rt.Logger.InfoContext(ctx, "classification complete",
		"result_id", res.ID,
		"key", key.String(),
		"created", created,
		"provider", out.Provider,
		"model", out.Model,
	)

	return &Outcome{Result: res, Created: created}, nil
}

// classify calls the gateway under the runtime timeout and validates the output.
func classify(
	ctx context.Context,
	rt *Runtime,
	target *compiler.TargetType,
	req gateway.Request,
) (map[string]any, *gateway.Output, error) {
	callCtx := ctx
	if rt.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, rt.Timeout)
		defer cancel()
	}

	out, err := rt.Gateway.Classify(callCtx, req)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, &gateway.Error{Provider: req.Provider, Model: req.Model, Err: gateway.ErrTimeout}
		}
		return nil, nil, err
	}

	value, err := validator.Validate(target, out.Value)
	if err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			for _, v := range verr.Violations {
				rt.observeViolation(string(v.Kind))
			}
			rt.Logger.WarnContext(ctx, "classifier output rejected",
				"target", target.Name,
				"provider", out.Provider,
				"violations", len(verr.Violations),
			)
		}
		return nil, nil, err
	}

	return value, out, nil
}

func findExisting(ctx context.Context, rt *Runtime, key results.Key) (*Outcome, error) {
	existing, err := rt.Results.FindByKey(ctx, key)
	switch {
	case err == nil:
		return &Outcome{Result: existing}, nil
	case errors.Is(err, results.ErrNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("lookup result %s: %w", key.String(), err)
	}
}

// await polls the result store until the lease holder's result appears.
func await(ctx context.Context, rt *Runtime, key results.Key) (*Outcome, error) {
	waitCtx := ctx
	if rt.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, rt.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(rt.pollInterval())
	defer ticker.Stop()

	for {
		if existing, err := findExisting(ctx, rt, key); err != nil || existing != nil {
			return existing, err
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s", ErrRunInProgress, key.String())
		case <-ticker.C:
		}
	}
}

func classifyOutcome(out *Outcome, err error) string {
	switch {
	case err == nil && out.Created:
		return metrics.OutcomeCreated
	case err == nil:
		return metrics.OutcomeExisting
	case errors.Is(err, validator.ErrValidation):
		return metrics.OutcomeInvalid
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeFailed
	}
}
