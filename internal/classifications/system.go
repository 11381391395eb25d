package classifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/schemata/internal/gateway"
	"github.com/JaimeStill/schemata/internal/workflow"
)

// System defines the public contract for classification operations.
type System interface {
	Handler(display Attacher) *Handler

	Classify(ctx context.Context, req workflow.Request) (*workflow.Outcome, error)
	ClassifyBatch(ctx context.Context, req workflow.BatchRequest) ([]workflow.BatchItem, error)
	ClassifyText(ctx context.Context, req workflow.TextRequest) (*workflow.TextOutcome, error)
	Providers() []gateway.Provider
}

type system struct {
	rt     *workflow.Runtime
	logger *slog.Logger
}

// New creates a classification system that runs requests through rt.
func New(rt *workflow.Runtime, logger *slog.Logger) System {
	return &system{
		rt:     rt,
		logger: logger.With("system", "classifications"),
	}
}

func (s *system) Handler(display Attacher) *Handler {
	return NewHandler(s, display, s.logger)
}

func (s *system) Classify(ctx context.Context, req workflow.Request) (*workflow.Outcome, error) {
	return workflow.Execute(ctx, s.rt, req)
}

// ClassifyBatch fails as a whole only when the scheme cannot be loaded;
// per-document failures are reported on the items.
func (s *system) ClassifyBatch(ctx context.Context, req workflow.BatchRequest) ([]workflow.BatchItem, error) {
	if len(req.DocumentIDs) == 0 {
		return nil, ErrNoDocuments
	}

	if _, err := s.rt.Schemes.Find(ctx, req.SchemeID); err != nil {
		return nil, fmt.Errorf("load scheme %s: %w", req.SchemeID, err)
	}

	return workflow.ExecuteBatch(ctx, s.rt, req), nil
}

func (s *system) ClassifyText(ctx context.Context, req workflow.TextRequest) (*workflow.TextOutcome, error) {
	return workflow.ExecuteText(ctx, s.rt, req)
}

func (s *system) Providers() []gateway.Provider {
	return s.rt.Gateway.Providers()
}
