package workflow

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchRequest classifies several documents under one scheme and run.
type BatchRequest struct {
	SchemeID       uuid.UUID
	DocumentIDs    []uuid.UUID
	RunID          string
	RunName        *string
	RunDescription *string
	Provider       string
	Model          string
	APIKey         string
}

// BatchItem is the per-document result of a batch. Exactly one of Outcome
// and Err is set.
type BatchItem struct {
	DocumentID uuid.UUID
	Outcome    *Outcome
	Err        error
}

// ExecuteBatch runs Execute for every document with at most rt.Concurrency
// documents in flight. A failing document does not stop the others; items
// are returned in request order.
func ExecuteBatch(ctx context.Context, rt *Runtime, req BatchRequest) []BatchItem {
	items := make([]BatchItem, len(req.DocumentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.concurrency())

	for i, docID := range req.DocumentIDs {
		g.Go(func() error {
			out, err := Execute(gctx, rt, Request{
				SchemeID:       req.SchemeID,
				DocumentID:     docID,
				RunID:          req.RunID,
				RunName:        req.RunName,
				RunDescription: req.RunDescription,
				Provider:       req.Provider,
				Model:          req.Model,
				APIKey:         req.APIKey,
			})
			items[i] = BatchItem{DocumentID: docID, Outcome: out, Err: err}
			return nil
		})
	}

	g.Wait()

	created := 0
	failed := 0
	for _, item := range items {
		switch {
		case item.Err != nil:
			failed++
		case item.Outcome.Created:
			created++
		}
	}

	rt.Logger.InfoContext(ctx, "batch classification complete",
		"scheme_id", req.SchemeID,
		"documents", len(items),
		"created", created,
		"failed", failed,
	)

	return items
}
