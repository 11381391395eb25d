package results

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/schemes"
	"github.com/JaimeStill/schemata/pkg/pagination"
)

// System defines the public contract for result store operations.
type System interface {
	Handler(schemes schemes.System) *Handler

	// Put stores cmd unless a result already exists for its key, in which
	// case the existing result is returned unchanged. created reports
	// whether this call wrote the row.
	Put(ctx context.Context, cmd PutCommand) (result *Result, created bool, err error)

	FindByKey(ctx context.Context, key Key) (*Result, error)
	Find(ctx context.Context, id uuid.UUID) (*Result, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Result], error)

	ListByScheme(ctx context.Context, schemeID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Result], error)
	ListByDocument(ctx context.Context, documentID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Result], error)
	ListByRun(ctx context.Context, runID string, page pagination.PageRequest) (*pagination.PageResult[Result], error)

	Delete(ctx context.Context, id uuid.UUID) error
}
