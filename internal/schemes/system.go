package schemes

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/pkg/pagination"
)

// System defines the public contract for scheme domain operations.
// Find always returns a scheme together with its complete field list; a
// partial load is an error.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Scheme], error)

	Find(ctx context.Context, id uuid.UUID) (*Scheme, error)
	Create(ctx context.Context, cmd Command) (*Scheme, error)
	Update(ctx context.Context, id uuid.UUID, cmd Command) (*Scheme, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
