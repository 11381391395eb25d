package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Text(ctx context.Context, id uuid.UUID) (string, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)

	// Update applies cmd to the document. Replacing the text of a document
	// that already has results fails with ErrHasResults.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
