package documents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/pkg/pagination"
	"github.com/JaimeStill/schemata/pkg/query"
	"github.com/JaimeStill/schemata/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "TextContent")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Text(ctx context.Context, id uuid.UUID) (string, error) {
	var text string
	err := r.db.QueryRowContext(ctx,
		"SELECT text_content FROM documents WHERE id = $1", id,
	).Scan(&text)
	if err != nil {
		return "", repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return text, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO documents(id, title, text_content)
		VALUES ($1, $2, $3)
		RETURNING id, title, text_content, 0, created_at, updated_at`

	args := []any{uuid.New(), cmd.Title, cmd.TextContent}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, args, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "title", d.Title)
	return &d, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		// FOR UPDATE blocks result inserts, whose foreign key check needs a
		// share lock on this row, until the text change commits.
		var results int
		err := tx.QueryRowContext(ctx, `
			SELECT (SELECT COUNT(*) FROM results r WHERE r.document_id = d.id)
			FROM documents d
			WHERE d.id = $1
			FOR UPDATE`, id,
		).Scan(&results)
		if err != nil {
			return Document{}, err
		}
		if cmd.TextContent != nil && results > 0 {
			return Document{}, ErrHasResults
		}

		return repository.QueryOne(ctx, tx, `
			UPDATE documents
			SET title = COALESCE($2, title),
			    text_content = COALESCE($3, text_content),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING id, title, text_content, $4::int, created_at, updated_at`,
			[]any{id, cmd.Title, cmd.TextContent, results}, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document updated", "id", d.ID, "text_replaced", cmd.TextContent != nil)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapConstraint(err, ErrNotFound, ErrDuplicate, repository.Constraints{
			ForeignKey: ErrHasResults,
		})
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}
