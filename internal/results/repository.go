package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/schemes"
	"github.com/JaimeStill/schemata/pkg/pagination"
	"github.com/JaimeStill/schemata/pkg/query"
	"github.com/JaimeStill/schemata/pkg/repository"
)

const insertSQL = `
	INSERT INTO results(
		id, document_id, scheme_id, run_id, run_name, run_description,
		value, provider, model, recorded_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
	ON CONFLICT (document_id, scheme_id, run_id) DO NOTHING
	RETURNING id`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a result repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "results"),
		pagination: pagination,
	}
}

func (r *repo) Handler(sch schemes.System) *Handler {
	return NewHandler(r, sch, r.logger, r.pagination)
}

func (r *repo) Put(ctx context.Context, cmd PutCommand) (*Result, bool, error) {
	cmd.Key = cmd.Key.Normalize()

	value, err := EncodeValue(cmd.Value)
	if err != nil {
		return nil, false, fmt.Errorf("encode result value: %w", err)
	}

	var recordedAt *time.Time
	if !cmd.Timestamp.IsZero() {
		recordedAt = &cmd.Timestamp
	}

	type outcome struct {
		result  Result
		created bool
	}

	out, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (outcome, error) {
		var id uuid.UUID
		err := tx.QueryRowContext(ctx, insertSQL,
			uuid.New(), cmd.DocumentID, cmd.SchemeID, cmd.RunID,
			cmd.RunName, cmd.RunDescription, []byte(value),
			cmd.Provider, cmd.Model, recordedAt,
		).Scan(&id)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			existing, err := findByKey(ctx, tx, cmd.Key)
			return outcome{result: existing}, err
		case err != nil:
			return outcome{}, err
		}

		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		created, err := repository.QueryOne(ctx, tx, q, args, scanResult)
		return outcome{result: created, created: true}, err
	})
	if err != nil {
		return nil, false, repository.MapConstraint(err, ErrNotFound, ErrDuplicate, repository.Constraints{
			ForeignKey: ErrInvalidReference,
		})
	}

	if out.created {
		r.logger.Info("result stored",
			"id", out.result.ID,
			"document_id", out.result.DocumentID,
			"scheme_id", out.result.SchemeID,
			"run_id", out.result.RunID,
		)
	} else {
		r.logger.Info("result already stored", "id", out.result.ID, "key", cmd.Key.String())
	}

	return &out.result, out.created, nil
}

func (r *repo) FindByKey(ctx context.Context, key Key) (*Result, error) {
	res, err := findByKey(ctx, r.db, key.Normalize())
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &res, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Result, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	res, err := repository.QueryOne(ctx, r.db, q, args, scanResult)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &res, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Result], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "RunID", "RunName", "DocumentTitle", "SchemeName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count results: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	list, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanResult)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	result := pagination.NewPageResult(list, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) ListByScheme(ctx context.Context, schemeID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Result], error) {
	return r.List(ctx, page, Filters{SchemeID: &schemeID})
}

func (r *repo) ListByDocument(ctx context.Context, documentID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Result], error) {
	return r.List(ctx, page, Filters{DocumentID: &documentID})
}

func (r *repo) ListByRun(ctx context.Context, runID string, page pagination.PageRequest) (*pagination.PageResult[Result], error) {
	runID = NormalizeRunID(runID)
	return r.List(ctx, page, Filters{RunID: &runID})
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM results WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("result deleted", "id", id)
	return nil
}

func findByKey(ctx context.Context, q repository.Querier, key Key) (Result, error) {
	stmt, args := query.
		NewBuilder(projection).
		WhereEquals("DocumentID", key.DocumentID).
		WhereEquals("SchemeID", key.SchemeID).
		WhereEquals("RunID", key.RunID).
		BuildSingleOrNull()

	return repository.QueryOne(ctx, q, stmt, args, scanResult)
}
