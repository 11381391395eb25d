package schemes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/fields"
	"github.com/JaimeStill/schemata/pkg/pagination"
	"github.com/JaimeStill/schemata/pkg/query"
	"github.com/JaimeStill/schemata/pkg/repository"
)

const (
	insertFieldSQL = `
		INSERT INTO scheme_fields(
			id, scheme_id, position, name, description, type,
			scale_min, scale_max, is_set_of_labels, labels, max_labels
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	insertKeySQL = `
		INSERT INTO scheme_field_keys(field_id, position, name, type)
		VALUES ($1, $2, $3, $4)`
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a scheme repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "schemes"),
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
) (*pagination.PageResult[Scheme], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	return repository.WithSnapshot(ctx, r.db, func(tx *sql.Tx) (*pagination.PageResult[Scheme], error) {
		countSQL, countArgs := qb.BuildCount()
		var total int
		if err := tx.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return nil, fmt.Errorf("count schemes: %w", err)
		}

		pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
		list, err := repository.QueryMany(ctx, tx, pageSQL, pageArgs, scanScheme)
		if err != nil {
			return nil, fmt.Errorf("query schemes: %w", err)
		}

		if err := loadFields(ctx, tx, list); err != nil {
			return nil, err
		}

		result := pagination.NewPageResult(list, total, page.Page, page.PageSize)
		return &result, nil
	})
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Scheme, error) {
	s, err := repository.WithSnapshot(ctx, r.db, func(tx *sql.Tx) (Scheme, error) {
		return findTx(ctx, tx, id)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Create(ctx context.Context, cmd Command) (*Scheme, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	rules, err := json.Marshal(cmd.ValidationRules)
	if err != nil {
		return nil, fmt.Errorf("encode validation rules: %w", err)
	}

	q := `
		INSERT INTO schemes(id, name, description, model_instructions, validation_rules)
		VALUES ($1, $2, $3, $4, $5)`

	id := uuid.New()

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Scheme, error) {
		if _, err := tx.ExecContext(ctx, q, id, cmd.Name, cmd.Description, cmd.ModelInstructions, rules); err != nil {
			return Scheme{}, err
		}
		if err := insertFields(ctx, tx, id, cmd.Fields); err != nil {
			return Scheme{}, err
		}
		return findTx(ctx, tx, id)
	})
	if err != nil {
		return nil, r.mapWriteError(err)
	}

	r.logger.Info("scheme created", "id", s.ID, "name", s.Name, "fields", len(s.Fields))
	return &s, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd Command) (*Scheme, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	rules, err := json.Marshal(cmd.ValidationRules)
	if err != nil {
		return nil, fmt.Errorf("encode validation rules: %w", err)
	}

	q := `
		UPDATE schemes
		SET name = $2, description = $3, model_instructions = $4,
			validation_rules = $5, updated_at = NOW()
		WHERE id = $1`

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Scheme, error) {
		if err := repository.ExecExpectOne(
			ctx, tx, q,
			id, cmd.Name, cmd.Description, cmd.ModelInstructions, rules,
		); err != nil {
			return Scheme{}, err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM scheme_fields WHERE scheme_id = $1", id); err != nil {
			return Scheme{}, err
		}
		if err := insertFields(ctx, tx, id, cmd.Fields); err != nil {
			return Scheme{}, err
		}
		return findTx(ctx, tx, id)
	})
	if err != nil {
		return nil, r.mapWriteError(err)
	}

	r.logger.Info("scheme updated", "id", s.ID, "name", s.Name, "fields", len(s.Fields))
	return &s, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM schemes WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return r.mapWriteError(err)
	}

	r.logger.Info("scheme deleted", "id", id)
	return nil
}

func (r *repo) mapWriteError(err error) error {
	return repository.MapConstraint(err, ErrNotFound, ErrDuplicate, repository.Constraints{
		ForeignKey: ErrHasResults,
		Check:      ErrInvalidScheme,
	})
}

func findTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (Scheme, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, tx, q, args, scanScheme)
	if err != nil {
		return Scheme{}, err
	}

	list := []Scheme{s}
	if err := loadFields(ctx, tx, list); err != nil {
		return Scheme{}, err
	}
	return list[0], nil
}

// loadFields fills the Fields of every scheme in list. Any failure fails the
// whole load.
func loadFields(ctx context.Context, tx *sql.Tx, list []Scheme) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}

	fq, fargs := query.
		NewBuilder(fieldProjection, query.SortField{Field: "SchemeID"}, query.SortField{Field: "Position"}).
		WhereInUUIDs("SchemeID", ids).
		Build()

	rows, err := repository.QueryMany(ctx, tx, fq, fargs, scanField)
	if err != nil {
		return fmt.Errorf("load scheme fields: %w", err)
	}

	kq, kargs := query.
		NewBuilder(keyProjection, query.SortField{Field: "FieldID"}, query.SortField{Field: "Position"}).
		WhereInUUIDs("SchemeID", ids).
		Build()

	keys, err := repository.QueryMany(ctx, tx, kq, kargs, scanKey)
	if err != nil {
		return fmt.Errorf("load scheme field keys: %w", err)
	}

	assemble(list, rows, keys)
	return nil
}

func insertFields(ctx context.Context, tx *sql.Tx, schemeID uuid.UUID, fs []fields.Field) error {
	for i, f := range fs {
		fieldID := uuid.New()

		var labels any
		if f.IsSetOfLabels {
			labels = f.Labels
		}

		if _, err := tx.ExecContext(ctx, insertFieldSQL,
			fieldID, schemeID, i, f.Name, f.Description, string(f.Type),
			f.ScaleMin, f.ScaleMax, f.IsSetOfLabels, labels, f.MaxLabels,
		); err != nil {
			return fmt.Errorf("insert field %s: %w", f.Name, err)
		}

		for j, key := range f.DictKeys {
			if _, err := tx.ExecContext(ctx, insertKeySQL, fieldID, j, key.Name, string(key.Type)); err != nil {
				return fmt.Errorf("insert key %s.%s: %w", f.Name, key.Name, err)
			}
		}
	}
	return nil
}
