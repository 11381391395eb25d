package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/schemata/pkg/repository"
)

var (
	errNotFound   = errors.New("not found")
	errDuplicate  = errors.New("duplicate")
	errHasResults = errors.New("has results")
	errInvalid    = errors.New("invalid")
)

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("query: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"foreign key passes through", fk, fk},
		{"other passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapConstraint(t *testing.T) {
	constraints := repository.Constraints{
		ForeignKey: errHasResults,
		Check:      errInvalid,
	}

	tests := []struct {
		name        string
		err         error
		constraints repository.Constraints
		want        error
	}{
		{"nil", nil, constraints, nil},
		{"foreign key", &pgconn.PgError{Code: "23503"}, constraints, errHasResults},
		{"check", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514"}), constraints, errInvalid},
		{"unique falls through", &pgconn.PgError{Code: "23505"}, constraints, errDuplicate},
		{"no rows falls through", sql.ErrNoRows, constraints, errNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapConstraint(tt.err, errNotFound, errDuplicate, tt.constraints)
			if got != tt.want {
				t.Errorf("MapConstraint(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	t.Run("unmapped foreign key passes through", func(t *testing.T) {
		fk := &pgconn.PgError{Code: "23503"}
		got := repository.MapConstraint(fk, errNotFound, errDuplicate, repository.Constraints{})
		if got != fk {
			t.Errorf("got %v, want original error", got)
		}
	})
}
