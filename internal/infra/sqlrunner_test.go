package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type fakeDB struct {
	sql  string
	args []any
	err  error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.sql, f.args = sql, args
	return errorRow{err: f.err}
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql, f.args = sql, args
	return nil, f.err
}

const markedQuery = `--sql 0b0c4d1e-5a53-4f36-9a2f-6a1f0c7d2e11
SELECT 1`

func TestSQLRunnerStripsMarker(t *testing.T) {
	db := &fakeDB{}
	r := NewSQLRunner(db, zerolog.Nop())

	tag, err := r.Exec(context.Background(), markedQuery, 42)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if db.sql != "SELECT 1" || len(db.args) != 1 {
		t.Fatalf("unexpected forwarded query %q %v", db.sql, db.args)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("rows affected = %d", tag.RowsAffected())
	}
}

func TestSQLRunnerRejectsUnmarkedQueries(t *testing.T) {
	db := &fakeDB{}
	r := NewSQLRunner(db, zerolog.Nop())

	if _, err := r.Exec(context.Background(), "SELECT 1"); !errors.Is(err, ErrMissingMarker) {
		t.Fatalf("err = %v", err)
	}
	if err := r.QueryRow(context.Background(), "  ").Scan(); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err = %v", err)
	}
	if _, err := r.Query(context.Background(), "--sql nope\nSELECT 1"); !errors.Is(err, ErrMissingMarker) {
		t.Fatalf("err = %v", err)
	}
	if db.sql != "" {
		t.Fatalf("unmarked query reached the database: %q", db.sql)
	}
}

func TestSQLRunnerPropagatesScanErrors(t *testing.T) {
	db := &fakeDB{err: pgx.ErrNoRows}
	r := NewSQLRunner(db, zerolog.Nop())
	var n int
	if err := r.QueryRow(context.Background(), markedQuery).Scan(&n); !IsNoRows(err) {
		t.Fatalf("err = %v", err)
	}
}
