package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

// sliceRows yields one row per entry; each entry is copied into Scan's
// destinations positionally.
type sliceRows struct {
	testRowsBase
	rows   [][]any
	idx    int
	err    error
	closed bool
}

func (r *sliceRows) Close() { r.closed = true }

func (r *sliceRows) Err() error { return r.err }

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int64:
			*d = v.(int64)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}

type stubExecutor struct {
	execQuery string
	execArgs  []any
	execErr   error
	queryArgs []any
	rows      *sliceRows
	queryErr  error
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execQuery = query
	s.execArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), s.execErr
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return nil
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.queryArgs = args
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.rows == nil {
		return nil, errors.New("no rows configured")
	}
	return s.rows, nil
}
