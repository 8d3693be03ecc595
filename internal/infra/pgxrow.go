package infra

import (
	"github.com/jackc/pgx/v5"
)

// SimpleRow adapts a scan function to pgx.Row. A nil scanner behaves like a
// query that matched nothing. Used by executors that fake the database.
type SimpleRow struct {
	scan func(dest ...any) error
}

// NewSimpleRow wraps scanner.
func NewSimpleRow(scanner func(dest ...any) error) SimpleRow {
	return SimpleRow{scan: scanner}
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// ErrorRow is a pgx.Row whose Scan always fails with Err.
type ErrorRow struct {
	Err error
}

func (e ErrorRow) Scan(...any) error {
	return e.Err
}
