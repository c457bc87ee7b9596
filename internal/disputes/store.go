package disputes

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the slice of pgx this store needs; *pgx.Conn satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Store appends canonical dispute records to the destination table over a
// single shared connection. One Store is built per reconciliation run.
type Store struct {
	db    Execer
	table string
	alive func() bool
}

// NewStore wraps an open pgx connection. The connection is owned by the
// caller, which closes it when the run ends.
func NewStore(conn *pgx.Conn, table string) *Store {
	return &Store{
		db:    conn,
		table: table,
		alive: func() bool { return !conn.IsClosed() },
	}
}

// Insert appends one record. A failed execution is reported to the caller
// and leaves no durable state; single-statement execution means there is no
// partial commit to roll back.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	cols := rec.Columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if _, err := s.db.Exec(ctx, stmt, rec.Values()...); err != nil {
		return fmt.Errorf("insert dispute %s: %w", rec.CaseNumber, err)
	}
	return nil
}

// Alive reports whether the underlying connection is still usable. The
// driver uses it to tell a constraint violation (run continues) from a dead
// connection (run aborts).
func (s *Store) Alive() bool {
	if s.alive == nil {
		return true
	}
	return s.alive()
}
