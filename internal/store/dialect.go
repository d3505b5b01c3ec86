package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// dialect isolates the statement and error differences between backends.
type dialect interface {
	// name is the backend name from types.Config.
	name() string

	// open returns a handle to the configured database.
	open(cfg types.Config) (*sql.DB, error)

	// placeholder renders the n-th (1-based) bind parameter.
	placeholder(n int) string

	// maxParams bounds the bind parameters in one statement.
	maxParams() int

	// classify maps a driver error onto the store error taxonomy.
	classify(err error) types.ErrorKind

	// resetSequence returns the statement and arguments that restart the
	// id sequence of table.
	resetSequence(table, pk string) (string, []any)

	// gooseDialect names the migration dialect.
	gooseDialect() goose.Dialect

	// migrationDir is the embedded directory holding the dialect's migrations.
	migrationDir() string
}

func dialectFor(backend string) (dialect, error) {
	switch backend {
	case types.BackendSQLite:
		return sqliteDialect{}, nil
	case types.BackendPostgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, backend)
	}
}

// placeholders renders count bind parameters starting at position start.
func placeholders(d dialect, start, count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = d.placeholder(start + i)
	}
	return strings.Join(ps, ", ")
}
