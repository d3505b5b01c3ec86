package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// sqliteFileName is the database file created under Config.DataDir.
const sqliteFileName = "phonebook.db"

type sqliteDialect struct{}

func (sqliteDialect) name() string { return types.BackendSQLite }

func (sqliteDialect) open(cfg types.Config) (*sql.DB, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dsn := "file:" + filepath.Join(dataDir, sqliteFileName) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection serves every table.
	db.SetMaxOpenConns(1)
	return db, nil
}

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) maxParams() int { return 32766 }

func (sqliteDialect) classify(err error) types.ErrorKind {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return types.KindUniqueness
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return types.KindReferential
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return types.KindRequiredField
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return types.KindRange
		}
	}

	// Fall back to the message when the extended code is not available.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return types.KindUniqueness
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return types.KindReferential
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return types.KindRequiredField
	case strings.Contains(msg, "CHECK constraint failed"):
		return types.KindRange
	default:
		return types.KindUnknown
	}
}

func (sqliteDialect) resetSequence(table, _ string) (string, []any) {
	return "DELETE FROM sqlite_sequence WHERE name = ?", []any{table}
}

func (sqliteDialect) gooseDialect() goose.Dialect { return goose.DialectSQLite3 }

func (sqliteDialect) migrationDir() string { return "migrations/sqlite" }
