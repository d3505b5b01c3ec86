package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// PostgreSQL SQLSTATE codes mapped onto the error taxonomy.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgNotNullViolation     = "23502"
	pgNumericOutOfRange    = "22003"
	pgInvalidTextRepresent = "22P02"
)

type postgresDialect struct{}

func (postgresDialect) name() string { return types.BackendPostgres }

func (postgresDialect) open(cfg types.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", buildPostgresDSN(cfg.Postgres))
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// buildPostgresDSN constructs a key=value connection string.
func buildPostgresDSN(cfg types.PostgresConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}

func (postgresDialect) placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) maxParams() int { return 65535 }

func (postgresDialect) classify(err error) types.ErrorKind {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return types.KindUnknown
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return types.KindUniqueness
	case pgForeignKeyViolation:
		return types.KindReferential
	case pgNotNullViolation:
		return types.KindRequiredField
	case pgNumericOutOfRange, pgInvalidTextRepresent:
		return types.KindRange
	default:
		return types.KindUnknown
	}
}

func (postgresDialect) resetSequence(table, pk string) (string, []any) {
	return fmt.Sprintf("ALTER SEQUENCE %s_%s_seq RESTART WITH 1", table, pk), nil
}

func (postgresDialect) gooseDialect() goose.Dialect { return goose.DialectPostgres }

func (postgresDialect) migrationDir() string { return "migrations/postgres" }
