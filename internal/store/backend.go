// Package store implements the relational store adapters for the phone
// directory. A Backend owns the single database handle and the table
// registry; each table translates the generic CRUD operations into
// statements for one relation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

var _ types.Directory = (*Backend)(nil)

// Backend implements types.Directory over a database/sql handle.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	dialect  dialect
	catalog  *types.Catalog
	logger   *slog.Logger
	tables   map[string]types.Table
}

// NewBackend creates a backend for the given catalog. A nil catalog selects
// types.DirectoryCatalog and a nil logger discards output. The backend is not
// attached; call Attach to connect.
func NewBackend(catalog *types.Catalog, logger *slog.Logger) *Backend {
	if catalog == nil {
		catalog = types.DirectoryCatalog()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		catalog: catalog,
		logger:  logger,
		tables:  make(map[string]types.Table),
	}
}

// Attach opens the configured database, applies migrations, and builds the
// table registry. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	d, err := dialectFor(config.Backend)
	if err != nil {
		return err
	}

	db, err := d.open(config)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("connecting to %s: %w", d.name(), err)
	}
	if err := migrate(ctx, db, d, b.logger); err != nil {
		_ = db.Close()
		return err
	}

	b.config = config
	b.bind(db, d)
	b.logger.Info("attached directory", slog.String("backend", d.name()))
	return nil
}

// bind installs db as the shared handle and creates one accessor per
// catalog table. The caller must hold b.mu.
func (b *Backend) bind(db *sql.DB, d dialect) {
	b.db = db
	b.dialect = d
	b.tables = make(map[string]types.Table)
	for _, name := range b.catalog.Names() {
		def, _ := b.catalog.Def(name)
		b.tables[name] = newTable(b, def)
	}
	b.attached = true
}

// Detach closes the database handle. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.tables = make(map[string]types.Table)
	return nil
}

// GetTable returns the accessor for a table.
// Returns ErrDetached before Attach and ErrTableNotFound for unknown names.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Catalog returns the catalog the backend was built with.
func (b *Backend) Catalog() *types.Catalog {
	return b.catalog
}

// SchemaVersion reports the latest applied migration.
func (b *Backend) SchemaVersion(ctx context.Context) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrDetached
	}
	return schemaVersion(ctx, b.db, b.dialect)
}

// withTx runs fn in a transaction that commits when fn succeeds and rolls
// back otherwise.
func (b *Backend) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// storeError tags a driver error with its category and logs the raw
// message.
func (b *Backend) storeError(op, table string, err error) error {
	kind := b.dialect.classify(err)
	b.logger.Error("store operation failed",
		slog.String("op", op),
		slog.String("table", table),
		slog.String("kind", kind.String()),
		slog.String("error", err.Error()))
	return &types.StoreError{Kind: kind, Op: op, Table: table, Err: err}
}
