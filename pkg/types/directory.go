package types

import (
	"context"
	"errors"
)

// Directory is the table registry handed to every component that needs store
// access. It is built once when a backend attaches and is read-only after.
type Directory interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not in the catalog.
	GetTable(name string) (Table, error)

	// Catalog returns the schema catalog the directory was built from.
	Catalog() *Catalog

	// Reset deletes every row of every table and restarts id sequences.
	Reset(ctx context.Context) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, GetTable returns ErrDetached.
	Detach() error
}

// Directory lifecycle errors.
var (
	ErrDetached        = errors.New("directory is detached")
	ErrAlreadyAttached = errors.New("directory is already attached")
	ErrTableNotFound   = errors.New("table not found")
)
