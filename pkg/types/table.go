package types

import (
	"context"
	"errors"
)

// Table provides the store operations for one relation. Each call runs in
// its own transaction and either commits fully or rolls back.
type Table interface {
	// Def returns the table's schema and column descriptors.
	Def() TableDef

	// GetAll returns every row ordered by primary key, with string values
	// trimmed of surrounding whitespace.
	GetAll(ctx context.Context) ([]Record, error)

	// Create inserts the records in one statement batch and returns the
	// stored rows, including generated primary keys, in store order.
	// All records must carry the same set of columns. An empty slice
	// returns an empty result.
	Create(ctx context.Context, records []Record) ([]Record, error)

	// Update applies patch to the row with the given id and returns the
	// stored row. Returns ErrNotFound if no row has that id.
	Update(ctx context.Context, patch Record, id int64) (Record, error)

	// Delete removes the rows with the given ids. Ids with no row are
	// ignored.
	Delete(ctx context.Context, ids []int64) error

	// Duplicate copies the given rows under new primary keys and returns
	// the copies. Returns ErrUnsupported for tables without duplication.
	Duplicate(ctx context.Context, ids []int64) ([]Record, error)

	// DefaultRecord returns the values for a freshly created row.
	DefaultRecord(ctx context.Context) (Record, error)
}

// Table operation errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidID      = errors.New("invalid record ID")
	ErrInvalidData    = errors.New("invalid record data")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrUnsupported    = errors.New("operation not supported for table")
	ErrMissingParent  = errors.New("parent table is empty")
	ErrReadOnlyColumn = errors.New("column is read-only")
	ErrActionDisabled = errors.New("action is disabled for table")
)
