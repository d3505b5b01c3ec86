package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Operation names used in logs and StoreError.Op.
const (
	opGetAll    = "get_all"
	opCreate    = "create"
	opUpdate    = "update"
	opDelete    = "delete"
	opDuplicate = "duplicate"
	opDefault   = "default_record"
	opReset     = "reset"
)

// defaultParentValue fills the data column of a new lookup row.
const defaultParentValue = "Value"

var _ types.Table = (*genericTable)(nil)

// genericTable runs plain statements against one relation.
type genericTable struct {
	backend *Backend
	def     types.TableDef
}

// newTable returns the accessor variant for the definition's kind.
func newTable(b *Backend, def types.TableDef) types.Table {
	g := &genericTable{backend: b, def: def}
	if def.Kind == types.KindEntry {
		return &entryTable{genericTable: g}
	}
	return g
}

func (t *genericTable) Def() types.TableDef { return t.def }

func (t *genericTable) name() string { return t.def.Schema.Name }

func (t *genericTable) pk() string { return t.def.Schema.PrimaryKey }

func (t *genericTable) columnList() string {
	return strings.Join(t.def.Schema.Columns, ", ")
}

// GetAll returns every row ordered by primary key.
func (t *genericTable) GetAll(ctx context.Context) ([]types.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", t.columnList(), t.name(), t.pk())
	return t.query(ctx, opGetAll, query)
}

// query runs a read outside any explicit transaction.
func (t *genericTable) query(ctx context.Context, op, query string, args ...any) ([]types.Record, error) {
	t.backend.logger.Debug("reading rows", slog.String("op", op), slog.String("table", t.name()))

	rows, err := t.backend.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.backend.storeError(op, t.name(), err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, t.backend.storeError(op, t.name(), err)
	}
	return records, nil
}

// Create bulk-inserts records that share one column set.
func (t *genericTable) Create(ctx context.Context, records []types.Record) ([]types.Record, error) {
	if len(records) == 0 {
		t.backend.logger.Warn("create called with no records", slog.String("table", t.name()))
		return []types.Record{}, nil
	}

	cols, err := t.insertColumns(records)
	if err != nil {
		return nil, err
	}

	// Chunk so one statement stays under the dialect's bind limit.
	perStmt := max(1, t.backend.dialect.maxParams()/len(cols))

	var created []types.Record
	err = t.backend.withTx(ctx, func(tx *sql.Tx) error {
		for chunk := range slices.Chunk(records, perStmt) {
			query, args := t.insertStatement(cols, chunk)
			rows, err := tx.QueryContext(ctx, query, args...)
			if err != nil {
				return err
			}
			out, err := scanRecords(rows)
			if err != nil {
				return err
			}
			created = append(created, out...)
		}
		return nil
	})
	if err != nil {
		return nil, t.backend.storeError(opCreate, t.name(), err)
	}

	t.backend.logger.Info("created rows", slog.String("table", t.name()), slog.Int("count", len(created)))
	return created, nil
}

// insertColumns checks that every record carries the same known, non-key
// columns and returns them in schema order.
func (t *genericTable) insertColumns(records []types.Record) ([]string, error) {
	cols := records[0].Keys(t.def.Schema.Columns)
	if len(cols) != len(records[0]) {
		return nil, fmt.Errorf("%w: %s has no column in %v", types.ErrUnknownColumn, t.name(), keysOf(records[0]))
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: record has no columns", types.ErrInvalidData)
	}
	if slices.Contains(cols, t.pk()) {
		return nil, fmt.Errorf("%w: %s is generated by the store", types.ErrInvalidData, t.pk())
	}
	for i, r := range records[1:] {
		if len(r) != len(cols) || len(r.Keys(cols)) != len(cols) {
			return nil, fmt.Errorf("%w: record %d has a different column set", types.ErrInvalidData, i+1)
		}
	}
	return cols, nil
}

func (t *genericTable) insertStatement(cols []string, records []types.Record) (string, []any) {
	d := t.backend.dialect
	args := make([]any, 0, len(cols)*len(records))
	tuples := make([]string, len(records))
	for i, r := range records {
		tuples[i] = "(" + placeholders(d, len(args)+1, len(cols)) + ")"
		for _, c := range cols {
			args = append(args, r[c])
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s RETURNING %s",
		t.name(), strings.Join(cols, ", "), strings.Join(tuples, ", "), t.columnList())
	return query, args
}

// Update patches one row and returns the stored result.
func (t *genericTable) Update(ctx context.Context, patch types.Record, id int64) (types.Record, error) {
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty patch", types.ErrInvalidData)
	}
	cols := patch.Keys(t.def.Schema.Columns)
	if len(cols) != len(patch) {
		return nil, fmt.Errorf("%w: %s has no column in %v", types.ErrUnknownColumn, t.name(), keysOf(patch))
	}
	if slices.Contains(cols, t.pk()) {
		return nil, fmt.Errorf("%w: %s", types.ErrReadOnlyColumn, t.pk())
	}

	d := t.backend.dialect
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = c + " = " + d.placeholder(i+1)
		args = append(args, patch[c])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING %s",
		t.name(), strings.Join(sets, ", "), t.pk(), d.placeholder(len(args)), t.columnList())

	var updated []types.Record
	err := t.backend.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		updated, err = scanRecords(rows)
		return err
	})
	if err != nil {
		return nil, t.backend.storeError(opUpdate, t.name(), err)
	}
	if len(updated) == 0 {
		t.backend.logger.Warn("update matched no rows", slog.String("table", t.name()), slog.Int64("id", id))
		return nil, fmt.Errorf("updating %s %d: %w", t.name(), id, types.ErrNotFound)
	}

	t.backend.logger.Info("updated row", slog.String("table", t.name()), slog.Int64("id", id))
	return updated[0], nil
}

// Delete removes the rows with the given ids; unknown ids are ignored.
func (t *genericTable) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	d := t.backend.dialect
	err := t.backend.withTx(ctx, func(tx *sql.Tx) error {
		for chunk := range slices.Chunk(ids, d.maxParams()) {
			query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
				t.name(), t.pk(), placeholders(d, 1, len(chunk)))
			if _, err := tx.ExecContext(ctx, query, int64Args(chunk)...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return t.backend.storeError(opDelete, t.name(), err)
	}

	t.backend.logger.Info("deleted rows", slog.String("table", t.name()), slog.Int("requested", len(ids)))
	return nil
}

// Duplicate is only available on the entry table.
func (t *genericTable) Duplicate(context.Context, []int64) ([]types.Record, error) {
	return nil, fmt.Errorf("duplicating %s: %w", t.name(), types.ErrUnsupported)
}

// DefaultRecord fills every data column with a placeholder value.
func (t *genericTable) DefaultRecord(context.Context) (types.Record, error) {
	r := types.Record{}
	for _, c := range t.def.Schema.DataColumns() {
		r[c] = defaultParentValue
	}
	return r, nil
}

// scanRecords drains rows into records keyed by the result column names.
func scanRecords(rows *sql.Rows) ([]types.Record, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []types.Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(types.Record, len(cols))
		for i, c := range cols {
			r[c] = types.NormalizeValue(values[i])
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func keysOf(r types.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
