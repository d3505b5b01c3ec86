package grid

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Create inserts one default row and puts the focused column of the new row
// into edit mode. It returns ErrMissingParent when a referenced parent table
// has no rows.
func (g *Grid) Create(ctx context.Context) (types.Record, error) {
	row, err := g.Insert(ctx, nil)
	if err != nil {
		return nil, err
	}
	if g.columns[g.focus.Col].Editable() {
		edit := g.focus
		g.editing = &edit
	}
	return row, nil
}

// Insert creates one row from the table defaults with values applied on top,
// appends it, and focuses it. Values are coerced as in Edit.
func (g *Grid) Insert(ctx context.Context, values map[string]any) (types.Record, error) {
	if err := g.checkLoaded(); err != nil {
		return nil, err
	}
	if err := g.checkAction(types.ActionCreate); err != nil {
		return nil, err
	}

	defaults, err := g.table.DefaultRecord(ctx)
	if err != nil {
		return nil, g.fail(ctx, types.ActionCreate, err)
	}
	for column, v := range values {
		i := g.ColumnIndex(column)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s has no column %s", types.ErrUnknownColumn, g.Name(), column)
		}
		if !g.columns[i].Editable() {
			return nil, fmt.Errorf("%w: %s", types.ErrReadOnlyColumn, column)
		}
		if defaults[column], err = coerce(g.columns[i], defaults[column], v); err != nil {
			return nil, err
		}
	}
	for _, c := range g.def.Parents() {
		if defaults[c.Column] == nil {
			g.logger.Warn("create blocked by empty parent", slog.String("parent", c.Parent.Table))
			return nil, fmt.Errorf("creating %s row: %s: %w", g.Name(), c.Parent.Table, types.ErrMissingParent)
		}
	}

	created, err := g.table.Create(ctx, []types.Record{defaults})
	if err != nil {
		return nil, g.fail(ctx, types.ActionCreate, err)
	}

	row := g.withLabels(created[0])
	g.rows = append(g.rows, row)
	g.editing = nil
	g.focus.Row = len(g.rows) - 1
	g.SetFocus(g.focus)

	id, _ := row.Int64(g.def.Schema.PrimaryKey)
	g.publish(ctx, types.Notification{Action: types.ActionCreate, RowID: id})
	return row.Clone(), nil
}

// Edit commits value into one cell as a single-column update. Strings are
// coerced to the column's type: parent columns accept a choice label or id,
// phone columns keep only digits, and integer columns parse the text. The
// row is then replaced by what the store returned. On a store failure the
// grid resyncs and the error is returned.
func (g *Grid) Edit(ctx context.Context, c Cell, value any) error {
	if err := g.checkCell(c); err != nil {
		return err
	}
	if err := g.checkAction(types.ActionUpdate); err != nil {
		return err
	}
	col := g.columns[c.Col]
	if !col.Editable() || col.Column == g.def.Schema.PrimaryKey {
		return fmt.Errorf("%w: %s", types.ErrReadOnlyColumn, col.Column)
	}

	row := g.rows[c.Row]
	id, ok := row.Int64(g.def.Schema.PrimaryKey)
	if !ok {
		return fmt.Errorf("%w: row %d has no key", types.ErrInvalidID, c.Row)
	}

	v, err := coerce(col, row[col.Column], value)
	if err != nil {
		return err
	}

	g.editing = nil
	g.last = &lastEdit{rowID: id, column: col.Column, previous: row[col.Column]}
	row[col.Column] = v

	updated, err := g.table.Update(ctx, types.Record{col.Column: v}, id)
	if err != nil {
		g.logger.Error("update failed",
			slog.Int64("id", id),
			slog.String("column", col.Column),
			slog.String("error", err.Error()))
		if rerr := g.Resync(ctx); rerr != nil {
			g.logger.Error("resync failed", slog.String("error", rerr.Error()))
			g.restorePrevious()
		}
		return err
	}

	if !types.EqualValues(updated[col.Column], v) {
		g.logger.Debug("store adjusted value",
			slog.String("column", col.Column),
			slog.Any("sent", v),
			slog.Any("stored", updated[col.Column]))
	}
	if i := g.Find(id); i >= 0 {
		g.rows[i] = g.withLabels(merge(g.rows[i], updated))
	}

	text := updated.Text(col.Column)
	g.publish(ctx, types.Notification{Action: types.ActionUpdate, RowID: id, NewValue: &text})
	return nil
}

// restorePrevious puts the value saved by the last edit back into its row.
func (g *Grid) restorePrevious() {
	if g.last == nil {
		return
	}
	if i := g.Find(g.last.rowID); i >= 0 {
		g.rows[i][g.last.column] = g.last.previous
	}
	g.last = nil
}

// Delete removes the given rows from the grid and then deletes them from the
// store in one call. Removed rows are not restored when the store call
// fails; the grid resyncs instead.
func (g *Grid) Delete(ctx context.Context, rows []int) error {
	if err := g.checkLoaded(); err != nil {
		return err
	}
	if err := g.checkAction(types.ActionDelete); err != nil {
		return err
	}

	ids := g.selectedIDs(rows)
	if len(ids) == 0 {
		return nil
	}

	pk := g.def.Schema.PrimaryKey
	g.rows = slices.DeleteFunc(g.rows, func(r types.Record) bool {
		id, ok := r.Int64(pk)
		return ok && slices.Contains(ids, id)
	})
	g.editing = nil
	g.SetFocus(g.focus)

	if err := g.table.Delete(ctx, ids); err != nil {
		return g.fail(ctx, types.ActionDelete, err)
	}

	g.logger.Info("deleted", slog.Int("rows", len(ids)))
	for _, id := range ids {
		g.publish(ctx, types.Notification{Action: types.ActionDelete, RowID: id})
	}
	return nil
}

// Duplicate copies the given rows in the store and appends the copies in the
// order the store returned them.
func (g *Grid) Duplicate(ctx context.Context, rows []int) ([]types.Record, error) {
	if err := g.checkLoaded(); err != nil {
		return nil, err
	}
	if err := g.checkAction(types.ActionDuplicate); err != nil {
		return nil, err
	}

	ids := g.selectedIDs(rows)
	if len(ids) == 0 {
		return []types.Record{}, nil
	}

	copies, err := g.table.Duplicate(ctx, ids)
	if err != nil {
		return nil, g.fail(ctx, types.ActionDuplicate, err)
	}

	out := make([]types.Record, len(copies))
	for i, c := range copies {
		row := g.withLabels(c)
		g.rows = append(g.rows, row)
		out[i] = row.Clone()
	}

	g.logger.Info("duplicated", slog.Int("rows", len(copies)))
	for _, r := range out {
		id, _ := r.Int64(g.def.Schema.PrimaryKey)
		g.publish(ctx, types.Notification{Action: types.ActionCreate, RowID: id})
	}
	return out, nil
}

// selectedIDs maps row indexes to distinct primary keys, skipping indexes
// outside the grid.
func (g *Grid) selectedIDs(rows []int) []int64 {
	var ids []int64
	for _, i := range rows {
		id, ok := g.RowID(i)
		if ok && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// withLabels sets each parent data column of r from the loaded choice lists,
// so rows returned by writes render like rows returned by Load.
func (g *Grid) withLabels(r types.Record) types.Record {
	for i, c := range g.columns {
		if c.Parent == nil {
			continue
		}
		id, ok := r.Int64(c.Column)
		if !ok {
			r[c.Parent.DataColumn] = nil
			continue
		}
		if label, ok := g.labels[i][id]; ok {
			r[c.Parent.DataColumn] = label
		}
	}
	return r
}

func merge(dst, src types.Record) types.Record {
	out := dst.Clone()
	for k, v := range src {
		out[k] = v
	}
	return out
}
