// Package grid implements the headless editable grid that binds one
// directory table to its store. A Grid loads rows, resolves parent columns
// into choice lists, commits single-cell edits, runs batch delete and
// duplicate, and keeps dependent grids in sync through a Hub.
//
// A Grid is not safe for concurrent use; front-ends call it from one
// goroutine.
package grid

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// State is the load state of a grid.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// ErrNotLoaded is returned by mutations before the first successful Load.
var ErrNotLoaded = errors.New("grid is not loaded")

// Choice is one option of a parent column.
type Choice struct {
	ID    int64
	Label string
}

// Column is a column descriptor with its resolved choice list. Choices is
// nil for columns without a parent reference.
type Column struct {
	types.ColumnDescriptor
	Choices []Choice
}

// Cell addresses one cell by loaded row index and column index.
type Cell struct {
	Row int
	Col int
}

// lastEdit is the previous-value slot of the most recent edit.
type lastEdit struct {
	rowID    int64
	column   string
	previous any
}

// Grid is the controller for one table.
type Grid struct {
	dir    types.Directory
	table  types.Table
	def    types.TableDef
	hub    *Hub
	logger *slog.Logger
	subs   []Subscription

	state   State
	rows    []types.Record
	columns []Column
	labels  []map[int64]string
	filter  string
	focus   Cell
	editing *Cell
	last    *lastEdit
}

// New builds a grid for the named table and subscribes it to every parent
// table it references. The grid starts empty; call Load to fill it. A nil hub
// disables propagation and a nil logger discards output.
func New(dir types.Directory, name string, hub *Hub, logger *slog.Logger) (*Grid, error) {
	table, err := dir.GetTable(name)
	if err != nil {
		return nil, fmt.Errorf("opening grid %s: %w", name, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	def := table.Def()
	g := &Grid{
		dir:    dir,
		table:  table,
		def:    def,
		hub:    hub,
		logger: logger.With(slog.String("grid", name)),
	}
	g.columns = make([]Column, len(def.Columns))
	for i, c := range def.Columns {
		g.columns[i] = Column{ColumnDescriptor: c}
	}

	if hub != nil {
		seen := map[string]bool{}
		for _, c := range def.Parents() {
			if seen[c.Parent.Table] {
				continue
			}
			seen[c.Parent.Table] = true
			g.subs = append(g.subs, hub.Subscribe(c.Parent.Table, g.parentChanged))
		}
	}
	return g, nil
}

// Close unsubscribes the grid from its hub.
func (g *Grid) Close() {
	for _, s := range g.subs {
		g.hub.Unsubscribe(s)
	}
	g.subs = nil
}

// Name returns the table name.
func (g *Grid) Name() string { return g.def.Schema.Name }

// Def returns the table definition.
func (g *Grid) Def() types.TableDef { return g.def }

// State returns the load state.
func (g *Grid) State() State { return g.state }

// Columns returns the columns in display order.
func (g *Grid) Columns() []Column { return slices.Clone(g.columns) }

// ColumnIndex returns the display index of a db column, or -1.
func (g *Grid) ColumnIndex(column string) int {
	return slices.IndexFunc(g.columns, func(c Column) bool { return c.Column == column })
}

// Len returns the number of loaded rows.
func (g *Grid) Len() int { return len(g.rows) }

// Row returns a copy of the loaded row at index i.
func (g *Grid) Row(i int) types.Record {
	if i < 0 || i >= len(g.rows) {
		return nil
	}
	return g.rows[i].Clone()
}

// Rows returns copies of every loaded row.
func (g *Grid) Rows() []types.Record {
	out := make([]types.Record, len(g.rows))
	for i, r := range g.rows {
		out[i] = r.Clone()
	}
	return out
}

// RowID returns the primary key of the row at index i.
func (g *Grid) RowID(i int) (int64, bool) {
	if i < 0 || i >= len(g.rows) {
		return 0, false
	}
	return g.rows[i].Int64(g.def.Schema.PrimaryKey)
}

// Find returns the index of the row with the given primary key, or -1.
func (g *Grid) Find(id int64) int {
	pk := g.def.Schema.PrimaryKey
	return slices.IndexFunc(g.rows, func(r types.Record) bool {
		v, ok := r.Int64(pk)
		return ok && v == id
	})
}

// Focus returns the focused cell.
func (g *Grid) Focus() Cell { return g.focus }

// SetFocus moves focus, clamped to the loaded rows and columns.
func (g *Grid) SetFocus(c Cell) {
	g.focus = Cell{
		Row: max(0, min(c.Row, len(g.rows)-1)),
		Col: max(0, min(c.Col, len(g.columns)-1)),
	}
}

// Editing returns the cell in edit mode, if any.
func (g *Grid) Editing() (Cell, bool) {
	if g.editing == nil {
		return Cell{}, false
	}
	return *g.editing, true
}

// BeginEdit puts a cell into edit mode.
func (g *Grid) BeginEdit(c Cell) error {
	if err := g.checkCell(c); err != nil {
		return err
	}
	if !g.columns[c.Col].Editable() {
		return fmt.Errorf("%w: %s", types.ErrReadOnlyColumn, g.columns[c.Col].Column)
	}
	g.focus = c
	g.editing = &c
	return nil
}

// CancelEdit leaves edit mode without changes.
func (g *Grid) CancelEdit() { g.editing = nil }

// Actions returns the mutations enabled for the table.
func (g *Grid) Actions() []types.Action {
	var out []types.Action
	for _, a := range []types.Action{types.ActionCreate, types.ActionUpdate, types.ActionDelete, types.ActionDuplicate} {
		if g.def.Allows(a) {
			out = append(out, a)
		}
	}
	return out
}

// Load reads every row and rebuilds the grid, resolving each parent column's
// choice list sorted by label. Any edit in progress is discarded. On failure
// the previous contents are kept.
func (g *Grid) Load(ctx context.Context) error {
	prev := g.state
	g.state = StateLoading

	rows, err := g.table.GetAll(ctx)
	if err != nil {
		g.state = prev
		g.logger.Error("load failed", slog.String("error", err.Error()))
		return fmt.Errorf("loading %s: %w", g.Name(), err)
	}

	columns := make([]Column, len(g.def.Columns))
	labels := make([]map[int64]string, len(g.def.Columns))
	for i, c := range g.def.Columns {
		columns[i] = Column{ColumnDescriptor: c}
		if c.Parent == nil {
			continue
		}
		choices, err := g.loadChoices(ctx, c.Parent)
		if err != nil {
			g.state = prev
			g.logger.Error("loading choices failed",
				slog.String("parent", c.Parent.Table),
				slog.String("error", err.Error()))
			return fmt.Errorf("loading %s choices for %s: %w", c.Parent.Table, g.Name(), err)
		}
		columns[i].Choices = choices
		labels[i] = make(map[int64]string, len(choices))
		for _, ch := range choices {
			labels[i][ch.ID] = ch.Label
		}
	}

	g.rows = rows
	g.columns = columns
	g.labels = labels
	g.editing = nil
	g.last = nil
	g.state = StateLoaded
	g.SetFocus(g.focus)

	g.logger.Debug("loaded", slog.Int("rows", len(rows)))
	return nil
}

func (g *Grid) loadChoices(ctx context.Context, ref *types.ParentReference) ([]Choice, error) {
	parent, err := g.dir.GetTable(ref.Table)
	if err != nil {
		return nil, err
	}
	rows, err := parent.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	choices := make([]Choice, 0, len(rows))
	for _, r := range rows {
		id, ok := r.Int64(ref.IDColumn)
		if !ok {
			continue
		}
		choices = append(choices, Choice{ID: id, Label: r.Text(ref.DataColumn)})
	}
	slices.SortFunc(choices, func(a, b Choice) int {
		if c := strings.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return choices, nil
}

// Resync reloads the grid from the store, discarding optimistic state.
func (g *Grid) Resync(ctx context.Context) error {
	g.logger.Info("resync")
	return g.Load(ctx)
}

// parentChanged reloads the grid after a parent table mutation.
func (g *Grid) parentChanged(ctx context.Context, n types.Notification) {
	g.logger.Debug("parent changed",
		slog.String("parent", n.SourceTable),
		slog.String("action", string(n.Action)),
		slog.Int64("row_id", n.RowID))
	if g.state == StateEmpty {
		return
	}
	if err := g.Load(ctx); err != nil {
		g.logger.Warn("reload after parent change failed", slog.String("error", err.Error()))
	}
}

func (g *Grid) checkLoaded() error {
	if g.state != StateLoaded {
		return ErrNotLoaded
	}
	return nil
}

func (g *Grid) checkCell(c Cell) error {
	if err := g.checkLoaded(); err != nil {
		return err
	}
	if c.Row < 0 || c.Row >= len(g.rows) {
		return fmt.Errorf("%w: row %d", types.ErrNotFound, c.Row)
	}
	if c.Col < 0 || c.Col >= len(g.columns) {
		return fmt.Errorf("%w: column %d", types.ErrUnknownColumn, c.Col)
	}
	return nil
}

func (g *Grid) checkAction(a types.Action) error {
	if !g.def.Allows(a) {
		return fmt.Errorf("%s %s: %w", a, g.Name(), types.ErrActionDisabled)
	}
	return nil
}

// fail logs a failed mutation, resyncs, and returns err.
func (g *Grid) fail(ctx context.Context, op types.Action, err error) error {
	g.logger.Error("mutation failed",
		slog.String("action", string(op)),
		slog.String("error", err.Error()))
	if rerr := g.Resync(ctx); rerr != nil {
		g.logger.Error("resync failed", slog.String("error", rerr.Error()))
	}
	return err
}

func (g *Grid) publish(ctx context.Context, n types.Notification) {
	if g.hub == nil {
		return
	}
	n.SourceTable = g.Name()
	g.hub.Publish(ctx, n)
}
