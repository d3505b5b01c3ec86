package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/phonebook/internal/store/storetest"
	"github.com/mesh-intelligence/phonebook/internal/testutil"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// openGrid builds and loads a grid, closing it when the test ends.
func openGrid(t *testing.T, dir types.Directory, hub *Hub, name string) *Grid {
	t.Helper()
	g, err := New(dir, name, hub, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(g.Close)
	require.NoError(t, g.Load(context.Background()))
	return g
}

// faultyTable fails selected operations and delegates the rest.
type faultyTable struct {
	types.Table
	getAllErr error
	deleteErr error
}

func (f *faultyTable) GetAll(ctx context.Context) ([]types.Record, error) {
	if f.getAllErr != nil {
		return nil, f.getAllErr
	}
	return f.Table.GetAll(ctx)
}

func (f *faultyTable) Delete(ctx context.Context, ids []int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Table.Delete(ctx, ids)
}

// faultyDirectory serves overridden tables ahead of the wrapped directory.
type faultyDirectory struct {
	types.Directory
	tables map[string]types.Table
}

func (d faultyDirectory) GetTable(name string) (types.Table, error) {
	if t, ok := d.tables[name]; ok {
		return t, nil
	}
	return d.Directory.GetTable(name)
}

func TestGrid_New(t *testing.T) {
	b := storetest.NewBackend(t)
	hub := NewHub(nil)

	_, err := New(b, "phones", hub, nil)
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	g, err := New(b, types.TableEntries, hub, nil)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, g.State())
	for _, parent := range types.ParentTableNames {
		assert.Equal(t, 1, hub.Len(parent), parent)
	}

	_, err = g.Create(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)

	g.Close()
	for _, parent := range types.ParentTableNames {
		assert.Zero(t, hub.Len(parent), parent)
	}
}

func TestGrid_LoadResolvesChoices(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.SeedParents(t, b)
	storetest.Insert(t, b, types.TableNames, "name", "Anna")

	g := openGrid(t, b, nil, types.TableEntries)
	assert.Equal(t, StateLoaded, g.State())
	assert.Zero(t, g.Len())

	col := g.Columns()[g.ColumnIndex("name_id")]
	assert.Equal(t, []Choice{{ID: 2, Label: "Anna"}, {ID: 1, Label: "Ivan"}}, col.Choices)
	assert.Nil(t, g.Columns()[g.ColumnIndex("building")].Choices)
}

func TestGrid_LoadFailureKeepsState(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.Insert(t, b, types.TableNames, "name", "Ivan", "Petr")

	names := &faultyTable{Table: storetest.Table(t, b, types.TableNames)}
	dir := faultyDirectory{Directory: b, tables: map[string]types.Table{types.TableNames: names}}
	g := openGrid(t, dir, nil, types.TableNames)
	require.Equal(t, 2, g.Len())

	names.getAllErr = errors.New("connection lost")
	err := g.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateLoaded, g.State())
	assert.Equal(t, 2, g.Len())
}

func TestGrid_CreateWithEmptyParents(t *testing.T) {
	b := storetest.NewBackend(t)
	g := openGrid(t, b, nil, types.TableEntries)

	_, err := g.Create(context.Background())
	require.ErrorIs(t, err, types.ErrMissingParent)
	assert.NotErrorIs(t, err, types.ErrReferential)
	assert.Equal(t, types.UserMessage(types.ErrMissingParent), types.UserMessage(err))
	assert.NotEqual(t, types.UserMessage(types.ErrUniqueness), types.UserMessage(err))
	assert.Zero(t, g.Len())

	rows, err := storetest.Table(t, b, types.TableEntries).GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGrid_CreateEntersEditMode(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.SeedParents(t, b)
	g := openGrid(t, b, nil, types.TableEntries)

	building := g.ColumnIndex("building")
	g.SetFocus(Cell{Col: building})

	row, err := g.Create(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())
	assert.Equal(t, int64(1), row["name_id"])
	assert.Equal(t, "Ivan", row["name"])
	assert.Equal(t, int64(79123456789), row["phone"])

	cell, ok := g.Editing()
	require.True(t, ok)
	assert.Equal(t, Cell{Row: 0, Col: building}, cell)
	assert.Equal(t, "Ivan", g.CellText(0, g.ColumnIndex("name_id")))
}

func TestGrid_JoinedEntry(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.SeedParents(t, b)
	_, err := storetest.Table(t, b, types.TableEntries).Create(context.Background(), []types.Record{{
		"name_id": int64(1), "surname_id": int64(1), "patronymic_id": int64(1), "street_id": int64(1),
		"building": "12", "apartment": int64(5), "phone": int64(79991234567),
	}})
	require.NoError(t, err)

	g := openGrid(t, b, nil, types.TableEntries)
	require.Equal(t, 1, g.Len())
	assert.Equal(t, int64(1), g.Row(0)["name_id"])
	assert.Equal(t, "Ivan", g.CellText(0, g.ColumnIndex("name_id")))
	assert.Equal(t, "Lenina", g.CellText(0, g.ColumnIndex("street_id")))
	assert.Equal(t, "+7 (999) 123-45 67", g.CellText(0, g.ColumnIndex("phone")))
}

func TestGrid_ParentUpdatePropagates(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.SeedParents(t, b)
	hub := NewHub(testutil.NewTestLogger(t))
	ctx := context.Background()

	names := openGrid(t, b, hub, types.TableNames)
	entries := openGrid(t, b, hub, types.TableEntries)
	_, err := entries.Create(ctx)
	require.NoError(t, err)

	nameCol := entries.ColumnIndex("name_id")
	require.Equal(t, "Ivan", entries.CellText(0, nameCol))

	require.NoError(t, names.Edit(ctx, Cell{Row: 0, Col: names.ColumnIndex("name")}, "Ivan2"))
	assert.Equal(t, "Ivan2", names.CellText(0, names.ColumnIndex("name")))
	assert.Equal(t, "Ivan2", entries.CellText(0, nameCol))
}

func TestGrid_ParentCreatePropagates(t *testing.T) {
	b := storetest.NewBackend(t)
	hub := NewHub(nil)
	ctx := context.Background()

	streets := openGrid(t, b, hub, types.TableStreets)
	entries := openGrid(t, b, hub, types.TableEntries)

	_, err := streets.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Choice{{ID: 1, Label: "Value"}}, entries.Columns()[entries.ColumnIndex("street_id")].Choices)

	// The placeholder value is unique, so a second create fails and resyncs.
	_, err = streets.Create(ctx)
	assert.ErrorIs(t, err, types.ErrUniqueness)
	assert.Equal(t, 1, streets.Len())
}

func TestGrid_ParentDeleteLeavesNullReference(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.SeedParents(t, b)
	hub := NewHub(nil)
	ctx := context.Background()

	names := openGrid(t, b, hub, types.TableNames)
	entries := openGrid(t, b, hub, types.TableEntries)
	_, err := entries.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, names.Delete(ctx, []int{0}))
	assert.Zero(t, names.Len())

	require.Equal(t, 1, entries.Len())
	assert.Nil(t, entries.Row(0)["name_id"])
	assert.Equal(t, "", entries.CellText(0, entries.ColumnIndex("name_id")))
	assert.Equal(t, "Petrov", entries.CellText(0, entries.ColumnIndex("surname_id")))
}

func TestGrid_Edit(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		input    any
		want     any
		wantText string
		wantErr  error
	}{
		{name: "integer text", column: "apartment", input: "42", want: int64(42), wantText: "42"},
		{name: "integer value", column: "apartment", input: 7, want: int64(7), wantText: "7"},
		{name: "phone keeps digits", column: "phone", input: "+7 (999) 000-11-22", want: int64(79990001122), wantText: "+7 (999) 000-11 22"},
		{name: "parent by label", column: "surname_id", input: "Sidorov", want: int64(2), wantText: "Sidorov"},
		{name: "parent by id", column: "surname_id", input: "2", want: int64(2), wantText: "Sidorov"},
		{name: "text is trimmed", column: "building", input: " 7/2 ", want: "7/2", wantText: "7/2"},
		{name: "non-numeric apartment", column: "apartment", input: "abc", wantErr: types.ErrInvalidData},
		{name: "unknown parent label", column: "name_id", input: "Nobody", wantErr: types.ErrInvalidData},
		{name: "primary key", column: "entry_id", input: "9", wantErr: types.ErrReadOnlyColumn},
		{name: "apartment out of range", column: "apartment", input: "99999999999", wantErr: types.ErrRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := storetest.NewBackend(t)
			storetest.SeedParents(t, b)
			storetest.Insert(t, b, types.TableSurnames, "surname", "Sidorov")
			ctx := context.Background()

			g := openGrid(t, b, nil, types.TableEntries)
			_, err := g.Create(ctx)
			require.NoError(t, err)
			col := g.ColumnIndex(tt.column)
			before := g.Row(0)

			err = g.Edit(ctx, Cell{Row: 0, Col: col}, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before[tt.column], g.Row(0)[tt.column])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Row(0)[tt.column])
			assert.Equal(t, tt.wantText, g.CellText(0, col))

			rows, err := storetest.Table(t, b, types.TableEntries).GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows[0][tt.column])
		})
	}
}

func TestGrid_EditFailureResyncs(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.Insert(t, b, types.TableNames, "name", "Ivan", "Petr")
	ctx := context.Background()

	g := openGrid(t, b, nil, types.TableNames)
	col := g.ColumnIndex("name")

	err := g.Edit(ctx, Cell{Row: 0, Col: col}, "Petr")
	require.ErrorIs(t, err, types.ErrUniqueness)
	assert.NotContains(t, types.UserMessage(err), "UNIQUE")
	assert.Equal(t, "Ivan", g.CellText(0, col))
	assert.Equal(t, StateLoaded, g.State())

	err = g.Edit(ctx, Cell{Row: 5, Col: col}, "Anna")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGrid_Delete(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.Insert(t, b, types.TableNames, "name", "Ivan", "Petr", "Anna")
	ctx := context.Background()

	g := openGrid(t, b, nil, types.TableNames)

	// Duplicate and out-of-range indexes are ignored.
	require.NoError(t, g.Delete(ctx, []int{0, 2, 2, 10}))
	require.Equal(t, 1, g.Len())
	assert.Equal(t, "Petr", g.Row(0)["name"])
	require.NoError(t, g.Delete(ctx, nil))

	require.NoError(t, g.Resync(ctx))
	assert.Equal(t, 1, g.Len())
}

func TestGrid_DeleteFailureResyncs(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.Insert(t, b, types.TableNames, "name", "Ivan", "Petr")

	names := &faultyTable{Table: storetest.Table(t, b, types.TableNames), deleteErr: errors.New("disk I/O error")}
	dir := faultyDirectory{Directory: b, tables: map[string]types.Table{types.TableNames: names}}
	g := openGrid(t, dir, nil, types.TableNames)

	err := g.Delete(context.Background(), []int{0})
	require.Error(t, err)
	assert.Equal(t, 2, g.Len(), "grid shows the store state after the failed delete")
}

func TestGrid_Duplicate(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.SeedParents(t, b)
	ctx := context.Background()

	entries := openGrid(t, b, nil, types.TableEntries)
	_, err := entries.Create(ctx)
	require.NoError(t, err)

	copies, err := entries.Duplicate(ctx, []int{0, 0})
	require.NoError(t, err)
	require.Len(t, copies, 1)
	require.Equal(t, 2, entries.Len())
	assert.NotEqual(t, entries.Row(0)["entry_id"], entries.Row(1)["entry_id"])
	assert.Equal(t, "Ivan", entries.CellText(1, entries.ColumnIndex("name_id")))

	names := openGrid(t, b, nil, types.TableNames)
	_, err = names.Duplicate(ctx, []int{0})
	assert.ErrorIs(t, err, types.ErrActionDisabled)
	assert.NotContains(t, names.Actions(), types.ActionDuplicate)
	assert.Contains(t, entries.Actions(), types.ActionDuplicate)
}

func TestGrid_Filter(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.SeedParents(t, b)
	ctx := context.Background()

	g := openGrid(t, b, nil, types.TableEntries)
	_, err := g.Create(ctx)
	require.NoError(t, err)
	_, err = g.Duplicate(ctx, []int{0})
	require.NoError(t, err)
	require.NoError(t, g.Edit(ctx, Cell{Row: 1, Col: g.ColumnIndex("building")}, "15a"))

	tests := []struct {
		filter string
		want   []int
	}{
		{filter: "", want: []int{0, 1}},
		{filter: "ivan", want: []int{0, 1}},
		{filter: "(912) 345", want: []int{0, 1}},
		{filter: "15A", want: []int{1}},
		{filter: "Moscow", want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			g.SetFilter(tt.filter)
			assert.Equal(t, tt.want, g.Visible())
		})
	}
	assert.Equal(t, 2, g.Len(), "filtering never drops loaded rows")
}

func TestGrid_ColumnIndex(t *testing.T) {
	b := storetest.NewBackend(t)
	g := openGrid(t, b, nil, types.TableEntries)

	assert.Equal(t, 0, g.ColumnIndex("entry_id"))
	assert.Equal(t, 7, g.ColumnIndex("phone"))
	assert.Equal(t, -1, g.ColumnIndex("name"))
}

func TestActionLabel(t *testing.T) {
	tests := []struct {
		action types.Action
		n      int
		want   string
	}{
		{types.ActionDelete, 1, "Delete row"},
		{types.ActionDelete, 3, "Delete rows"},
		{types.ActionDuplicate, 0, "Duplicate row"},
		{types.ActionDuplicate, 2, "Duplicate rows"},
		{types.ActionCreate, 1, "Create row"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ActionLabel(tt.action, tt.n))
	}
}

func TestGrid_Insert(t *testing.T) {
	b := storetest.NewBackend(t)
	storetest.SeedParents(t, b)
	storetest.Insert(t, b, types.TableStreets, "street", "Mira")
	ctx := context.Background()

	entries := openGrid(t, b, nil, types.TableEntries)
	row, err := entries.Insert(ctx, map[string]any{
		"street_id": "Mira",
		"building":  "4/1",
		"apartment": "12",
		"phone":     "8 (912) 000-00-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), row["street_id"])
	assert.Equal(t, "Mira", row["street"])
	assert.Equal(t, "4/1", row["building"])
	assert.Equal(t, int64(12), row["apartment"])
	assert.Equal(t, int64(89120000001), row["phone"])
	assert.Equal(t, Cell{Row: 0, Col: 0}, entries.Focus())
	_, editing := entries.Editing()
	assert.False(t, editing)

	_, err = entries.Insert(ctx, map[string]any{"nickname": "x"})
	assert.ErrorIs(t, err, types.ErrUnknownColumn)
	_, err = entries.Insert(ctx, map[string]any{"entry_id": "5"})
	assert.ErrorIs(t, err, types.ErrReadOnlyColumn)

	names := openGrid(t, b, nil, types.TableNames)
	created, err := names.Insert(ctx, map[string]any{"name": "Olga"})
	require.NoError(t, err)
	assert.Equal(t, "Olga", created["name"])
	assert.Equal(t, 2, names.Len())
}
