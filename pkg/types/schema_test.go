package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryCatalog(t *testing.T) {
	c := DirectoryCatalog()

	assert.Equal(t, []string{TableEntries, TableNames, TableSurnames, TablePatronymics, TableStreets}, c.Names())

	entries, err := c.Def(TableEntries)
	require.NoError(t, err)
	assert.Equal(t, KindEntry, entries.Kind)
	assert.True(t, entries.Allows(ActionDuplicate))
	assert.Len(t, entries.Parents(), 4)

	names, err := c.Def(TableNames)
	require.NoError(t, err)
	assert.Equal(t, KindGeneric, names.Kind)
	assert.False(t, names.Allows(ActionDuplicate))
	assert.True(t, names.Allows(ActionCreate))

	_, err = c.Def("phones")
	assert.ErrorIs(t, err, ErrTableNotFound)

	assert.Equal(t, []string{TableEntries}, c.Dependents(TableStreets))
	assert.Empty(t, c.Dependents(TableEntries))
}

func TestCatalogColumnsAreCopies(t *testing.T) {
	c := DirectoryCatalog()

	cols, err := c.Columns(TableNames)
	require.NoError(t, err)
	cols[1].Title = "changed"

	again, err := c.Columns(TableNames)
	require.NoError(t, err)
	assert.Equal(t, "Name", again[1].Title)
}

func TestNewCatalogValidation(t *testing.T) {
	lookup := TableDef{
		Schema:  TableSchema{Name: "colors", PrimaryKey: "color_id", Columns: []string{"color_id", "color"}},
		Columns: []ColumnDescriptor{{Title: "ID", Column: "color_id", ReadOnly: true}, {Title: "Color", Column: "color"}},
	}

	tests := []struct {
		name string
		defs []TableDef
	}{
		{
			name: "empty columns",
			defs: []TableDef{{Schema: TableSchema{Name: "t", PrimaryKey: "id"}}},
		},
		{
			name: "primary key missing from columns",
			defs: []TableDef{{Schema: TableSchema{Name: "t", PrimaryKey: "id", Columns: []string{"a"}}}},
		},
		{
			name: "editable primary key",
			defs: []TableDef{{
				Schema:  TableSchema{Name: "t", PrimaryKey: "id", Columns: []string{"id"}},
				Columns: []ColumnDescriptor{{Title: "ID", Column: "id"}},
			}},
		},
		{
			name: "descriptor for unknown column",
			defs: []TableDef{{
				Schema:  TableSchema{Name: "t", PrimaryKey: "id", Columns: []string{"id"}},
				Columns: []ColumnDescriptor{{Title: "X", Column: "x"}},
			}},
		},
		{
			name: "parent table not in catalog",
			defs: []TableDef{{
				Schema:  TableSchema{Name: "cars", PrimaryKey: "car_id", Columns: []string{"car_id", "color_id"}},
				Columns: []ColumnDescriptor{{Title: "Color", Column: "color_id", Parent: &ParentReference{Table: "colors", IDColumn: "color_id", DataColumn: "color"}}},
			}},
		},
		{
			name: "parent data column missing",
			defs: []TableDef{lookup, {
				Schema:  TableSchema{Name: "cars", PrimaryKey: "car_id", Columns: []string{"car_id", "color_id"}},
				Columns: []ColumnDescriptor{{Title: "Color", Column: "color_id", Parent: &ParentReference{Table: "colors", IDColumn: "color_id", DataColumn: "hue"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.defs...)
			assert.ErrorIs(t, err, ErrSchemaInvalid)
		})
	}

	t.Run("duplicate table", func(t *testing.T) {
		_, err := NewCatalog(lookup, lookup)
		assert.ErrorIs(t, err, ErrDuplicateDef)
	})

	t.Run("MustCatalog panics on invalid definitions", func(t *testing.T) {
		assert.Panics(t, func() {
			MustCatalog(TableDef{Schema: TableSchema{Name: "t"}})
		})
	})
}

func TestTableSchemaDataColumns(t *testing.T) {
	s := TableSchema{Name: "names", PrimaryKey: "name_id", Columns: []string{"name_id", "name"}}
	assert.Equal(t, []string{"name"}, s.DataColumns())
	assert.True(t, s.HasColumn("name"))
	assert.False(t, s.HasColumn("surname"))
}
