package types

import (
	"errors"
	"fmt"
	"slices"
)

// TableSchema identifies a relation: its name, primary key, and ordered
// column names. Columns always includes PrimaryKey.
type TableSchema struct {
	Name       string
	PrimaryKey string
	Columns    []string
}

// HasColumn reports whether column belongs to the schema.
func (s TableSchema) HasColumn(column string) bool {
	return slices.Contains(s.Columns, column)
}

// DataColumns returns the columns without the primary key, in schema order.
func (s TableSchema) DataColumns() []string {
	cols := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c != s.PrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// ParentReference declares that a column holds the id of a row in another
// table, and which column of that table is shown to the user.
type ParentReference struct {
	Table      string
	IDColumn   string
	DataColumn string
}

// Display hints for rendering a column's value.
const (
	DisplayPlain = ""
	DisplayPhone = "phone"
)

// ColumnDescriptor describes one column for editing and display.
// Columns are editable unless ReadOnly is set.
type ColumnDescriptor struct {
	Title    string
	Column   string
	ReadOnly bool
	Parent   *ParentReference
	Display  string
}

// Editable reports whether users may change the column.
func (c ColumnDescriptor) Editable() bool {
	return !c.ReadOnly
}

// TableKind selects the store behavior for a table.
type TableKind int

const (
	// KindGeneric tables use the plain select/insert/update/delete statements.
	KindGeneric TableKind = iota
	// KindEntry is the child table: joined reads, defaults from parents, duplicate.
	KindEntry
)

// Action names a grid mutation.
type Action string

// Grid actions. ActionCreate, ActionUpdate and ActionDelete double as
// notification kinds.
const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionDuplicate Action = "duplicate"
)

// TableDef bundles a table's schema with its column descriptors.
type TableDef struct {
	Schema   TableSchema
	Columns  []ColumnDescriptor
	Kind     TableKind
	Disabled []Action
}

// Allows reports whether the action is enabled for the table.
func (d TableDef) Allows(a Action) bool {
	return !slices.Contains(d.Disabled, a)
}

// Column returns the descriptor for the named db column.
func (d TableDef) Column(column string) (ColumnDescriptor, bool) {
	for _, c := range d.Columns {
		if c.Column == column {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// Parents returns the columns carrying a ParentReference, in display order.
func (d TableDef) Parents() []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, c := range d.Columns {
		if c.Parent != nil {
			out = append(out, c)
		}
	}
	return out
}

// Catalog errors.
var (
	ErrSchemaInvalid = errors.New("invalid table schema")
	ErrDuplicateDef  = errors.New("table defined twice")
)

// Catalog maps table names to their definitions. It is immutable once built.
type Catalog struct {
	order []string
	defs  map[string]TableDef
}

// NewCatalog validates the definitions and builds a Catalog. Definitions keep
// their given order for enumeration.
func NewCatalog(defs ...TableDef) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]TableDef, len(defs))}
	for _, d := range defs {
		if _, ok := c.defs[d.Schema.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDef, d.Schema.Name)
		}
		if err := validateSchema(d); err != nil {
			return nil, err
		}
		c.defs[d.Schema.Name] = d
		c.order = append(c.order, d.Schema.Name)
	}
	for _, d := range defs {
		for _, col := range d.Parents() {
			parent, ok := c.defs[col.Parent.Table]
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s references unknown table %s",
					ErrSchemaInvalid, d.Schema.Name, col.Column, col.Parent.Table)
			}
			if !parent.Schema.HasColumn(col.Parent.IDColumn) || !parent.Schema.HasColumn(col.Parent.DataColumn) {
				return nil, fmt.Errorf("%w: %s.%s references missing columns in %s",
					ErrSchemaInvalid, d.Schema.Name, col.Column, col.Parent.Table)
			}
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog for static definitions; it panics on error.
func MustCatalog(defs ...TableDef) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

func validateSchema(d TableDef) error {
	s := d.Schema
	if s.Name == "" || len(s.Columns) == 0 {
		return fmt.Errorf("%w: table name and columns are required", ErrSchemaInvalid)
	}
	if !s.HasColumn(s.PrimaryKey) {
		return fmt.Errorf("%w: %s primary key %q not in columns", ErrSchemaInvalid, s.Name, s.PrimaryKey)
	}
	for _, col := range d.Columns {
		if !s.HasColumn(col.Column) {
			return fmt.Errorf("%w: %s has no column %q", ErrSchemaInvalid, s.Name, col.Column)
		}
		if col.Column == s.PrimaryKey && col.Editable() {
			return fmt.Errorf("%w: %s primary key must be read-only", ErrSchemaInvalid, s.Name)
		}
	}
	return nil
}

// Names returns the table names in definition order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.order)
}

// Def returns the definition for a table.
// Returns ErrTableNotFound for unknown names.
func (c *Catalog) Def(name string) (TableDef, error) {
	d, ok := c.defs[name]
	if !ok {
		return TableDef{}, ErrTableNotFound
	}
	return d, nil
}

// Columns returns the column descriptors of a table in display order.
func (c *Catalog) Columns(name string) ([]ColumnDescriptor, error) {
	d, err := c.Def(name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(d.Columns), nil
}

// Dependents returns the tables that reference parent, in definition order.
func (c *Catalog) Dependents(parent string) []string {
	var out []string
	for _, name := range c.order {
		for _, col := range c.defs[name].Parents() {
			if col.Parent.Table == parent {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
