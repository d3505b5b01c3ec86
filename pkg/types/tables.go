package types

// Directory table names.
const (
	TableEntries     = "entries"
	TableNames       = "names"
	TableSurnames    = "surnames"
	TablePatronymics = "patronymics"
	TableStreets     = "streets"
)

// ParentTableNames lists the lookup tables referenced by entries.
var ParentTableNames = []string{
	TableNames,
	TableSurnames,
	TablePatronymics,
	TableStreets,
}

// parentDef builds the definition of a two-column lookup table.
func parentDef(table, idColumn, dataColumn, title string) TableDef {
	return TableDef{
		Schema: TableSchema{
			Name:       table,
			PrimaryKey: idColumn,
			Columns:    []string{idColumn, dataColumn},
		},
		Columns: []ColumnDescriptor{
			{Title: "ID", Column: idColumn, ReadOnly: true},
			{Title: title, Column: dataColumn},
		},
		Kind:     KindGeneric,
		Disabled: []Action{ActionDuplicate},
	}
}

func parentRef(table, idColumn, dataColumn string) *ParentReference {
	return &ParentReference{Table: table, IDColumn: idColumn, DataColumn: dataColumn}
}

// DirectoryCatalog returns the catalog of the phone directory: entries first,
// then the four lookup tables.
func DirectoryCatalog() *Catalog {
	entries := TableDef{
		Schema: TableSchema{
			Name:       TableEntries,
			PrimaryKey: "entry_id",
			Columns: []string{
				"entry_id", "name_id", "surname_id", "patronymic_id",
				"street_id", "building", "apartment", "phone",
			},
		},
		Columns: []ColumnDescriptor{
			{Title: "ID", Column: "entry_id", ReadOnly: true},
			{Title: "Name", Column: "name_id", Parent: parentRef(TableNames, "name_id", "name")},
			{Title: "Surname", Column: "surname_id", Parent: parentRef(TableSurnames, "surname_id", "surname")},
			{Title: "Patronymic", Column: "patronymic_id", Parent: parentRef(TablePatronymics, "patronymic_id", "patronymic")},
			{Title: "Street", Column: "street_id", Parent: parentRef(TableStreets, "street_id", "street")},
			{Title: "Building", Column: "building"},
			{Title: "Apartment", Column: "apartment"},
			{Title: "Phone", Column: "phone", Display: DisplayPhone},
		},
		Kind: KindEntry,
	}

	return MustCatalog(
		entries,
		parentDef(TableNames, "name_id", "name", "Name"),
		parentDef(TableSurnames, "surname_id", "surname", "Surname"),
		parentDef(TablePatronymics, "patronymic_id", "patronymic", "Patronymic"),
		parentDef(TableStreets, "street_id", "street", "Street"),
	)
}
