package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// entryDefaults are the scalar values of a new entry.
var entryDefaults = types.Record{
	"building":  "",
	"apartment": int64(0),
	"phone":     int64(79123456789),
}

var _ types.Table = (*entryTable)(nil)

// entryTable is the child table: reads are joined with every parent table,
// defaults come from the parents, and rows can be duplicated.
type entryTable struct {
	*genericTable
}

// GetAll left-joins each parent table so a row carries both the parent ids
// and their display values. A missing parent yields nil for both.
func (t *entryTable) GetAll(ctx context.Context) ([]types.Record, error) {
	return t.query(ctx, opGetAll, t.joinQuery())
}

func (t *entryTable) joinQuery() string {
	var selects, joins, labels []string
	alias := map[string]string{}
	for i, col := range t.def.Parents() {
		a := fmt.Sprintf("p%d", i)
		alias[col.Column] = a
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON e.%s = %s.%s",
			col.Parent.Table, a, col.Column, a, col.Parent.IDColumn))
		labels = append(labels, fmt.Sprintf("%s.%s AS %s", a, col.Parent.DataColumn, col.Parent.DataColumn))
	}
	for _, c := range t.def.Schema.Columns {
		if a, ok := alias[c]; ok {
			col, _ := t.def.Column(c)
			selects = append(selects, fmt.Sprintf("%s.%s AS %s", a, col.Parent.IDColumn, c))
			continue
		}
		selects = append(selects, "e."+c)
	}
	selects = append(selects, labels...)

	return fmt.Sprintf("SELECT %s FROM %s e %s ORDER BY e.%s",
		strings.Join(selects, ", "), t.name(), strings.Join(joins, " "), t.pk())
}

// DefaultRecord picks the lowest id of every parent table; a parent with no
// rows yields nil.
func (t *entryTable) DefaultRecord(ctx context.Context) (types.Record, error) {
	var subs []string
	for _, col := range t.def.Parents() {
		subs = append(subs, fmt.Sprintf("(SELECT %s FROM %s ORDER BY %s LIMIT 1) AS %s",
			col.Parent.IDColumn, col.Parent.Table, col.Parent.IDColumn, col.Column))
	}
	rows, err := t.query(ctx, opDefault, "SELECT "+strings.Join(subs, ", "))
	if err != nil {
		return nil, err
	}

	r := entryDefaults.Clone()
	if len(rows) == 1 {
		for k, v := range rows[0] {
			r[k] = v
		}
	}
	return r, nil
}

// Duplicate copies the rows with the given ids under new primary keys and
// returns the copies in insert order.
func (t *entryTable) Duplicate(ctx context.Context, ids []int64) ([]types.Record, error) {
	if len(ids) == 0 {
		return []types.Record{}, nil
	}

	d := t.backend.dialect
	data := strings.Join(t.def.Schema.DataColumns(), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s WHERE %s IN (%s) ORDER BY %s RETURNING %s",
		t.name(), data, data, t.name(), t.pk(), placeholders(d, 1, len(ids)), t.pk(), t.columnList())

	var copies []types.Record
	err := t.backend.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, int64Args(ids)...)
		if err != nil {
			return err
		}
		copies, err = scanRecords(rows)
		return err
	})
	if err != nil {
		return nil, t.backend.storeError(opDuplicate, t.name(), err)
	}

	t.backend.logger.Info("duplicated rows", slog.String("table", t.name()), slog.Int("count", len(copies)))
	return copies, nil
}
