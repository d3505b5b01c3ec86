package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// parentIDs holds one id per lookup table.
type parentIDs struct {
	name, surname, patronymic, street int64
}

func createParent(t *testing.T, b *Backend, table, column, value string) int64 {
	t.Helper()
	tbl := getTable(t, b, table)
	created, err := tbl.Create(context.Background(), []types.Record{{column: value}})
	require.NoError(t, err)
	id, ok := created[0].Int64(tbl.Def().Schema.PrimaryKey)
	require.True(t, ok)
	return id
}

func seedParents(t *testing.T, b *Backend) parentIDs {
	t.Helper()
	return parentIDs{
		name:       createParent(t, b, types.TableNames, "name", "Ivan"),
		surname:    createParent(t, b, types.TableSurnames, "surname", "Petrov"),
		patronymic: createParent(t, b, types.TablePatronymics, "patronymic", "Sergeevich"),
		street:     createParent(t, b, types.TableStreets, "street", "Lenina"),
	}
}

func entryRecord(p parentIDs, building string, apartment, phone int64) types.Record {
	return types.Record{
		"name_id":       p.name,
		"surname_id":    p.surname,
		"patronymic_id": p.patronymic,
		"street_id":     p.street,
		"building":      building,
		"apartment":     apartment,
		"phone":         phone,
	}
}

// seedEntry creates one row in every table and returns the entry.
func seedEntry(t *testing.T, b *Backend) types.Record {
	t.Helper()
	p := seedParents(t, b)
	created, err := getTable(t, b, types.TableEntries).Create(context.Background(),
		[]types.Record{entryRecord(p, "12", 5, 79991234567)})
	require.NoError(t, err)
	return created[0]
}

func TestEntryTable_RoundTrip(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := seedParents(t, b)
	entries := getTable(t, b, types.TableEntries)

	in := []types.Record{
		entryRecord(p, "12", 5, 79991234567),
		entryRecord(p, "7/2", 140, 79990000000),
	}
	created, err := entries.Create(ctx, in)
	require.NoError(t, err)
	require.Len(t, created, 2)

	rows, err := entries.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	seen := map[int64]bool{}
	for i, row := range rows {
		for k, v := range in[i] {
			assert.True(t, types.EqualValues(v, row[k]), "column %s: want %v, got %v", k, v, row[k])
		}
		id, ok := row.Int64("entry_id")
		require.True(t, ok)
		assert.False(t, seen[id], "primary keys must be fresh")
		seen[id] = true
	}
}

func TestEntryTable_JoinedRead(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	seedEntry(t, b)

	rows, err := getTable(t, b, types.TableEntries).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(1), row["name_id"])
	assert.Equal(t, "Ivan", row["name"])
	assert.Equal(t, "Petrov", row["surname"])
	assert.Equal(t, "Sergeevich", row["patronymic"])
	assert.Equal(t, "Lenina", row["street"])
	assert.Equal(t, "12", row["building"])
	assert.Equal(t, int64(5), row["apartment"])
	assert.Equal(t, int64(79991234567), row["phone"])
}

func TestEntryTable_DeletedParentReadsAsNull(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	entry := seedEntry(t, b)
	nameID, _ := entry.Int64("name_id")

	require.NoError(t, getTable(t, b, types.TableNames).Delete(ctx, []int64{nameID}))

	rows, err := getTable(t, b, types.TableEntries).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["name_id"])
	assert.Nil(t, rows[0]["name"])
	assert.Equal(t, "Petrov", rows[0]["surname"])
}

func TestEntryTable_ConstraintMapping(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r types.Record)
		wantErr error
	}{
		{
			name:    "unknown parent id",
			mutate:  func(r types.Record) { r["street_id"] = int64(999) },
			wantErr: types.ErrReferential,
		},
		{
			name:    "null building",
			mutate:  func(r types.Record) { r["building"] = nil },
			wantErr: types.ErrRequiredField,
		},
		{
			name:    "apartment beyond integer range",
			mutate:  func(r types.Record) { r["apartment"] = int64(1) << 40 },
			wantErr: types.ErrRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			r := entryRecord(seedParents(t, b), "1", 1, 79990000000)
			tt.mutate(r)

			_, err := getTable(t, b, types.TableEntries).Create(context.Background(), []types.Record{r})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEntryTable_DefaultRecord(t *testing.T) {
	t.Run("empty parents yield nulls", func(t *testing.T) {
		b := setupBackend(t)

		r, err := getTable(t, b, types.TableEntries).DefaultRecord(context.Background())
		require.NoError(t, err)
		assert.Nil(t, r["name_id"])
		assert.Nil(t, r["street_id"])
		assert.Equal(t, "", r["building"])
		assert.Equal(t, int64(0), r["apartment"])
		assert.Equal(t, int64(79123456789), r["phone"])
	})

	t.Run("lowest parent ids are chosen", func(t *testing.T) {
		b := setupBackend(t)
		p := seedParents(t, b)
		createParent(t, b, types.TableNames, "name", "Anna")

		r, err := getTable(t, b, types.TableEntries).DefaultRecord(context.Background())
		require.NoError(t, err)
		assert.Equal(t, p.name, r["name_id"])
		assert.Equal(t, p.surname, r["surname_id"])
		assert.Equal(t, p.patronymic, r["patronymic_id"])
		assert.Equal(t, p.street, r["street_id"])
	})

	t.Run("defaults are not shared between calls", func(t *testing.T) {
		b := setupBackend(t)
		entries := getTable(t, b, types.TableEntries)

		r, err := entries.DefaultRecord(context.Background())
		require.NoError(t, err)
		r["building"] = "changed"

		again, err := entries.DefaultRecord(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "", again["building"])
	})
}

func TestEntryTable_Duplicate(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := seedParents(t, b)
	entries := getTable(t, b, types.TableEntries)

	originals, err := entries.Create(ctx, []types.Record{
		entryRecord(p, "1", 10, 79990000001),
		entryRecord(p, "2", 20, 79990000002),
		entryRecord(p, "3", 30, 79990000003),
	})
	require.NoError(t, err)

	first, _ := originals[0].Int64("entry_id")
	third, _ := originals[2].Int64("entry_id")

	copies, err := entries.Duplicate(ctx, []int64{third, first})
	require.NoError(t, err)
	require.Len(t, copies, 2)

	sources := map[string]types.Record{"1": originals[0], "3": originals[2]}
	for _, c := range copies {
		src, ok := sources[c.Text("building")]
		require.True(t, ok, "unexpected copy %v", c)
		for _, col := range entries.Def().Schema.DataColumns() {
			assert.Equal(t, src[col], c[col], col)
		}
		id, _ := c.Int64("entry_id")
		assert.Greater(t, id, third)
		delete(sources, c.Text("building"))
	}

	rows, err := entries.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	empty, err := entries.Duplicate(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
