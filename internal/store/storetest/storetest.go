// Package storetest attaches throwaway SQLite directories for tests in other
// packages.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/phonebook/internal/store"
	"github.com/mesh-intelligence/phonebook/internal/testutil"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// NewBackend attaches a SQLite backend in a temporary directory and detaches
// it when the test ends.
func NewBackend(t testing.TB) *store.Backend {
	t.Helper()

	b := store.NewBackend(nil, testutil.NewTestLogger(t))
	err := b.Attach(context.Background(), types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// Table returns the named table or fails the test.
func Table(t testing.TB, d types.Directory, name string) types.Table {
	t.Helper()
	table, err := d.GetTable(name)
	require.NoError(t, err)
	return table
}

// Insert creates one row per value in a lookup table and returns their ids.
func Insert(t testing.TB, d types.Directory, table, column string, values ...string) []int64 {
	t.Helper()
	records := make([]types.Record, len(values))
	for i, v := range values {
		records[i] = types.Record{column: v}
	}
	tbl := Table(t, d, table)
	created, err := tbl.Create(context.Background(), records)
	require.NoError(t, err)

	ids := make([]int64, len(created))
	for i, r := range created {
		id, ok := r.Int64(tbl.Def().Schema.PrimaryKey)
		require.True(t, ok)
		ids[i] = id
	}
	return ids
}

// SeedParents inserts one row into every lookup table of the directory.
func SeedParents(t testing.TB, d types.Directory) {
	t.Helper()
	Insert(t, d, types.TableNames, "name", "Ivan")
	Insert(t, d, types.TableSurnames, "surname", "Petrov")
	Insert(t, d, types.TablePatronymics, "patronymic", "Sergeevich")
	Insert(t, d, types.TableStreets, "street", "Lenina")
}
