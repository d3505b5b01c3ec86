// Package phonebook is the public entry point for opening a phone directory.
// It exposes the backend factory while keeping the store implementation
// internal.
package phonebook

import (
	"context"
	"log/slog"

	"github.com/mesh-intelligence/phonebook/internal/store"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Version is the release version of the module.
const Version = "0.3.0"

// Open attaches a directory using cfg and returns it. A nil logger discards
// output. The caller must Detach the directory when done.
//
// Example:
//
//	dir, err := phonebook.Open(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/phonebook",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer dir.Detach()
func Open(ctx context.Context, cfg types.Config, logger *slog.Logger) (types.Directory, error) {
	b := store.NewBackend(types.DirectoryCatalog(), logger)
	if err := b.Attach(ctx, cfg); err != nil {
		return nil, err
	}
	return b, nil
}
