package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/phonebook/internal/grid"
	"github.com/mesh-intelligence/phonebook/internal/store"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// session is an attached directory with one shared hub, so mutations made
// through a grid reach the other open grids.
type session struct {
	backend *store.Backend
	hub     *grid.Hub
	grids   map[string]*grid.Grid
	app     *app
}

// open attaches the configured backend. The caller must close the session.
func (a *app) open(ctx context.Context) (*session, error) {
	b := store.NewBackend(types.DirectoryCatalog(), a.logger)
	if err := b.Attach(ctx, a.config); err != nil {
		return nil, fmt.Errorf("attaching %s backend: %w", a.config.Backend, err)
	}
	return &session{
		backend: b,
		hub:     grid.NewHub(a.logger),
		grids:   make(map[string]*grid.Grid),
		app:     a,
	}, nil
}

// grid returns the loaded grid for a table, opening it on first use.
func (s *session) grid(ctx context.Context, name string) (*grid.Grid, error) {
	if g, ok := s.grids[name]; ok {
		return g, nil
	}
	g, err := grid.New(s.backend, name, s.hub, s.app.logger)
	if err != nil {
		return nil, fmt.Errorf("%w (valid: %s)", err, strings.Join(s.backend.Catalog().Names(), ", "))
	}
	if err := g.Load(ctx); err != nil {
		g.Close()
		return nil, err
	}
	s.grids[name] = g
	return g, nil
}

func (s *session) close() error {
	for _, g := range s.grids {
		g.Close()
	}
	return s.backend.Detach()
}

// parseIDs converts command arguments to primary keys.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidID, arg)
		}
		ids[i] = id
	}
	return ids, nil
}

// parseAssignments splits col=value arguments.
func parseAssignments(args []string) (map[string]any, error) {
	values := make(map[string]any, len(args))
	for _, arg := range args {
		col, value, ok := strings.Cut(arg, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("%w: %q is not col=value", errUsage, arg)
		}
		values[col] = value
	}
	return values, nil
}

// rowIndexes maps primary keys to grid rows; ids not loaded are skipped.
func rowIndexes(g *grid.Grid, ids []int64) []int {
	var rows []int
	for _, id := range ids {
		if i := g.Find(id); i >= 0 {
			rows = append(rows, i)
		}
	}
	return rows
}
