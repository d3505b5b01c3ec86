package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mesh-intelligence/phonebook/internal/grid"
)

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, grids []*grid.Grid, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, grids),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
