// Package tui is the interactive terminal browser over the directory grids.
// Each table is a tab; keystrokes drive the grid mutations directly.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/phonebook/internal/grid"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Mode is what keystrokes currently act on.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeEdit
	ModeFilter
)

// maxCellWidth caps the rendered width of one column.
const maxCellWidth = 28

// Model is the bubbletea model of the browser.
type Model struct {
	ctx    context.Context
	grids  []*grid.Grid
	active int
	mode   Mode

	input textinput.Model
	help  help.Model
	keys  KeyMap

	status    string
	statusErr bool

	width, height int
}

// New creates a browser over grids that are already loaded.
func New(ctx context.Context, grids []*grid.Grid) *Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 256

	return &Model{
		ctx:   ctx,
		grids: grids,
		input: in,
		help:  help.New(),
		keys:  DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Mode returns the current input mode.
func (m *Model) Mode() Mode { return m.mode }

// Active returns the grid of the selected tab, or nil without tabs.
func (m *Model) Active() *grid.Grid {
	if len(m.grids) == 0 {
		return nil
	}
	return m.grids[m.active]
}

// Status returns the last status line and whether it reports an error.
func (m *Model) Status() (string, bool) { return m.status, m.statusErr }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeEdit:
			return m.handleEditKey(msg)
		case ModeFilter:
			return m.handleFilterKey(msg)
		default:
			return m.handleKey(msg)
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	g := m.Active()
	if g == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Left):
		f := g.Focus()
		g.SetFocus(grid.Cell{Row: f.Row, Col: f.Col - 1})
	case key.Matches(msg, m.keys.Right):
		f := g.Focus()
		g.SetFocus(grid.Cell{Row: f.Row, Col: f.Col + 1})
	case key.Matches(msg, m.keys.Filter):
		m.mode = ModeFilter
		m.input.SetValue(g.Filter())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Create):
		return m, m.create(g)
	case key.Matches(msg, m.keys.Edit):
		return m, m.beginEdit(g)
	case key.Matches(msg, m.keys.Delete):
		m.delete(g)
	case key.Matches(msg, m.keys.Duplicate):
		m.duplicate(g)
	case key.Matches(msg, m.keys.Resync):
		if err := g.Resync(m.ctx); err != nil {
			m.setError(err)
		} else {
			m.setStatus(fmt.Sprintf("Reloaded %s", g.Name()))
		}
	}
	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.Active()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		g.CancelEdit()
		m.leaveInput()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		cell, ok := g.Editing()
		m.leaveInput()
		if !ok {
			return m, nil
		}
		g.CancelEdit()
		if err := g.Edit(m.ctx, cell, m.input.Value()); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Updated %s", g.Columns()[cell.Col].Title))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.Active()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		g.SetFilter("")
		m.leaveInput()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.leaveInput()
		m.moveRow(0)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	g.SetFilter(m.input.Value())
	return m, cmd
}

func (m *Model) switchTab(delta int) {
	n := len(m.grids)
	m.active = (m.active + delta + n) % n
}

// moveRow steps the focus through the visible rows. A delta of zero snaps a
// hidden focus onto the nearest visible row.
func (m *Model) moveRow(delta int) {
	g := m.Active()
	visible := g.Visible()
	if len(visible) == 0 {
		return
	}
	f := g.Focus()
	pos, found := slices.BinarySearch(visible, f.Row)
	if !found && delta > 0 {
		delta--
	}
	pos = max(0, min(pos+delta, len(visible)-1))
	g.SetFocus(grid.Cell{Row: visible[pos], Col: f.Col})
}

func (m *Model) create(g *grid.Grid) tea.Cmd {
	if _, err := g.Create(m.ctx); err != nil {
		m.setError(err)
		return nil
	}
	m.setStatus(grid.ActionLabel(types.ActionCreate, 1))
	if cell, ok := g.Editing(); ok {
		return m.enterEdit(g, cell)
	}
	return nil
}

func (m *Model) beginEdit(g *grid.Grid) tea.Cmd {
	if g.Len() == 0 {
		return nil
	}
	cell := g.Focus()
	if err := g.BeginEdit(cell); err != nil {
		m.setError(err)
		return nil
	}
	return m.enterEdit(g, cell)
}

func (m *Model) enterEdit(g *grid.Grid, cell grid.Cell) tea.Cmd {
	m.mode = ModeEdit
	m.input.SetValue(g.CellText(cell.Row, cell.Col))
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) delete(g *grid.Grid) {
	if g.Len() == 0 {
		return
	}
	if err := g.Delete(m.ctx, []int{g.Focus().Row}); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(grid.ActionLabel(types.ActionDelete, 1))
	m.moveRow(0)
}

func (m *Model) duplicate(g *grid.Grid) {
	if g.Len() == 0 {
		return
	}
	copies, err := g.Duplicate(m.ctx, []int{g.Focus().Row})
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus(grid.ActionLabel(types.ActionDuplicate, len(copies)))
}

func (m *Model) leaveInput() {
	m.mode = ModeBrowse
	m.input.Blur()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

// setError shows the user-facing message; the grid has already logged the
// store detail.
func (m *Model) setError(err error) {
	m.status = types.UserMessage(err)
	m.statusErr = true
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("phonebook"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if g := m.Active(); g != nil {
		b.WriteString(m.renderGrid(g))
	} else {
		b.WriteString(dimStyle.Render("No tables"))
	}
	b.WriteString("\n")

	b.WriteString(m.renderInput())
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.mode == ModeBrowse {
		b.WriteString(m.help.ShortHelpView(m.keys.browseHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.inputHelp()))
	}
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(m.grids))
	for i, g := range m.grids {
		label := fmt.Sprintf("%s (%d)", g.Name(), g.Len())
		if i == m.active {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderGrid(g *grid.Grid) string {
	columns := g.Columns()
	visible := g.Visible()

	widths := make([]int, len(columns))
	for c, col := range columns {
		widths[c] = lipgloss.Width(col.Title)
		for _, r := range visible {
			widths[c] = max(widths[c], lipgloss.Width(g.CellText(r, c)))
		}
		widths[c] = min(widths[c], maxCellWidth)
	}

	var b strings.Builder
	header := make([]string, len(columns))
	for c, col := range columns {
		header[c] = cellStyle.Render(headerStyle.Render(fit(col.Title, widths[c])))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	if len(visible) == 0 {
		b.WriteString(dimStyle.Render("  No rows"))
		b.WriteString("\n")
		return b.String()
	}

	focus := g.Focus()
	editing, isEditing := g.Editing()
	first, last := m.window(visible, focus.Row)
	for _, r := range visible[first:last] {
		cells := make([]string, len(columns))
		for c := range columns {
			text := fit(g.CellText(r, c), widths[c])
			switch {
			case isEditing && editing == (grid.Cell{Row: r, Col: c}):
				text = fit(m.input.Value(), widths[c])
				text = focusedCellStyle.Render(text)
			case r == focus.Row && c == focus.Col:
				text = focusedCellStyle.Render(text)
			}
			cells[c] = cellStyle.Render(text)
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		if r == focus.Row {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if hidden := len(visible) - (last - first); hidden > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d more rows", hidden)))
		b.WriteString("\n")
	}
	return b.String()
}

// window returns the slice of visible rows that fits the terminal, keeping
// the focused row on screen.
func (m *Model) window(visible []int, focus int) (int, int) {
	rows := len(visible)
	if m.height > 0 {
		rows = max(1, m.height-8)
	}
	if rows >= len(visible) {
		return 0, len(visible)
	}
	pos, _ := slices.BinarySearch(visible, focus)
	first := max(0, min(pos-rows/2, len(visible)-rows))
	return first, first + rows
}

func (m *Model) renderInput() string {
	switch m.mode {
	case ModeEdit:
		g := m.Active()
		cell, _ := g.Editing()
		return titleStyle.Render(g.Columns()[cell.Col].Title+": ") + m.input.View() + "\n"
	case ModeFilter:
		return titleStyle.Render("Filter: ") + m.input.View() + "\n"
	}
	if g := m.Active(); g != nil && g.Filter() != "" {
		return dimStyle.Render("Filter: "+g.Filter()) + "\n"
	}
	return ""
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

// fit pads or truncates s to exactly width display cells.
func fit(s string, width int) string {
	if w := lipgloss.Width(s); w <= width {
		return s + strings.Repeat(" ", width-w)
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	out := string(runes) + "…"
	return out + strings.Repeat(" ", max(0, width-lipgloss.Width(out)))
}
