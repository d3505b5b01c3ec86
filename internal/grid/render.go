package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// CellText renders a cell the way it is shown to the user: parent columns
// show the choice label and phone columns are formatted.
func (g *Grid) CellText(row, col int) string {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.columns) {
		return ""
	}
	r := g.rows[row]
	c := g.columns[col]
	v := r[c.Column]
	if v == nil {
		return ""
	}

	if c.Parent != nil {
		if id, ok := types.ToInt64(v); ok {
			if label, ok := g.labels[col][id]; ok {
				return label
			}
		}
		if label := r.Text(c.Parent.DataColumn); label != "" {
			return label
		}
		return types.FormatValue(v)
	}
	if c.Display == types.DisplayPhone {
		return types.FormatPhone(types.FormatValue(v))
	}
	return types.FormatValue(v)
}

// SetFilter sets the text rows must contain to be visible. Matching is
// case-insensitive over the rendered cells.
func (g *Grid) SetFilter(text string) { g.filter = text }

// Filter returns the current filter text.
func (g *Grid) Filter() string { return g.filter }

// Visible returns the indexes of the loaded rows that match the filter.
func (g *Grid) Visible() []int {
	needle := strings.ToLower(strings.TrimSpace(g.filter))
	out := make([]int, 0, len(g.rows))
	for i := range g.rows {
		if needle == "" || g.matches(i, needle) {
			out = append(out, i)
		}
	}
	return out
}

func (g *Grid) matches(row int, needle string) bool {
	for col := range g.columns {
		if strings.Contains(strings.ToLower(g.CellText(row, col)), needle) {
			return true
		}
	}
	return false
}

// ActionLabel names an action for a selection of n rows.
func ActionLabel(a types.Action, n int) string {
	noun := "row"
	if n > 1 {
		noun = "rows"
	}
	switch a {
	case types.ActionCreate:
		return "Create " + noun
	case types.ActionUpdate:
		return "Edit " + noun
	case types.ActionDelete:
		return "Delete " + noun
	case types.ActionDuplicate:
		return "Duplicate " + noun
	default:
		return string(a)
	}
}

// coerce converts user input into the value stored for column c. current is
// the value the cell holds now and decides whether text is parsed as an
// integer.
func coerce(c Column, current, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return types.NormalizeValue(input), nil
	}
	s = strings.TrimSpace(s)

	switch {
	case c.Parent != nil:
		if s == "" {
			return nil, nil
		}
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			for _, ch := range c.Choices {
				if ch.ID == id {
					return id, nil
				}
			}
		}
		for _, ch := range c.Choices {
			if ch.Label == s {
				return ch.ID, nil
			}
		}
		return nil, fmt.Errorf("%w: no %s %q", types.ErrInvalidData, c.Parent.Table, s)

	case c.Display == types.DisplayPhone:
		n, err := strconv.ParseInt(types.PhoneDigits(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: phone %q", types.ErrInvalidData, s)
		}
		return n, nil
	}

	if _, isInt := current.(int64); isInt {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a whole number", types.ErrInvalidData, c.Column)
		}
		return n, nil
	}
	return s, nil
}
