package cmd

import (
	"slices"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// newTable is the table style shared by the reporting commands: a rule
// under the header, no outer border, and the numeric columns right-aligned.
func newTable(headers []string, numeric ...int) *table.Table {
	head := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Headers(headers...).
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := cell
			if row == table.HeaderRow {
				st = head
			}
			if slices.Contains(numeric, col) {
				st = st.Align(lipgloss.Right)
			}
			return st
		})
}
