// Package table renders pterm tables with consistent padding across the
// CLI's list and detail views.
package table

import "github.com/pterm/pterm"

// PrintTable renders rows with a header row.
func PrintTable(rows pterm.TableData) {
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// PrintTableNoPad renders rows with a plain single-space column separator
// instead of pterm's padded default, for detail views where the table
// follows other output directly.
func PrintTableNoPad(rows pterm.TableData, hasHeader bool) {
	_ = pterm.DefaultTable.WithHasHeader(hasHeader).WithSeparator(" ").WithData(rows).Render()
}
