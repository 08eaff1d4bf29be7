package cmd

import (
	"github.com/appshell/cli/pkg/table"
	"github.com/pterm/pterm"
)

// printDetailTable renders property/value rows for detail views.
func printDetailTable(rows pterm.TableData) {
	table.PrintTableNoPad(rows, false)
}

// printListTable renders a header row plus items.
func printListTable(rows pterm.TableData) {
	table.PrintTable(rows)
}
