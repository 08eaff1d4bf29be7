package table

import (
	"bytes"
	"os"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	pterm.DisableColor()
	pterm.SetDefaultOutput(&buf)
	t.Cleanup(func() {
		pterm.SetDefaultOutput(os.Stdout)
		pterm.EnableColor()
	})
	return &buf
}

func TestPrintTableUsesDefaultSeparator(t *testing.T) {
	out := capture(t)
	PrintTable(pterm.TableData{{"NAME", "ULID"}, {"Work", "01A"}})
	assert.Contains(t, out.String(), "|")
}

func TestPrintTableNoPadUsesTightSeparator(t *testing.T) {
	out := capture(t)
	PrintTableNoPad(pterm.TableData{{"Name:", "Example"}}, false)
	assert.Contains(t, out.String(), "Name: Example")
	assert.NotContains(t, out.String(), "|")
}
