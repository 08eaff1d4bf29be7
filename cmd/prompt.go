package cmd

import "github.com/pterm/pterm"

// Prompter is the interactive surface the install flow collects input
// through. Tests substitute a scripted implementation.
type Prompter interface {
	Text(label, initial string) (string, error)
	Select(label string, options []string, initial string) (string, error)
	Confirm(label string) (bool, error)
}

type ptermPrompter struct{}

func (ptermPrompter) Text(label, initial string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithDefaultValue(initial).Show(label)
}

func (ptermPrompter) Select(label string, options []string, initial string) (string, error) {
	return pterm.DefaultInteractiveSelect.WithOptions(options).WithDefaultOption(initial).Show(label)
}

func (ptermPrompter) Confirm(label string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.Show(label)
}
