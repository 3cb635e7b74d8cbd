package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by Confirm when there is nobody to ask.
var ErrNotTerminal = errors.New("confirmation needs an interactive terminal (use --yes)")

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Confirm asks a yes/no question on the terminal. Aborting the prompt
// (Ctrl+C, Esc) counts as no.
func Confirm(title, description string) (bool, error) {
	if !IsTerminal(os.Stdin) || !IsTerminal(os.Stdout) {
		return false, ErrNotTerminal
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
