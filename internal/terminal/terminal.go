// Package terminal provides host terminal detection helpers.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// isTerminal is swapped in tests.
var isTerminal = term.IsTerminal

// IsInteractive reports whether stdin is a terminal. Commands replaced into
// the sandbox only get a TTY (docker exec -it) when this holds; otherwise
// piping into espbox would fail with "the input device is not a TTY".
func IsInteractive() bool {
	return isTerminal(int(os.Stdin.Fd()))
}

// StdoutIsTerminal reports whether stdout is a terminal.
func StdoutIsTerminal() bool {
	return isTerminal(int(os.Stdout.Fd()))
}

// Editor returns the user's editor command: $VISUAL, then $EDITOR, then vi.
func Editor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if e := os.Getenv(env); e != "" {
			return e
		}
	}
	return "vi"
}

// SetInteractive forces the result of IsInteractive and StdoutIsTerminal
// and returns a function restoring detection. Intended for tests.
func SetInteractive(interactive bool) (restore func()) {
	orig := isTerminal
	isTerminal = func(int) bool { return interactive }
	return func() { isTerminal = orig }
}
