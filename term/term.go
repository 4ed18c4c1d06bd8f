// Package term answers questions about the terminal the command runs in.
package term

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsATTY determines whether the given file is a terminal.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// WinSize queries the size of the terminal referenced by the given file.
// It returns -1, -1 if the file is not a terminal.
func WinSize(file *os.File) (row, col int) { return winSize(file) }

// UseColor decides whether to colour output for the given mode, one of
// "always", "never", or "auto". Auto colours terminals unless NO_COLOR is set.
func UseColor(mode string, file *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && IsATTY(file.Fd())
	}
}
