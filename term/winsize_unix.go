//go:build !windows

package term

import (
	"os"

	"golang.org/x/sys/unix"
)

func winSize(file *os.File) (row, col int) {
	ws, err := unix.IoctlGetWinsize(int(file.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return -1, -1
	}
	// Serial consoles report zero.
	if ws.Col == 0 {
		ws.Col = 80
	}
	if ws.Row == 0 {
		ws.Row = 24
	}
	return int(ws.Row), int(ws.Col)
}
