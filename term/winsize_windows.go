//go:build windows

package term

import "os"

// TODO: query the console screen buffer through golang.org/x/sys/windows.
func winSize(file *os.File) (row, col int) {
	if !IsATTY(file.Fd()) {
		return -1, -1
	}
	return 24, 80
}
