package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// MustGetTempStore returns a Store backed by a temporary file, and a cleanup
// function that should be called when the Store is no longer used.
func MustGetTempStore() (Store, func()) {
	dir, err := os.MkdirTemp("", "calcscript.test")
	if err != nil {
		panic(fmt.Sprintf("failed to create temp dir: %v", err))
	}
	st, err := Open(filepath.Join(dir, "db"))
	if err != nil {
		panic(fmt.Sprintf("failed to create Store instance: %v", err))
	}
	return st, func() {
		st.Close()
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintln(os.Stderr, "failed to remove temp dir:", err)
		}
	}
}
