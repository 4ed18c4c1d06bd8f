// Package store keeps calculator sessions on disk: the input history and the
// variables bound at the top level.
package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/zephyrtronium/calcscript"
)

// ErrNoMatchingCmd is returned when a history query has no result.
var ErrNoMatchingCmd = errors.New("no matching command line")

// ErrNoVar is returned by Var when there is no such variable.
var ErrNoVar = errors.New("no such variable")

// Store is a persistent session store.
type Store interface {
	NextCmdSeq() (int, error)
	AddCmd(text string) (int, error)
	DelCmd(seq int) error
	Cmd(seq int) (string, error)
	Cmds(from, upto int) ([]Cmd, error)
	PrevCmd(upto int, prefix string) (Cmd, error)

	SetVar(name string, v calcscript.Val) error
	Var(name string) (calcscript.Val, error)
	Vars() (map[string]calcscript.Val, error)
	DelVar(name string) error

	Close() error
}

// Cmd is an entry in the input history.
type Cmd struct {
	Text string
	Seq  int
}

const (
	bucketCmd = "cmd"
	bucketVar = "var"
)

// initDB holds the bucket initializers run when a database is opened.
var initDB = map[string]func(*bolt.Tx) error{}

type dbStore struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &dbStore{db: db}, nil
}

// Close closes the database.
func (s *dbStore) Close() error {
	return s.db.Close()
}
