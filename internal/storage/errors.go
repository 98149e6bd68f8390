package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned by a Backend when the key holds no value.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("entry not found")
)

// StorageError is a failure of the underlying backend or of the stored
// data itself (Op "decode").
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
