package core

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotExist is returned when a file or directory does not exist.
	// Re-exported from io/fs for convenience.
	ErrNotExist = fs.ErrNotExist

	// ErrExist is returned when a file or directory already exists.
	// Re-exported from io/fs for convenience.
	ErrExist = fs.ErrExist

	// ErrPermission is returned when permission is denied.
	// Re-exported from io/fs for convenience.
	ErrPermission = fs.ErrPermission

	// ErrInvalid is returned for malformed paths or arguments.
	// Re-exported from io/fs for convenience.
	ErrInvalid = fs.ErrInvalid

	// ErrUnsupported is returned when an operation is not supported by the
	// backend, for example writes over HTTP.
	ErrUnsupported = errors.New("operation not supported")

	// ErrIsDir is returned when a file operation targets a directory.
	ErrIsDir = errors.New("is a directory")
)

// PathError builds the *fs.PathError backends return.
func PathError(op, path string, err error) error {
	return &fs.PathError{Op: op, Path: path, Err: err}
}
