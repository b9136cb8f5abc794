// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
)

// Operations reported in IOError.Op.
const (
	OpCreateArchive   = "create archive"
	OpOpenInput       = "open input"
	OpReadInput       = "read input"
	OpCreateEntry     = "create entry"
	OpWriteEntry      = "write entry"
	OpFinalizeArchive = "finalize archive"
	OpCloseArchive    = "close archive"
)

var (
	// ErrIO is the single failure kind for archive operations. Every error
	// returned by a Compress method after validation satisfies errors.Is(err, ErrIO).
	ErrIO = errors.New("archive I/O failure")

	// ErrNotRegularFile is the cause reported when a file input is a directory
	// or another non-regular file.
	ErrNotRegularFile = errors.New("not a regular file")
)

// IOError describes a failed read or write. The underlying cause (for example
// fs.ErrNotExist or fs.ErrPermission) is reachable through errors.Is/As.
type IOError struct {
	// Op is the step that failed (one of the Op* constants).
	Op string
	// Path is the input path, entry name or destination involved, if any.
	Path string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IOError) Unwrap() error { return e.Err }

// Is reports ErrIO as a match so callers can test the failure kind without
// inspecting the cause.
func (e *IOError) Is(target error) bool { return target == ErrIO }

func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var existing *IOError
	if errors.As(err, &existing) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}
