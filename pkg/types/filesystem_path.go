// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a path to an archive input or output, absolute or
	// relative. The zero value ("") is invalid.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// empty or whitespace-only.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
		// Field names the setting the path came from (e.g. "output"). May be empty.
		Field string
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// Validate returns an error if the path is empty or whitespace-only.
func (p FilesystemPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidFilesystemPathError{Value: p}
	}
	return nil
}

// ValidateField is Validate with the originating field recorded in the error.
func (p FilesystemPath) ValidateField(field string) error {
	if err := p.Validate(); err != nil {
		return &InvalidFilesystemPathError{Value: p, Field: field}
	}
	return nil
}

// Resolve returns p joined onto base when p is relative, and p unchanged when
// it is absolute or base is empty.
func (p FilesystemPath) Resolve(base string) FilesystemPath {
	if base == "" || filepath.IsAbs(string(p)) {
		return p
	}
	return FilesystemPath(filepath.Join(base, string(p)))
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s path %q: must be non-empty", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
