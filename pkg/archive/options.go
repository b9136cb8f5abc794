// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/flate"
)

const (
	// DefaultBufferSize is the number of bytes read from a source per chunk.
	DefaultBufferSize = 2048

	// Stored writes entries without compression.
	Stored StorageMethod = "stored"
	// Deflated writes entries with deflate compression.
	Deflated StorageMethod = "deflated"

	// PrefixFirst removes the first occurrence of the prefix wherever it
	// appears in the path.
	PrefixFirst PrefixMode = "first"
	// PrefixLeading removes the prefix only when the path starts with it.
	PrefixLeading PrefixMode = "leading"
)

var (
	// ErrInvalidOptions is the sentinel error wrapped by InvalidOptionsError.
	ErrInvalidOptions = errors.New("invalid archive options")
	// ErrInvalidStorageMethod is returned when a StorageMethod value is not recognized.
	ErrInvalidStorageMethod = errors.New("invalid storage method")
	// ErrInvalidPrefixMode is returned when a PrefixMode value is not recognized.
	ErrInvalidPrefixMode = errors.New("invalid prefix mode")
)

type (
	// StorageMethod selects whether entries are stored as-is or deflated.
	StorageMethod string

	// PrefixMode controls how Options.Prefix is removed from file paths.
	PrefixMode string

	// Options is the immutable configuration of a Writer.
	Options struct {
		// BufferSize is the maximum number of bytes copied per chunk.
		BufferSize int
		// Method is the storage method applied to every entry.
		Method StorageMethod
		// Prefix is removed from file input paths to form entry names.
		// The empty string disables prefix removal.
		Prefix string
		// PrefixMode selects the prefix removal rule.
		PrefixMode PrefixMode
		// CompressionLevel is the flate level used for Deflated entries
		// (flate.DefaultCompression .. flate.BestCompression).
		CompressionLevel int
		// ModTime is stamped on in-memory entries. The zero value means the
		// time the entry is written. File entries use the file's own mtime.
		ModTime time.Time
		// Logger receives debug output. Nil discards it.
		Logger *log.Logger
	}

	// Option mutates an Options value during New or Configure.
	Option func(*Options)

	// InvalidOptionsError is returned when Options fail validation.
	// It wraps ErrInvalidOptions for errors.Is() compatibility.
	InvalidOptionsError struct {
		Field  string
		Reason string
		Cause  error
	}
)

// DefaultOptions returns the configuration used when no Option is supplied.
func DefaultOptions() Options {
	return Options{
		BufferSize:       DefaultBufferSize,
		Method:           Deflated,
		PrefixMode:       PrefixFirst,
		CompressionLevel: flate.DefaultCompression,
	}
}

// WithBufferSize sets the per-chunk read size in bytes.
func WithBufferSize(size int) Option {
	return func(o *Options) {
		o.BufferSize = size
	}
}

// WithMethod sets the storage method.
func WithMethod(m StorageMethod) Option {
	return func(o *Options) {
		o.Method = m
	}
}

// WithPrefix sets the prefix removed from file input paths.
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithPrefixMode sets the prefix removal rule.
func WithPrefixMode(mode PrefixMode) Option {
	return func(o *Options) {
		o.PrefixMode = mode
	}
}

// WithCompressionLevel sets the flate level for deflated entries.
func WithCompressionLevel(level int) Option {
	return func(o *Options) {
		o.CompressionLevel = level
	}
}

// WithModTime fixes the modification time of in-memory entries, which makes
// archives built from the same bytes reproducible.
func WithModTime(t time.Time) Option {
	return func(o *Options) {
		o.ModTime = t
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Validate reports the first invalid field, if any.
func (o Options) Validate() error {
	if o.BufferSize <= 0 {
		return &InvalidOptionsError{Field: "buffer size", Reason: fmt.Sprintf("must be positive, got %d", o.BufferSize)}
	}
	if err := o.Method.Validate(); err != nil {
		return &InvalidOptionsError{Field: "storage method", Reason: "unrecognized value", Cause: err}
	}
	if err := o.PrefixMode.Validate(); err != nil {
		return &InvalidOptionsError{Field: "prefix mode", Reason: "unrecognized value", Cause: err}
	}
	if o.CompressionLevel < flate.DefaultCompression || o.CompressionLevel > flate.BestCompression {
		return &InvalidOptionsError{
			Field:  "compression level",
			Reason: fmt.Sprintf("must be in range %d..%d, got %d", flate.DefaultCompression, flate.BestCompression, o.CompressionLevel),
		}
	}
	return nil
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Error implements the error interface for InvalidOptionsError.
func (e *InvalidOptionsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidOptions and, when present, the field-level cause.
func (e *InvalidOptionsError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidOptions, e.Cause}
	}
	return []error{ErrInvalidOptions}
}

// String returns the string representation of the StorageMethod.
func (m StorageMethod) String() string { return string(m) }

// Validate returns an error if the StorageMethod is not Stored or Deflated.
func (m StorageMethod) Validate() error {
	switch m {
	case Stored, Deflated:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidStorageMethod, string(m), Stored, Deflated)
	}
}

// ParseStorageMethod converts a user-supplied name into a StorageMethod.
// "store" and "deflate" are accepted as aliases.
func ParseStorageMethod(s string) (StorageMethod, error) {
	switch s {
	case "store":
		return Stored, nil
	case "deflate":
		return Deflated, nil
	}
	m := StorageMethod(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// String returns the string representation of the PrefixMode.
func (m PrefixMode) String() string { return string(m) }

// Validate returns an error if the PrefixMode is not PrefixFirst or PrefixLeading.
func (m PrefixMode) Validate() error {
	switch m {
	case PrefixFirst, PrefixLeading:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidPrefixMode, string(m), PrefixFirst, PrefixLeading)
	}
}
