// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if opts.BufferSize != 2048 {
		t.Errorf("default buffer size = %d, want 2048", opts.BufferSize)
	}
	if opts.Method != Deflated {
		t.Errorf("default method = %s, want %s", opts.Method, Deflated)
	}
	if opts.Prefix != "" {
		t.Errorf("default prefix = %q, want empty", opts.Prefix)
	}
	if opts.PrefixMode != PrefixFirst {
		t.Errorf("default prefix mode = %s, want %s", opts.PrefixMode, PrefixFirst)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("default options invalid: %v", err)
	}
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opt       Option
		wantField string
		wantCause error
	}{
		{"zero buffer", WithBufferSize(0), "buffer size", nil},
		{"negative buffer", WithBufferSize(-1), "buffer size", nil},
		{"unknown method", WithMethod("bzip2"), "storage method", ErrInvalidStorageMethod},
		{"empty method", WithMethod(""), "storage method", ErrInvalidStorageMethod},
		{"unknown prefix mode", WithPrefixMode("suffix"), "prefix mode", ErrInvalidPrefixMode},
		{"level too high", WithCompressionLevel(10), "compression level", nil},
		{"level too low", WithCompressionLevel(-2), "compression level", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.opt)
			if err == nil {
				t.Fatal("New() expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("error should wrap ErrInvalidOptions, got: %v", err)
			}
			var optErr *InvalidOptionsError
			if !errors.As(err, &optErr) {
				t.Fatalf("error should be *InvalidOptionsError, got %T", err)
			}
			if optErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", optErr.Field, tt.wantField)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("error should wrap %v, got: %v", tt.wantCause, err)
			}
		})
	}
}

func TestOptions_ValidBoundaries(t *testing.T) {
	t.Parallel()

	for _, opt := range []Option{
		WithBufferSize(1),
		WithCompressionLevel(-1),
		WithCompressionLevel(0),
		WithCompressionLevel(9),
		WithMethod(Stored),
		WithPrefixMode(PrefixLeading),
	} {
		if _, err := New(opt); err != nil {
			t.Errorf("New() unexpected error: %v", err)
		}
	}
}

func TestParseStorageMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    StorageMethod
		wantErr bool
	}{
		{"deflated", Deflated, false},
		{"deflate", Deflated, false},
		{"stored", Stored, false},
		{"store", Stored, false},
		{"DEFLATED", "", true},
		{"", "", true},
		{"zstd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseStorageMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStorageMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidStorageMethod) {
				t.Errorf("error should wrap ErrInvalidStorageMethod, got: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStorageMethod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
