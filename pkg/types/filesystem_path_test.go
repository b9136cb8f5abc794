// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    FilesystemPath
		wantErr bool
	}{
		{"absolute path", FilesystemPath("/tmp/out.zip"), false},
		{"relative path", FilesystemPath("test_files/one.png"), false},
		{"windows style", FilesystemPath(`C:\data\out.zip`), false},
		{"path with spaces", FilesystemPath("/path/to/my file.txt"), false},
		{"dot path", FilesystemPath("."), false},
		{"empty is invalid", FilesystemPath(""), true},
		{"whitespace only is invalid", FilesystemPath("   "), true},
		{"tab only is invalid", FilesystemPath("\t"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("FilesystemPath(%q).Validate() returned unexpected error: %v", tt.path, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("FilesystemPath(%q).Validate() returned nil, want error", tt.path)
			}
			if !errors.Is(err, ErrInvalidFilesystemPath) {
				t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", err)
			}
			var fpErr *InvalidFilesystemPathError
			if !errors.As(err, &fpErr) {
				t.Errorf("error should be *InvalidFilesystemPathError, got: %T", err)
			}
		})
	}
}

func TestFilesystemPath_ValidateField(t *testing.T) {
	t.Parallel()

	err := FilesystemPath(" ").ValidateField("output")
	var fpErr *InvalidFilesystemPathError
	if !errors.As(err, &fpErr) {
		t.Fatalf("expected *InvalidFilesystemPathError, got %T", err)
	}
	if fpErr.Field != "output" {
		t.Errorf("Field = %q, want %q", fpErr.Field, "output")
	}
	if !strings.Contains(err.Error(), "invalid output path") {
		t.Errorf("error message should name the field, got %q", err.Error())
	}

	if err := FilesystemPath("a.zip").ValidateField("output"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFilesystemPath_Resolve(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	abs := filepath.Join(base, "abs.zip")

	tests := []struct {
		name string
		path FilesystemPath
		base string
		want FilesystemPath
	}{
		{"relative joins base", "out/a.zip", base, FilesystemPath(filepath.Join(base, "out", "a.zip"))},
		{"absolute unchanged", FilesystemPath(abs), "/elsewhere", FilesystemPath(abs)},
		{"empty base unchanged", "a.zip", "", "a.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.path.Resolve(tt.base); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}
