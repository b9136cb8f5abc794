// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

type (
	// Input is a single archive entry source: a file on disk (File) or an
	// in-memory buffer (Bytes).
	Input interface {
		// entryName returns the archive-internal name for this input.
		entryName(o Options) string
		// open acquires the source. The caller must close the returned source.
		open(o Options) (*source, error)
	}

	// Entry is a named in-memory buffer.
	Entry struct {
		Name string
		Data []byte
	}

	fileInput struct {
		path string // as given; the entry name is derived from it
		base string // joined in front of a relative path when opening
	}

	// source is an opened input, scoped to one entry.
	source struct {
		label    string
		r        io.Reader
		closer   io.Closer
		modified time.Time
		mode     fs.FileMode
	}
)

// File returns an Input that reads the file at path. The entry name is the
// path with the Writer's prefix removed.
func File(path string) Input { return fileInput{path: path} }

// FileIn is File for a path relative to base rather than to the working
// directory. The entry name is still derived from path alone.
func FileIn(base, path string) Input { return fileInput{path: path, base: base} }

// Files returns one File input per path, in order.
func Files(paths ...string) []Input {
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		inputs = append(inputs, File(p))
	}
	return inputs
}

// Bytes returns an Input holding data under the given entry name. The name is
// used verbatim; the prefix rule does not apply.
func Bytes(name string, data []byte) Input { return Entry{Name: name, Data: data} }

// Entries converts a name to content map into Inputs ordered by name, so that
// the same map always produces the same archive.
func Entries(m map[string][]byte) []Input {
	inputs := make([]Input, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		inputs = append(inputs, Entry{Name: name, Data: m[name]})
	}
	return inputs
}

// StripPrefix applies the prefix rule to path. With PrefixFirst the first
// occurrence of prefix is removed wherever it appears; with PrefixLeading it is
// removed only from the start. An empty prefix, or one that does not match,
// leaves path unchanged.
func StripPrefix(path, prefix string, mode PrefixMode) string {
	if prefix == "" {
		return path
	}
	if mode == PrefixLeading {
		return strings.TrimPrefix(path, prefix)
	}
	return strings.Replace(path, prefix, "", 1)
}

func (p fileInput) entryName(o Options) string {
	return filepath.ToSlash(StripPrefix(p.path, o.Prefix, o.PrefixMode))
}

func (p fileInput) open(o Options) (*source, error) {
	path := p.path
	if p.base != "" && !filepath.IsAbs(path) {
		path = filepath.Join(p.base, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErr(OpOpenInput, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ioErr(OpOpenInput, path, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, ioErr(OpOpenInput, path, ErrNotRegularFile)
	}
	return &source{
		label:    path,
		r:        bufio.NewReaderSize(f, o.BufferSize),
		closer:   f,
		modified: info.ModTime(),
		mode:     info.Mode().Perm(),
	}, nil
}

func (e Entry) entryName(Options) string { return e.Name }

func (e Entry) open(o Options) (*source, error) {
	modified := o.ModTime
	if modified.IsZero() {
		modified = time.Now()
	}
	return &source{
		label:    e.Name,
		r:        bytes.NewReader(e.Data),
		closer:   io.NopCloser(nil),
		modified: modified,
		mode:     0o644,
	}, nil
}

func (s *source) Close() error { return s.closer.Close() }
