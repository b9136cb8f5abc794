// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/zipkit/zipkit/pkg/archive"
	"github.com/zipkit/zipkit/pkg/cueutil"
	"github.com/zipkit/zipkit/pkg/sink"
	"github.com/zipkit/zipkit/pkg/types"
)

const (
	// EncodingUTF8 stores entry content as written.
	EncodingUTF8 = "utf8"
	// EncodingBase64 decodes entry content with standard base64 first.
	EncodingBase64 = "base64"
)

var (
	// ErrInvalidManifest is wrapped by every Load and Inputs failure.
	ErrInvalidManifest = errors.New("invalid manifest")
	// ErrUnsupportedFormat is returned for extensions other than .cue and .toml.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
)

//go:embed manifest_schema.cue
var manifestSchema []byte

type (
	// Manifest is one archive job.
	Manifest struct {
		Output           string   `json:"output" toml:"output"`
		Prefix           *string  `json:"prefix,omitempty" toml:"prefix"`
		PrefixMode       string   `json:"prefix_mode,omitempty" toml:"prefix_mode"`
		StorageMethod    string   `json:"storage_method,omitempty" toml:"storage_method"`
		BufferSize       *int     `json:"buffer_size,omitempty" toml:"buffer_size"`
		CompressionLevel *int     `json:"compression_level,omitempty" toml:"compression_level"`
		Files            []string `json:"files,omitempty" toml:"files"`
		Entries          []Entry  `json:"entries,omitempty" toml:"entries"`

		// dir is the directory relative paths resolve against.
		dir string
	}

	// Entry is an in-memory archive entry declared in a manifest.
	Entry struct {
		Name     string `json:"name" toml:"name"`
		Content  string `json:"content" toml:"content"`
		Encoding string `json:"encoding,omitempty" toml:"encoding"`
	}

	// Error reports a manifest problem together with the manifest path.
	Error struct {
		Path string
		Err  error
	}
)

// Load reads the manifest at path. The format is chosen by extension.
func Load(path string) (*Manifest, error) {
	var (
		m   *Manifest
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		m, err = loadCUE(path)
	case ".toml":
		m, err = loadTOML(path)
	default:
		err = fmt.Errorf("%w %q (use .cue or .toml)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	m.dir = filepath.Dir(path)
	if err := m.Validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return m, nil
}

func loadCUE(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest",
		cueutil.WithFilename(filepath.Base(path)))
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

func loadTOML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filepath.Base(path)); err != nil {
		return nil, err
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}
	for i := range m.Entries {
		if m.Entries[i].Encoding == "" {
			m.Entries[i].Encoding = EncodingUTF8
		}
	}
	return &m, nil
}

// Validate checks the rules the CUE schema enforces, so TOML manifests and
// hand-built values are held to the same standard.
func (m *Manifest) Validate() error {
	if err := types.FilesystemPath(m.Output).ValidateField("output"); err != nil {
		return err
	}
	for i, f := range m.Files {
		if err := types.FilesystemPath(f).ValidateField(fmt.Sprintf("files[%d]", i)); err != nil {
			return err
		}
	}
	for i, e := range m.Entries {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("entries[%d]: name must be non-empty", i)
		}
		switch e.Encoding {
		case "", EncodingUTF8, EncodingBase64:
		default:
			return fmt.Errorf("entries[%d] (%s): unknown encoding %q", i, e.Name, e.Encoding)
		}
	}
	if _, err := archive.New(m.Options()...); err != nil {
		return err
	}
	return nil
}

// Dir returns the directory relative paths resolve against.
func (m *Manifest) Dir() string { return m.dir }

// Destination returns the output, resolved against the manifest directory
// unless it is a blob URL or absolute.
func (m *Manifest) Destination() string {
	if sink.IsURL(m.Output) {
		return m.Output
	}
	return types.FilesystemPath(m.Output).Resolve(m.dir).String()
}

// Options returns writer options for the fields the manifest sets.
func (m *Manifest) Options() []archive.Option {
	var opts []archive.Option
	if m.Prefix != nil {
		opts = append(opts, archive.WithPrefix(*m.Prefix))
	}
	if m.PrefixMode != "" {
		opts = append(opts, archive.WithPrefixMode(archive.PrefixMode(m.PrefixMode)))
	}
	if m.StorageMethod != "" {
		opts = append(opts, archive.WithMethod(archive.StorageMethod(m.StorageMethod)))
	}
	if m.BufferSize != nil {
		opts = append(opts, archive.WithBufferSize(*m.BufferSize))
	}
	if m.CompressionLevel != nil {
		opts = append(opts, archive.WithCompressionLevel(*m.CompressionLevel))
	}
	return opts
}

// Inputs returns the files followed by the entries, in declared order.
// Entry names come from the paths as written in the manifest.
func (m *Manifest) Inputs() ([]archive.Input, error) {
	inputs := make([]archive.Input, 0, len(m.Files)+len(m.Entries))
	for _, f := range m.Files {
		inputs = append(inputs, archive.FileIn(m.dir, f))
	}
	for i, e := range m.Entries {
		data := []byte(e.Content)
		if e.Encoding == EncodingBase64 {
			decoded, err := base64.StdEncoding.DecodeString(e.Content)
			if err != nil {
				return nil, fmt.Errorf("%w: entries[%d] (%s): %w", ErrInvalidManifest, i, e.Name, err)
			}
			data = decoded
		}
		inputs = append(inputs, archive.Bytes(e.Name, data))
	}
	return inputs, nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("invalid manifest %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrInvalidManifest and the cause.
func (e *Error) Unwrap() []error { return []error{ErrInvalidManifest, e.Err} }
