// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"

	"github.com/zipkit/zipkit/internal/testutil"
	"github.com/zipkit/zipkit/pkg/archive"
	"github.com/zipkit/zipkit/pkg/types"
)

const cueJob = `
output: "dist/bundle.zip"
prefix: "build/"
prefix_mode: "leading"
storage_method: "stored"
buffer_size: 512
compression_level: 0
files: ["build/app.txt", "build/docs/README.md"]
entries: [
	{name: "state.json", content: "{\"version\":1}"},
	{name: "blob.bin", content: "AAEC", encoding: "base64"},
]
`

const tomlJob = `
output = "dist/bundle.zip"
prefix = "build/"
prefix_mode = "leading"
storage_method = "stored"
buffer_size = 512
compression_level = 0
files = ["build/app.txt", "build/docs/README.md"]

[[entries]]
name = "state.json"
content = '{"version":1}'

[[entries]]
name = "blob.bin"
content = "AAEC"
encoding = "base64"
`

func writeJob(t *testing.T, dir, name, content string) string {
	t.Helper()
	return testutil.MustWriteFile(t, filepath.Join(dir, name), []byte(content))
}

func seedInputs(t *testing.T, dir string) {
	t.Helper()
	testutil.MustWriteFile(t, filepath.Join(dir, "build", "app.txt"), []byte("app binary"))
	testutil.MustWriteFile(t, filepath.Join(dir, "build", "docs", "README.md"), []byte("# readme"))
}

func TestLoad_CUEAndTOMLAgree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fromCUE, err := Load(writeJob(t, dir, "job.cue", cueJob))
	if err != nil {
		t.Fatalf("Load(cue) error = %v", err)
	}
	fromTOML, err := Load(writeJob(t, dir, "job.toml", tomlJob))
	if err != nil {
		t.Fatalf("Load(toml) error = %v", err)
	}

	if diff := cmp.Diff(fromCUE, fromTOML, cmp.AllowUnexported(Manifest{})); diff != "" {
		t.Errorf("CUE and TOML manifests differ (-cue +toml):\n%s", diff)
	}
	if fromCUE.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", fromCUE.Dir(), dir)
	}
	if fromCUE.Entries[0].Encoding != EncodingUTF8 {
		t.Errorf("default encoding = %q, want utf8", fromCUE.Entries[0].Encoding)
	}
}

func TestManifest_Options(t *testing.T) {
	t.Parallel()

	m, err := Load(writeJob(t, t.TempDir(), "job.cue", cueJob))
	if err != nil {
		t.Fatal(err)
	}

	// Options set by the manifest override the base.
	w, err := archive.New(append([]archive.Option{archive.WithBufferSize(9), archive.WithCompressionLevel(9)}, m.Options()...)...)
	if err != nil {
		t.Fatal(err)
	}
	got := w.Options()
	if got.BufferSize != 512 || got.Method != archive.Stored || got.Prefix != "build/" ||
		got.PrefixMode != archive.PrefixLeading || got.CompressionLevel != 0 {
		t.Errorf("Options() = %+v", got)
	}

	minimal, err := Load(writeJob(t, t.TempDir(), "min.cue", `output: "x.zip"`))
	if err != nil {
		t.Fatal(err)
	}
	if opts := minimal.Options(); len(opts) != 0 {
		t.Errorf("unset fields should produce no options, got %d", len(opts))
	}
}

func TestManifest_Destination(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := &Manifest{Output: "dist/a.zip", dir: dir}
	if got, want := m.Destination(), filepath.Join(dir, "dist", "a.zip"); got != want {
		t.Errorf("Destination() = %q, want %q", got, want)
	}
	m.Output = "mem://bucket/a.zip"
	if got := m.Destination(); got != "mem://bucket/a.zip" {
		t.Errorf("URL destination changed to %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
		wantIs  error
	}{
		{"unsupported extension", "job.yaml", "output: x", "unsupported", ErrUnsupportedFormat},
		{"cue missing output", "job.cue", `files: ["a"]`, "output", nil},
		{"cue blank output", "job.cue", `output: "  "`, "output", nil},
		{"cue bad encoding", "job.cue", `output: "a.zip", entries: [{name: "x", encoding: "hex"}]`, "entries[0].encoding", nil},
		{"cue unknown field", "job.cue", `output: "a.zip", level: 3`, "level", nil},
		{"toml unknown field", "job.toml", "output = \"a.zip\"\nlevel = 3\n", "strict mode", nil},
		{"toml syntax", "job.toml", "output = ", "line 1", nil},
		{"toml missing output", "job.toml", `files = ["a"]`, "output", types.ErrInvalidFilesystemPath},
		{"toml bad encoding", "job.toml", "output = \"a.zip\"\n[[entries]]\nname = \"x\"\nencoding = \"hex\"\n", "hex", nil},
		{"toml bad method", "job.toml", "output = \"a.zip\"\nstorage_method = \"zstd\"\n", "storage method", archive.ErrInvalidOptions},
		{"cue zero buffer size", "job.cue", `output: "a.zip", buffer_size: 0`, "buffer_size", nil},
		{"toml zero buffer size", "job.toml", "output = \"a.zip\"\nbuffer_size = 0\n", "buffer size", archive.ErrInvalidOptions},
		{"toml blank entry name", "job.toml", "output = \"a.zip\"\n[[entries]]\nname = \" \"\n", "entries[0]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeJob(t, t.TempDir(), tt.file, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("error should wrap ErrInvalidManifest, got %v", err)
			}
			var mErr *Error
			if !errors.As(err, &mErr) || mErr.Path != path {
				t.Errorf("error should be *Error for %s, got %T", path, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err.Error(), tt.want)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error should wrap %v, got %v", tt.wantIs, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	if !errors.Is(err, os.ErrNotExist) || !errors.Is(err, ErrInvalidManifest) {
		t.Fatalf("expected ErrInvalidManifest wrapping ErrNotExist, got %v", err)
	}
}

func TestManifest_InputsBadBase64(t *testing.T) {
	t.Parallel()

	m := &Manifest{Output: "a.zip", Entries: []Entry{{Name: "bad.bin", Content: "!!!", Encoding: EncodingBase64}}}
	_, err := m.Inputs()
	if !errors.Is(err, ErrInvalidManifest) || !strings.Contains(err.Error(), "bad.bin") {
		t.Fatalf("Inputs() error = %v, want invalid manifest naming the entry", err)
	}
}

func TestManifest_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedInputs(t, dir)
	m, err := Load(writeJob(t, dir, "job.cue", cueJob))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "dist")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("dist/ should not exist before Run, stat error = %v", err)
	}

	res, err := m.Run(context.Background(), archive.WithBufferSize(4))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"app.txt", "docs/README.md", "state.json", "blob.bin"}
	if diff := cmp.Diff(want, res.Names()); diff != "" {
		t.Errorf("entry names mismatch (-want +got):\n%s", diff)
	}

	zr, err := zip.OpenReader(filepath.Join(dir, "dist", "bundle.zip"))
	if err != nil {
		t.Fatalf("zip.OpenReader() error = %v", err)
	}
	defer testutil.DeferClose(t, zr)()

	contents := map[string]string{}
	for _, f := range zr.File {
		if f.Method != zip.Store {
			t.Errorf("%s: method = %d, want Store", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		testutil.MustClose(t, rc)
		if err != nil {
			t.Fatal(err)
		}
		contents[f.Name] = string(data)
	}
	wantContents := map[string]string{
		"app.txt":        "app binary",
		"docs/README.md": "# readme",
		"state.json":     `{"version":1}`,
		"blob.bin":       "\x00\x01\x02",
	}
	if diff := cmp.Diff(wantContents, contents); diff != "" {
		t.Errorf("contents mismatch (-want +got):\n%s", diff)
	}
}

func TestManifest_RunMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := Load(writeJob(t, dir, "job.toml", "output = \"out.zip\"\nfiles = [\"missing.txt\"]\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Run(context.Background())
	var ioErr *archive.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != archive.OpOpenInput {
		t.Fatalf("Run() error = %v, want open input IOError", err)
	}
	if ioErr.Path != filepath.Join(dir, "missing.txt") {
		t.Errorf("Path = %q, want resolved against manifest dir", ioErr.Path)
	}
}
