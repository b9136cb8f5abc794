// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/zipkit/zipkit/pkg/archive"
	"github.com/zipkit/zipkit/pkg/sink"
)

// Run writes the archive described by m to its destination. base options
// (typically the user's configured defaults) are applied first, so the
// manifest's own settings win. Missing parent directories of a local
// destination are created.
func (m *Manifest) Run(ctx context.Context, base ...archive.Option) (res *archive.Result, err error) {
	w, err := archive.New(slices.Concat(base, m.Options())...)
	if err != nil {
		return nil, err
	}

	inputs, err := m.Inputs()
	if err != nil {
		return nil, err
	}

	dest := m.Destination()
	if !sink.IsURL(dest) {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, &archive.IOError{Op: archive.OpCreateArchive, Path: dest, Err: err}
		}
	}
	out, err := sink.Open(ctx, dest)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			res, err = nil, &archive.IOError{Op: archive.OpCloseArchive, Path: dest, Err: closeErr}
		}
	}()

	return w.CompressToStream(out, inputs)
}
