// SPDX-License-Identifier: MPL-2.0

package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets

	"github.com/zipkit/zipkit/pkg/archive"
)

// ContentType is set on every blob written through this package.
const ContentType = "application/zip"

// ErrInvalidDestination is returned for URLs without an object key.
var ErrInvalidDestination = errors.New("invalid destination")

type blobWriter struct {
	w      *blob.Writer
	bucket *blob.Bucket // closed after w when non-nil
}

// IsURL reports whether dest is a blob URL rather than a filesystem path.
// Windows drive letters ("C:\out.zip") are not URLs.
func IsURL(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return len(u.Scheme) > 1 && strings.Contains(dest, "://")
}

// Split returns the bucket URL and object key for a blob destination.
//
// For file:// the bucket is the parent directory and the key is the base
// name. For every other scheme the bucket is scheme://host plus the query and
// the key is the URL path without its leading slash.
func Split(dest string) (bucketURL, key string, err error) {
	u, err := url.Parse(dest)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidDestination, err)
	}

	if u.Scheme == "file" {
		dir, base := path.Split(u.Path)
		if base == "" {
			return "", "", fmt.Errorf("%w: %s has no file name", ErrInvalidDestination, dest)
		}
		bu := *u
		bu.Path = strings.TrimSuffix(dir, "/")
		if bu.Path == "" {
			bu.Path = "/"
		}
		return bu.String(), base, nil
	}

	key = strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %s has no object key", ErrInvalidDestination, dest)
	}
	bu := url.URL{Scheme: u.Scheme, Host: u.Host, RawQuery: u.RawQuery}
	return bu.String(), key, nil
}

// Open returns a writer for dest. Plain paths are created (or truncated) with
// os.Create. Blob URLs open a bucket that is closed together with the writer.
// Failures are reported as *archive.IOError with Op archive.OpCreateArchive.
func Open(ctx context.Context, dest string) (io.WriteCloser, error) {
	if !IsURL(dest) {
		f, err := os.Create(dest)
		if err != nil {
			return nil, &archive.IOError{Op: archive.OpCreateArchive, Path: dest, Err: err}
		}
		return f, nil
	}

	bucketURL, key, err := Split(dest)
	if err != nil {
		return nil, &archive.IOError{Op: archive.OpCreateArchive, Path: dest, Err: err}
	}

	if strings.HasPrefix(bucketURL, "file://") {
		if u, perr := url.Parse(bucketURL); perr == nil {
			if err := os.MkdirAll(filepath.FromSlash(u.Path), 0o755); err != nil {
				return nil, &archive.IOError{Op: archive.OpCreateArchive, Path: dest, Err: err}
			}
		}
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, &archive.IOError{Op: archive.OpCreateArchive, Path: dest, Err: err}
	}

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: ContentType})
	if err != nil {
		_ = bucket.Close()
		return nil, &archive.IOError{Op: archive.OpCreateArchive, Path: dest, Err: err}
	}

	return &blobWriter{w: w, bucket: bucket}, nil
}

// NewWriter returns a writer for key in an already opened bucket. Closing it
// commits the object but leaves bucket open.
func NewWriter(ctx context.Context, bucket *blob.Bucket, key string) (io.WriteCloser, error) {
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: ContentType})
	if err != nil {
		return nil, &archive.IOError{Op: archive.OpCreateArchive, Path: key, Err: err}
	}
	return &blobWriter{w: w}, nil
}

func (b *blobWriter) Write(p []byte) (int, error) {
	return b.w.Write(p)
}

// Close commits the blob, then closes the bucket if the writer owns it.
func (b *blobWriter) Close() (err error) {
	if b.bucket != nil {
		defer func() {
			if closeErr := b.bucket.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
	}
	return b.w.Close()
}
