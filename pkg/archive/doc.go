// SPDX-License-Identifier: MPL-2.0

// Package archive writes ZIP archives from files on disk and in-memory buffers.
//
// A Writer holds an immutable set of Options (read buffer size, storage method,
// entry-name prefix handling) and streams each input into its own archive entry:
//
//	w, err := archive.New(archive.WithPrefix("build/"))
//	if err != nil {
//		return err
//	}
//	res, err := w.CompressFilesToFile("dist.zip", []string{"build/app", "build/README.md"})
//
// Inputs are processed in order, one source open at a time. Any I/O failure
// aborts the whole operation and is reported as an *IOError (errors.Is(err, ErrIO)).
// A failed call may leave a partially written destination behind; removing it
// is the caller's decision.
//
// The ZIP container itself is produced by github.com/klauspost/compress/zip, so
// archives are readable by any standard unzip tool.
package archive
