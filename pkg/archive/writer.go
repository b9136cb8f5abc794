// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"bufio"
	_ "crypto/sha256" // registers SHA-256 for digest.Canonical
	"errors"
	"hash/crc32"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	digest "github.com/opencontainers/go-digest"
)

// Writer creates ZIP archives. A Writer is immutable once built, so a single
// instance may be shared as long as each call has its own destination.
type Writer struct {
	opts Options
}

// New builds a Writer from DefaultOptions with opts applied in order.
func New(opts ...Option) (*Writer, error) {
	return build(DefaultOptions(), opts)
}

// Configure returns a new Writer with opts applied on top of w's options.
// w itself is not modified.
func (w *Writer) Configure(opts ...Option) (*Writer, error) {
	return build(w.opts, opts)
}

func build(base Options, opts []Option) (*Writer, error) {
	for _, opt := range opts {
		opt(&base)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &Writer{opts: base}, nil
}

// Options returns a copy of the Writer's configuration.
func (w *Writer) Options() Options { return w.opts }

// EntryName returns the archive entry name a file input at path would get.
func (w *Writer) EntryName(path string) string {
	return File(path).entryName(w.opts)
}

// CompressFilesToFile writes the files at paths into a new archive at outputPath.
func (w *Writer) CompressFilesToFile(outputPath string, paths []string) (*Result, error) {
	return w.CompressToFile(outputPath, Files(paths...))
}

// CompressFiles writes the files at paths as an archive to out.
func (w *Writer) CompressFiles(out io.Writer, paths []string) (*Result, error) {
	return w.CompressToStream(out, Files(paths...))
}

// CompressBytesToFile writes each name/content pair into a new archive at outputPath.
func (w *Writer) CompressBytesToFile(outputPath string, data map[string][]byte) (*Result, error) {
	return w.CompressToFile(outputPath, Entries(data))
}

// CompressBytes writes each name/content pair as an archive to out.
func (w *Writer) CompressBytes(out io.Writer, data map[string][]byte) (*Result, error) {
	return w.CompressToStream(out, Entries(data))
}

// CompressToFile creates (or truncates) outputPath and writes the archive to it.
// The file is closed on every path. On failure the partially written file is
// left in place.
func (w *Writer) CompressToFile(outputPath string, inputs []Input) (res *Result, err error) {
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, ioErr(OpCreateArchive, outputPath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			res, err = nil, ioErr(OpCloseArchive, outputPath, closeErr)
		}
	}()

	return w.CompressToStream(f, inputs)
}

// CompressToStream writes the archive to out. out is buffered internally and
// flushed before returning, but never closed.
//
// Inputs are processed in order. Each source is opened, copied in chunks of at
// most Options.BufferSize bytes, and closed before the next one is opened. The
// first failure stops the loop; the archive trailer is still written for the
// entries completed so far and the error is returned.
func (w *Writer) CompressToStream(out io.Writer, inputs []Input) (*Result, error) {
	logger := w.opts.logger()

	var (
		digester = digest.Canonical.Digester()
		counter  = &byteCounter{}
		bw       = bufio.NewWriter(io.MultiWriter(out, digester.Hash(), counter))
		zw       = zip.NewWriter(bw)
		buf      = make([]byte, w.opts.BufferSize)
		res      = &Result{Entries: make([]EntryInfo, 0, len(inputs))}
		err      error
	)

	if w.opts.Method == Deflated && w.opts.CompressionLevel != flate.DefaultCompression {
		level := w.opts.CompressionLevel
		zw.RegisterCompressor(zip.Deflate, func(dst io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(dst, level)
		})
	}

	for _, in := range inputs {
		info, addErr := w.add(zw, in, buf)
		if addErr != nil {
			err = addErr
			logger.Debug("aborting archive", "entry", info.Name, "err", addErr)
			break
		}
		res.Entries = append(res.Entries, info)
		logger.Debug("added entry", "name", info.Name, "size", info.Size, "method", info.Method)
	}

	if closeErr := zw.Close(); closeErr != nil && err == nil {
		err = ioErr(OpFinalizeArchive, "", closeErr)
	}
	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = ioErr(OpFinalizeArchive, "", flushErr)
	}
	if err != nil {
		return nil, err
	}

	res.Size = counter.n
	res.Digest = digester.Digest()
	logger.Debug("archive written", "entries", len(res.Entries), "size", res.Size, "digest", res.Digest)

	return res, nil
}

// add streams one input into a new entry. The source is closed before add
// returns, whatever the outcome.
func (w *Writer) add(zw *zip.Writer, in Input, buf []byte) (info EntryInfo, err error) {
	info = EntryInfo{Name: in.entryName(w.opts), Method: w.opts.Method}

	src, err := in.open(w.opts)
	if err != nil {
		return info, err
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = ioErr(OpReadInput, src.label, closeErr)
		}
	}()

	header := &zip.FileHeader{
		Name:     info.Name,
		Method:   w.opts.Method.zipMethod(),
		Modified: src.modified,
	}
	header.SetMode(src.mode)

	ew, err := zw.CreateHeader(header)
	if err != nil {
		return info, ioErr(OpCreateEntry, info.Name, err)
	}

	crc := crc32.NewIEEE()
	info.Size, err = copyChunks(io.MultiWriter(ew, crc), src, buf)
	if err != nil {
		return info, err
	}
	info.CRC32 = crc.Sum32()

	return info, nil
}

// copyChunks copies src into dst one buffer at a time; no single write exceeds
// len(buf). io.CopyBuffer would hand off to WriterTo/ReaderFrom and bypass buf.
func copyChunks(dst io.Writer, src *source, buf []byte) (int64, error) {
	var written int64
	for {
		n, readErr := src.r.Read(buf)
		if n > 0 {
			m, writeErr := dst.Write(buf[:n])
			written += int64(m)
			if writeErr != nil {
				return written, ioErr(OpWriteEntry, src.label, writeErr)
			}
			if m != n {
				return written, ioErr(OpWriteEntry, src.label, io.ErrShortWrite)
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, ioErr(OpReadInput, src.label, readErr)
		}
	}
}

func (m StorageMethod) zipMethod() uint16 {
	if m == Stored {
		return zip.Store
	}
	return zip.Deflate
}
