// SPDX-License-Identifier: MPL-2.0

package archive

import digest "github.com/opencontainers/go-digest"

type (
	// Result summarizes a completed archive.
	Result struct {
		// Entries lists the written entries in archive order.
		Entries []EntryInfo
		// Size is the number of archive bytes written to the destination.
		Size int64
		// Digest is the SHA-256 digest of those bytes.
		Digest digest.Digest
	}

	// EntryInfo describes one written entry.
	EntryInfo struct {
		Name string
		// Size is the uncompressed content length.
		Size int64
		// CRC32 is the IEEE checksum of the uncompressed content, as stored in the archive.
		CRC32  uint32
		Method StorageMethod
	}

	byteCounter struct {
		n int64
	}
)

// Names returns the entry names in archive order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Name
	}
	return names
}

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
