// Package digest fingerprints documents so runs can be traced to the exact
// bytes they read and wrote.
package digest

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest identifies a document by content.
type Digest struct {
	BLAKE3    string `json:"blake3"`
	SizeBytes int64  `json:"size_bytes"`
}

// Of computes the digest of data.
func Of(data []byte) Digest {
	return Digest{
		BLAKE3:    Blake3Hash(data),
		SizeBytes: int64(len(data)),
	}
}

// Blake3Hash computes the hex BLAKE3-256 hash of data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for console output.
func (d Digest) Short() string {
	if len(d.BLAKE3) < 12 {
		return d.BLAKE3
	}
	return d.BLAKE3[:12]
}
