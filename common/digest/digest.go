// Package digest computes content digests for the value store.
//
// The digest is the dedup identity of a payload (together with media type
// and payload kind). It is deterministic and stable across runs but not a
// binary-identity guarantee on its own: callers must pair digest equality
// with a size or byte-level check before treating two payloads as the same.
package digest

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Size is the digest length in bytes (160 bits). BLAKE3's XOF lets us
// truncate to the identity width the content table stores.
const Size = 20

// Bytes returns the hex-encoded digest of a byte payload.
func Bytes(data []byte) string {
	h := blake3.New()
	h.Write(data)

	var sum [Size]byte
	h.Digest().Read(sum[:])
	return hex.EncodeToString(sum[:])
}

// Text returns the hex-encoded digest of a text payload, hashed over its
// UTF-8 byte encoding.
func Text(s string) string {
	return Bytes([]byte(s))
}
