package models

import "time"

// ContentKind discriminates the payload representation of a content record.
type ContentKind string

const (
	KindText   ContentKind = "text"
	KindBinary ContentKind = "binary"
)

// ContentRecord is an immutable, deduplicated unit of stored payload.
// Identity is (digest, media_type, kind); the unique index on those columns
// is what makes find-or-create safe under concurrent writers.
// Maps to: content table
type ContentRecord struct {
	// Surrogate id, assigned on insert, never reused
	ID int64 `db:"id" json:"id"`

	// Hex-encoded 160-bit content digest of the payload bytes
	Digest string `db:"digest" json:"digest"`

	// Payload representation: 'text' or 'binary'
	Kind ContentKind `db:"kind" json:"kind"`

	// Caller-supplied type tag, part of dedup identity
	// Examples: 'text/plain', 'application/octet-stream'
	MediaType string `db:"media_type" json:"media_type"`

	// Inline text payload (kind='text' only)
	TextValue *string `db:"text_value" json:"text_value,omitempty"`

	// Inline binary payload (kind='binary', single-part only).
	// For multipart records the row stores no bytes; Get() fills this
	// field with the reassembled payload before returning.
	Blob []byte `db:"blob" json:"blob,omitempty"`

	// True when the binary payload lives in content_chunk rows
	IsMultipart bool `db:"is_multipart" json:"is_multipart"`

	// Total payload length in bytes
	SizeBytes int64 `db:"size_bytes" json:"size_bytes"`

	// Creation timestamp
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PayloadBytes returns the stored payload as raw bytes, whichever
// representation the record carries.
func (r *ContentRecord) PayloadBytes() []byte {
	if r.Kind == KindText && r.TextValue != nil {
		return []byte(*r.TextValue)
	}
	return r.Blob
}

// ChunkRecord is one ordered slice of a multipart content record's payload.
// Chunks are written in ascending index order and must be read back the same
// way; the index is the sole reassembly contract.
// Maps to: content_chunk table
type ChunkRecord struct {
	ContentID int64  `db:"content_id" json:"content_id"`
	Index     int    `db:"idx" json:"idx"`
	Bytes     []byte `db:"bytes" json:"bytes"`
}

// Payload is the caller-facing input to find-or-create. Exactly one of
// Text/Binary must be populated: Text non-nil means a text payload, Binary
// non-nil means a binary payload (a non-nil empty slice is a valid
// zero-length binary).
type Payload struct {
	Text   *string
	Binary []byte
}

// Validate enforces the exactly-one-representation contract.
func (p Payload) Validate(mediaType string) error {
	if mediaType == "" {
		return ErrInvalidPayload
	}
	if p.Text != nil && p.Binary != nil {
		return ErrInvalidPayload
	}
	if p.Text == nil && p.Binary == nil {
		return ErrInvalidPayload
	}
	return nil
}

// Kind returns the payload's representation discriminator.
func (p Payload) Kind() ContentKind {
	if p.Text != nil {
		return KindText
	}
	return KindBinary
}

// Bytes returns the payload as raw bytes. Text payloads are measured and
// hashed as their UTF-8 byte encoding.
func (p Payload) Bytes() []byte {
	if p.Text != nil {
		return []byte(*p.Text)
	}
	return p.Binary
}
