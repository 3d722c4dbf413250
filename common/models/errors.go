package models

import "errors"

// Storage error taxonomy shared by repositories and services.
// Repositories translate driver failures into these sentinels so callers
// can branch with errors.Is instead of inspecting SQLSTATE codes.
var (
	// ErrInvalidPayload means the caller supplied both or neither of the
	// text/binary payload representations, or omitted the media type.
	// Rejected before any I/O.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrChunkIntegrity means a multipart payload reassembled to a length
	// that does not match the recorded size.
	ErrChunkIntegrity = errors.New("chunk integrity failure")

	// ErrDigestCollision means two different payloads produced the same
	// digest under the same media type and kind. Surfaced instead of
	// silently merging distinct content.
	ErrDigestCollision = errors.New("content digest collision")

	// ErrDuplicateContent means an insert hit the unique index on
	// (digest, media_type, kind) — a concurrent writer won the race.
	ErrDuplicateContent = errors.New("duplicate content identity")

	// ErrContentInUse means a content record could not be deleted because
	// an entry still references it. The reclamation sweep sees this when a
	// listed orphan regains a reference before its deletion lands.
	ErrContentInUse = errors.New("content still referenced")
)
