package repository

import (
	"context"
	"fmt"

	"github.com/vaultbin/vaultbin/common/db"
)

// Schema for the value store and its caller-facing tables.
//
// The unique index on content (digest, media_type, kind) is what closes the
// check-then-insert race in find-or-create: a concurrent duplicate insert
// fails with SQLSTATE 23505 and the loser re-reads the winner's row.
const schema = `
CREATE TABLE IF NOT EXISTS content (
	id           BIGSERIAL PRIMARY KEY,
	digest       TEXT NOT NULL,
	kind         TEXT NOT NULL CHECK (kind IN ('text', 'binary')),
	media_type   TEXT NOT NULL,
	text_value   TEXT,
	blob         BYTEA,
	is_multipart BOOLEAN NOT NULL DEFAULT FALSE,
	size_bytes   BIGINT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS content_identity
	ON content (digest, media_type, kind);

CREATE TABLE IF NOT EXISTS content_chunk (
	content_id BIGINT NOT NULL REFERENCES content(id),
	idx        INT NOT NULL,
	bytes      BYTEA NOT NULL,
	PRIMARY KEY (content_id, idx)
);

CREATE TABLE IF NOT EXISTS collection (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (owner_id, name)
);

CREATE TABLE IF NOT EXISTS entry (
	id            UUID PRIMARY KEY,
	collection_id UUID NOT NULL REFERENCES collection(id) ON DELETE CASCADE,
	path          TEXT NOT NULL,
	owner_id      TEXT NOT NULL,
	content_id    BIGINT NOT NULL REFERENCES content(id),
	metadata      JSONB NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (collection_id, path)
);

CREATE INDEX IF NOT EXISTS entry_content_id ON entry (content_id);
`

// InitSchema creates the storage tables if they don't exist.
// Wired into bootstrap via WithDBInitHook.
func InitSchema(database *db.DB) error {
	if _, err := database.Exec(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
