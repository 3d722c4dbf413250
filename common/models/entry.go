package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// KeyedEntry is a caller-visible named record that references one content
// record. Many entries may share the same content record — that sharing is
// the dedup payoff. Deleting an entry never touches the content record;
// orphaned content is collected by the reclamation sweep.
// Maps to: entry table
type KeyedEntry struct {
	ID uuid.UUID `db:"id" json:"id"`

	// Owning collection; (collection_id, path) is unique
	CollectionID uuid.UUID `db:"collection_id" json:"collection_id"`

	// Caller-chosen key within the collection, e.g. 'configs/prod.yaml'
	Path string `db:"path" json:"path"`

	// Tenant that created the entry
	OwnerID string `db:"owner_id" json:"owner_id"`

	// The content record this entry points at
	ContentID int64 `db:"content_id" json:"content_id"`

	// Free-form caller metadata, edited via JSON merge patch
	Metadata json.RawMessage `db:"metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
