package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection groups keyed entries under a tenant-scoped name.
// Maps to: collection table
type Collection struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
