package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vaultbin/vaultbin/common/db"
	"github.com/vaultbin/vaultbin/common/models"
)

// EntryRepository handles database operations for keyed entries
type EntryRepository struct {
	db *db.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *db.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `id, collection_id, path, owner_id, content_id, metadata, created_at, updated_at`

func scanEntry(row pgx.Row) (*models.KeyedEntry, error) {
	e := &models.KeyedEntry{}
	err := row.Scan(
		&e.ID,
		&e.CollectionID,
		&e.Path,
		&e.OwnerID,
		&e.ContentID,
		&e.Metadata,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Upsert inserts an entry or, if (collection_id, path) already exists,
// repoints the existing row at the new content record and replaces its
// metadata. The entry keeps its original id and created_at on conflict.
func (r *EntryRepository) Upsert(ctx context.Context, entry *models.KeyedEntry) error {
	if entry.Metadata == nil {
		entry.Metadata = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO entry (id, collection_id, path, owner_id, content_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (collection_id, path) DO UPDATE
			SET content_id = EXCLUDED.content_id,
			    metadata   = EXCLUDED.metadata,
			    updated_at = now()
		RETURNING ` + entryColumns

	updated, err := scanEntry(r.db.QueryRow(ctx, query,
		entry.ID,
		entry.CollectionID,
		entry.Path,
		entry.OwnerID,
		entry.ContentID,
		entry.Metadata,
	))
	if isForeignKeyViolation(err) {
		// The referenced collection or content row vanished between the
		// caller's lookup and this insert
		return fmt.Errorf("entry references a deleted row: %w", models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}

	*entry = *updated
	return nil
}

// GetByPath retrieves an entry by its collection and path
func (r *EntryRepository) GetByPath(ctx context.Context, collectionID uuid.UUID, path string) (*models.KeyedEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entry WHERE collection_id = $1 AND path = $2`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, collectionID, path))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

// ListByCollection lists all entries in a collection ordered by path
func (r *EntryRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*models.KeyedEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entry WHERE collection_id = $1 ORDER BY path ASC`

	rows, err := r.db.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.KeyedEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// SetMetadata replaces an entry's metadata without touching its content
// pointer (the metadata-only edit path)
func (r *EntryRepository) SetMetadata(ctx context.Context, id uuid.UUID, metadata json.RawMessage) error {
	query := `UPDATE entry SET metadata = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, metadata)
	if err != nil {
		return fmt.Errorf("failed to update entry metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes an entry row only; the content record it points at is
// untouched and becomes reclaimable once nothing else references it
func (r *EntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM entry WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
