package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vaultbin/vaultbin/cmd/vaultd/models"
	"github.com/vaultbin/vaultbin/common/db"
	commonmodels "github.com/vaultbin/vaultbin/common/models"
)

// CollectionRepository handles database operations for collections
type CollectionRepository struct {
	db *db.DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *db.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Create inserts a new collection
func (r *CollectionRepository) Create(ctx context.Context, col *models.Collection) error {
	query := `
		INSERT INTO collection (id, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, col.ID, col.Name, col.OwnerID).Scan(&col.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// GetByID retrieves a collection by id
func (r *CollectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	query := `SELECT id, name, owner_id, created_at FROM collection WHERE id = $1`

	col := &models.Collection{}
	err := r.db.QueryRow(ctx, query, id).Scan(&col.ID, &col.Name, &col.OwnerID, &col.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, commonmodels.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return col, nil
}

// ListByOwner lists collections belonging to a tenant, newest first
func (r *CollectionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Collection, error) {
	query := `SELECT id, name, owner_id, created_at FROM collection WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var cols []*models.Collection
	for rows.Next() {
		col := &models.Collection{}
		if err := rows.Scan(&col.ID, &col.Name, &col.OwnerID, &col.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		cols = append(cols, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}

	return cols, nil
}

// Delete removes a collection; its entries go with it (ON DELETE CASCADE).
// Content records the entries pointed at stay behind for the reclamation
// sweep.
func (r *CollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM collection WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return commonmodels.ErrNotFound
	}

	return nil
}
