package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/vaultbin/vaultbin/cmd/vaultd/models"
	"github.com/vaultbin/vaultbin/cmd/vaultd/repository"
	"github.com/vaultbin/vaultbin/common/logger"
)

// CollectionService handles collection catalog operations
type CollectionService struct {
	repo *repository.CollectionRepository
	log  *logger.Logger
}

// NewCollectionService creates a new collection service
func NewCollectionService(repo *repository.CollectionRepository, log *logger.Logger) *CollectionService {
	return &CollectionService{
		repo: repo,
		log:  log,
	}
}

// Create creates a collection owned by a tenant
func (s *CollectionService) Create(ctx context.Context, name, ownerID string) (*models.Collection, error) {
	col := &models.Collection{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: ownerID,
	}

	if err := s.repo.Create(ctx, col); err != nil {
		return nil, err
	}

	s.log.WithOwner(ownerID).Info("created collection", "collection_id", col.ID, "name", name)
	return col, nil
}

// GetByID retrieves a collection by id
func (s *CollectionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByOwner lists a tenant's collections
func (s *CollectionService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Collection, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes a collection and its entries. Content records stay behind
// for the reclamation sweep.
func (s *CollectionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("deleted collection", "collection_id", id)
	return nil
}
