package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/vaultbin/vaultbin/common/logger"
	"github.com/vaultbin/vaultbin/common/models"
)

// EntryRepo is the row-store boundary for keyed entries
type EntryRepo interface {
	Upsert(ctx context.Context, entry *models.KeyedEntry) error
	GetByPath(ctx context.Context, collectionID uuid.UUID, path string) (*models.KeyedEntry, error)
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*models.KeyedEntry, error)
	SetMetadata(ctx context.Context, id uuid.UUID, metadata json.RawMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EntryService is the reference layer: it associates caller-visible keyed
// records with content records obtained from the content store. Many entries
// may point at the same content record; deleting an entry never deletes the
// content it references.
type EntryService struct {
	repo    EntryRepo
	content *ContentService
	log     *logger.Logger
}

// NewEntryService creates a new entry service
func NewEntryService(repo EntryRepo, content *ContentService, log *logger.Logger) *EntryService {
	return &EntryService{
		repo:    repo,
		content: content,
		log:     log,
	}
}

// Put stores a value under (collectionID, path). The payload goes through
// the content store's find-or-create, so identical values across entries
// share one content record. An existing entry is repointed at the new
// content; its previous content record is left behind for the reclamation
// sweep. Content-store failures (ErrInvalidPayload, ErrNotFound) pass
// through unchanged.
func (s *EntryService) Put(ctx context.Context, collectionID uuid.UUID, path, ownerID string, payload models.Payload, mediaType string, metadata json.RawMessage) (*models.KeyedEntry, error) {
	log := s.log.WithOwner(ownerID).WithCollection(collectionID.String())

	rec, err := s.content.FindOrCreate(ctx, payload, mediaType)
	if err != nil {
		return nil, err
	}

	entry := &models.KeyedEntry{
		ID:           uuid.New(),
		CollectionID: collectionID,
		Path:         path,
		OwnerID:      ownerID,
		ContentID:    rec.ID,
		Metadata:     metadata,
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		// A dedup hit can hand back an old orphan that the reclamation
		// sweep deletes before the entry row lands; the insert then fails
		// its content reference. Recreate the content and retry once.
		rec, err = s.content.FindOrCreate(ctx, payload, mediaType)
		if err != nil {
			return nil, err
		}
		entry.ContentID = rec.ID
		if err := s.repo.Upsert(ctx, entry); err != nil {
			return nil, err
		}
		log.Debug("recreated content swept mid-put", "content_id", rec.ID)
	}

	log.Info("stored entry",
		"entry_id", entry.ID,
		"path", path,
		"content_id", rec.ID,
	)
	return entry, nil
}

// Get retrieves an entry and its content record with the full payload
func (s *EntryService) Get(ctx context.Context, collectionID uuid.UUID, path string) (*models.KeyedEntry, *models.ContentRecord, error) {
	entry, err := s.repo.GetByPath(ctx, collectionID, path)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.content.Get(ctx, entry.ContentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load content for entry %s: %w", entry.ID, err)
	}

	return entry, rec, nil
}

// List lists the entries of a collection
func (s *EntryService) List(ctx context.Context, collectionID uuid.UUID) ([]*models.KeyedEntry, error) {
	return s.repo.ListByCollection(ctx, collectionID)
}

// PatchMetadata applies an RFC 7386 merge patch to an entry's metadata.
// This is the metadata-only edit path: the entry's content pointer is
// untouched.
func (s *EntryService) PatchMetadata(ctx context.Context, collectionID uuid.UUID, path string, patch json.RawMessage) (*models.KeyedEntry, error) {
	entry, err := s.repo.GetByPath(ctx, collectionID, path)
	if err != nil {
		return nil, err
	}

	current := entry.Metadata
	if len(current) == 0 {
		current = json.RawMessage(`{}`)
	}

	merged, err := jsonpatch.MergePatch(current, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to apply metadata patch: %w", err)
	}

	if err := s.repo.SetMetadata(ctx, entry.ID, merged); err != nil {
		return nil, err
	}

	entry.Metadata = merged
	s.log.Info("patched entry metadata", "entry_id", entry.ID, "path", path)
	return entry, nil
}

// Delete removes the entry row only. The referenced content record stays
// behind (possibly shared by other entries) until the reclamation sweep
// proves it orphaned.
func (s *EntryService) Delete(ctx context.Context, collectionID uuid.UUID, path string) error {
	entry, err := s.repo.GetByPath(ctx, collectionID, path)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		return err
	}

	s.log.WithCollection(collectionID.String()).Info("deleted entry", "entry_id", entry.ID, "path", path)
	return nil
}
