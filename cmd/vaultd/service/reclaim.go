package service

import (
	"context"
	"errors"
	"time"

	"github.com/vaultbin/vaultbin/common/logger"
	"github.com/vaultbin/vaultbin/common/models"
)

// Entries reference content records without reference counting, so deleting
// or repointing an entry leaves its old content behind. The sweep is the
// explicit reclamation pass that deletes content records no entry references
// anymore.

// orphanGracePeriod keeps the sweep away from content written by a
// find-or-create whose entry row hasn't landed yet
const orphanGracePeriod = 1 * time.Hour

// ReclaimService deletes orphaned content records in batches
type ReclaimService struct {
	repo      ContentRepo
	content   *ContentService
	batchSize int
	log       *logger.Logger
}

// NewReclaimService creates a new reclamation service
func NewReclaimService(repo ContentRepo, content *ContentService, batchSize int, log *logger.Logger) *ReclaimService {
	if batchSize < 1 {
		batchSize = 500
	}
	return &ReclaimService{
		repo:      repo,
		content:   content,
		batchSize: batchSize,
		log:       log,
	}
}

// Sweep deletes orphaned content records until none remain, returning how
// many were reclaimed. Records younger than the grace period are never
// touched, and a listed orphan that regains a reference before its deletion
// lands (a dedup hit on old content) is skipped, so the sweep can run
// alongside normal traffic.
func (s *ReclaimService) Sweep(ctx context.Context) (int, error) {
	total := 0

	for {
		ids, err := s.repo.ListOrphans(ctx, orphanGracePeriod, s.batchSize)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if err := s.content.Delete(ctx, id); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					// Another sweeper got there first
					continue
				}
				if errors.Is(err, models.ErrContentInUse) {
					s.log.Debug("skipping re-referenced content", "content_id", id)
					continue
				}
				return total, err
			}
			total++
		}
	}

	s.log.Info("reclamation sweep complete", "reclaimed", total)
	return total, nil
}
