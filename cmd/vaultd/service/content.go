package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vaultbin/vaultbin/common/cache"
	"github.com/vaultbin/vaultbin/common/chunker"
	"github.com/vaultbin/vaultbin/common/digest"
	"github.com/vaultbin/vaultbin/common/logger"
	"github.com/vaultbin/vaultbin/common/models"
)

// ContentRepo is the row-store boundary of the content store. The
// implementation owns wire-shape normalization: chunk payloads always come
// back as canonical []byte buffers in ascending index order.
type ContentRepo interface {
	GetRecord(ctx context.Context, id int64) (*models.ContentRecord, error)
	FindByIdentity(ctx context.Context, digest, mediaType string, kind models.ContentKind) (*models.ContentRecord, error)
	InsertInline(ctx context.Context, rec *models.ContentRecord) error
	InsertMultipart(ctx context.Context, rec *models.ContentRecord, chunks [][]byte) error
	ChunkPayloads(ctx context.Context, contentID int64) ([][]byte, error)
	DeleteRecord(ctx context.Context, id int64) error
	ListOrphans(ctx context.Context, olderThan time.Duration, limit int) ([]int64, error)
}

// ContentService owns find-or-create semantics over immutable, deduplicated
// content records. Payloads larger than the chunker's block size are stored
// as ordered chunks and reassembled transparently on read; callers never see
// chunking as a concept.
type ContentService struct {
	repo          ContentRepo
	chunker       *chunker.Chunker
	cache         cache.Cache // optional read-through payload cache
	cacheTTL      time.Duration
	cacheMaxBytes int
	log           *logger.Logger
}

// NewContentService creates a new content service. contentCache may be nil
// to disable payload caching.
func NewContentService(repo ContentRepo, ch *chunker.Chunker, contentCache cache.Cache, cacheTTL time.Duration, cacheMaxBytes int, log *logger.Logger) *ContentService {
	return &ContentService{
		repo:          repo,
		chunker:       ch,
		cache:         contentCache,
		cacheTTL:      cacheTTL,
		cacheMaxBytes: cacheMaxBytes,
		log:           log,
	}
}

// FindOrCreate returns the content record for the given payload, creating it
// if no identical content exists. Identity is (digest, mediaType, kind) plus
// a byte-level equality check on the stored payload, so two payloads that
// collide on the hash are detected instead of silently merged.
//
// Exactly one of payload.Text / payload.Binary must be supplied; anything
// else fails with ErrInvalidPayload before any I/O.
func (s *ContentService) FindOrCreate(ctx context.Context, payload models.Payload, mediaType string) (*models.ContentRecord, error) {
	if err := payload.Validate(mediaType); err != nil {
		return nil, err
	}

	data := payload.Bytes()
	dg := digest.Bytes(data)
	kind := payload.Kind()

	existing, err := s.repo.FindByIdentity(ctx, dg, mediaType, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing content: %w", err)
	}
	if existing != nil {
		s.log.Debug("content already exists", "content_id", existing.ID, "digest", dg)
		return s.verifyDedupHit(ctx, existing, data)
	}

	rec, err := s.create(ctx, payload, data, dg, mediaType, kind)
	if errors.Is(err, models.ErrDuplicateContent) {
		// Lost the insert race: a concurrent writer created the same
		// identity between our lookup and insert. Re-read and return
		// the winner instead of erroring.
		winner, lookupErr := s.repo.FindByIdentity(ctx, dg, mediaType, kind)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to re-read content after duplicate insert: %w", lookupErr)
		}
		if winner == nil {
			return nil, err
		}
		s.log.Debug("dedup race resolved to existing record", "content_id", winner.ID, "digest", dg)
		return s.verifyDedupHit(ctx, winner, data)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("stored content",
		"content_id", rec.ID,
		"digest", dg,
		"kind", kind,
		"media_type", mediaType,
		"multipart", rec.IsMultipart,
		"size_bytes", rec.SizeBytes,
	)
	return rec, nil
}

// Get retrieves a content record with its full payload. Multipart records
// are reassembled from their chunks in index order; a length mismatch
// against the recorded size fails with ErrChunkIntegrity rather than
// returning truncated data.
func (s *ContentService) Get(ctx context.Context, id int64) (*models.ContentRecord, error) {
	if rec, ok := s.fromCache(ctx, id); ok {
		return rec, nil
	}

	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.IsMultipart {
		buf, err := s.reassemble(ctx, rec)
		if err != nil {
			return nil, err
		}
		rec.Blob = buf
	}

	s.toCache(ctx, rec)
	return rec, nil
}

// Delete removes a content record and all of its chunks. No reference check
// is performed; the reclamation sweep is the only caller that can prove a
// record is unreferenced.
func (s *ContentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRecord(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, contentCacheKey(id)); err != nil {
			s.log.Warn("failed to drop cached content", "content_id", id, "error", err)
		}
	}

	s.log.Info("deleted content", "content_id", id)
	return nil
}

// verifyDedupHit confirms a candidate record really holds the same bytes
// before reusing it. Text payloads are compared as strings; binary payloads
// cost one read-back of the stored bytes. A mismatch means the digest
// collided on different content.
func (s *ContentService) verifyDedupHit(ctx context.Context, existing *models.ContentRecord, data []byte) (*models.ContentRecord, error) {
	if existing.Kind == models.KindText {
		if existing.TextValue == nil || *existing.TextValue != string(data) {
			return nil, fmt.Errorf("%w: text content %d matches digest %s but not payload", models.ErrDigestCollision, existing.ID, existing.Digest)
		}
		return existing, nil
	}

	stored := existing.Blob
	if existing.IsMultipart {
		buf, err := s.reassemble(ctx, existing)
		if err != nil {
			return nil, err
		}
		existing.Blob = buf
		stored = buf
	}

	if !bytes.Equal(stored, data) {
		return nil, fmt.Errorf("%w: binary content %d matches digest %s but not payload", models.ErrDigestCollision, existing.ID, existing.Digest)
	}

	return existing, nil
}

func (s *ContentService) create(ctx context.Context, payload models.Payload, data []byte, dg, mediaType string, kind models.ContentKind) (*models.ContentRecord, error) {
	rec := &models.ContentRecord{
		Digest:    dg,
		Kind:      kind,
		MediaType: mediaType,
		SizeBytes: int64(len(data)),
	}

	switch {
	case kind == models.KindText:
		text := *payload.Text
		rec.TextValue = &text
		if err := s.repo.InsertInline(ctx, rec); err != nil {
			return nil, err
		}

	case len(data) > s.chunker.BlockSize():
		rec.IsMultipart = true
		chunks := s.chunker.Split(data)
		if err := s.repo.InsertMultipart(ctx, rec, chunks); err != nil {
			return nil, err
		}

	default:
		rec.Blob = data
		if err := s.repo.InsertInline(ctx, rec); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

func (s *ContentService) reassemble(ctx context.Context, rec *models.ContentRecord) ([]byte, error) {
	chunks, err := s.repo.ChunkPayloads(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks for content %d: %w", rec.ID, err)
	}

	buf := s.chunker.Reassemble(chunks)
	if int64(len(buf)) != rec.SizeBytes {
		return nil, fmt.Errorf("%w: content %d reassembled to %d bytes, recorded size is %d",
			models.ErrChunkIntegrity, rec.ID, len(buf), rec.SizeBytes)
	}

	return buf, nil
}

func contentCacheKey(id int64) string {
	return fmt.Sprintf("content:%d", id)
}

func (s *ContentService) fromCache(ctx context.Context, id int64) (*models.ContentRecord, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, found, err := s.cache.Get(ctx, contentCacheKey(id))
	if err != nil || !found {
		return nil, false
	}

	rec := &models.ContentRecord{}
	if err := json.Unmarshal(raw, rec); err != nil {
		s.log.Warn("failed to decode cached content", "content_id", id, "error", err)
		return nil, false
	}

	return rec, true
}

func (s *ContentService) toCache(ctx context.Context, rec *models.ContentRecord) {
	if s.cache == nil || rec.SizeBytes > int64(s.cacheMaxBytes) {
		return
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, contentCacheKey(rec.ID), raw, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache content", "content_id", rec.ID, "error", err)
	}
}
