package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vaultbin/vaultbin/common/db"
	"github.com/vaultbin/vaultbin/common/models"
)

// SQLSTATEs for constraint violations
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// ContentRepository handles database operations for content records and
// their chunks. It is the storage adapter of the value store: whatever the
// driver hands back, callers only ever see canonical []byte payloads and
// models types.
type ContentRepository struct {
	db *db.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *db.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = `id, digest, kind, media_type, text_value, blob, is_multipart, size_bytes, created_at`

func scanContent(row pgx.Row) (*models.ContentRecord, error) {
	rec := &models.ContentRecord{}
	err := row.Scan(
		&rec.ID,
		&rec.Digest,
		&rec.Kind,
		&rec.MediaType,
		&rec.TextValue,
		&rec.Blob,
		&rec.IsMultipart,
		&rec.SizeBytes,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetRecord retrieves a content record by id. The inline blob (if any) is
// returned as stored; multipart payloads are fetched separately via
// ChunkPayloads.
func (r *ContentRepository) GetRecord(ctx context.Context, id int64) (*models.ContentRecord, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = $1`

	rec, err := scanContent(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content record: %w", err)
	}

	return rec, nil
}

// FindByIdentity looks up a content record by its dedup identity.
// Returns (nil, nil) on a miss.
func (r *ContentRepository) FindByIdentity(ctx context.Context, digest, mediaType string, kind models.ContentKind) (*models.ContentRecord, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE digest = $1 AND media_type = $2 AND kind = $3`

	rec, err := scanContent(r.db.QueryRow(ctx, query, digest, mediaType, kind))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find content by identity: %w", err)
	}

	return rec, nil
}

// InsertInline inserts a single-part content record and fills in its
// assigned id and creation time. A concurrent duplicate insert returns
// models.ErrDuplicateContent.
func (r *ContentRepository) InsertInline(ctx context.Context, rec *models.ContentRecord) error {
	query := `
		INSERT INTO content (digest, kind, media_type, text_value, blob, is_multipart, size_bytes)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		rec.Digest,
		rec.Kind,
		rec.MediaType,
		rec.TextValue,
		rec.Blob,
		rec.SizeBytes,
	).Scan(&rec.ID, &rec.CreatedAt)

	if isUniqueViolation(err) {
		return models.ErrDuplicateContent
	}
	if err != nil {
		return fmt.Errorf("failed to insert content record: %w", err)
	}

	return nil
}

// InsertMultipart inserts a multipart content record and its chunks in one
// transaction: the record row plus every chunk commit together, so readers
// never observe a multipart record with missing chunks. Chunks are written
// as a single batch in index order.
func (r *ContentRepository) InsertMultipart(ctx context.Context, rec *models.ContentRecord, chunks [][]byte) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO content (digest, kind, media_type, text_value, blob, is_multipart, size_bytes)
		VALUES ($1, $2, $3, NULL, NULL, TRUE, $4)
		RETURNING id, created_at
	`

	err = tx.QueryRow(ctx, query,
		rec.Digest,
		rec.Kind,
		rec.MediaType,
		rec.SizeBytes,
	).Scan(&rec.ID, &rec.CreatedAt)

	if isUniqueViolation(err) {
		return models.ErrDuplicateContent
	}
	if err != nil {
		return fmt.Errorf("failed to insert multipart content record: %w", err)
	}

	batch := &pgx.Batch{}
	for i, chunk := range chunks {
		batch.Queue(
			`INSERT INTO content_chunk (content_id, idx, bytes) VALUES ($1, $2, $3)`,
			rec.ID, i, chunk,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert content chunk: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close chunk batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit multipart insert: %w", err)
	}

	rec.IsMultipart = true
	return nil
}

// ChunkPayloads retrieves the chunk payloads of a multipart record in
// ascending index order. Each payload is copied into a fresh buffer so the
// caller always gets canonical byte slices regardless of how the driver
// represents the rows on the wire.
func (r *ContentRepository) ChunkPayloads(ctx context.Context, contentID int64) ([][]byte, error) {
	query := `SELECT bytes FROM content_chunk WHERE content_id = $1 ORDER BY idx ASC`

	rows, err := r.db.Query(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query content chunks: %w", err)
	}
	defer rows.Close()

	var chunks [][]byte
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan content chunk: %w", err)
		}
		buf := make([]byte, len(raw))
		copy(buf, raw)
		chunks = append(chunks, buf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content chunks: %w", err)
	}

	return chunks, nil
}

// DeleteRecord deletes a content record and all of its chunks in one
// transaction. Returns models.ErrNotFound if the record doesn't exist, and
// models.ErrContentInUse if an entry still references it (the entry table's
// foreign key is the authoritative reference check).
func (r *ContentRepository) DeleteRecord(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM content_chunk WHERE content_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete content chunks: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return models.ErrContentInUse
	}
	if err != nil {
		return fmt.Errorf("failed to delete content record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit content delete: %w", err)
	}

	return nil
}

// ListOrphans returns ids of content records no entry references, oldest
// first. Records younger than olderThan are skipped: a find-or-create in
// flight writes its content row before its entry row, and the grace period
// keeps the sweep from deleting content that is about to be referenced.
func (r *ContentRepository) ListOrphans(ctx context.Context, olderThan time.Duration, limit int) ([]int64, error) {
	query := `
		SELECT c.id
		FROM content c
		LEFT JOIN entry e ON e.content_id = c.id
		WHERE e.id IS NULL
		  AND c.created_at < now() - make_interval(secs => $1)
		ORDER BY c.id ASC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, olderThan.Seconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned content: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan orphan id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orphan ids: %w", err)
	}

	return ids, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
