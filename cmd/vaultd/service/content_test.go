package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultbin/vaultbin/common/cache"
	"github.com/vaultbin/vaultbin/common/chunker"
	"github.com/vaultbin/vaultbin/common/logger"
	"github.com/vaultbin/vaultbin/common/models"
)

const testBlockSize = 1000

// fakeContentRepo is an in-memory ContentRepo for service tests
type fakeContentRepo struct {
	nextID  int64
	records map[int64]*models.ContentRecord
	chunks  map[int64][][]byte
	// ids with a simulated referencing entry: skipped by ListOrphans and
	// refused by DeleteRecord, like the entry foreign key would
	inUse map[int64]bool

	getCalls int
	// onInsert, when set, runs before each insert. Used to simulate a
	// concurrent writer sneaking in between lookup and insert.
	onInsert func() error
	// onListOrphans, when set, runs after an orphan listing is built but
	// before it is returned. Used to simulate a re-reference landing
	// between listing and deletion.
	onListOrphans func()
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{
		records: make(map[int64]*models.ContentRecord),
		chunks:  make(map[int64][][]byte),
		inUse:   make(map[int64]bool),
	}
}

func (f *fakeContentRepo) GetRecord(ctx context.Context, id int64) (*models.ContentRecord, error) {
	f.getCalls++
	rec, ok := f.records[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeContentRepo) FindByIdentity(ctx context.Context, digest, mediaType string, kind models.ContentKind) (*models.ContentRecord, error) {
	for _, rec := range f.records {
		if rec.Digest == digest && rec.MediaType == mediaType && rec.Kind == kind {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeContentRepo) insert(rec *models.ContentRecord) error {
	if f.onInsert != nil {
		if err := f.onInsert(); err != nil {
			return err
		}
	}
	for _, existing := range f.records {
		if existing.Digest == rec.Digest && existing.MediaType == rec.MediaType && existing.Kind == rec.Kind {
			return models.ErrDuplicateContent
		}
	}
	f.nextID++
	rec.ID = f.nextID
	rec.CreatedAt = time.Now()
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

func (f *fakeContentRepo) InsertInline(ctx context.Context, rec *models.ContentRecord) error {
	return f.insert(rec)
}

func (f *fakeContentRepo) InsertMultipart(ctx context.Context, rec *models.ContentRecord, chunks [][]byte) error {
	if err := f.insert(rec); err != nil {
		return err
	}
	stored := make([][]byte, len(chunks))
	for i, c := range chunks {
		stored[i] = append([]byte(nil), c...)
	}
	f.chunks[rec.ID] = stored
	return nil
}

func (f *fakeContentRepo) ChunkPayloads(ctx context.Context, contentID int64) ([][]byte, error) {
	return f.chunks[contentID], nil
}

func (f *fakeContentRepo) DeleteRecord(ctx context.Context, id int64) error {
	if _, ok := f.records[id]; !ok {
		return models.ErrNotFound
	}
	if f.inUse[id] {
		return models.ErrContentInUse
	}
	delete(f.records, id)
	delete(f.chunks, id)
	return nil
}

func (f *fakeContentRepo) ListOrphans(ctx context.Context, olderThan time.Duration, limit int) ([]int64, error) {
	var ids []int64
	for id := range f.records {
		if f.inUse[id] {
			continue
		}
		ids = append(ids, id)
		if len(ids) == limit {
			break
		}
	}
	if f.onListOrphans != nil {
		f.onListOrphans()
	}
	return ids, nil
}

func newTestContentService(repo ContentRepo, contentCache cache.Cache) *ContentService {
	log := logger.New("error", "text")
	return NewContentService(repo, chunker.New(testBlockSize), contentCache, time.Minute, 1<<20, log)
}

func strptr(s string) *string { return &s }

func TestFindOrCreate_TextDedup(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	first, err := svc.FindOrCreate(ctx, models.Payload{Text: strptr("hello")}, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, models.KindText, first.Kind)
	assert.Equal(t, int64(5), first.SizeBytes)
	assert.False(t, first.IsMultipart)

	second, err := svc.FindOrCreate(ctx, models.Payload{Text: strptr("hello")}, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "identical payloads must share one record")
	assert.Len(t, repo.records, 1)
}

func TestFindOrCreate_MediaTypeSplitsIdentity(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	a, err := svc.FindOrCreate(ctx, models.Payload{Text: strptr("hello")}, "text/plain")
	require.NoError(t, err)
	b, err := svc.FindOrCreate(ctx, models.Payload{Text: strptr("hello")}, "text/markdown")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID, "same bytes under different media types are distinct records")
	assert.Equal(t, a.Digest, b.Digest)
}

func TestFindOrCreate_InvalidPayload(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	cases := []struct {
		name      string
		payload   models.Payload
		mediaType string
	}{
		{"neither set", models.Payload{}, "text/plain"},
		{"both set", models.Payload{Text: strptr("x"), Binary: []byte("x")}, "text/plain"},
		{"missing media type", models.Payload{Text: strptr("x")}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FindOrCreate(ctx, tc.payload, tc.mediaType)
			assert.ErrorIs(t, err, models.ErrInvalidPayload)
		})
	}
	assert.Empty(t, repo.records, "invalid payloads must not reach the store")
}

func TestFindOrCreate_EmptyBinary(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	rec, err := svc.FindOrCreate(ctx, models.Payload{Binary: []byte{}}, "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.SizeBytes)
	assert.False(t, rec.IsMultipart)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PayloadBytes())
}

func TestFindOrCreate_MultipartThreshold(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	// Exactly block size stays inline
	atLimit := bytes.Repeat([]byte{0xAB}, testBlockSize)
	rec, err := svc.FindOrCreate(ctx, models.Payload{Binary: atLimit}, "application/octet-stream")
	require.NoError(t, err)
	assert.False(t, rec.IsMultipart)
	assert.Empty(t, repo.chunks[rec.ID])

	// One byte over splits into two chunks, the last holding one byte
	overLimit := bytes.Repeat([]byte{0xCD}, testBlockSize+1)
	rec2, err := svc.FindOrCreate(ctx, models.Payload{Binary: overLimit}, "application/octet-stream")
	require.NoError(t, err)
	assert.True(t, rec2.IsMultipart)
	require.Len(t, repo.chunks[rec2.ID], 2)
	assert.Len(t, repo.chunks[rec2.ID][0], testBlockSize)
	assert.Len(t, repo.chunks[rec2.ID][1], 1)
}

func TestGet_RoundTripAcrossSizes(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	for _, n := range []int{0, 1, testBlockSize - 1, testBlockSize, testBlockSize + 1, 3 * testBlockSize, 5*testBlockSize + 7} {
		t.Run(fmt.Sprintf("size_%d", n), func(t *testing.T) {
			data := make([]byte, n)
			for i := range data {
				data[i] = byte(i % 251)
			}

			rec, err := svc.FindOrCreate(ctx, models.Payload{Binary: data}, "application/octet-stream")
			require.NoError(t, err)
			assert.Equal(t, int64(n), rec.SizeBytes)

			got, err := svc.Get(ctx, rec.ID)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(data, got.PayloadBytes()), "payload must survive the round trip unchanged")

			expectedChunks := 0
			if n > testBlockSize {
				expectedChunks = (n + testBlockSize - 1) / testBlockSize
			}
			assert.Len(t, repo.chunks[rec.ID], expectedChunks)
		})
	}
}

func TestGet_ChunkIntegrity(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	data := bytes.Repeat([]byte{0x01}, 3*testBlockSize)
	rec, err := svc.FindOrCreate(ctx, models.Payload{Binary: data}, "application/octet-stream")
	require.NoError(t, err)

	// Drop the middle chunk
	repo.chunks[rec.ID] = [][]byte{repo.chunks[rec.ID][0], repo.chunks[rec.ID][2]}

	_, err = svc.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, models.ErrChunkIntegrity)
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestContentService(newFakeContentRepo(), nil)
	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFindOrCreate_DigestCollision(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	data := []byte("the real payload")
	rec, err := svc.FindOrCreate(ctx, models.Payload{Binary: data}, "application/octet-stream")
	require.NoError(t, err)

	// Corrupt the stored bytes so the identity matches but the payload
	// does not: this is what a hash collision would look like.
	repo.records[rec.ID].Blob = []byte("something else entirely")

	_, err = svc.FindOrCreate(ctx, models.Payload{Binary: data}, "application/octet-stream")
	assert.ErrorIs(t, err, models.ErrDigestCollision)
}

func TestFindOrCreate_InsertRaceResolvesToWinner(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	data := []byte("contended payload")

	// First insert attempt is beaten by a concurrent writer storing the
	// same identity; the service must re-read and return the winner.
	raced := false
	repo.onInsert = func() error {
		if raced {
			return nil
		}
		raced = true
		hook := repo.onInsert
		repo.onInsert = nil
		_, err := svc.FindOrCreate(ctx, models.Payload{Binary: data}, "application/octet-stream")
		repo.onInsert = hook
		if err != nil {
			return err
		}
		return models.ErrDuplicateContent
	}

	rec, err := svc.FindOrCreate(ctx, models.Payload{Binary: data}, "application/octet-stream")
	require.NoError(t, err)
	assert.Len(t, repo.records, 1, "the race must not produce duplicate records")
	assert.Equal(t, data, rec.Blob)
}

func TestDelete_RemovesRecordAndChunks(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestContentService(repo, nil)
	ctx := context.Background()

	keep, err := svc.FindOrCreate(ctx, models.Payload{Binary: []byte("keep me")}, "application/octet-stream")
	require.NoError(t, err)
	drop, err := svc.FindOrCreate(ctx, models.Payload{Binary: bytes.Repeat([]byte{0xFF}, 2*testBlockSize)}, "application/octet-stream")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, drop.ID))

	_, err = svc.Get(ctx, drop.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, repo.chunks[drop.ID])

	// Unrelated content is untouched
	got, err := svc.Get(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("keep me"), got.PayloadBytes())
}

func TestGet_ServesFromCache(t *testing.T) {
	repo := newFakeContentRepo()
	memCache := cache.NewMemoryCache(logger.New("error", "text"))
	defer memCache.Close()
	svc := newTestContentService(repo, memCache)
	ctx := context.Background()

	rec, err := svc.FindOrCreate(ctx, models.Payload{Text: strptr("cached value")}, "text/plain")
	require.NoError(t, err)

	first, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	callsAfterFirst := repo.getCalls

	second, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, repo.getCalls, "second read must be served from cache")
	assert.Equal(t, first.PayloadBytes(), second.PayloadBytes())
}
