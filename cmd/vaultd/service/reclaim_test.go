package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultbin/vaultbin/common/logger"
	"github.com/vaultbin/vaultbin/common/models"
)

func TestSweep_DeletesOrphansInBatches(t *testing.T) {
	repo := newFakeContentRepo()
	content := newTestContentService(repo, nil)
	svc := NewReclaimService(repo, content, 2, logger.New("error", "text"))
	ctx := context.Background()

	// The fake repo reports every record as orphaned
	for i := 0; i < 5; i++ {
		data := bytes.Repeat([]byte{byte(i)}, 10)
		_, err := content.FindOrCreate(ctx, models.Payload{Binary: data}, "application/octet-stream")
		require.NoError(t, err)
	}
	_, err := content.FindOrCreate(ctx, models.Payload{Binary: bytes.Repeat([]byte{0xEE}, 2*testBlockSize)}, "application/octet-stream")
	require.NoError(t, err)

	reclaimed, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, reclaimed)
	assert.Empty(t, repo.records)
	assert.Empty(t, repo.chunks)
}

func TestSweep_SkipsContentRereferencedAfterListing(t *testing.T) {
	repo := newFakeContentRepo()
	content := newTestContentService(repo, nil)
	svc := NewReclaimService(repo, content, 10, logger.New("error", "text"))
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		rec, err := content.FindOrCreate(ctx, models.Payload{Binary: []byte{byte(i)}}, "application/octet-stream")
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	// A dedup hit re-references the second orphan after it was listed but
	// before its deletion lands; the sweep must skip it and keep going.
	revived := ids[1]
	repo.onListOrphans = func() {
		repo.onListOrphans = nil
		repo.inUse[revived] = true
	}

	reclaimed, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, reclaimed)

	_, ok := repo.records[revived]
	assert.True(t, ok, "re-referenced content must survive the sweep")
}

func TestSweep_EmptyStore(t *testing.T) {
	repo := newFakeContentRepo()
	content := newTestContentService(repo, nil)
	svc := NewReclaimService(repo, content, 0, logger.New("error", "text"))

	reclaimed, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reclaimed)
}
