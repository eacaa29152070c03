package file

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_DoesNotCount(t *testing.T) {
	f := newFixture(t)
	owner := ownerID()
	res := f.upload(t, owner, "report.pdf", []byte("%PDF-1.7"))

	info, err := f.resolver.Describe(context.Background(), res.PublicID)
	require.NoError(t, err)
	assert.Equal(t, res.PublicID, info.PublicID)
	assert.Equal(t, "report.pdf", info.DisplayName)
	assert.Equal(t, int64(8), info.SizeBytes)

	records, err := f.registry.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), records[0].DownloadCount)
}

func TestFetch_UnknownOrMalformedID(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"", "nope", "../../etc/passwd", NewPublicID(), "5F0C1D2E-8A4B-4C3D-9E8F-0A1B2C3D4E5F"} {
		_, err := f.resolver.Fetch(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
}

func TestFetch_OrphanMetadataIsNotFound(t *testing.T) {
	f := newFixture(t)
	owner := ownerID()
	res := f.upload(t, owner, "a.txt", []byte("hello"))
	before := testutil.ToFloat64(integrityFaultsTotal.WithLabelValues(faultOrphanMetadata))

	// Blob vanishes underneath a live row.
	require.NoError(t, f.blobs.MemoryStorage.Delete(context.Background(), StoragePath(owner, res.PublicID, "a.txt")))

	_, err := f.resolver.Fetch(context.Background(), res.PublicID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.resolver.Describe(context.Background(), res.PublicID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before+2, testutil.ToFloat64(integrityFaultsTotal.WithLabelValues(faultOrphanMetadata)))

	records, err := f.registry.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), records[0].DownloadCount)
}

func TestFetch_StorageReadFailed(t *testing.T) {
	f := newFixture(t)
	res := f.upload(t, ownerID(), "a.txt", []byte("hello"))
	f.blobs.setGetErr(errors.New("connection reset"))

	_, err := f.resolver.Fetch(context.Background(), res.PublicID)
	assert.ErrorIs(t, err, ErrStorageReadFailed)
	assert.False(t, IsHidden(err))
}

func TestFetch_IncrementFailureClosesBody(t *testing.T) {
	f := newFixture(t)
	owner := ownerID()
	res := f.upload(t, owner, "a.txt", []byte("hello"))
	f.meta.setIncrErr(errors.New("db down"))

	_, err := f.resolver.Fetch(context.Background(), res.PublicID)
	assert.ErrorIs(t, err, ErrMetadataWriteFailed)
	assert.Equal(t, 1, f.blobs.closedBodies())

	f.meta.setIncrErr(nil)
	got, _ := f.fetchAll(t, res.PublicID)
	assert.Equal(t, []byte("hello"), got)

	records, err := f.registry.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), records[0].DownloadCount, "only the served download is counted")
}

func TestFetch_StaleCacheEntry(t *testing.T) {
	f := newFixture(t)
	owner := ownerID()
	res := f.upload(t, owner, "a.txt", []byte("hello"))
	_, err := f.resolver.Describe(context.Background(), res.PublicID)
	require.NoError(t, err)

	// Remove both halves behind the cache's back.
	records, err := f.registry.List(context.Background(), owner)
	require.NoError(t, err)
	require.NoError(t, f.meta.DeleteByID(context.Background(), records[0].ID))
	require.NoError(t, f.blobs.MemoryStorage.Delete(context.Background(), records[0].StoragePath))

	_, err = f.resolver.Fetch(context.Background(), res.PublicID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok := f.cache.Get(res.PublicID)
	assert.False(t, ok, "stale entry is dropped")
}

func TestFetch_RowGoneBetweenLookupAndIncrement(t *testing.T) {
	f := newFixture(t)
	owner := ownerID()
	res := f.upload(t, owner, "a.txt", []byte("hello"))
	_, err := f.resolver.Describe(context.Background(), res.PublicID)
	require.NoError(t, err)

	// Row removed but the blob is still there and the cache still holds the record.
	records, err := f.registry.List(context.Background(), owner)
	require.NoError(t, err)
	require.NoError(t, f.meta.DeleteByID(context.Background(), records[0].ID))

	_, err = f.resolver.Fetch(context.Background(), res.PublicID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, f.blobs.closedBodies())
}

func TestResolver_WorksWithoutCache(t *testing.T) {
	meta := newMemMeta()
	blobs := newFaultyStorage()
	registry := NewRegistry(meta, blobs, NewLinkCache(0, 0), baseURL, 0, nil)
	resolver := NewResolver(meta, blobs, nil, nil)

	res, err := registry.Upload(context.Background(), UploadInput{OwnerID: ownerID(), Filename: "a.txt", Size: -1, Body: nil})
	require.Error(t, err)
	assert.Nil(t, res)

	up := &fixture{meta: meta, blobs: blobs, registry: registry, resolver: resolver}
	created := up.upload(t, ownerID(), "b.txt", []byte("bee"))
	got, _ := up.fetchAll(t, created.PublicID)
	assert.Equal(t, []byte("bee"), got)
}
