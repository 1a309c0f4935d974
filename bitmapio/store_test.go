package bitmapio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colmask/bitmap"
	"github.com/hupe1980/colmask/blobstore"
	"github.com/hupe1980/colmask/resource"
)

// streamOnlyStore hides Mappable so Load takes the streaming path.
type streamOnlyStore struct {
	blobstore.BlobStore
}

func (s streamOnlyStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return streamOnlyBlob{b}, nil
}

type streamOnlyBlob struct {
	blobstore.Blob
}

func TestSaveLoad_Stores(t *testing.T) {
	ctx := context.Background()
	src := offsetBitmap(t, randomBitmap(t, 31, 4099, 0.4), 6)

	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
		"stream": streamOnlyStore{blobstore.NewMemoryStore()},
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			for _, enc := range allEncodings {
				blobName := "cols/" + enc.String() + ".cmsk"
				require.NoError(t, Save(ctx, store, blobName, src, WithEncoding(enc)))

				metrics := &BasicMetricsCollector{}
				bm, err := Load(ctx, store, blobName, WithMetricsCollector(metrics))
				require.NoError(t, err)
				assert.True(t, bm.Equal(src), "%s", enc)

				// Dense random bits do not compress, so LZ4 and ZSTD fall
				// back to raw payloads.
				wantZeroCopy := name != "stream" && enc != EncodingRoaring
				assert.Equal(t, wantZeroCopy, metrics.GetStats().ZeroCopyOpens == 1, "%s", enc)
				bm.Release()
			}

			names, err := store.List(ctx, "cols/")
			require.NoError(t, err)
			assert.Len(t, names, len(allEncodings))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := Load(ctx, store, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, "short", []byte("CMSK")))
	_, err = Load(ctx, store, "short")
	assert.ErrorIs(t, err, ErrCorrupt)

	data, err := Marshal(parseBits(t, "1"))
	require.NoError(t, err)
	data[5] = 7
	require.NoError(t, store.Put(ctx, "encoding", data))
	_, err = Load(ctx, store, "encoding")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
	_, err = Load(ctx, streamOnlyStore{store}, "encoding")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestLoad_StreamingAllocator(t *testing.T) {
	ctx := context.Background()
	store := streamOnlyStore{blobstore.NewMemoryStore()}
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   1 << 16,
		IOLimitBytesPerSec: 1 << 20,
	})
	src := randomBitmap(t, 32, 16000, 0.5)

	require.NoError(t, Save(ctx, store, "a", src, WithResourceController(rc)))
	bm, err := Load(ctx, store, "a",
		WithResourceController(rc),
		WithAllocator(bitmap.NewBudgetAllocator(rc)),
	)
	require.NoError(t, err)
	assert.True(t, bm.Equal(src))
	assert.Equal(t, int64(2000), rc.MemoryUsage())
	bm.Release()
	assert.Zero(t, rc.MemoryUsage())
}
