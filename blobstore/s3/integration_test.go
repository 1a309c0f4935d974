package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colmask/bitmapio"
)

func TestIntegration_SaveLoad(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test-colmask-%d/", time.Now().UnixNano())
	store, err := NewFromDefaultConfig(ctx, bucket, prefix)
	require.NoError(t, err)

	src := sparseBitmap(t, 1<<23, 13)
	for _, enc := range []bitmapio.Encoding{bitmapio.EncodingRaw, bitmapio.EncodingRoaring} {
		name := enc.String() + ".cmsk"
		require.NoError(t, bitmapio.Save(ctx, store, name, src, bitmapio.WithEncoding(enc)))

		bm, err := bitmapio.Load(ctx, store, name)
		require.NoError(t, err)
		assert.True(t, bm.Equal(src), "%s", enc)
		bm.Release()
	}

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"raw.cmsk", "roaring.cmsk"}, names)

	for _, name := range names {
		require.NoError(t, store.Delete(ctx, name))
	}
}
