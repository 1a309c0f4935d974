package bitmapio

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/colmask/bitmap"
	"github.com/hupe1980/colmask/blobstore"
	"github.com/hupe1980/colmask/resource"
)

// Save streams bm into the blob name. The blob appears once the upload
// completes. Writes are throttled by the resource controller, if one is set.
func Save(ctx context.Context, store blobstore.BlobStore, name string, bm *bitmap.Bitmap, opts ...Option) (err error) {
	o := applyOptions(opts)
	start := time.Now()
	n := 0
	enc := o.encoding

	defer func() {
		o.metrics.RecordEncode(enc, n, time.Since(start), err)
		o.logger.LogStore(ctx, name, n, err)
	}()

	h, payload, err := frame(bm, o.encoding)
	enc = h.encoding
	if err != nil {
		return err
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("bitmapio: create %s: %w", name, err)
	}

	bw := bufio.NewWriter(resource.NewRateLimitedWriter(ctx, w, o.rc))
	if n, err = writeFrame(bw, h, payload); err == nil {
		err = bw.Flush()
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("bitmapio: save %s: %w", name, err)
	}
	return nil
}

// Load reads the bitmap stored under name.
//
// If the blob is Mappable and holds a raw payload, the bitmap references the
// blob's bytes and the blob is closed when the last handle is released.
// Otherwise the blob is streamed through the decoder and closed before Load
// returns.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*bitmap.Bitmap, error) {
	o := applyOptions(opts)
	start := time.Now()

	bm, zeroCopy, err := load(ctx, store, name, o)

	o.metrics.RecordOpen(zeroCopy, time.Since(start), err)
	o.logger.LogOpen(ctx, name, zeroCopy, err)
	return bm, err
}

func load(ctx context.Context, store blobstore.BlobStore, name string, o *options) (*bitmap.Bitmap, bool, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, false, err
	}
	release := func() {
		if err := blob.Close(); err != nil {
			o.logger.Warn("close blob failed", "name", name, "error", err)
		}
	}

	if blob.Size() < HeaderSize {
		release()
		return nil, false, fmt.Errorf("%w: %s: %d bytes", ErrCorrupt, name, blob.Size())
	}

	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			release()
			return nil, false, err
		}
		h, payload, err := split(data, o)
		if err != nil {
			release()
			return nil, false, fmt.Errorf("%s: %w", name, err)
		}
		bm, zeroCopy, err := decodeView(h, payload, o, release)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", name, err)
		}
		return bm, zeroCopy, nil
	}

	defer release()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()

	r := bufio.NewReader(resource.NewRateLimitedReader(ctx, rc, o.rc))
	bm, _, _, err := decodeStream(r, o)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", name, err)
	}
	return bm, false, nil
}
