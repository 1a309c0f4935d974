package bitmapio

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/colmask/bitmap"
	"github.com/hupe1980/colmask/internal/mmap"
	"github.com/hupe1980/colmask/resource"
)

// WriteFile encodes bm into path. The file is written to a temporary name,
// synced, and renamed into place. Writes are throttled by the resource
// controller, if one is set.
func WriteFile(ctx context.Context, path string, bm *bitmap.Bitmap, opts ...Option) (err error) {
	o := applyOptions(opts)
	start := time.Now()
	n := 0
	enc := o.encoding

	defer func() {
		o.metrics.RecordEncode(enc, n, time.Since(start), err)
		o.logger.LogStore(ctx, path, n, err)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	h, payload, err := frame(bm, o.encoding)
	enc = h.encoding
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(resource.NewRateLimitedWriter(ctx, f, o.rc))
	if n, err = writeFrame(bw, h, payload); err != nil {
		return fmt.Errorf("bitmapio: write %s: %w", path, err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("bitmapio: write %s: %w", path, err)
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Open memory-maps a bitmap file.
//
// A raw payload is not copied: the returned bitmap references the mapping,
// which is unmapped when the last handle is released. Other encodings are
// decoded into new storage and the file is unmapped before Open returns.
func Open(path string, opts ...Option) (*bitmap.Bitmap, error) {
	o := applyOptions(opts)
	start := time.Now()

	bm, zeroCopy, err := openMapped(path, o)

	o.metrics.RecordOpen(zeroCopy, time.Since(start), err)
	o.logger.LogOpen(context.Background(), path, zeroCopy, err)
	return bm, err
}

func openMapped(path string, o *options) (*bitmap.Bitmap, bool, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, false, err
	}
	release := func() {
		if err := m.Close(); err != nil {
			o.logger.Warn("unmap failed", "name", path, "error", err)
		}
	}

	if m.Size() < HeaderSize {
		release()
		return nil, false, fmt.Errorf("%w: %s: %d bytes", ErrCorrupt, path, m.Size())
	}
	h, payload, err := split(m.Bytes(), o)
	if err != nil {
		release()
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}

	region, err := m.Region(HeaderSize, len(payload))
	if err != nil {
		release()
		return nil, false, err
	}
	pattern := mmap.AccessSequential
	if h.encoding == EncodingRaw {
		pattern = mmap.AccessRandom
	}
	if err := region.Advise(pattern); err != nil {
		o.logger.Warn("madvise failed", "name", path, "error", err)
	}

	bm, zeroCopy, err := decodeView(h, region.Bytes(), o, release)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	return bm, zeroCopy, nil
}
