package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

var errClosed = errors.New("minio: blob closed")

// partWriter uploads a blob on Close. Objects up to one part are sent with a
// single PUT; larger ones are uploaded part by part as the buffer fills, and
// the multipart upload is aborted if any step fails.
type partWriter struct {
	ctx      context.Context
	client   Client
	bucket   string
	key      string
	partSize int

	buf      []byte
	uploadID string
	parts    []minio.CompletePart
	closed   bool
	err      error
}

func (w *partWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errClosed
	}
	if w.err != nil {
		return 0, w.err
	}
	w.buf = append(w.buf, p...)
	// Keep one full part buffered so the last part is never empty.
	for len(w.buf) > w.partSize {
		if err := w.uploadPart(w.buf[:w.partSize]); err != nil {
			w.fail(err)
			return 0, err
		}
		w.buf = w.buf[w.partSize:]
	}
	return len(p), nil
}

func (w *partWriter) uploadPart(data []byte) error {
	if w.uploadID == "" {
		id, err := w.client.NewMultipartUpload(w.ctx, w.bucket, w.key, minio.PutObjectOptions{ContentType: contentType})
		if err != nil {
			return err
		}
		w.uploadID = id
	}
	n := len(w.parts) + 1
	part, err := w.client.PutObjectPart(w.ctx, w.bucket, w.key, w.uploadID, n,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
	if err != nil {
		return fmt.Errorf("minio: upload part %d of %s: %w", n, w.key, err)
	}
	w.parts = append(w.parts, minio.CompletePart{PartNumber: n, ETag: part.ETag})
	return nil
}

// fail records err and aborts the multipart upload, if one was started.
func (w *partWriter) fail(err error) {
	w.err = err
	if w.uploadID != "" {
		_ = w.client.AbortMultipartUpload(context.WithoutCancel(w.ctx), w.bucket, w.key, w.uploadID)
		w.uploadID = ""
	}
	w.buf = nil
}

// Close uploads the buffered data and completes the upload. Later calls
// return the first result.
func (w *partWriter) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}

	if w.uploadID == "" {
		_, err := w.client.PutObject(w.ctx, w.bucket, w.key, bytes.NewReader(w.buf), int64(len(w.buf)), "", "",
			minio.PutObjectOptions{ContentType: contentType})
		w.buf = nil
		w.err = err
		return err
	}

	if err := w.uploadPart(w.buf); err != nil {
		w.fail(err)
		return err
	}
	if _, err := w.client.CompleteMultipartUpload(w.ctx, w.bucket, w.key, w.uploadID, w.parts,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		w.fail(fmt.Errorf("minio: complete %s: %w", w.key, err))
		return w.err
	}
	w.buf = nil
	return nil
}

// Abort discards the upload.
func (w *partWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.fail(context.Canceled)
	return nil
}

// Sync is a no-op; data is committed on Close.
func (w *partWriter) Sync() error {
	return nil
}
