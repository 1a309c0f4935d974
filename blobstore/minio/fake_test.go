package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
)

var errInjected = errors.New("injected failure")

type fakeUpload struct {
	key   string
	parts map[int][]byte
}

// fakeClient is an in-memory Client. Only the bucket given to newFakeClient
// exists.
type fakeClient struct {
	mu       sync.Mutex
	bucket   string
	objects  map[string][]byte
	uploads  map[string]*fakeUpload
	nextID   int
	pageSize int
	failPart int

	aborted        int
	completedParts int
}

var _ Client = (*fakeClient)(nil)

func newFakeClient(bucket string) *fakeClient {
	return &fakeClient{
		bucket:  bucket,
		objects: make(map[string][]byte),
		uploads: make(map[string]*fakeUpload),
	}
}

func noSuchKey(key string) error {
	return minio.ErrorResponse{Code: "NoSuchKey", Key: key, StatusCode: http.StatusNotFound}
}

func (f *fakeClient) checkBucket(bucket string) error {
	if bucket != f.bucket {
		return minio.ErrorResponse{Code: "NoSuchBucket", BucketName: bucket, StatusCode: http.StatusNotFound}
	}
	return nil
}

func (f *fakeClient) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	return data, ok
}

func (f *fakeClient) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if err := f.checkBucket(bucket); err != nil {
		return minio.ObjectInfo{}, err
	}
	data, ok := f.object(key)
	if !ok {
		return minio.ObjectInfo{}, noSuchKey(key)
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeClient) GetObject(_ context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, minio.ObjectInfo, http.Header, error) {
	if err := f.checkBucket(bucket); err != nil {
		return nil, minio.ObjectInfo{}, nil, err
	}
	data, ok := f.object(key)
	if !ok {
		return nil, minio.ObjectInfo{}, nil, noSuchKey(key)
	}
	var start, end int
	if _, err := fmt.Sscanf(opts.Header().Get("Range"), "bytes=%d-%d", &start, &end); err != nil {
		return nil, minio.ObjectInfo{}, nil, err
	}
	end = min(end, len(data)-1)
	body := io.NopCloser(bytes.NewReader(data[start : end+1]))
	return body, minio.ObjectInfo{Key: key, Size: int64(end + 1 - start)}, http.Header{}, nil
}

func (f *fakeClient) PutObject(_ context.Context, bucket, key string, data io.Reader, size int64, _, _ string, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if err := f.checkBucket(bucket); err != nil {
		return minio.UploadInfo{}, err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if int64(len(b)) != size {
		return minio.UploadInfo{}, fmt.Errorf("put %s: got %d bytes, declared %d", key, len(b), size)
	}
	f.mu.Lock()
	f.objects[key] = b
	f.mu.Unlock()
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeClient) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	if err := f.checkBucket(bucket); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return noSuchKey(key)
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeClient) ListObjectsV2(bucket, prefix, _, token, _ string, maxKeys int) (minio.ListBucketV2Result, error) {
	if err := f.checkBucket(bucket); err != nil {
		return minio.ListBucketV2Result{}, err
	}
	f.mu.Lock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	f.mu.Unlock()
	sort.Strings(keys)

	start := 0
	if token != "" {
		start, _ = strconv.Atoi(token)
	}
	if f.pageSize > 0 {
		maxKeys = min(maxKeys, f.pageSize)
	}
	end := min(start+maxKeys, len(keys))

	res := minio.ListBucketV2Result{Name: bucket, Prefix: prefix}
	for _, k := range keys[start:end] {
		res.Contents = append(res.Contents, minio.ObjectInfo{Key: k})
	}
	if end < len(keys) {
		res.IsTruncated = true
		res.NextContinuationToken = strconv.Itoa(end)
	}
	return res, nil
}

func (f *fakeClient) NewMultipartUpload(_ context.Context, bucket, key string, _ minio.PutObjectOptions) (string, error) {
	if err := f.checkBucket(bucket); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := "upload-" + strconv.Itoa(f.nextID)
	f.uploads[id] = &fakeUpload{key: key, parts: make(map[int][]byte)}
	return id, nil
}

func (f *fakeClient) PutObjectPart(_ context.Context, _, key, uploadID string, partID int, data io.Reader, size int64, _ minio.PutObjectPartOptions) (minio.ObjectPart, error) {
	if partID == f.failPart {
		return minio.ObjectPart{}, errInjected
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return minio.ObjectPart{}, err
	}
	if int64(len(b)) != size {
		return minio.ObjectPart{}, fmt.Errorf("part %d: got %d bytes, declared %d", partID, len(b), size)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	up, ok := f.uploads[uploadID]
	if !ok || up.key != key {
		return minio.ObjectPart{}, minio.ErrorResponse{Code: "NoSuchUpload"}
	}
	up.parts[partID] = b
	return minio.ObjectPart{PartNumber: partID, ETag: fmt.Sprintf("etag-%d", partID), Size: size}, nil
}

func (f *fakeClient) CompleteMultipartUpload(_ context.Context, bucket, key, uploadID string, parts []minio.CompletePart, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	up, ok := f.uploads[uploadID]
	if !ok || up.key != key {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchUpload"}
	}
	var obj []byte
	for i, p := range parts {
		if p.PartNumber != i+1 || p.ETag != fmt.Sprintf("etag-%d", i+1) {
			return minio.UploadInfo{}, minio.ErrorResponse{Code: "InvalidPart"}
		}
		obj = append(obj, up.parts[p.PartNumber]...)
	}
	delete(f.uploads, uploadID)
	f.objects[key] = obj
	f.completedParts = len(parts)
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(obj))}, nil
}

func (f *fakeClient) AbortMultipartUpload(_ context.Context, _, _, uploadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.uploads[uploadID]; !ok {
		return minio.ErrorResponse{Code: "NoSuchUpload"}
	}
	delete(f.uploads, uploadID)
	f.aborted++
	return nil
}
