package minio

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/colmask/blobstore"
)

const (
	// DefaultPartSize is the buffered size at which Create switches to a
	// multipart upload. S3 requires parts of at least 5 MiB.
	DefaultPartSize = 16 << 20

	contentType = "application/vnd.colmask.bitmap"
	listPage    = 1000
)

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	partSize int
}

var _ blobstore.BlobStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPartSize sets the multipart threshold and part size for Create.
func WithPartSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.partSize = n
		}
	}
}

// NewStore creates a blob store over client.
// rootPrefix is prepended to all keys (e.g. "bitmaps/").
func NewStore(client Client, bucket, rootPrefix string, opts ...Option) *Store {
	s := &Store{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(rootPrefix, "/"),
		partSize: DefaultPartSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New connects to endpoint and returns a Store for bucket.
func New(endpoint string, opts *minio.Options, bucket, rootPrefix string, storeOpts ...Option) (*Store, error) {
	core, err := minio.NewCore(endpoint, opts)
	if err != nil {
		return nil, err
	}
	return NewStore(core, bucket, rootPrefix, storeOpts...), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open stats the object and returns a handle that reads byte ranges.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &minioBlob{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

// Create buffers writes and uploads them on Close, switching to a multipart
// upload once more than one part has been written.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &partWriter{
		ctx:      ctx,
		client:   s.client,
		bucket:   s.bucket,
		key:      s.key(name),
		partSize: s.partSize,
	}, nil
}

// Put uploads data in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), "", "",
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Delete removes a blob. Deleting a missing blob succeeds.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the sorted names under prefix, relative to the root prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := prefix
	if s.prefix != "" {
		fullPrefix = s.prefix + "/" + prefix
	}

	var names []string
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := s.client.ListObjectsV2(s.bucket, fullPrefix, "", token, "", listPage)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := obj.Key
			if s.prefix != "" {
				name = strings.TrimPrefix(name, s.prefix+"/")
			}
			names = append(names, name)
		}
		if !page.IsTruncated || page.NextContinuationToken == "" {
			break
		}
		token = page.NextContinuationToken
	}
	sort.Strings(names)
	return names, nil
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
