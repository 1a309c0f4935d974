// Package s3 provides an S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.NewFromDefaultConfig(ctx, "my-bucket", "bitmaps/")
//	if err != nil { ... }
//
//	err = bitmapio.Save(ctx, store, "orders/valid.cmsk", bm)
//
// # Features
//
//   - Range reads via GetObject
//   - Streaming multipart uploads through the transfer manager
//   - CRC32C checksums on upload
//   - Automatic pagination for listing
package s3
