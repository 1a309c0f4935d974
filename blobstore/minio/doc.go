// Package minio provides a BlobStore backed by MinIO or any other
// S3-compatible object store (Ceph, Garage, SeaweedFS).
//
// # Basic Usage
//
//	store, err := minioblob.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	}, "my-bucket", "bitmaps/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = bitmapio.Save(ctx, store, "orders/valid.cmsk", bm)
//
// Store talks to the low-level minio.Core API through the Client interface.
// Blobs are read with ranged GETs, so bitmapio.Load streams them through the
// decoder rather than mapping them.
//
// # Uploads
//
// Create buffers up to one part (DefaultPartSize, see WithPartSize). A blob
// that fits is sent with a single PUT on Close; a larger one becomes a
// multipart upload, which is aborted if a part or the completion fails.
package minio
