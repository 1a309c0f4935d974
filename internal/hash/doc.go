// Package hash provides the CRC32-Castagnoli checksum used for bitmap file
// payloads and S3 upload integrity headers.
//
//	checksum := hash.CRC32C(payload)
package hash
