// Package blobstore abstracts where exported document snapshots live.
//
// A BlobStore holds immutable named blobs. The local and in-memory stores
// are built in; S3 and MinIO backends live in subpackages so their SDKs
// are only linked when used.
package blobstore
