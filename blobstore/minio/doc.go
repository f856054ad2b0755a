// Package minio provides a blobstore.BlobStore implementation for MinIO
// and other S3-compatible object stores.
package minio
