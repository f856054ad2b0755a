// Package s3 provides an S3 implementation of the blobstore.BlobStore
// interface, plus a DynamoDB-backed snapshot catalog for coordinating
// concurrent writers.
package s3
