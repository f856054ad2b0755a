// Package persistence packages exported documents into verifiable,
// optionally compressed snapshot blobs and moves them in and out of a
// blobstore.BlobStore.
//
// A snapshot is a fixed 32-byte header followed by the payload. The
// header carries a magic number, format version, compression tag, the
// stored payload size, and a CRC32-Castagnoli checksum of the stored
// payload. Corruption is reported as *ChecksumMismatchError.
package persistence
