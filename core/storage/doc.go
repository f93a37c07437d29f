// Package storage provides the object storage client used for archive
// artifacts.
//
// Exported archives can optionally be uploaded to an S3-compatible bucket
// (MinIO, AWS S3) and imported back from an s3:// artifact handle. The
// package exposes a narrow Client interface so the archive service can be
// tested against a mock (see the mocks subpackage).
package storage
