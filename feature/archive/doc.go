// Package archive implements the portable export/import codec for the vault.
//
// An archive is a single zip bundle with one manifest entry (listings.json,
// the JSON-serialized record list) and one binary entry per stored image
// blob, named images/<localId>_<photoIndex>.<ext> where the extension comes
// from the blob's actual content type.
//
// Export never mutates the store. Import is a destructive full replace, but
// it validates the manifest before clearing anything: a truncated or foreign
// zip leaves the existing vault untouched.
//
// Exported archives can optionally be uploaded to an S3-compatible bucket;
// the artifact handle is then an s3://bucket/object URL that Import accepts
// in place of a file path.
package archive
