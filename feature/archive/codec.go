package archive

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"listing-vault/feature/vault"
	"listing-vault/feature/vault/models"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ManifestName is the archive entry holding the serialized record list.
const ManifestName = "listings.json"

// imagePrefix is the namespace for blob entries inside the archive.
const imagePrefix = "images/"

// ErrMissingManifest reports an archive without a readable record manifest.
// Import validates the manifest before touching the store, so a bad archive
// never destroys existing data.
var ErrMissingManifest = errors.New("archive is missing the listings manifest")

// imageExtensions are the extensions tried when rehydrating blobs on import.
// Export names entries after the blob's real content type, so import probes
// every format the marketplace serves rather than assuming jpg.
var imageExtensions = []string{"jpg", "jpeg", "png", "webp", "gif"}

// Codec serializes the whole vault to a zip archive and back.
type Codec struct {
	store  *vault.Store
	logger *zap.Logger
}

// NewCodec creates a new archive codec.
func NewCodec(store *vault.Store, logger *zap.Logger) *Codec {
	return &Codec{store: store, logger: logger}
}

// Export writes every record and stored blob to w as a zip archive. Blobs
// that were never downloaded are skipped. The store is not mutated. It
// returns the number of records and blobs written.
func (c *Codec) Export(ctx context.Context, w io.Writer) (records, blobs int, err error) {
	listings, err := c.store.List(ctx, vault.FilterAll)
	if err != nil {
		return 0, 0, err
	}

	zw := zip.NewWriter(w)

	manifest, err := json.Marshal(listings)
	if err != nil {
		return 0, 0, fmt.Errorf("serialize manifest: %w", err)
	}
	mw, err := zw.Create(ManifestName)
	if err != nil {
		return 0, 0, fmt.Errorf("create manifest entry: %w", err)
	}
	if _, err := mw.Write(manifest); err != nil {
		return 0, 0, fmt.Errorf("write manifest entry: %w", err)
	}

	for i := range listings {
		l := &listings[i]
		for idx := range l.Photos {
			blob, err := c.store.GetBlob(ctx, l.LocalID, idx)
			if errors.Is(err, vault.ErrNotFound) {
				continue
			}
			if err != nil {
				return 0, 0, err
			}

			name := blobEntryName(l.LocalID, idx, blobExtension(blob))
			bw, err := zw.Create(name)
			if err != nil {
				return 0, 0, fmt.Errorf("create blob entry %s: %w", name, err)
			}
			if _, err := bw.Write(blob.Data); err != nil {
				return 0, 0, fmt.Errorf("write blob entry %s: %w", name, err)
			}
			blobs++
		}
	}

	if err := zw.Close(); err != nil {
		return 0, 0, fmt.Errorf("finalize archive: %w", err)
	}

	return len(listings), blobs, nil
}

// Import replaces the entire vault contents with the archive's. The manifest
// is located and parsed first; only then are the existing records and blobs
// cleared and the archived ones written. Blob entries that cannot be found
// are skipped.
func (c *Codec) Import(ctx context.Context, r *zip.Reader) (records, blobs int, err error) {
	entries := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		entries[f.Name] = f
	}

	manifest, ok := entries[ManifestName]
	if !ok {
		return 0, 0, ErrMissingManifest
	}

	listings, err := readManifest(manifest)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrMissingManifest, err)
	}

	// Manifest is valid past this point; the destructive replace may begin.
	if err := c.store.Reset(ctx); err != nil {
		return 0, 0, err
	}
	if err := c.store.SaveBatch(ctx, listings); err != nil {
		return 0, 0, err
	}

	for i := range listings {
		l := &listings[i]
		for idx := range l.Photos {
			entry := findBlobEntry(entries, l.LocalID, idx)
			if entry == nil {
				continue
			}

			data, err := readEntry(entry)
			if err != nil {
				c.logger.Warn("Unreadable blob entry, skipping",
					zap.String("entry", entry.Name),
					zap.Error(err),
				)
				continue
			}

			blob := &models.ImageBlob{
				ListingID:   l.LocalID,
				PhotoIndex:  idx,
				ContentType: mimetype.Detect(data).String(),
				Data:        data,
			}
			if err := c.store.PutBlob(ctx, blob); err != nil {
				return 0, 0, err
			}
			blobs++
		}
	}

	return len(listings), blobs, nil
}

func readManifest(f *zip.File) ([]models.Listing, error) {
	data, err := readEntry(f)
	if err != nil {
		return nil, err
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func blobEntryName(localID string, photoIndex int, ext string) string {
	return fmt.Sprintf("%s%s_%d.%s", imagePrefix, localID, photoIndex, ext)
}

func findBlobEntry(entries map[string]*zip.File, localID string, photoIndex int) *zip.File {
	for _, ext := range imageExtensions {
		if f, ok := entries[blobEntryName(localID, photoIndex, ext)]; ok {
			return f
		}
	}
	return nil
}

// blobExtension derives the archive entry extension from the blob's content
// type, sniffing the bytes when the stored type is unknown.
func blobExtension(blob *models.ImageBlob) string {
	if m := mimetype.Lookup(blob.ContentType); m != nil {
		if ext := strings.TrimPrefix(m.Extension(), "."); ext != "" {
			return ext
		}
	}
	if ext := strings.TrimPrefix(mimetype.Detect(blob.Data).Extension(), "."); ext != "" {
		return ext
	}
	return "jpg"
}
