// Package storage keeps uploaded game images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"gametracker/internal/config"
)

// ImageStore persists an uploaded image under key and returns its public URL
type ImageStore interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// imageExtensions maps the sniffed content types accepted for upload to the
// extension files are stored under
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExtension returns the stored extension for contentType, or false when
// the type is not an accepted image format
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[contentType]
	return ext, ok
}

// ObjectKey builds a unique key for an uploaded file:
// games/<slug-of-name>-<uuid><ext>. The client's own extension is dropped.
func ObjectKey(filename, ext string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "image"
	}
	if len(name) > 50 {
		name = strings.Trim(name[:50], "-")
	}
	return fmt.Sprintf("games/%s-%s%s", name, uuid.NewString(), ext)
}

// New returns the store selected by cfg.Backend
func New(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
