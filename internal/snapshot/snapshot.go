// Package snapshot persists alert evidence images.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store writes evidence frames to durable storage. Save returns the path
// recorded in the alert row; Delete accepts that same path.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}

// Key derives a collision free object key from the incident:
// <kind>/<yyyy>/<mm>/<dd>/<unix-nanos>_<incident-id>.<ext>
func Key(kind string, at time.Time, incidentID uuid.UUID, contentType string) string {
	at = at.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%d_%s%s",
		kind, at.Year(), at.Month(), at.Day(), at.UnixNano(), incidentID, Extension(contentType))
}

// Extension maps an image content type to a file extension
func Extension(contentType string) string {
	ct, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	switch ct {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/jpeg", "image/jpg", "":
		return ".jpg"
	default:
		return ".bin"
	}
}
