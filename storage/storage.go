// Package storage provides interfaces and implementations for object storage.
// Supported providers: Azure Blob (SAS-based) and Amazon S3 (and
// S3-compatible services).
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload writes data from reader to the given key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Delete removes the object at the given key.
	// Returns nil if the object does not exist.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// SignedURL returns a read-scoped, time-limited URL for the object at
	// the given key, dereferenceable by external services over plain GET.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Handle is an opaque, time-limited reference to an uploaded object.
type Handle struct {
	// Key is the storage key the object was written under.
	Key string
	// URL is the read-scoped, time-limited URL for the object.
	URL string
	// ExpiresAt is when the URL stops being dereferenceable.
	ExpiresAt time.Time
}

// ObjectKey derives a collision-resistant storage key from an original
// filename: a fresh uuid prefix plus the base name. The filename is never
// trusted as a path — only its base name survives, with path separators
// and parent references stripped.
func ObjectKey(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimLeft(base, ".")
	if base == "" || base == "/" {
		base = "upload"
	}
	return uuid.NewString() + "_" + base
}
