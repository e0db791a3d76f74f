package storage

import (
	"context"
	"io"
)

// Storage abstracts where uploaded media lives. The only backend today is
// the local filesystem; the interface keeps handlers ignorant of that.
type Storage interface {
	// Write stores content under key, overwriting any previous content.
	Write(ctx context.Context, key string, r io.Reader) error

	// Delete removes the content with the given key. Deleting a missing
	// key is a no-op.
	Delete(ctx context.Context, key string) error

	// Exists reports whether content is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public path the content is served at.
	URL(key string) string
}
