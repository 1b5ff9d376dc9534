// Package blob stores message attachments. The production backend is any
// S3-compatible object store (minio in development); a filesystem backend
// exists for setups without one.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob: not found")

// Store persists attachment payloads keyed by an opaque storage key.
type Store interface {
	// Put uploads the payload and records its content type.
	Put(ctx context.Context, key, contentType string, r io.Reader) error

	// Get streams the payload back together with its content type.
	// Returns ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// Presigner is implemented by backends that can hand out short-lived direct
// download URLs. Callers should fall back to Get when the backend does not
// implement it.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NewStorageKey returns a date-partitioned random key for an uploaded
// attachment, e.g. "messages/2026/9/1/8a7f...".
func NewStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("messages/%d/%d/%d/%v", d.Year(), int(d.Month()), d.Day(), uuid.New())
}
