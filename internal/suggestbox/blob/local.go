package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores attachments under a directory on disk. Content types are
// kept in a ".type" sidecar file next to each payload. Meant for
// development and tests; production should use S3.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: root}, nil
}

// path maps a storage key onto the root dir, refusing traversal outside it.
func (l *Local) path(key string) (string, error) {
	p := filepath.Join(l.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Clean(l.root)+string(os.PathSeparator)) {
		return "", os.ErrInvalid
	}
	return p, nil
}

func (l *Local) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.WriteFile(p+".type", []byte(contentType), 0o644)
}

func (l *Local) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	p, err := l.path(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	contentType, err := os.ReadFile(p + ".type")
	if err != nil && !os.IsNotExist(err) {
		_ = f.Close()
		return nil, "", err
	}
	return f, string(contentType), nil
}
