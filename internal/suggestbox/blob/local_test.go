package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalPutGet(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := NewStorageKey()
	require.NoError(t, l.Put(ctx, key, "image/png", strings.NewReader("payload")))

	rc, contentType, err := l.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()

	require.Equal(t, "image/png", contentType)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

func TestLocalGetUnknownKey(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, _, err = l.Get(context.Background(), "messages/2026/1/1/nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalRejectsTraversal(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = l.Put(context.Background(), "../outside", "text/plain", strings.NewReader("x"))
	require.Error(t, err)
}

func TestStorageKeysAreUnique(t *testing.T) {
	a := NewStorageKey()
	b := NewStorageKey()
	require.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "messages/"))
}
