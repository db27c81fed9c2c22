// internal/adapters/storage/local_test.go
package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockledger/test/helpers"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir(), helpers.TestLogger())
	require.NoError(t, err)

	require.NoError(t, store.Upload(ctx, "imports/a.csv", strings.NewReader("product_name\nWidget\n"), "text/csv"))
	require.NoError(t, store.Upload(ctx, "exports/b.csv", strings.NewReader("x"), ""))

	data, err := store.Download(ctx, "imports/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "product_name\nWidget\n", string(data))

	objects, err := store.List(ctx, "imports/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "imports/a.csv", objects[0].Key)
	assert.Equal(t, int64(20), objects[0].Size)

	url, err := store.PresignedURL(ctx, "exports/b.csv", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "exports/b.csv"))

	require.NoError(t, store.Delete(ctx, "imports/a.csv"))
	require.NoError(t, store.Delete(ctx, "imports/a.csv"))

	_, err = store.Download(ctx, "imports/a.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_KeysStayInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStorage(base, helpers.TestLogger())
	require.NoError(t, err)

	require.NoError(t, store.Upload(ctx, "../../escape.txt", strings.NewReader("x"), ""))

	objects, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "escape.txt", objects[0].Key)

	assert.Error(t, store.Upload(ctx, "", strings.NewReader("x"), ""))
}
