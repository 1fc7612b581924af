package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "index.db")
	store, err := Open(context.Background(), dsn, nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup misses before save and hits after", func(t *testing.T) {
		store := newTestStore(t)

		_, ok, err := store.Lookup(ctx, "https://example.edu/handle/10024/1")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.Save(ctx, "https://example.edu/handle/10024/1",
			"https://example.edu/b/1.pdf", "/cache/abc.pdf", "deadbeef"))

		blob, ok, err := store.Lookup(ctx, "https://example.edu/handle/10024/1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "/cache/abc.pdf", blob)
	})

	t.Run("save upserts on conflict", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(ctx, "id", "url", "/old", "aaaa"))
		require.NoError(t, store.Save(ctx, "id", "url", "/new", "bbbb"))

		blob, ok, err := store.Lookup(ctx, "id")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "/new", blob)
	})

	t.Run("walk visits rows in identifier order", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(ctx, "b", "u", "/b", "x"))
		require.NoError(t, store.Save(ctx, "a", "u", "/a", "x"))

		var ids []string
		require.NoError(t, store.Walk(ctx, func(id, _ string) error {
			ids = append(ids, id)
			return nil
		}))
		assert.Equal(t, []string{"a", "b"}, ids)
	})

	t.Run("health check passes on a fresh index", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(t, store.HealthCheck(ctx, time.Second))
	})
}

func TestFetcherGet(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads once and serves repeats from cache", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("%PDF-1.4 fake"))
		}))
		defer srv.Close()

		store := newTestStore(t)
		f := NewFetcher(store, t.TempDir(), time.Second, nil)

		first, err := f.Get(ctx, "https://example.edu/handle/10024/1", srv.URL+"/doc.pdf")
		require.NoError(t, err)
		second, err := f.Get(ctx, "https://example.edu/handle/10024/1", srv.URL+"/doc.pdf")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), hits.Load())

		content, err := os.ReadFile(first)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 fake", string(content))
	})

	t.Run("re-fetches when the indexed blob is gone", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("content"))
		}))
		defer srv.Close()

		store := newTestStore(t)
		f := NewFetcher(store, t.TempDir(), time.Second, nil)

		blob, err := f.Get(ctx, "id", srv.URL+"/doc.pdf")
		require.NoError(t, err)
		require.NoError(t, os.Remove(blob))

		_, err = f.Get(ctx, "id", srv.URL+"/doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("non-2xx status is a retrieval error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		store := newTestStore(t)
		f := NewFetcher(store, t.TempDir(), time.Second, nil)

		_, err := f.Get(ctx, "id", srv.URL+"/missing.pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})
}
