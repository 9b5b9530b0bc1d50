package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dm.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("id,name\n1,Mage\n"))
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, time.Millisecond)
	ctx := context.Background()

	b, err := f.Fetch(ctx, srv.URL+"/dm.csv")
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Mage\n", string(b))

	_, err = f.Fetch(ctx, srv.URL+"/missing.csv")
	assert.ErrorContains(t, err, "status 404")

	path := filepath.Join(t.TempDir(), "pg.csv")
	require.NoError(t, WriteFile(path, []byte("id,name\n")))
	b, err = f.Fetch(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n", string(b))

	_, err = f.Fetch(ctx, filepath.Join(t.TempDir(), "none.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetchCancelled(t *testing.T) {
	f := NewFetcher(0, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.GetBytes(ctx, "http://127.0.0.1:1/")
	assert.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://cards.example/dm.csv"))
	assert.True(t, IsRemote("http://cards.example/dm.csv"))
	assert.False(t, IsRemote("data/dm.csv"))
}

func TestWriteFileReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b.txt")
	require.NoError(t, WriteFile(path, []byte("one")))
	require.NoError(t, WriteFile(path, []byte("two")))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
