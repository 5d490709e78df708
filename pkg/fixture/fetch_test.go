package fixture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("archive bytes")) //nolint:errcheck // test server
	}))
	defer srv.Close()

	log := &testLogger{}
	f := NewHTTPFetcher(log)
	dest := filepath.Join(t.TempDir(), "demo.tar.gz")

	require.NoError(t, f.Fetch(context.Background(), srv.URL+"/demo.tar.gz", dest))

	content, err := os.ReadFile(dest) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Equal(t, "archive bytes", string(content))
	require.NotEmpty(t, log.lines)
	assert.Contains(t, log.lines[0], "fetched")
}

func TestHTTPFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewHTTPFetcher(&testLogger{})
	dest := filepath.Join(t.TempDir(), "demo.tar.gz")

	err := f.Fetch(context.Background(), srv.URL+"/missing.tar.gz", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
	assert.NoFileExists(t, dest)
}

func TestHTTPFetcher_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewHTTPFetcher(&testLogger{})
	err := f.Fetch(context.Background(), url+"/demo.tar.gz", filepath.Join(t.TempDir(), "demo.tar.gz"))
	require.Error(t, err)
}

func TestHTTPFetcher_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(&testLogger{})
	err := f.Fetch(ctx, srv.URL+"/demo.tar.gz", filepath.Join(t.TempDir(), "demo.tar.gz"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
