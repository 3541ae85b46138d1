package linkmlio

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

func TestFileLoaderReadsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: test"), 0o644))

	loader := NewFileLoader("")
	data, format, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "name: test", string(data))
	assert.Equal(t, "yaml", format)
}

func TestFileLoaderResolvesRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "child.json"), []byte(`{"name":"x"}`), 0o644))

	loader := NewFileLoader(dir)
	data, format, err := loader.Load(context.Background(), "child.json")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x"}`, string(data))
	assert.Equal(t, "json", format)
}

func TestFileLoaderMissingFileErrors(t *testing.T) {
	loader := NewFileLoader(t.TempDir())
	_, _, err := loader.Load(context.Background(), "does-not-exist.yaml")
	assert.Error(t, err)
}

func TestFileLoaderFetchesOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id: http-schema"))
	}))
	defer srv.Close()

	loader := NewFileLoader("")
	data, format, err := loader.Load(context.Background(), srv.URL+"/schema.yaml")
	require.NoError(t, err)
	assert.Equal(t, "id: http-schema", string(data))
	assert.Equal(t, "yaml", format)
}

func TestFileLoaderHTTPNonOKStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	loader := NewFileLoader("")
	_, _, err := loader.Load(context.Background(), srv.URL+"/missing.yaml")
	assert.Error(t, err)
}
