// Package linkmlio provides the default collaborator implementations the
// core linkml package depends on only through interfaces: schema
// loading/parsing, logging, timestamps, caching, background task
// management and health monitoring. Kept in a separate package so the
// core never imports an I/O or transport dependency directly.
package linkmlio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileLoader resolves schema locations from the local filesystem or, when
// a location starts with http(s)://, over HTTP. Format is inferred from
// the location's extension (.yaml/.yml -> "yaml", .json -> "json",
// defaulting to "yaml").
type FileLoader struct {
	BaseDir string

	httpClient *http.Client
}

// NewFileLoader returns a FileLoader resolving relative locations against
// baseDir ("" to resolve against the process's current directory).
func NewFileLoader(baseDir string) *FileLoader {
	return &FileLoader{BaseDir: baseDir, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// Load implements linkml.Loader.
func (l *FileLoader) Load(ctx context.Context, location string) ([]byte, string, error) {
	resolved, err := l.resolveLocation(location)
	if err != nil {
		return nil, "", fmt.Errorf("resolving location %q: %w", location, err)
	}

	var data []byte
	if isURL(resolved) {
		data, err = l.fetchURL(ctx, resolved)
	} else {
		data, err = os.ReadFile(resolved)
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading %q: %w", resolved, err)
	}

	return data, formatForLocation(resolved), nil
}

func (l *FileLoader) fetchURL(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", location, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (l *FileLoader) resolveLocation(location string) (string, error) {
	if filepath.IsAbs(location) {
		return location, nil
	}
	if isURL(location) {
		return location, nil
	}
	if l.BaseDir != "" {
		return filepath.Abs(filepath.Join(l.BaseDir, location))
	}
	return filepath.Abs(location)
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func formatForLocation(location string) string {
	u, err := url.Parse(location)
	path := location
	if err == nil && u.Path != "" {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}
