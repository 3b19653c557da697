package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brogergvhs/picdl/internal/ui"

	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// countingServer serves fake image bytes and tracks requests per path.
type countingServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newCountingServer(t *testing.T) *countingServer {
	t.Helper()

	cs := &countingServer{hits: map[string]int{}}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.hits[r.URL.Path]++
		cs.mu.Unlock()

		if r.URL.Path == "/broken.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		fmt.Fprintf(w, "bytes-of-%s", r.URL.Path)
	}))
	t.Cleanup(cs.Close)

	return cs
}

func (cs *countingServer) hitCount(p string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.hits[p]
}

func newTestDownloader() *Downloader {
	return New(http.DefaultClient, 5*time.Second, nopLogger{})
}

func TestDownloadWritesFilesInOrder(t *testing.T) {
	srv := newCountingServer(t)
	dir := t.TempDir()

	urls := []string{
		srv.URL + "/gallery/001.jpg",
		srv.URL + "/gallery/002.jpg",
	}

	files, bytes, err := newTestDownloader().Download(context.Background(), urls, filepath.Join(dir, "comic"), nil, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Greater(t, bytes, int64(0))

	require.Equal(t, filepath.Join(dir, "comic", "001.jpg"), files[0])
	require.Equal(t, filepath.Join(dir, "comic", "002.jpg"), files[1])

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.Equal(t, "bytes-of-/gallery/001.jpg", string(data))
}

func TestDownloadSkipsExistingWithoutRequest(t *testing.T) {
	srv := newCountingServer(t)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "001.jpg"), []byte("old"), 0644))

	urls := []string{
		srv.URL + "/001.jpg",
		srv.URL + "/002.jpg",
	}

	stats := &ui.Stats{}
	files, _, err := newTestDownloader().Download(context.Background(), urls, dir, nil, stats)
	require.NoError(t, err)

	// only the missing file was fetched and counted
	require.Len(t, files, 1)
	require.Equal(t, int64(1), stats.Skipped.Load())
	require.Equal(t, int64(1), stats.TotalImages.Load())
	require.Equal(t, 0, srv.hitCount("/001.jpg"))
	require.Equal(t, 1, srv.hitCount("/002.jpg"))

	data, err := os.ReadFile(filepath.Join(dir, "001.jpg"))
	require.NoError(t, err)
	require.Equal(t, "old", string(data), "existing file must not be overwritten")
}

func TestDownloadContinuesAfterFailure(t *testing.T) {
	srv := newCountingServer(t)
	dir := t.TempDir()

	urls := []string{
		srv.URL + "/broken.jpg",
		srv.URL + "/good.jpg",
	}

	files, _, err := newTestDownloader().Download(context.Background(), urls, dir, nil, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, filepath.Join(dir, "good.jpg"), files[0])

	_, statErr := os.Stat(filepath.Join(dir, "broken.jpg"))
	require.True(t, os.IsNotExist(statErr), "failed download must not leave a file behind")
}

func TestFileName(t *testing.T) {
	tests := []struct {
		rawURL string
		seq    int
		want   string
	}{
		{"https://img.example.com/a/b/photo.jpg", 1, "photo.jpg"},
		{"https://img.example.com/a/photo.jpg?w=800", 2, "photo.jpg"},
		{"https://img.example.com/", 7, "image_007.jpg"},
		{"https://img.example.com", 12, "image_012.jpg"},
	}

	for _, tt := range tests {
		if got := FileName(tt.rawURL, tt.seq); got != tt.want {
			t.Errorf("FileName(%q, %d) = %q, want %q", tt.rawURL, tt.seq, got, tt.want)
		}
	}
}
