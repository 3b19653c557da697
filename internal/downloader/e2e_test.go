package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brogergvhs/picdl/internal/gallery"
	"github.com/brogergvhs/picdl/internal/util"

	"github.com/stretchr/testify/require"
)

// Crawl then download against one server: a single-page gallery with
// two images ends up as two files in a fresh directory.
func TestCrawlAndDownloadEndToEnd(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/html/2025/06/7333200.html":
			fmt.Fprintf(w, `<html><body>
				<h1 class="entry-title">Two Image Gallery</h1>
				<img src="%s/images/imgA.jpg">
				<img src="%s/images/imgB.jpg">
			</body></html>`, srv.URL, srv.URL)
		case "/images/imgA.jpg", "/images/imgB.jpg":
			fmt.Fprintf(w, "image-data-%s", r.URL.Path)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := util.NewHTTPClient(util.HTTPClientOptions{
		UserAgent: util.PickUserAgent(""),
		Referer:   srv.URL + "/",
	})

	fetcher := gallery.NewHTTPFetcher(client, 5*time.Second)
	extractor := gallery.NewExtractor("127.0.0.1", []string{"jpg", "jpeg", "png", "gif"})
	crawler := gallery.NewCrawler(fetcher, extractor, nopLogger{})

	info, err := crawler.Crawl(context.Background(), srv.URL+"/html/2025/06/7333200.html")
	require.NoError(t, err)
	require.Equal(t, "Two Image Gallery", info.Title)
	require.Len(t, info.Images, 2)

	dir := filepath.Join(t.TempDir(), info.Title)
	dl := New(client, 5*time.Second, nopLogger{})

	files, _, err := dl.Download(context.Background(), info.Images, dir, nil, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, name := range []string{"imgA.jpg", "imgB.jpg"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "expected %s on disk", name)
	}
}
