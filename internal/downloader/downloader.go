package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/brogergvhs/picdl/internal/ui"
	"github.com/brogergvhs/picdl/internal/util"
)

type logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// Progress receives download progress updates. Satisfied by ui.Handle.
type Progress interface {
	Update(done int, bytes int64)
}

// Downloader writes gallery images to disk, one at a time, skipping
// files that already exist.
type Downloader struct {
	client  *http.Client
	timeout time.Duration
	log     logger
}

func New(client *http.Client, timeout time.Duration, log logger) *Downloader {
	return &Downloader{client: client, timeout: timeout, log: log}
}

// Download fetches every URL in order into folder. A file that already
// exists under the derived name is skipped without a request and
// without counting as downloaded. Per-image failures are reported and
// skipped. Returns the paths of the files actually written and the
// total bytes received.
func (d *Downloader) Download(ctx context.Context, urls []string, folder string, ph Progress, st *ui.Stats) ([]string, int64, error) {
	if err := util.EnsureDir(folder); err != nil {
		return nil, 0, err
	}

	if st == nil {
		st = &ui.Stats{}
	}

	files := make([]string, 0, len(urls))
	var totalBytes int64

	for i, u := range urls {
		name := FileName(u, i+1)
		target := filepath.Join(folder, name)

		if util.Exists(target) {
			d.log.Infof("Skipping %s - already exists\n", name)
			st.Skipped.Add(1)
			if ph != nil {
				ph.Update(i+1, totalBytes)
			}
			continue
		}

		d.log.Debugf("Downloading %s\n", name)

		written, err := d.fetchToFile(ctx, u, target, func(done int64) {
			if ph != nil {
				ph.Update(i, totalBytes+done)
			}
		})
		if err != nil {
			d.log.Errorf("Error downloading %s: %v\n", u, err)
			// a partial file would be mistaken for a finished one on rerun
			_ = os.Remove(target)
			st.Failed.Add(1)
			if ph != nil {
				ph.Update(i+1, totalBytes)
			}
			continue
		}

		totalBytes += written
		files = append(files, target)
		st.TotalImages.Add(1)
		st.TotalBytes.Add(written)

		if ph != nil {
			ph.Update(i+1, totalBytes)
		}
	}

	return files, totalBytes, nil
}

func (d *Downloader) fetchToFile(ctx context.Context, u, output string, progress func(done int64)) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}

	var bodyCloseErr error
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && bodyCloseErr == nil {
			bodyCloseErr = cerr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(output)
	if err != nil {
		return 0, err
	}

	var fileCloseErr error
	defer func() {
		if cerr := f.Close(); cerr != nil && fileCloseErr == nil {
			fileCloseErr = cerr
		}
	}()

	written, err := copyWithProgress(f, resp.Body, progress)
	if err != nil {
		return written, err
	}

	if fileCloseErr != nil {
		return written, fileCloseErr
	}

	return written, bodyCloseErr
}

// FileName derives the local filename for an image URL from its path
// basename; URLs without one get a synthesized sequential name.
func FileName(rawURL string, seq int) string {
	fallback := fmt.Sprintf("image_%03d.jpg", seq)

	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}

	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return fallback
	}

	return base
}
