package gallery

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher fetches a URL and parses the body into a document. The HTTP
// backed implementation lives in fetch.go; tests substitute their own.
type Fetcher interface {
	FetchDOM(ctx context.Context, url string) (*goquery.Document, error)
}

// PageRef is one entry of a gallery's pagination sequence.
type PageRef struct {
	Number int
	URL    string
}

// PageError records a non-fatal failure on one secondary page.
type PageError struct {
	URL string
	Err error
}

// Info is the result of a full gallery crawl: the sanitized title and
// the ordered, deduplicated image URLs of every page. PageErrors lists
// the pages that were skipped along the way.
type Info struct {
	Title      string
	Images     []string
	PageErrors []PageError
}

type logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Crawler walks all pages of one gallery and collects its images.
type Crawler struct {
	fetch Fetcher
	ext   *Extractor
	log   logger
}

func NewCrawler(f Fetcher, e *Extractor, log logger) *Crawler {
	return &Crawler{fetch: f, ext: e, log: log}
}

// Crawl fetches the entry page, discovers the remaining pages through
// the pagination links, and returns the combined image list. Only an
// entry-page failure is fatal; any later page that cannot be fetched is
// recorded and skipped.
func (c *Crawler) Crawl(ctx context.Context, entryURL string) (*Info, error) {
	doc, err := c.fetch.FetchDOM(ctx, entryURL)
	if err != nil {
		return nil, err
	}

	info := &Info{Title: c.ext.Title(doc)}
	images := c.ext.Images(doc)

	pages := pageOrder(doc, entryURL)
	c.log.Debugf("gallery %q: %d pages\n", info.Title, len(pages))

	for _, pageURL := range pages[1:] {
		pageDoc, err := c.fetch.FetchDOM(ctx, pageURL)
		if err != nil {
			c.log.Errorf("page %s skipped: %v\n", pageURL, err)
			info.PageErrors = append(info.PageErrors, PageError{URL: pageURL, Err: err})
			continue
		}

		images = append(images, c.ext.Images(pageDoc)...)
	}

	info.Images = Dedup(images)

	return info, nil
}

// pageOrder returns every page URL of the gallery, entry page first,
// the rest sorted by page number. A page with no pagination container
// is a single-page gallery.
func pageOrder(doc *goquery.Document, entryURL string) []string {
	pages := []string{entryURL}

	pagination := doc.Find("div.pagination").First()
	if pagination.Length() == 0 {
		return pages
	}

	var refs []PageRef
	pagination.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		n, ok := parsePageNumber(href)
		if !ok {
			// next/prev style controls land here
			return
		}

		refs = append(refs, PageRef{Number: n, URL: href})
	})

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Number < refs[j].Number })

	for _, ref := range refs {
		if !containsURL(pages, ref.URL) {
			pages = append(pages, ref.URL)
		}
	}

	return pages
}

// parsePageNumber reads the page number off a pagination href: the
// final path segment after stripping a trailing slash.
func parsePageNumber(href string) (int, bool) {
	s := strings.TrimRight(href, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return n, true
}

func containsURL(list []string, u string) bool {
	for _, v := range list {
		if v == u {
			return true
		}
	}

	return false
}

// Dedup removes duplicate URLs, keeping the first occurrence of each.
func Dedup(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))

	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}

	return out
}
