package gallery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlaceholderTitle is used when a page carries no heading at all.
const PlaceholderTitle = "Unknown_Comic"

// lazyAttrs are consulted, in order, when no img carries a usable src.
var lazyAttrs = []string{"data-src", "data-lazy-src"}

// Extractor pulls the title and image URLs out of one parsed page.
type Extractor struct {
	domain string
	exts   []string
}

func NewExtractor(domain string, allowExt []string) *Extractor {
	return &Extractor{
		domain: domain,
		exts:   normalizeExtList(allowExt),
	}
}

func normalizeExtList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, ext := range list {
		ext = strings.ToLower(strings.TrimSpace(ext))
		ext = strings.TrimPrefix(ext, ".")
		if ext != "" {
			out = append(out, "."+ext)
		}
	}

	return out
}

// Title returns the sanitized gallery title: the entry-title heading if
// present, otherwise the first h1, otherwise a fixed placeholder.
func (e *Extractor) Title(doc *goquery.Document) string {
	h := doc.Find("h1.entry-title").First()
	if h.Length() == 0 {
		h = doc.Find("h1").First()
	}
	if h.Length() == 0 {
		return PlaceholderTitle
	}

	title := SanitizeTitle(h.Text())
	if title == "" {
		return PlaceholderTitle
	}

	return title
}

// Images returns the page's image URLs in document order. The src
// attribute is scanned first; only when that yields nothing are the
// lazy-load attributes consulted. No dedup happens here.
func (e *Extractor) Images(doc *goquery.Document) []string {
	images := e.scan(doc, "src")
	if len(images) == 0 {
		images = e.scan(doc, lazyAttrs...)
	}

	return images
}

func (e *Extractor) scan(doc *goquery.Document, attrs ...string) []string {
	var out []string

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		for _, attr := range attrs {
			src, _ := img.Attr(attr)
			if e.wanted(src) {
				out = append(out, src)
			}
		}
	})

	return out
}

// wanted filters candidate URLs: must reference the target site and
// carry a known image extension anywhere in the URL. A substring match
// is deliberate so query strings after the extension still pass.
func (e *Extractor) wanted(src string) bool {
	if src == "" || !strings.Contains(src, e.domain) {
		return false
	}

	low := strings.ToLower(src)
	for _, ext := range e.exts {
		if strings.Contains(low, ext) {
			return true
		}
	}

	return false
}

// SanitizeTitle strips the characters that are unsafe in file and
// directory names. Nothing is substituted in their place.
func SanitizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
