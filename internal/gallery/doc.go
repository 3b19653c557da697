// Package gallery implements the crawling core: pagination discovery
// across all pages of one gallery and ordered, deduplicated image URL
// extraction with a lazy-load fallback.
package gallery
