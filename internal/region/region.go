// Package region cuts the part of a catalog page that holds the data.
package region

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"

	"github.com/MMMarcy/voxlume/internal/models"
)

var selectors = map[models.Region]string{
	models.RegionListingTable: ".main_table",
	models.RegionDetailPost:   ".post",
}

// Selector returns the CSS selector used for r.
func Selector(r models.Region) (string, bool) {
	sel, ok := selectors[r]
	return sel, ok
}

// Extractor implements crawler.RegionExtractor with goquery.
type Extractor struct{}

// New returns an Extractor.
func New() Extractor {
	return Extractor{}
}

// Extract returns the outer HTML of the first element matching the region's
// selector, or false when there is none.
func (Extractor) Extract(body []byte, r models.Region) (string, bool) {
	sel, ok := selectors[r]
	if !ok || len(body) == 0 {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	match := doc.Find(sel).First()
	if match.Length() == 0 {
		return "", false
	}
	html, err := goquery.OuterHtml(match)
	if err != nil {
		return "", false
	}
	return html, true
}
