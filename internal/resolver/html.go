package resolver

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

// Evidence weights for HTML sources. Plain style occurrences count 1.
const (
	weightThemeMeta = 8
	weightDataAttr  = 5
	weightSVGPaint  = 3
	weightMetaTheme = 10
	weightMetaTile  = 8
)

var themeColourSelectors = []string{
	`meta[name="theme-color"]`,
	`meta[name="msapplication-TileColor"]`,
	`meta[name="apple-mobile-web-app-status-bar-style"]`,
	`meta[property="og:theme-color"]`,
}

// ParseHTML parses an HTML document.
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// AnalyzeHTML collects colour evidence from a page and builds a palette.
func AnalyzeHTML(html string) (*colour.Palette, error) {
	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}
	return CollectColours(doc).Palette(), nil
}

// CollectColours tallies colours from inline styles, style elements, theme
// meta tags, CSS custom properties, SVG paint and data attributes.
func CollectColours(doc *goquery.Document) *colour.Tally {
	t := colour.NewTally()

	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		colour.ParseStyleColours(s.AttrOr("style", ""), t)
	})
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		colour.ParseStyleColours(s.Text(), t)
	})

	for _, sel := range themeColourSelectors {
		if v := doc.Find(sel).First().AttrOr("content", ""); colour.IsColourLiteral(v) {
			colour.AddColourValue(v, t, weightThemeMeta)
		}
	}
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		addCustomProperties(s.Text(), t)
	})
	doc.Find("svg, svg *").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"fill", "stroke"} {
			if v, ok := s.Attr(attr); ok && v != "" && v != "none" {
				colour.AddColourValue(v, t, weightSVGPaint)
			}
		}
		if style, ok := s.Attr("style"); ok {
			colour.ParseStyleColours(style, t)
		}
	})

	doc.Find("[data-color], [data-bg-color], [data-theme-color]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"data-color", "data-bg-color", "data-theme-color"} {
			if v := s.AttrOr(attr, ""); v != "" {
				colour.AddColourValue(v, t, weightDataAttr)
				return
			}
		}
	})
	doc.Find(`[style*="--"]`).Each(func(_ int, s *goquery.Selection) {
		addCustomProperties(s.AttrOr("style", ""), t)
	})

	return t
}

// CollectMetaColours tallies only the theme meta tags and CSS custom
// properties, weighting the theme colour highest.
func CollectMetaColours(doc *goquery.Document) *colour.Tally {
	t := colour.NewTally()
	if v := doc.Find(`meta[name="theme-color"]`).First().AttrOr("content", ""); v != "" {
		colour.AddColourValue(v, t, weightMetaTheme)
	}
	if v := doc.Find(`meta[name="msapplication-TileColor"]`).First().AttrOr("content", ""); v != "" {
		colour.AddColourValue(v, t, weightMetaTile)
	}
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		addCustomProperties(s.Text(), t)
	})
	return t
}

// addCustomProperties parses the value of every CSS custom property in text.
func addCustomProperties(text string, t *colour.Tally) {
	for _, m := range colour.CustomPropertyPattern.FindAllStringSubmatch(text, -1) {
		colour.ParseStyleColours(m[1], t)
	}
}

// StylesheetLinks returns the href of every stylesheet link, in document order.
func StylesheetLinks(doc *goquery.Document) []string {
	var hrefs []string
	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, s *goquery.Selection) {
		if href := strings.TrimSpace(s.AttrOr("href", "")); href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}
