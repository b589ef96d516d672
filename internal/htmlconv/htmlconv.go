// Package htmlconv holds the DOM-navigation and Markdown-rendering
// machinery shared by every structure processor: parse tolerant HTML,
// locate the best-matching container for a named anchor, strip
// navigation chrome, and render the remainder to Markdown (spec §4.3).
package htmlconv

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed HTML page for structure extraction.
type Document struct {
	*goquery.Document
	baseURL string
}

// Parse parses raw HTML bytes, rooted at baseURL for link resolution.
// If the tolerant parser finds zero content elements anywhere in the
// body, it is retried once on the input cut off at its last unterminated
// "<!--" comment (see stripUnclosedComments); other unbalanced tags are
// left to the tolerant parser in both passes.
func Parse(data []byte, baseURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	if doc.Find("body *").Length() == 0 {
		stricter, err2 := goquery.NewDocumentFromReader(strings.NewReader(stripUnclosedComments(string(data))))
		if err2 == nil && stricter.Find("body *").Length() > 0 {
			doc = stricter
		}
	}
	return &Document{Document: doc, baseURL: baseURL}, nil
}

// stripUnclosedComments removes unterminated HTML comments, a common
// cause of the tolerant tokenizer swallowing the remainder of a
// malformed document into a single comment node.
func stripUnclosedComments(html string) string {
	if strings.Count(html, "<!--") > strings.Count(html, "-->") {
		if idx := strings.LastIndex(html, "<!--"); idx >= 0 {
			return html[:idx]
		}
	}
	return html
}

// FirstMatch returns the first selector in order that matches a
// non-empty selection, implementing the "container preference order"
// rule from spec §4.3 (each structure processor supplies its own
// ordered selector list).
func (d *Document) FirstMatch(selectors ...string) (*goquery.Selection, bool) {
	for _, sel := range selectors {
		found := d.Find(sel)
		if found.Length() > 0 {
			return found, true
		}
	}
	return nil, false
}

// FallbackSection implements the shared extraction fallback chain: match
// by anchor id, then by nearest heading whose text equals name, else
// report no match at all.
func FallbackSection(d *Document, anchor, name string) (*goquery.Selection, bool) {
	if anchor != "" {
		if sel := d.Find("#" + escapeID(anchor)); sel.Length() > 0 {
			return sel, true
		}
	}
	var found *goquery.Selection
	d.Find("h1,h2,h3,h4,h5,h6").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.TrimSpace(h.Text()) == name {
			found = h
			return false
		}
		return true
	})
	if found != nil {
		return found, true
	}
	return nil, false
}

func escapeID(id string) string {
	replacer := strings.NewReplacer(".", `\.`, ":", `\:`, "/", `\/`)
	return replacer.Replace(id)
}

// StripChrome removes selectors matching navigation/sidebar/TOC chrome
// from sel in place, before rendering.
func StripChrome(sel *goquery.Selection, chromeSelectors ...string) {
	for _, chrome := range chromeSelectors {
		sel.Find(chrome).Remove()
	}
}

// ToMarkdown renders sel's HTML to Markdown using html-to-markdown/v2,
// resolving relative links/images against baseURL.
func ToMarkdown(sel *goquery.Selection, baseURL string) (string, error) {
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", fmt.Errorf("serializing selection: %w", err)
	}
	opts := []converter.Option{}
	if baseURL != "" {
		opts = append(opts, converter.WithDomain(baseURL))
	}
	md, err := htmltomarkdown.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Text returns sel's trimmed text content.
func Text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
