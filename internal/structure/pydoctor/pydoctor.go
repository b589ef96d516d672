// Package pydoctor implements the structure processor for pydoctor's
// generated API documentation pages (spec §4.3).
package pydoctor

import (
	"context"
	"strings"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/htmlconv"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/structure"
)

// Name is the processor's registration name.
const Name = "pydoctor"

var chromeSelectors = []string{"nav", "#part-pageHeader", ".nav"}

// Processor detects and extracts content from pydoctor API pages.
type Processor struct {
	Proxy *httpcache.Proxy
}

// New constructs a pydoctor structure Processor.
func New(proxy *httpcache.Proxy) *Processor {
	return &Processor{Proxy: proxy}
}

func (p *Processor) Name() string { return Name }

// Capabilities declares the inventory types and extraction features this
// processor supports (spec §4.3).
func (p *Processor) Capabilities() domain.ProcessorCapabilities {
	return domain.ProcessorCapabilities{
		SupportedInventoryTypes:   []string{"pydoctor_search_index"},
		ContentExtractionFeatures: []string{"descriptions", "arguments", "returns", "attributes"},
		ConfidenceByInventoryType: map[string]float64{"pydoctor_search_index": 0.9},
	}
}

// Detect probes the source's index page for pydoctor's generator tag.
func (p *Processor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	det := domain.Detection{
		ProcessorName: Name,
		Genus:         domain.GenusStructure,
		Source:        source,
		Capabilities: domain.ProcessorCapabilities{
			SupportedInventoryTypes:   []string{"pydoctor_search_index"},
			ContentExtractionFeatures: []string{"descriptions", "arguments", "returns", "attributes"},
			ConfidenceByInventoryType: map[string]float64{"pydoctor_search_index": 0.9},
		},
	}

	result, err := p.Proxy.Retrieve(ctx, joinURL(source, "index.html"))
	if err != nil {
		det.Confidence = 0.0
		return det, nil
	}
	text, err := result.Text()
	if err != nil {
		det.Confidence = 0.0
		return det, nil
	}
	doc, err := htmlconv.Parse([]byte(text), source)
	if err != nil {
		det.Confidence = 0.0
		return det, nil
	}
	if generator, ok := doc.Find(`meta[name="generator"]`).Attr("content"); ok &&
		strings.Contains(strings.ToLower(generator), "pydoctor") {
		det.Confidence = 0.9
		return det, nil
	}
	if doc.Find("div.docstring").Length() > 0 {
		det.Confidence = 0.5
		return det, nil
	}
	det.Confidence = 0.1
	return det, nil
}

// ExtractContents extracts docstring bodies for each candidate object
// concurrently.
func (p *Processor) ExtractContents(ctx context.Context, det domain.Detection,
	objects []domain.InventoryObject) ([]domain.ContentDocument, error) {
	return structure.ExtractConcurrent(ctx, structure.DefaultPerHostConcurrency, objects,
		func(ctx context.Context, obj domain.InventoryObject) (domain.ContentDocument, bool, error) {
			return p.extractOne(ctx, det.Source, obj)
		})
}

func (p *Processor) extractOne(ctx context.Context, source string,
	obj domain.InventoryObject) (domain.ContentDocument, bool, error) {

	pageURL, anchor := splitAnchor(joinURL(source, obj.ExpandedURI()))
	result, err := p.Proxy.Retrieve(ctx, pageURL)
	if err != nil {
		return domain.ContentDocument{}, false, err
	}
	text, err := result.Text()
	if err != nil {
		return domain.ContentDocument{}, false, err
	}
	doc, err := htmlconv.Parse([]byte(text), source)
	if err != nil {
		return domain.ContentDocument{}, false, err
	}

	out := domain.ContentDocument{
		Name:             obj.Name,
		URI:              obj.URI,
		InventoryType:    obj.InventoryType,
		DocumentationURL: pageURL,
	}

	var container = doc.Find("#" + escapeID(anchor))
	docstring := container.NextFiltered("div.docstring")
	if docstring.Length() == 0 {
		docstring = container.Parent().Find("div.docstring").First()
	}
	if docstring.Length() == 0 {
		fallback, ok := htmlconv.FallbackSection(doc, anchor, obj.Name)
		if !ok {
			return out, false, nil
		}
		docstring = fallback
	}

	htmlconv.StripChrome(docstring, chromeSelectors...)
	md, err := htmlconv.ToMarkdown(docstring, source)
	if err != nil {
		return out, false, err
	}
	out.Description = md
	return out, out.Meaningful(), nil
}

func escapeID(id string) string {
	replacer := strings.NewReplacer(".", `\.`, ":", `\:`, "/", `\/`)
	return replacer.Replace(id)
}

func joinURL(base, rel string) string {
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}

func splitAnchor(u string) (page, anchor string) {
	if idx := strings.Index(u, "#"); idx >= 0 {
		return u[:idx], u[idx+1:]
	}
	return u, ""
}
