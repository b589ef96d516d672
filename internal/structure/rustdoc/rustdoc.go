// Package rustdoc implements the structure processor for rustdoc-generated
// crate documentation pages (spec §4.3).
package rustdoc

import (
	"context"
	"strings"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/htmlconv"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/structure"
)

// Name is the processor's registration name.
const Name = "rustdoc"

var chromeSelectors = []string{"#rustdoc-topbar", ".rustdoc-toolbar", "nav.sidebar"}

// Processor detects and extracts content from rustdoc item pages.
type Processor struct {
	Proxy *httpcache.Proxy
}

// New constructs a rustdoc structure Processor.
func New(proxy *httpcache.Proxy) *Processor {
	return &Processor{Proxy: proxy}
}

func (p *Processor) Name() string { return Name }

// Capabilities declares the inventory types and extraction features this
// processor supports (spec §4.3).
func (p *Processor) Capabilities() domain.ProcessorCapabilities {
	return domain.ProcessorCapabilities{
		SupportedInventoryTypes:   []string{"rustdoc"},
		ContentExtractionFeatures: []string{"signatures", "descriptions", "code_examples"},
		ConfidenceByInventoryType: map[string]float64{"rustdoc": 0.95},
	}
}

// Detect probes the crate's all.html for rustdoc's characteristic markup.
func (p *Processor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	det := domain.Detection{
		ProcessorName: Name,
		Genus:         domain.GenusStructure,
		Source:        source,
		Capabilities: domain.ProcessorCapabilities{
			SupportedInventoryTypes:   []string{"rustdoc"},
			ContentExtractionFeatures: []string{"signatures", "descriptions", "code_examples"},
			ConfidenceByInventoryType: map[string]float64{"rustdoc": 0.95},
		},
	}

	result, err := p.Proxy.Retrieve(ctx, joinURL(source, "all.html"))
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
	if doc.Find("#rustdoc-topbar").Length() > 0 || doc.Find("pre.rust").Length() > 0 {
		det.Confidence = 0.9
		return det, nil
	}
	det.Confidence = 0.1
	return det, nil
}

// ExtractContents extracts item declarations/docblocks for each candidate
// object concurrently.
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

	decl := doc.Find("pre.rust.item-decl")
	if decl.Length() == 0 {
		fallback, ok := htmlconv.FallbackSection(doc, anchor, obj.Name)
		if !ok {
			return out, false, nil
		}
		htmlconv.StripChrome(fallback, chromeSelectors...)
		md, err := htmlconv.ToMarkdown(fallback, source)
		if err != nil {
			return out, false, err
		}
		out.Description = md
		return out, out.Meaningful(), nil
	}

	htmlconv.StripChrome(decl, chromeSelectors...)
	if md, err := htmlconv.ToMarkdown(decl, source); err == nil {
		out.Signature = md
	}

	if block := doc.Find("div.docblock").First(); block.Length() > 0 {
		htmlconv.StripChrome(block, chromeSelectors...)
		if md, err := htmlconv.ToMarkdown(block, source); err == nil {
			out.Description = md
		}
	}

	return out, out.Meaningful(), nil
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
