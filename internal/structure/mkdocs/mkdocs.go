// Package mkdocs implements the structure processor for MkDocs sites
// using mkdocstrings' `autodoc` markup (spec §4.3).
package mkdocs

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/htmlconv"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/structure"
)

// Name is the processor's registration name.
const Name = "mkdocs"

var chromeSelectors = []string{"nav", ".md-sidebar", ".md-nav", ".toc"}

// Processor detects and extracts content from MkDocs Material/mkdocstrings
// themed pages.
type Processor struct {
	Proxy *httpcache.Proxy
}

// New constructs an mkdocs structure Processor.
func New(proxy *httpcache.Proxy) *Processor {
	return &Processor{Proxy: proxy}
}

func (p *Processor) Name() string { return Name }

// Capabilities declares the inventory types and extraction features this
// processor supports (spec §4.3).
func (p *Processor) Capabilities() domain.ProcessorCapabilities {
	return domain.ProcessorCapabilities{
		SupportedInventoryTypes:   []string{"mkdocs_search_index", "mkdocs_objects_inv"},
		ContentExtractionFeatures: []string{"signatures", "descriptions", "code_examples"},
		ConfidenceByInventoryType: map[string]float64{"mkdocs_search_index": 0.9},
	}
}

// Detect probes the source's index page for MkDocs Material/mkdocstrings
// markup.
func (p *Processor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	det := domain.Detection{
		ProcessorName: Name,
		Genus:         domain.GenusStructure,
		Source:        source,
		Capabilities: domain.ProcessorCapabilities{
			SupportedInventoryTypes: []string{"mkdocs_search_index", "mkdocs_objects_inv"},
			ContentExtractionFeatures: []string{
				"signatures", "descriptions", "code_examples",
			},
			ConfidenceByInventoryType: map[string]float64{"mkdocs_search_index": 0.9},
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
	if doc.Find("div.autodoc, meta[name=\"generator\"][content*=\"mkdocs\" i]").Length() > 0 ||
		doc.Find(".md-container").Length() > 0 {
		det.Confidence = 0.85
		return det, nil
	}
	det.Confidence = 0.15
	return det, nil
}

// ExtractContents extracts autodoc signature/docstring blocks for each
// candidate object concurrently.
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

	container, ok := findAutodocBlock(doc, anchor, obj.Name)
	if !ok {
		fallback, fok := htmlconv.FallbackSection(doc, anchor, obj.Name)
		if !fok {
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

	if sig := container.Find("div.autodoc-signature"); sig.Length() > 0 {
		htmlconv.StripChrome(sig, chromeSelectors...)
		if md, err := htmlconv.ToMarkdown(sig, source); err == nil {
			out.Signature = md
		}
	}
	if body := container.Find("div.autodoc-docstring"); body.Length() > 0 {
		htmlconv.StripChrome(body, chromeSelectors...)
		if md, err := htmlconv.ToMarkdown(body, source); err == nil {
			out.Description = md
		}
	}

	return out, out.Meaningful(), nil
}

// findAutodocBlock locates the `div.autodoc` block belonging to anchor
// or name: the anchor id is set on the block itself or an ancestor
// heading, and lacking that, the first autodoc block whose signature
// text contains name.
func findAutodocBlock(doc *htmlconv.Document, anchor, name string) (*goquery.Selection, bool) {
	if anchor != "" {
		if sel := doc.Find("#" + escapeID(anchor)); sel.Length() > 0 {
			if goquery.NodeName(sel) == "div" && sel.HasClass("autodoc") {
				return sel, true
			}
			if block := sel.Closest("div.autodoc"); block.Length() > 0 {
				return block, true
			}
			if block := sel.Parent().Find("div.autodoc").First(); block.Length() > 0 {
				return block, true
			}
		}
	}
	var found *goquery.Selection
	doc.Find("div.autodoc").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if strings.Contains(htmlconv.Text(block.Find("div.autodoc-signature")), name) {
			found = block
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
