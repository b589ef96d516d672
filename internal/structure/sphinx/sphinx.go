// Package sphinx implements the structure processor for Sphinx's default
// and alabaster/furo-family themes (spec §4.3).
package sphinx

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
const Name = "sphinx"

var chromeSelectors = []string{"nav", ".sidebar", ".toc", "a.headerlink"}

// containerSelectors is the container-preference order for locating a
// documented object's signature element.
var containerSelectors = []string{"dt.sig.sig-object"}

// Processor detects and extracts content from Sphinx-themed HTML pages.
type Processor struct {
	Proxy *httpcache.Proxy
}

// New constructs a sphinx structure Processor.
func New(proxy *httpcache.Proxy) *Processor {
	return &Processor{Proxy: proxy}
}

func (p *Processor) Name() string { return Name }

// Capabilities declares the inventory types and extraction features this
// processor supports (spec §4.3).
func (p *Processor) Capabilities() domain.ProcessorCapabilities {
	return domain.ProcessorCapabilities{
		SupportedInventoryTypes:   []string{"sphinx_objects_inv", "mkdocs_objects_inv"},
		ContentExtractionFeatures: []string{"signatures", "descriptions", "code_examples", "cross_references"},
		ConfidenceByInventoryType: map[string]float64{"sphinx_objects_inv": 0.95},
	}
}

// Detect probes the source's genindex.html for Sphinx signature or
// sidebar markup.
func (p *Processor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	det := domain.Detection{
		ProcessorName: Name,
		Genus:         domain.GenusStructure,
		Source:        source,
		Capabilities: domain.ProcessorCapabilities{
			SupportedInventoryTypes:   []string{"sphinx_objects_inv", "mkdocs_objects_inv"},
			ContentExtractionFeatures: []string{"signatures", "descriptions", "code_examples", "cross_references"},
			ConfidenceByInventoryType: map[string]float64{"sphinx_objects_inv": 0.95},
		},
	}

	result, err := p.Proxy.Retrieve(ctx, joinURL(source, "genindex.html"))
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
	if doc.Find("dt.sig.sig-object").Length() > 0 || doc.Find("div.sphinxsidebar").Length() > 0 {
		det.Confidence = 0.9
		return det, nil
	}
	det.Confidence = 0.2
	return det, nil
}

// ExtractContents extracts signature/description/examples for each
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

	sigSel := findSignature(doc, anchor, obj.Name)

	out := domain.ContentDocument{
		Name:             obj.Name,
		URI:              obj.URI,
		InventoryType:    obj.InventoryType,
		DocumentationURL: pageURL,
	}

	if sigSel == nil {
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

	htmlconv.StripChrome(sigSel, chromeSelectors...)
	sigText, err := htmlconv.ToMarkdown(sigSel, source)
	if err != nil {
		return out, false, err
	}
	out.Signature = sigText

	if dd := sigSel.Next(); dd.Length() > 0 && goquery.NodeName(dd) == "dd" {
		htmlconv.StripChrome(dd, chromeSelectors...)
		descMD, err := htmlconv.ToMarkdown(dd, source)
		if err == nil {
			out.Description = descMD
		}
	}

	return out, out.Meaningful(), nil
}

// findSignature locates the `dt.sig.sig-object.<domain>` element for
// anchor/name, per the container-preference order in containerSelectors.
func findSignature(doc *htmlconv.Document, anchor, name string) *goquery.Selection {
	if anchor != "" {
		if sel := doc.Find("#" + escapeID(anchor)); sel.Length() > 0 {
			if goquery.NodeName(sel) == "dt" {
				return sel
			}
			if dt := sel.Closest("dt.sig.sig-object"); dt.Length() > 0 {
				return dt
			}
		}
	}
	var found *goquery.Selection
	doc.Find(strings.Join(containerSelectors, ", ")).EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if strings.Contains(strings.TrimSpace(dt.Text()), name) {
			found = dt
			return false
		}
		return true
	})
	return found
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
