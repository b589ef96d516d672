// Package pydoctor implements the inventory processor for pydoctor's
// `searchindex.json` Lunr.js export (spec §4.2).
package pydoctor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/inventory"
)

// Name is the processor's registration name.
const Name = "pydoctor"

const searchIndexPath = "searchindex.json"

// Processor detects and loads pydoctor API documentation.
type Processor struct {
	Proxy *httpcache.Proxy
}

// New constructs a pydoctor inventory Processor.
func New(proxy *httpcache.Proxy) *Processor {
	return &Processor{Proxy: proxy}
}

func (p *Processor) Name() string { return Name }

// Capabilities declares the filter attributes pydoctor inventory objects
// expose (spec §4.2).
func (p *Processor) Capabilities() domain.ProcessorCapabilities {
	return domain.ProcessorCapabilities{SupportedFilters: []string{"kind"}}
}

// Detect probes for apidocs.css and the pydoctor generator meta tag on
// the source's index page, then confirms searchindex.json exists.
func (p *Processor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	det := domain.Detection{
		ProcessorName: Name,
		Genus:         domain.GenusInventory,
		Source:        source,
		Capabilities: domain.ProcessorCapabilities{
			SupportedFilters: []string{"kind"},
		},
	}

	cssExists, _ := p.Proxy.Probe(ctx, joinURL(source, "apidocs.css"))
	confidence := 0.0
	if cssExists {
		confidence += 0.4
	}

	if result, err := p.Proxy.Retrieve(ctx, joinURL(source, "index.html")); err == nil {
		if doc, derr := goquery.NewDocumentFromReader(bytes.NewReader(result.Bytes)); derr == nil {
			if generator, ok := doc.Find(`meta[name="generator"]`).Attr("content"); ok &&
				strings.Contains(strings.ToLower(generator), "pydoctor") {
				confidence += 0.4
			}
		}
	}

	idxExists, _ := p.Proxy.Probe(ctx, joinURL(source, searchIndexPath))
	if idxExists {
		confidence += 0.2
	}

	if confidence == 0 {
		det.Confidence = 0
		return det, nil
	}
	det.Confidence = confidence
	return det, nil
}

// lunrSearchIndex mirrors pydoctor's searchindex.json: a flat "docs" array
// (one per documented object) plus an inverted Lunr "index" this
// processor does not need (name matching is done directly against docs).
type lunrSearchIndex struct {
	Docs []lunrDoc `json:"docs"`
}

type lunrDoc struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// FilterInventory loads searchindex.json's docs array and matches names.
func (p *Processor) FilterInventory(ctx context.Context, det domain.Detection, nameTerm string,
	filters map[string]string, mode domain.MatchMode, threshold int) ([]domain.InventoryObject, error) {

	result, err := p.Proxy.Retrieve(ctx, joinURL(det.Source, searchIndexPath))
	if err != nil {
		return nil, err
	}

	var idx lunrSearchIndex
	if err := json.Unmarshal(result.Bytes, &idx); err != nil {
		return nil, fmt.Errorf("parsing pydoctor searchindex.json: %w", err)
	}

	objs := make([]domain.InventoryObject, 0, len(idx.Docs))
	for _, doc := range idx.Docs {
		if doc.Name == "" {
			continue
		}
		objs = append(objs, domain.InventoryObject{
			Name:          doc.Name,
			URI:           doc.URL,
			InventoryType: "pydoctor_search_index",
			LocationBase:  det.Source,
			Specifics: domain.PydoctorSpecifics{
				Kind: strings.ToLower(doc.Kind),
			},
		})
	}

	var kept []domain.InventoryObject
	for _, obj := range objs {
		if inventory.ApplyFilters(obj, filters) {
			kept = append(kept, obj)
		}
	}
	return inventory.FilterByName(kept, nameTerm, mode, threshold)
}

func joinURL(base, rel string) string {
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}
