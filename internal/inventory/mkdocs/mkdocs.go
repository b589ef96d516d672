// Package mkdocs implements the inventory processor for MkDocs sites:
// an mkdocstrings-published `objects.inv` when present, falling back to
// MkDocs' own `search_index.json` (spec §4.2).
package mkdocs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/inventory"
	"github.com/librovore/librovore/internal/inventory/sphinx"
)

// Name is the processor's registration name.
const Name = "mkdocs"

const searchIndexPath = "search/search_index.json"

// Processor detects and loads MkDocs inventories.
type Processor struct {
	Proxy *httpcache.Proxy
}

// New constructs an mkdocs inventory Processor.
func New(proxy *httpcache.Proxy) *Processor {
	return &Processor{Proxy: proxy}
}

func (p *Processor) Name() string { return Name }

// Capabilities declares the filter attributes MkDocs inventory objects
// expose (spec §4.2).
func (p *Processor) Capabilities() domain.ProcessorCapabilities {
	return domain.ProcessorCapabilities{SupportedFilters: []string{"domain", "role", "priority", "category"}}
}

// Detect probes for an mkdocstrings objects.inv first, then the MkDocs
// search index.
func (p *Processor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	det := domain.Detection{
		ProcessorName: Name,
		Genus:         domain.GenusInventory,
		Source:        source,
		Capabilities: domain.ProcessorCapabilities{
			SupportedFilters: []string{"domain", "role", "priority", "category"},
		},
	}

	if sphinx.ProbeObjectsInv(ctx, p.Proxy, source) {
		det.Confidence = 0.85
		det.Extra = map[string]string{"inventory_source": "objects_inv"}
		return det, nil
	}

	exists, err := p.Proxy.Probe(ctx, joinURL(source, searchIndexPath))
	if err != nil || !exists {
		det.Confidence = 0.0
		return det, nil
	}
	det.Confidence = 0.7
	det.Extra = map[string]string{"inventory_source": "search_index"}
	return det, nil
}

// FilterInventory loads the inventory (objects.inv when present, else the
// MkDocs search index Lunr document array) and matches names.
func (p *Processor) FilterInventory(ctx context.Context, det domain.Detection, nameTerm string,
	filters map[string]string, mode domain.MatchMode, threshold int) ([]domain.InventoryObject, error) {

	var objs []domain.InventoryObject
	var err error
	if det.Extra["inventory_source"] == "search_index" {
		objs, err = p.loadSearchIndex(ctx, det.Source)
	} else {
		objs, err = sphinx.LoadObjects(ctx, p.Proxy, det.Source)
		for i := range objs {
			objs[i].InventoryType = "mkdocs_objects_inv"
		}
	}
	if err != nil {
		return nil, err
	}

	var kept []domain.InventoryObject
	for _, obj := range objs {
		if inventory.ApplyFilters(obj, filters) {
			kept = append(kept, obj)
		}
	}
	return inventory.FilterByName(kept, nameTerm, mode, threshold)
}

// searchIndexDoc mirrors one entry of MkDocs search_index.json's "docs"
// array: {location, title, text}.
type searchIndexDoc struct {
	Location string `json:"location"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

type searchIndex struct {
	Docs []searchIndexDoc `json:"docs"`
}

func (p *Processor) loadSearchIndex(ctx context.Context, source string) ([]domain.InventoryObject, error) {
	result, err := p.Proxy.Retrieve(ctx, joinURL(source, searchIndexPath))
	if err != nil {
		return nil, err
	}

	var idx searchIndex
	if err := json.Unmarshal(result.Bytes, &idx); err != nil {
		return nil, fmt.Errorf("parsing mkdocs search_index.json: %w", err)
	}

	objs := make([]domain.InventoryObject, 0, len(idx.Docs))
	for _, doc := range idx.Docs {
		if doc.Title == "" {
			continue
		}
		category := "page"
		if strings.Contains(doc.Location, "#") {
			category = "section"
		}
		objs = append(objs, domain.InventoryObject{
			Name:          doc.Title,
			URI:           doc.Location,
			InventoryType: "mkdocs_search_index",
			LocationBase:  source,
			Specifics: domain.MkDocsSpecifics{
				Category: category,
			},
		})
	}
	return objs, nil
}

func joinURL(base, rel string) string {
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}
