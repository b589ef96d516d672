// Package rustdoc implements the inventory processor for rustdoc-generated
// crate documentation (spec §4.2).
package rustdoc

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/inventory"
)

// Name is the processor's registration name.
const Name = "rustdoc"

// Processor detects and loads rustdoc `all.html` crate indexes.
type Processor struct {
	Proxy *httpcache.Proxy
}

// New constructs a rustdoc inventory Processor.
func New(proxy *httpcache.Proxy) *Processor {
	return &Processor{Proxy: proxy}
}

func (p *Processor) Name() string { return Name }

// Capabilities declares the filter attributes rustdoc inventory objects
// expose (spec §4.2).
func (p *Processor) Capabilities() domain.ProcessorCapabilities {
	return domain.ProcessorCapabilities{SupportedFilters: []string{"item_type"}}
}

func allHTMLPath(source string) string {
	return joinURL(source, "all.html")
}

// Detect probes for the crate's all.html index page.
func (p *Processor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	det := domain.Detection{
		ProcessorName: Name,
		Genus:         domain.GenusInventory,
		Source:        source,
		Capabilities: domain.ProcessorCapabilities{
			SupportedFilters: []string{"item_type"},
		},
	}
	exists, err := p.Proxy.Probe(ctx, allHTMLPath(source))
	if err != nil || !exists {
		det.Confidence = 0.0
		return det, nil
	}
	det.Confidence = 0.85
	return det, nil
}

// FilterInventory fetches and parses all.html, grouping entries by the
// item-kind heading that precedes each listing.
func (p *Processor) FilterInventory(ctx context.Context, det domain.Detection, nameTerm string,
	filters map[string]string, mode domain.MatchMode, threshold int) ([]domain.InventoryObject, error) {

	result, err := p.Proxy.Retrieve(ctx, allHTMLPath(det.Source))
	if err != nil {
		return nil, err
	}

	objs, err := parseAllHTML(result.Bytes, det.Source)
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

// parseAllHTML walks rustdoc's all.html structure: a sequence of
// `<h3 id="...">Kind</h3>` headers, each followed by a `<ul class="...">`
// of `<li><a href="...">name</a></li>` entries belonging to that kind.
func parseAllHTML(data []byte, locationBase string) ([]domain.InventoryObject, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing rustdoc all.html: %w", err)
	}

	var objs []domain.InventoryObject
	doc.Find("h3").Each(func(_ int, h3 *goquery.Selection) {
		kind := strings.TrimSpace(h3.Text())
		list := h3.NextFiltered("ul")
		if list.Length() == 0 {
			list = h3.Parent().Find("ul").First()
		}
		list.Find("li > a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			name := strings.TrimSpace(a.Text())
			if name == "" {
				return
			}
			objs = append(objs, domain.InventoryObject{
				Name:          name,
				URI:           href,
				InventoryType: "rustdoc",
				LocationBase:  locationBase,
				Specifics: domain.RustdocSpecifics{
					ItemType: strings.ToLower(kind),
				},
			})
		})
	})
	return objs, nil
}

func joinURL(base, rel string) string {
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}
