// Package sphinx implements the inventory processor for Sphinx's
// `objects.inv` format (spec §4.2).
package sphinx

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/inventory"
)

// Name is the processor's registration name.
const Name = "sphinx"

const inventoryPath = "objects.inv"

// Processor detects and loads Sphinx `objects.inv` inventories.
type Processor struct {
	Proxy *httpcache.Proxy
}

// New constructs a sphinx inventory Processor.
func New(proxy *httpcache.Proxy) *Processor {
	return &Processor{Proxy: proxy}
}

func (p *Processor) Name() string { return Name }

// Capabilities declares the filter attributes Sphinx inventory objects
// expose (spec §4.2).
func (p *Processor) Capabilities() domain.ProcessorCapabilities {
	return domain.ProcessorCapabilities{SupportedFilters: []string{"domain", "role", "priority"}}
}

// Detect probes for the presence of objects.inv at the source root.
func (p *Processor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	candidate := joinURL(source, inventoryPath)
	exists, err := p.Proxy.Probe(ctx, candidate)
	det := domain.Detection{
		ProcessorName: Name,
		Genus:         domain.GenusInventory,
		Source:        source,
		Capabilities: domain.ProcessorCapabilities{
			SupportedFilters: []string{"domain", "role", "priority"},
		},
	}
	if err != nil || !exists {
		det.Confidence = 0.0
		return det, nil
	}
	det.Confidence = 0.9
	return det, nil
}

// FilterInventory loads and decompresses objects.inv, then matches names.
func (p *Processor) FilterInventory(ctx context.Context, det domain.Detection, nameTerm string,
	filters map[string]string, mode domain.MatchMode, threshold int) ([]domain.InventoryObject, error) {

	candidate := joinURL(det.Source, inventoryPath)
	result, err := p.Proxy.Retrieve(ctx, candidate)
	if err != nil {
		return nil, err
	}

	objs, err := parseObjectsInv(result.Bytes, det.Source)
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

// parseObjectsInv decodes a v2 objects.inv payload: a 4-line ASCII
// header followed by a zlib-compressed body of
// "name domain:role priority uri dispname" lines.
func parseObjectsInv(data []byte, locationBase string) ([]domain.InventoryObject, error) {
	reader := bufio.NewReader(bytes.NewReader(data))

	header, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading objects.inv header: %w", err)
	}
	if !strings.HasPrefix(header, "# Sphinx inventory version") {
		return nil, fmt.Errorf("unrecognized objects.inv header: %q", strings.TrimSpace(header))
	}
	// Project and version lines are informational, skipped.
	if _, err := reader.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("reading objects.inv project line: %w", err)
	}
	if _, err := reader.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("reading objects.inv version line: %w", err)
	}
	// Fourth line documents the zlib compression marker; not parsed.
	if _, err := reader.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("reading objects.inv compression marker: %w", err)
	}

	zr, err := zlib.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("opening objects.inv zlib stream: %w", err)
	}
	defer zr.Close()

	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing objects.inv: %w", err)
	}

	var objs []domain.InventoryObject
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		obj, ok := parseLine(line, locationBase)
		if !ok {
			continue
		}
		objs = append(objs, obj)
	}
	return objs, scanner.Err()
}

// parseLine parses one "name domain:role priority uri dispname" entry.
// dispname may contain spaces; it is everything after the 4th field, or
// "-" when absent (the display name then equals name).
func parseLine(line, locationBase string) (domain.InventoryObject, bool) {
	fields := strings.SplitN(line, " ", 5)
	if len(fields) < 5 {
		return domain.InventoryObject{}, false
	}
	name := fields[0]
	domainRole := fields[1]
	priority := fields[2]
	uri := fields[3]
	dispname := fields[4]

	dr := strings.SplitN(domainRole, ":", 2)
	if len(dr) != 2 {
		return domain.InventoryObject{}, false
	}

	display := ""
	if dispname != "-" {
		display = dispname
	}

	return domain.InventoryObject{
		Name:          name,
		URI:           uri,
		InventoryType: "sphinx_objects_inv",
		LocationBase:  locationBase,
		DisplayName:   display,
		Specifics: domain.SphinxSpecifics{
			Domain:   dr[0],
			Role:     dr[1],
			Priority: priority,
		},
	}, true
}

func joinURL(base, rel string) string {
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}

// ProbeObjectsInv reports whether source/objects.inv exists, for reuse by
// other processors (mkdocs tries this before its own search index).
func ProbeObjectsInv(ctx context.Context, proxy *httpcache.Proxy, source string) bool {
	exists, err := proxy.Probe(ctx, joinURL(source, inventoryPath))
	return err == nil && exists
}

// LoadObjects retrieves and parses source/objects.inv into raw (unfiltered,
// unmatched) inventory objects, for reuse by other processors.
func LoadObjects(ctx context.Context, proxy *httpcache.Proxy, source string) ([]domain.InventoryObject, error) {
	result, err := proxy.Retrieve(ctx, joinURL(source, inventoryPath))
	if err != nil {
		return nil, err
	}
	return parseObjectsInv(result.Bytes, source)
}
