package result

import (
	"fmt"
	"sort"

	"github.com/librovore/librovore/internal/domain"
)

// DetectionsResult is the outcome of the `detect` entry point: the
// selected Detection for one or both genera, plus (when
// revealInternals) every candidate considered.
type DetectionsResult struct {
	Source    string
	Inventory *domain.Detection
	Structure *domain.Detection

	// AllInventory/AllStructure carry every processor's Detection
	// (selected or rejected), keyed by processor name, shown only under
	// reveal_internals.
	AllInventory map[string]domain.Detection
	AllStructure map[string]domain.Detection
}

func (r *DetectionsResult) RenderJSON(revealInternals bool) map[string]any {
	out := map[string]any{"source": r.Source}
	if r.Inventory != nil {
		out["inventory"] = detectionJSON(*r.Inventory)
	}
	if r.Structure != nil {
		out["structure"] = detectionJSON(*r.Structure)
	}
	if revealInternals {
		out["all_inventory"] = detectionMapJSON(r.AllInventory)
		out["all_structure"] = detectionMapJSON(r.AllStructure)
	}
	return out
}

func detectionJSON(d domain.Detection) map[string]any {
	m := map[string]any{
		"processor_name": d.ProcessorName,
		"genus":          string(d.Genus),
		"confidence":     d.Confidence,
		"capabilities":   capabilitiesJSON(d.Capabilities),
	}
	if len(d.Extra) > 0 {
		m["extra"] = d.Extra
	}
	return m
}

func capabilitiesJSON(c domain.ProcessorCapabilities) map[string]any {
	m := map[string]any{}
	if len(c.SupportedFilters) > 0 {
		m["supported_filters"] = c.SupportedFilters
	}
	if len(c.SupportedInventoryTypes) > 0 {
		m["supported_inventory_types"] = c.SupportedInventoryTypes
	}
	if len(c.ContentExtractionFeatures) > 0 {
		m["content_extraction_features"] = c.ContentExtractionFeatures
	}
	if len(c.ConfidenceByInventoryType) > 0 {
		m["confidence_by_inventory_type"] = c.ConfidenceByInventoryType
	}
	return m
}

func detectionMapJSON(m map[string]domain.Detection) map[string]any {
	out := make(map[string]any, len(m))
	for name, d := range m {
		out[name] = detectionJSON(d)
	}
	return out
}

func (r *DetectionsResult) RenderMarkdown(revealInternals bool) []string {
	lines := []string{fmt.Sprintf("## Detection: %s", r.Source)}
	if r.Inventory != nil {
		lines = append(lines, fmt.Sprintf("- inventory: **%s** (confidence %.2f)",
			r.Inventory.ProcessorName, r.Inventory.Confidence))
	}
	if r.Structure != nil {
		lines = append(lines, fmt.Sprintf("- structure: **%s** (confidence %.2f)",
			r.Structure.ProcessorName, r.Structure.Confidence))
	}
	if revealInternals {
		lines = append(lines, "### all inventory candidates")
		lines = append(lines, renderDetectionMapMarkdown(r.AllInventory)...)
		lines = append(lines, "### all structure candidates")
		lines = append(lines, renderDetectionMapMarkdown(r.AllStructure)...)
	}
	return lines
}

func renderDetectionMapMarkdown(m map[string]domain.Detection) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		d := m[name]
		status := "rejected"
		if !d.Rejected() {
			status = "selected"
		}
		lines = append(lines, fmt.Sprintf("- %s: %.2f (%s)", name, d.Confidence, status))
	}
	return lines
}
