package result

import (
	"fmt"
	"sort"

	"github.com/librovore/librovore/internal/domain"
)

// InventoryQueryResult is the outcome of query_inventory.
type InventoryQueryResult struct {
	Source        string
	ProcessorName string
	Objects       []domain.InventoryObject
	MatchesTotal  int
	SearchMetadata map[string]any

	// Summary is populated instead of Objects when summarize=True.
	Summary *InventorySummary
}

// InventorySummary holds distribution counts grouped by one or more
// attributes, computed over the full matched set (spec §4.5 step 5).
type InventorySummary struct {
	GroupBy []string
	// Counts maps a group-by attribute name to value -> count.
	Counts map[string]map[string]int
}

func (r *InventoryQueryResult) RenderJSON(revealInternals bool) map[string]any {
	out := map[string]any{
		"source":        r.Source,
		"matches_total": r.MatchesTotal,
	}
	if r.Summary != nil {
		out["summary"] = r.Summary.renderJSON()
	} else {
		objs := make([]map[string]any, 0, len(r.Objects))
		for _, o := range r.Objects {
			objs = append(objs, inventoryObjectJSON(o))
		}
		out["objects"] = objs
	}
	if revealInternals {
		out["processor_name"] = r.ProcessorName
		out["search_metadata"] = r.SearchMetadata
	}
	return out
}

func (s *InventorySummary) renderJSON() map[string]any {
	out := make(map[string]any, len(s.Counts))
	for attr, counts := range s.Counts {
		out[attr] = counts
	}
	return out
}

func inventoryObjectJSON(o domain.InventoryObject) map[string]any {
	m := map[string]any{
		"name":           o.Name,
		"uri":            o.URI,
		"inventory_type": o.InventoryType,
		"location_base":  o.LocationBase,
		"specifics":      o.Specifics.RenderJSON(),
	}
	if o.DisplayName != "" {
		m["display_name"] = o.DisplayName
	}
	if o.MatchScore > 0 {
		m["match_score"] = o.MatchScore
	}
	return m
}

func (r *InventoryQueryResult) RenderMarkdown(revealInternals bool) []string {
	lines := []string{fmt.Sprintf("## Inventory: %s", r.Source)}
	lines = append(lines, fmt.Sprintf("_%d matches total_", r.MatchesTotal))

	if r.Summary != nil {
		lines = append(lines, r.Summary.renderMarkdown()...)
		return lines
	}

	for i, o := range r.Objects {
		if i > 0 {
			lines = append(lines, "---")
		}
		name := o.Name
		if o.DisplayName != "" {
			name = o.DisplayName
		}
		lines = append(lines, fmt.Sprintf("### %s", name))
		lines = append(lines, fmt.Sprintf("- uri: `%s`", o.URI))
		if spec := o.Specifics.RenderMarkdown(); spec != "" {
			lines = append(lines, spec)
		}
	}
	if revealInternals {
		lines = append(lines, fmt.Sprintf("_processor: %s_", r.ProcessorName))
	}
	return lines
}

func (s *InventorySummary) renderMarkdown() []string {
	lines := []string{}
	attrs := make([]string, 0, len(s.Counts))
	for attr := range s.Counts {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		lines = append(lines, fmt.Sprintf("#### by %s", attr))
		counts := s.Counts[attr]
		values := make([]string, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		sort.Strings(values)
		for _, v := range values {
			lines = append(lines, fmt.Sprintf("- %s: %d", v, counts[v]))
		}
	}
	return lines
}
