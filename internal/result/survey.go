package result

import "fmt"

// ProcessorsSurveyResult is the outcome of survey_processors: every
// registered processor, by genus, with its static capabilities (spec
// §4.6, used by the `survey-processors` CLI/MCP entry point).
type ProcessorsSurveyResult struct {
	Inventory []ProcessorSummary
	Structure []ProcessorSummary
}

// ProcessorSummary is one registry entry's name plus its declared
// capabilities, independent of any particular source.
type ProcessorSummary struct {
	Name               string
	SupportedFilters   []string
	SupportedInventory []string
	ExtractionFeatures []string
}

func (r *ProcessorsSurveyResult) RenderJSON(revealInternals bool) map[string]any {
	return map[string]any{
		"inventory": summariesJSON(r.Inventory),
		"structure": summariesJSON(r.Structure),
	}
}

func summariesJSON(procs []ProcessorSummary) []map[string]any {
	out := make([]map[string]any, 0, len(procs))
	for _, p := range procs {
		m := map[string]any{"name": p.Name}
		if len(p.SupportedFilters) > 0 {
			m["supported_filters"] = p.SupportedFilters
		}
		if len(p.SupportedInventory) > 0 {
			m["supported_inventory_types"] = p.SupportedInventory
		}
		if len(p.ExtractionFeatures) > 0 {
			m["content_extraction_features"] = p.ExtractionFeatures
		}
		out = append(out, m)
	}
	return out
}

func (r *ProcessorsSurveyResult) RenderMarkdown(revealInternals bool) []string {
	lines := []string{"## Registered processors", "### inventory"}
	for _, p := range r.Inventory {
		lines = append(lines, fmt.Sprintf("- %s (filters: %v)", p.Name, p.SupportedFilters))
	}
	lines = append(lines, "### structure")
	for _, p := range r.Structure {
		lines = append(lines, fmt.Sprintf("- %s (inventory types: %v)", p.Name, p.SupportedInventory))
	}
	return lines
}
