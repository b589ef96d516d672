package query

import "github.com/librovore/librovore/internal/result"

// SurveyProcessors lists every registered processor with its static
// capabilities, without probing any source (spec §6's `survey-processors`
// entry point; capabilities are declared statically per spec §3.1).
func (rt *Runtime) SurveyProcessors() *result.ProcessorsSurveyResult {
	out := &result.ProcessorsSurveyResult{}
	for _, p := range rt.Inventory.All() {
		caps := p.Capabilities()
		out.Inventory = append(out.Inventory, result.ProcessorSummary{
			Name:             p.Name(),
			SupportedFilters: caps.SupportedFilters,
		})
	}
	for _, p := range rt.Structure.All() {
		caps := p.Capabilities()
		out.Structure = append(out.Structure, result.ProcessorSummary{
			Name:               p.Name(),
			SupportedInventory: caps.SupportedInventoryTypes,
			ExtractionFeatures: caps.ContentExtractionFeatures,
		})
	}
	return out
}
