package result

import (
	"testing"

	"github.com/librovore/librovore/internal/domain"
)

func TestDetectionsResult_RenderJSON_OmitsInternalsByDefault(t *testing.T) {
	inv := domain.Detection{ProcessorName: "sphinx", Genus: domain.GenusInventory, Confidence: 0.9}
	r := &DetectionsResult{
		Source:       "/docs",
		Inventory:    &inv,
		AllInventory: map[string]domain.Detection{"sphinx": inv, "mkdocs": {ProcessorName: "mkdocs", Confidence: 0.1}},
	}

	hidden := r.RenderJSON(false)
	if _, ok := hidden["all_inventory"]; ok {
		t.Error("expected all_inventory to be hidden without revealInternals")
	}

	revealed := r.RenderJSON(true)
	all, ok := revealed["all_inventory"].(map[string]any)
	if !ok || len(all) != 2 {
		t.Errorf("expected all_inventory with 2 candidates when revealed, got %+v", revealed["all_inventory"])
	}
}

func TestDetectionsResult_RenderMarkdown_ListsSelectedProcessors(t *testing.T) {
	inv := domain.Detection{ProcessorName: "sphinx", Confidence: 0.9}
	str := domain.Detection{ProcessorName: "sphinx-theme", Confidence: 0.8}
	r := &DetectionsResult{Source: "/docs", Inventory: &inv, Structure: &str}

	lines := r.RenderMarkdown(false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (header + inventory + structure), got %d: %v", len(lines), lines)
	}
}
