package query

import (
	"context"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/result"
)

// DetectBoth runs detection for the requested genus ("inventory",
// "structure", or "" for both) and wraps the outcome in a
// DetectionsResult (spec §6's `detect` CLI/MCP entry point). Only the
// selected detection per genus is recorded; AllInventory and
// AllStructure are left unset.
func (rt *Runtime) DetectBoth(ctx context.Context, source, genus string) (*result.DetectionsResult, error) {
	out := &result.DetectionsResult{Source: source}

	wantInventory := genus == "" || genus == string(domain.GenusInventory)
	wantStructure := genus == "" || genus == string(domain.GenusStructure)

	if wantInventory {
		det, err := rt.Detect.DetectInventory(ctx, source)
		if err != nil {
			return nil, err
		}
		out.Inventory = &det
	}
	if wantStructure {
		hint := ""
		if out.Inventory != nil {
			hint = firstInventoryType(ctx, rt, *out.Inventory, source)
		}
		det, err := rt.Detect.DetectStructure(ctx, source, hint)
		if err != nil {
			return nil, err
		}
		out.Structure = &det
	}
	return out, nil
}

// firstInventoryType best-effort loads one inventory object to learn the
// concrete inventory_type tag this source will produce, used to bias
// structure-detection ties (spec §4.4 step 5). A failure here just
// means no hint is available; it is not fatal to `detect`.
func firstInventoryType(ctx context.Context, rt *Runtime, det domain.Detection, source string) string {
	proc, ok := rt.Inventory.Get(det.ProcessorName)
	if !ok {
		return ""
	}
	objs, err := proc.FilterInventory(ctx, det, "", nil, domain.MatchFuzzy, 0)
	if err != nil || len(objs) == 0 {
		return ""
	}
	return objs[0].InventoryType
}
