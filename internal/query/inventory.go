package query

import (
	"context"
	"sort"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/match"
	"github.com/librovore/librovore/internal/result"
)

// InventoryParams are query_inventory's parameters (spec §4.5).
type InventoryParams struct {
	Source         string
	Term           string
	Filters        map[string]string
	MatchMode      domain.MatchMode
	FuzzyThreshold int
	// ResultsMax is nil when the caller never set results_max (defaults to
	// DefaultResultsMax). A non-nil pointer to 0 is an explicit request
	// for an empty page (spec §8), distinct from leaving it unset - a
	// plain int can't carry that distinction since its zero value means
	// both things at once.
	ResultsMax *int
	Summarize  bool
	GroupBy    []string
}

// normalize fills in spec-mandated defaults for zero-value fields.
func (p *InventoryParams) normalize() {
	if p.MatchMode == "" {
		p.MatchMode = domain.MatchFuzzy
	}
	if p.FuzzyThreshold <= 0 {
		p.FuzzyThreshold = match.DefaultFuzzyThreshold
	}
	if p.ResultsMax == nil {
		def := DefaultResultsMax
		p.ResultsMax = &def
	}
}

// QueryInventory implements spec §4.5's query_inventory.
func (rt *Runtime) QueryInventory(ctx context.Context, p InventoryParams) (*result.InventoryQueryResult, error) {
	p.normalize()

	det, err := rt.Detect.DetectInventory(ctx, p.Source)
	if err != nil {
		return nil, err
	}

	for key := range p.Filters {
		if !det.Capabilities.HasFilter(key) {
			return nil, domain.NewFilterUnsupportedError(key, det.ProcessorName)
		}
	}

	proc, ok := rt.Inventory.Get(det.ProcessorName)
	if !ok {
		return nil, domain.NewProcessorInavailabilityError(p.Source, domain.GenusInventory)
	}

	objs, err := proc.FilterInventory(ctx, det, p.Term, p.Filters, p.MatchMode, p.FuzzyThreshold)
	if err != nil {
		return nil, err
	}
	sortByMatchScore(objs)

	out := &result.InventoryQueryResult{
		Source:        p.Source,
		ProcessorName: det.ProcessorName,
		MatchesTotal:  len(objs),
		SearchMetadata: map[string]any{
			"match_mode":      string(p.MatchMode),
			"fuzzy_threshold": p.FuzzyThreshold,
			"term":            p.Term,
		},
	}

	if p.Summarize {
		groupBy := p.GroupBy
		if len(groupBy) == 0 {
			groupBy = det.Capabilities.SupportedFilters
		}
		out.Summary = summarize(objs, groupBy)
		return out, nil
	}

	if *p.ResultsMax < len(objs) {
		out.Objects = objs[:*p.ResultsMax]
	} else {
		out.Objects = objs
	}
	return out, nil
}

// sortByMatchScore orders objects by descending MatchScore, stable so
// equally-scored objects keep their inventory-load order.
func sortByMatchScore(objs []domain.InventoryObject) {
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].MatchScore > objs[j].MatchScore
	})
}

// summarize computes distribution counts grouped by each attribute in
// groupBy, over the full matched set (spec §4.5 step 5: the full set,
// not the truncated page - a decided Open Question recorded in
// DESIGN.md).
func summarize(objs []domain.InventoryObject, groupBy []string) *result.InventorySummary {
	counts := make(map[string]map[string]int, len(groupBy))
	for _, attr := range groupBy {
		bucket := make(map[string]int)
		for _, obj := range objs {
			val, ok := obj.Specifics.Get(attr)
			if !ok {
				val = "(unset)"
			}
			bucket[val]++
		}
		counts[attr] = bucket
	}
	return &result.InventorySummary{GroupBy: groupBy, Counts: counts}
}
