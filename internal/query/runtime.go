// Package query implements the query orchestrator (spec §4.5): the two
// public entry points, query_inventory and query_content, composing the
// detection system, the inventory/structure processor registries, and
// the result model.
package query

import (
	"github.com/librovore/librovore/internal/detect"
	"github.com/librovore/librovore/internal/inventory"
	"github.com/librovore/librovore/internal/structure"
)

// DefaultResultsMax is the results_max default (spec §4.5).
const DefaultResultsMax = 5

// DefaultFuzzyThreshold mirrors match.DefaultFuzzyThreshold (spec §4.5).
const DefaultFuzzyThreshold = 50

// OverfetchFactor is the results_max multiplier used to select
// extraction candidates before content-aware re-ranking (spec §4.5 step 5).
const OverfetchFactor = 3

// MinSuccessRate is the extraction success-rate floor below which
// ContentExtractFailure fires (spec §4.5 step 7; exactly 10% passes).
const MinSuccessRate = 0.10

// Runtime composes the detection system and processor registries into
// the two query entry points. One Runtime is process-wide and safe for
// concurrent use: detection caches and registries are already safe per
// their own package invariants (spec §3.2, §5).
type Runtime struct {
	Detect    *detect.System
	Inventory *inventory.Registry
	Structure *structure.Registry
}

// NewRuntime constructs a Runtime over already-populated registries.
func NewRuntime(detectSystem *detect.System, invReg *inventory.Registry, strReg *structure.Registry) *Runtime {
	return &Runtime{Detect: detectSystem, Inventory: invReg, Structure: strReg}
}
