// Package inventory holds the inventory-genus processors: each knows how
// to recognize a documentation site's inventory format and load its
// catalog of named objects (spec §4.2).
package inventory

import (
	"context"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/match"
)

// Processor recognizes and loads one inventory format.
type Processor interface {
	// Name is the processor's registration name, e.g. "sphinx".
	Name() string

	// Capabilities returns this processor's statically declared
	// supported_filters, independent of any particular source (spec
	// §3.1's Capability glossary entry: "used for validation before
	// work" - survey_processors consults this without probing anything).
	Capabilities() domain.ProcessorCapabilities

	// Detect probes source and reports a confidence-scored Detection.
	// It never returns an error for "not this format" - that is
	// expressed as a low-confidence Detection (spec §3.1).
	Detect(ctx context.Context, source string) (domain.Detection, error)

	// FilterInventory loads the full inventory (caching internally is
	// the caller's responsibility) and returns objects whose Name
	// matches nameTerm under mode, plus passes every filter in filters.
	FilterInventory(ctx context.Context, det domain.Detection, nameTerm string,
		filters map[string]string, mode domain.MatchMode, threshold int) ([]domain.InventoryObject, error)
}

// Registry is an accretive, write-once-at-init map of inventory
// processors (spec §3.2, §9). All() returns processors in registration
// order so detection tie-breaking is deterministic.
type Registry struct {
	order []string
	procs map[string]Processor
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]Processor)}
}

// Register adds p to the registry. Re-registering an existing name
// replaces it but preserves its original position in All()'s order.
func (r *Registry) Register(p Processor) {
	name := p.Name()
	if _, exists := r.procs[name]; !exists {
		r.order = append(r.order, name)
	}
	r.procs[name] = p
}

// All returns every registered processor, in registration order.
func (r *Registry) All() []Processor {
	out := make([]Processor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.procs[name])
	}
	return out
}

// Get looks up a processor by name.
func (r *Registry) Get(name string) (Processor, bool) {
	p, ok := r.procs[name]
	return p, ok
}

// ApplyFilters reports whether obj passes every key/value pair in
// filters, consulting obj.Specifics for each key.
func ApplyFilters(obj domain.InventoryObject, filters map[string]string) bool {
	for key, want := range filters {
		got, ok := obj.Specifics.Get(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// FilterByName applies a Matcher across objects, stamping MatchScore and
// keeping only the hits. Shared by every inventory processor.
func FilterByName(objs []domain.InventoryObject, nameTerm string, mode domain.MatchMode,
	threshold int) ([]domain.InventoryObject, error) {
	m, err := match.New(mode, nameTerm, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InventoryObject, 0, len(objs))
	for _, obj := range objs {
		matched, score := m.Match(obj.Name)
		if !matched {
			continue
		}
		obj.MatchScore = score
		out = append(out, obj)
	}
	return out, nil
}
