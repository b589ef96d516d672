// Package structure holds the structure-genus processors: each knows how
// to recognize a documentation site's page theme and extract rendered
// content for a set of candidate inventory objects (spec §4.3).
package structure

import (
	"context"

	"github.com/librovore/librovore/internal/domain"
)

// Processor recognizes one page theme and extracts content from it.
type Processor interface {
	Name() string

	// Capabilities returns this processor's statically declared
	// supported_inventory_types/content_extraction_features, independent
	// of any particular source.
	Capabilities() domain.ProcessorCapabilities

	// Detect probes source and reports a confidence-scored Detection.
	Detect(ctx context.Context, source string) (domain.Detection, error)

	// ExtractContents fetches and extracts content for each candidate
	// object concurrently, returning one ContentDocument per candidate
	// that yields meaningful content (spec §3.1).
	ExtractContents(ctx context.Context, det domain.Detection,
		objects []domain.InventoryObject) ([]domain.ContentDocument, error)
}

// Registry is an accretive, write-once-at-init map of structure
// processors (spec §3.2, §9).
type Registry struct {
	order []string
	procs map[string]Processor
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]Processor)}
}

// Register adds p to the registry.
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
