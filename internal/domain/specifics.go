package domain

import (
	"fmt"
	"sort"
)

// Specifics is processor-dependent metadata attached to an InventoryObject.
// Each inventory processor emits one of the closed set of concrete types
// below; GenericSpecifics remains available for ad-hoc attributes that
// don't warrant a dedicated type (spec §3, §9 REDESIGN FLAGS).
type Specifics interface {
	// Get returns the string value for key, if present.
	Get(key string) (string, bool)

	// Keys lists the attribute names present (used to validate filters
	// against ProcessorCapabilities.SupportedFilters), in a fixed order.
	Keys() []string

	// RenderMarkdown renders the specifics as a short Markdown fragment.
	RenderMarkdown() string

	// RenderJSON renders the specifics as a JSON-able map.
	RenderJSON() map[string]any
}

// SphinxSpecifics carries a Sphinx objects.inv entry's domain:role pair
// and search priority (spec §3, §4.2).
type SphinxSpecifics struct {
	Domain   string
	Role     string
	Priority string
}

func (s SphinxSpecifics) Get(key string) (string, bool) {
	switch key {
	case "domain":
		return s.Domain, true
	case "role":
		return s.Role, true
	case "priority":
		return s.Priority, true
	}
	return "", false
}

func (s SphinxSpecifics) Keys() []string { return []string{"domain", "role", "priority"} }

func (s SphinxSpecifics) RenderMarkdown() string {
	return fmt.Sprintf("- domain: %s\n- role: %s\n- priority: %s\n", s.Domain, s.Role, s.Priority)
}

func (s SphinxSpecifics) RenderJSON() map[string]any {
	return map[string]any{"domain": s.Domain, "role": s.Role, "priority": s.Priority}
}

// RustdocSpecifics carries the rustdoc all.html item kind (fn, struct,
// trait, ...) an entry was listed under (spec §3, §4.2).
type RustdocSpecifics struct {
	ItemType string
}

func (r RustdocSpecifics) Get(key string) (string, bool) {
	if key == "item_type" {
		return r.ItemType, true
	}
	return "", false
}

func (r RustdocSpecifics) Keys() []string { return []string{"item_type"} }

func (r RustdocSpecifics) RenderMarkdown() string {
	return fmt.Sprintf("- item_type: %s\n", r.ItemType)
}

func (r RustdocSpecifics) RenderJSON() map[string]any {
	return map[string]any{"item_type": r.ItemType}
}

// PydoctorSpecifics carries the pydoctor searchindex.json entry's kind
// (class, function, attribute, ...). The qualified name itself lives on
// InventoryObject.Name - pydoctor's search index has no attribute
// beyond kind worth a dedicated field (spec §3, §4.2; see DESIGN.md for
// why this departs from a QName field).
type PydoctorSpecifics struct {
	Kind string
}

func (p PydoctorSpecifics) Get(key string) (string, bool) {
	if key == "kind" {
		return p.Kind, true
	}
	return "", false
}

func (p PydoctorSpecifics) Keys() []string { return []string{"kind"} }

func (p PydoctorSpecifics) RenderMarkdown() string {
	return fmt.Sprintf("- kind: %s\n", p.Kind)
}

func (p PydoctorSpecifics) RenderJSON() map[string]any {
	return map[string]any{"kind": p.Kind}
}

// MkDocsSpecifics carries whether an mkdocs search_index.json entry is a
// whole page or an in-page section anchor (spec §3, §4.2).
type MkDocsSpecifics struct {
	Category string
}

func (m MkDocsSpecifics) Get(key string) (string, bool) {
	if key == "category" {
		return m.Category, true
	}
	return "", false
}

func (m MkDocsSpecifics) Keys() []string { return []string{"category"} }

func (m MkDocsSpecifics) RenderMarkdown() string {
	return fmt.Sprintf("- category: %s\n", m.Category)
}

func (m MkDocsSpecifics) RenderJSON() map[string]any {
	return map[string]any{"category": m.Category}
}

// GenericSpecifics is a string->string fallback for processors whose
// metadata doesn't merit a dedicated struct. Rendering iterates keys in
// sorted order so output is stable across runs despite the underlying
// map (spec §8).
type GenericSpecifics map[string]string

func (g GenericSpecifics) Get(key string) (string, bool) {
	v, ok := g[key]
	return v, ok
}

func (g GenericSpecifics) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (g GenericSpecifics) RenderMarkdown() string {
	s := ""
	for _, k := range g.Keys() {
		s += fmt.Sprintf("- %s: %s\n", k, g[k])
	}
	return s
}

func (g GenericSpecifics) RenderJSON() map[string]any {
	out := make(map[string]any, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// EmptySpecifics satisfies Specifics with no attributes.
type EmptySpecifics struct{}

func (EmptySpecifics) Get(string) (string, bool)  { return "", false }
func (EmptySpecifics) Keys() []string             { return nil }
func (EmptySpecifics) RenderMarkdown() string     { return "" }
func (EmptySpecifics) RenderJSON() map[string]any { return map[string]any{} }
