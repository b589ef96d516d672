// Package domain contains the core data types shared across librovore.
// These are pure data structures with minimal behavior - making them easy
// to understand and test. Think of them as the "nouns" of the query engine.
package domain

import "time"

// ProcessorGenus identifies which half of the detection system a
// processor belongs to. A processor belongs to exactly one genus.
type ProcessorGenus string

const (
	GenusInventory ProcessorGenus = "inventory"
	GenusStructure ProcessorGenus = "structure"
)

// MinimumConfidence is the threshold below which a Detection is rejected
// and never selected (spec §3.1).
const MinimumConfidence = 0.5

// InventoryObject is one entry from a documentation site's inventory.
type InventoryObject struct {
	// Name is the fully-qualified identifier, e.g. "os.path.join".
	Name string `json:"name"`

	// URI is the relative path from site root to page/fragment. May
	// contain a bare "$" or trailing "#$" placeholder that expands to Name.
	URI string `json:"uri"`

	// InventoryType tags the inventory format that produced this object,
	// e.g. "sphinx_objects_inv", "mkdocs_search_index", "rustdoc",
	// "pydoctor_search_index".
	InventoryType string `json:"inventory_type"`

	// LocationBase is the base URL the inventory was loaded from.
	LocationBase string `json:"location_base"`

	// DisplayName is a human-readable alternative to Name, when different.
	DisplayName string `json:"display_name,omitempty"`

	// Specifics carries processor-specific metadata (domain/role/priority
	// for Sphinx, item_type for Rustdoc, etc).
	Specifics Specifics `json:"specifics"`

	// MatchScore is populated by name-matching (fuzzy partial-ratio, or
	// 100 for exact/regex hits) and used as a ranking tie-breaker.
	MatchScore float64 `json:"match_score,omitempty"`
}

// Key returns the identity tuple used for deduplication within one
// inventory load (spec §3.1: two objects with identical
// (inventory_type, location_base, name, uri) are equal).
func (o InventoryObject) Key() string {
	return o.InventoryType + "|" + o.LocationBase + "|" + o.Name + "|" + o.URI
}

// ExpandedURI replaces a bare "$" or trailing "#$" placeholder in URI
// with the object's Name.
func (o InventoryObject) ExpandedURI() string {
	return ExpandURIPlaceholder(o.URI, o.Name)
}

// ExpandURIPlaceholder applies the "$" expansion rule from spec §4.2.
func ExpandURIPlaceholder(uri, name string) string {
	out := make([]byte, 0, len(uri)+len(name))
	for i := 0; i < len(uri); i++ {
		if uri[i] == '$' {
			out = append(out, name...)
			continue
		}
		out = append(out, uri[i])
	}
	return string(out)
}

// ContentDocument is extracted content for one matched inventory object.
type ContentDocument struct {
	Name          string `json:"name"`
	URI           string `json:"uri"`
	InventoryType string `json:"inventory_type"`

	// DocumentationURL is the absolute URL a human would open.
	DocumentationURL string `json:"documentation_url"`

	// Signature is the rendered declaration (may be empty).
	Signature string `json:"signature,omitempty"`

	// Description is the prose body in Markdown (may be empty).
	Description string `json:"description,omitempty"`

	// ContentSnippet is a query-ranked excerpt.
	ContentSnippet string `json:"content_snippet,omitempty"`

	// RelevanceScore is in [0.0, 1.0].
	RelevanceScore float64 `json:"relevance_score"`
}

// Meaningful reports whether this document counts as "meaningful" per
// spec §3.1: signature or description (at least one) is non-empty.
func (d ContentDocument) Meaningful() bool {
	return d.Signature != "" || d.Description != ""
}

// Detection is the outcome of one processor attempting to classify a
// source.
type Detection struct {
	ProcessorName string                `json:"processor_name"`
	Genus         ProcessorGenus        `json:"processor_genus"`
	Source        string                `json:"source"`
	Confidence    float64               `json:"confidence"`
	Capabilities  ProcessorCapabilities `json:"capabilities"`

	// Extra carries processor-specific fields (e.g. detected theme name)
	// that don't warrant dedicated struct fields across all processors.
	Extra map[string]string `json:"extra,omitempty"`
}

// Rejected reports whether this detection falls below the minimum
// confidence threshold and must never be selected.
func (d Detection) Rejected() bool {
	return d.Confidence < MinimumConfidence
}

// ProcessorCapabilities describes what a processor can do, statically,
// before any work is attempted.
type ProcessorCapabilities struct {
	// SupportedFilters names the attributes inventory filtering may use
	// (inventory processors only).
	SupportedFilters []string `json:"supported_filters,omitempty"`

	// SupportedInventoryTypes names the inventory tags a structure
	// processor can extract content for (structure processors only).
	SupportedInventoryTypes []string `json:"supported_inventory_types,omitempty"`

	// ContentExtractionFeatures is a subset of {signatures, descriptions,
	// code_examples, cross_references, arguments, returns, attributes}.
	ContentExtractionFeatures []string `json:"content_extraction_features,omitempty"`

	// ConfidenceByInventoryType biases structure-processor ties when a
	// query already knows the candidate inventory type.
	ConfidenceByInventoryType map[string]float64 `json:"confidence_by_inventory_type,omitempty"`
}

// HasFilter reports whether name is in SupportedFilters.
func (c ProcessorCapabilities) HasFilter(name string) bool {
	for _, f := range c.SupportedFilters {
		if f == name {
			return true
		}
	}
	return false
}

// SupportsInventoryType reports whether tag is in SupportedInventoryTypes.
func (c ProcessorCapabilities) SupportsInventoryType(tag string) bool {
	for _, t := range c.SupportedInventoryTypes {
		if t == tag {
			return true
		}
	}
	return false
}

// MatchMode selects how name_term is matched against InventoryObject.Name.
type MatchMode string

const (
	MatchExact MatchMode = "exact"
	MatchRegex MatchMode = "regex"
	MatchFuzzy MatchMode = "fuzzy"
)

// CacheVersion marks the on-disk extension-cache metadata format.
const CacheVersion = 1

// CacheEntryResult is the outcome half of a CacheEntry: either a value or
// a recorded failure kind, never both.
type CacheEntryResult[T any] struct {
	Value   T
	Err     error
	Failure bool
}

// CacheEntry is the shared shape backing ProbeCache, ContentCache,
// RobotsCache, and DetectionsCache (spec §4.1).
type CacheEntry[T any] struct {
	Result    CacheEntryResult[T]
	StoredAt  time.Time
	TTL       time.Duration
	SizeBytes int
}

// Expired reports whether the entry should be treated as absent. An
// entry exactly at the TTL boundary (now - StoredAt == TTL) is still
// fresh; it becomes stale the instant the boundary is crossed. Kept as
// strict-greater-than rather than >= (spec's TTL wording is ambiguous at
// the exact boundary) since treating the instant of expiry as still-valid
// avoids evicting an entry that was just refreshed.
func (e CacheEntry[T]) Expired(now time.Time) bool {
	return now.Sub(e.StoredAt) > e.TTL
}
