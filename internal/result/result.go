// Package result holds the typed query outcomes and their self-rendering
// to JSON/Markdown (spec §4.6). Every orchestrator entry point returns
// one of these types rather than raising at the outer boundary.
package result

// Result is implemented by every outcome type returned from the query
// orchestrator.
type Result interface {
	// RenderJSON produces a structured mapping suitable for tool-call
	// serialization. Internal fields (cache stats, raw detection
	// metadata) are included only when revealInternals is true.
	RenderJSON(revealInternals bool) map[string]any

	// RenderMarkdown produces a sequence of lines, including decorative
	// separators between objects and truncation indicators.
	RenderMarkdown(revealInternals bool) []string
}
