package result

import (
	"fmt"

	"github.com/librovore/librovore/internal/domain"
)

// ContentQueryResult is the outcome of query_content.
type ContentQueryResult struct {
	Source                  string
	InventoryProcessorName  string
	StructureProcessorName  string
	Documents               []domain.ContentDocument
	CandidatesConsidered    int
	IncludeSnippets         bool
}

func (r *ContentQueryResult) RenderJSON(revealInternals bool) map[string]any {
	docs := make([]map[string]any, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, contentDocumentJSON(d, r.IncludeSnippets))
	}
	out := map[string]any{
		"source":    r.Source,
		"documents": docs,
	}
	if revealInternals {
		out["inventory_processor"] = r.InventoryProcessorName
		out["structure_processor"] = r.StructureProcessorName
		out["candidates_considered"] = r.CandidatesConsidered
	}
	return out
}

func contentDocumentJSON(d domain.ContentDocument, includeSnippet bool) map[string]any {
	m := map[string]any{
		"name":              d.Name,
		"uri":               d.URI,
		"inventory_type":    d.InventoryType,
		"documentation_url": d.DocumentationURL,
		"relevance_score":   d.RelevanceScore,
	}
	if d.Signature != "" {
		m["signature"] = d.Signature
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if includeSnippet && d.ContentSnippet != "" {
		m["content_snippet"] = d.ContentSnippet
	}
	return m
}

func (r *ContentQueryResult) RenderMarkdown(revealInternals bool) []string {
	lines := []string{fmt.Sprintf("## Content: %s", r.Source)}
	for i, d := range r.Documents {
		if i > 0 {
			lines = append(lines, "---")
		}
		lines = append(lines, fmt.Sprintf("### %s", d.Name))
		lines = append(lines, fmt.Sprintf("_%s_ (relevance %.2f)", d.DocumentationURL, d.RelevanceScore))
		if d.Signature != "" {
			lines = append(lines, "```", d.Signature, "```")
		}
		if d.Description != "" {
			lines = append(lines, truncateLine(d.Description, maxMarkdownLineBudget))
		}
		if r.IncludeSnippets && d.ContentSnippet != "" {
			lines = append(lines, fmt.Sprintf("> %s", d.ContentSnippet))
		}
	}
	if revealInternals {
		lines = append(lines, fmt.Sprintf("_inventory: %s, structure: %s, candidates: %d_",
			r.InventoryProcessorName, r.StructureProcessorName, r.CandidatesConsidered))
	}
	return lines
}

// maxMarkdownLineBudget caps how much of a single description is shown
// inline in Markdown rendering before a truncation indicator replaces
// the remainder (spec §4.6).
const maxMarkdownLineBudget = 4000

func truncateLine(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	return s[:budget] + "\n\n_[truncated]_"
}
