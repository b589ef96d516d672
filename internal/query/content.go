package query

import (
	"context"
	"sort"
	"strings"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/match"
	"github.com/librovore/librovore/internal/result"
)

// ContentParams are query_content's parameters (spec §4.5).
type ContentParams struct {
	Source          string
	Term            string
	Filters         map[string]string
	MatchMode       domain.MatchMode
	FuzzyThreshold  int
	// ResultsMax is nil when the caller never set results_max (defaults to
	// DefaultResultsMax). A non-nil pointer to 0 is an explicit request
	// for an empty page (spec §8), distinct from leaving it unset.
	ResultsMax      *int
	IncludeSnippets bool
}

func (p *ContentParams) normalize() {
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

// QueryContent implements spec §4.5's query_content.
func (rt *Runtime) QueryContent(ctx context.Context, p ContentParams) (*result.ContentQueryResult, error) {
	p.normalize()

	idet, err := rt.Detect.DetectInventory(ctx, p.Source)
	if err != nil {
		return nil, err
	}
	for key := range p.Filters {
		if !idet.Capabilities.HasFilter(key) {
			return nil, domain.NewFilterUnsupportedError(key, idet.ProcessorName)
		}
	}
	invProc, ok := rt.Inventory.Get(idet.ProcessorName)
	if !ok {
		return nil, domain.NewProcessorInavailabilityError(p.Source, domain.GenusInventory)
	}

	objs, err := invProc.FilterInventory(ctx, idet, p.Term, p.Filters, p.MatchMode, p.FuzzyThreshold)
	if err != nil {
		return nil, err
	}
	sortByMatchScore(objs)

	inventoryType := ""
	if len(objs) > 0 {
		inventoryType = objs[0].InventoryType
	}

	sdet, err := rt.Detect.DetectStructure(ctx, p.Source, inventoryType)
	if err != nil {
		return nil, err
	}
	if inventoryType != "" && !sdet.Capabilities.SupportsInventoryType(inventoryType) {
		return nil, domain.NewProcessorIncompatibilityError(inventoryType, sdet.ProcessorName)
	}
	strProc, ok := rt.Structure.Get(sdet.ProcessorName)
	if !ok {
		return nil, domain.NewProcessorInavailabilityError(p.Source, domain.GenusStructure)
	}

	if *p.ResultsMax == 0 {
		// An explicit results_max=0 is a valid request for an empty page,
		// not "unset" (spec §8) - skip extraction and its success-rate
		// floor entirely rather than reporting ContentExtractFailure for
		// legitimately requesting zero documents.
		return &result.ContentQueryResult{
			Source:                 p.Source,
			InventoryProcessorName: idet.ProcessorName,
			StructureProcessorName: sdet.ProcessorName,
			IncludeSnippets:        p.IncludeSnippets,
		}, nil
	}

	overfetch := *p.ResultsMax * OverfetchFactor
	candidates := objs
	if overfetch < len(candidates) {
		candidates = candidates[:overfetch]
	}

	documents, err := strProc.ExtractContents(ctx, sdet, candidates)
	if err != nil {
		return nil, err
	}

	if len(documents) == 0 {
		return nil, domain.NewStructureIncompatibilityError(p.Source, sdet.ProcessorName)
	}
	successRate := float64(len(documents)) / float64(max(len(candidates), 1))
	if successRate < MinSuccessRate {
		return nil, domain.NewContentExtractFailureError(p.Source, sdet.ProcessorName, successRate)
	}

	rankDocuments(documents, p.Term)
	if p.IncludeSnippets {
		for i := range documents {
			documents[i].ContentSnippet = snippetAround(documents[i].Description, p.Term)
		}
	}

	sort.SliceStable(documents, func(i, j int) bool {
		return documents[i].RelevanceScore > documents[j].RelevanceScore
	})
	if *p.ResultsMax < len(documents) {
		documents = documents[:*p.ResultsMax]
	}

	return &result.ContentQueryResult{
		Source:                 p.Source,
		InventoryProcessorName: idet.ProcessorName,
		StructureProcessorName: sdet.ProcessorName,
		Documents:              documents,
		CandidatesConsidered:   len(candidates),
		IncludeSnippets:        p.IncludeSnippets,
	}, nil
}

// rankDocuments computes the content-aware relevance score for each
// document in place: a name hit bonus, a signature hit bonus, and a
// description hit bonus, each scaled into [0,1] and combined (spec §4.5
// step 8).
func rankDocuments(docs []domain.ContentDocument, term string) {
	if term == "" {
		for i := range docs {
			docs[i].RelevanceScore = 1.0
		}
		return
	}
	needle := strings.ToLower(term)
	for i := range docs {
		d := &docs[i]
		score := 0.0
		if strings.Contains(strings.ToLower(d.Name), needle) {
			score += 0.5
		}
		if strings.Contains(strings.ToLower(d.Signature), needle) {
			score += 0.3
		}
		if strings.Contains(strings.ToLower(d.Description), needle) {
			score += 0.2
		}
		if score == 0 {
			// No literal hit (e.g. a fuzzy/regex match); fall back to a
			// small baseline so meaningful-but-indirect matches still
			// rank above nothing at all.
			score = 0.1
		}
		d.RelevanceScore = score
	}
}

// snippetWindow is the snippet's context budget in bytes: half of it is
// kept on each side of the first query occurrence, and the whole of it
// as a prefix when the term does not occur (spec §4.5 step 9).
const snippetWindow = 160

// snippetAround returns a window of text around the first
// case-insensitive occurrence of term in text, or the text's own
// prefix when term doesn't occur.
func snippetAround(text, term string) string {
	if text == "" {
		return ""
	}
	if term == "" {
		if len(text) <= snippetWindow {
			return text
		}
		return text[:snippetWindow] + "..."
	}
	lowerText := strings.ToLower(text)
	idx := strings.Index(lowerText, strings.ToLower(term))
	if idx < 0 {
		if len(text) <= snippetWindow {
			return text
		}
		return text[:snippetWindow] + "..."
	}
	start := idx - snippetWindow/2
	if start < 0 {
		start = 0
	}
	end := idx + len(term) + snippetWindow/2
	if end > len(text) {
		end = len(text)
	}
	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}
