// Package match implements name matching for inventory objects: exact,
// regex, and fuzzy (Levenshtein-based partial-ratio) modes, per spec §4.5.
package match

import (
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/librovore/librovore/internal/domain"
)

// DefaultFuzzyThreshold is the default fuzzy_threshold (spec §4.5).
const DefaultFuzzyThreshold = 50

// partialRatioParams holds the library's default Levenshtein parameters.
// Tolerance of the query appearing as a substring of the candidate (a
// "partial ratio", per spec's glossary entry) comes from PartialRatio's
// sliding window, not from these parameters.
var partialRatioParams = levenshtein.NewParams()

// Matcher scores a candidate name against a query term under a mode.
type Matcher struct {
	mode      domain.MatchMode
	threshold int // 0-100, fuzzy only
	regex     *regexp.Regexp
	term      string
}

// New compiles a Matcher for the given mode and term. For MatchRegex the
// term is compiled once and reused across every candidate. threshold is
// only consulted for MatchFuzzy.
func New(mode domain.MatchMode, term string, threshold int) (*Matcher, error) {
	m := &Matcher{mode: mode, threshold: threshold, term: term}
	switch mode {
	case domain.MatchExact, domain.MatchFuzzy, "":
		if mode == "" {
			m.mode = domain.MatchFuzzy
		}
	case domain.MatchRegex:
		re, err := regexp.Compile(term)
		if err != nil {
			return nil, err
		}
		m.regex = re
	default:
		return nil, domain.NewMatchModeInvalidError(string(mode))
	}
	if m.threshold <= 0 {
		m.threshold = DefaultFuzzyThreshold
	}
	return m, nil
}

// Match reports whether name matches, and the [0,100] score to use as a
// ranking tie-breaker (100 for exact/regex hits).
func (m *Matcher) Match(name string) (matched bool, score float64) {
	if m.term == "" {
		return true, 100
	}
	switch m.mode {
	case domain.MatchExact:
		// Substring containment, case-sensitive (spec §4.5: "Exact" is
		// made deterministic here as substring containment on Name,
		// matching the source's predominant behavior - decided Open
		// Question, recorded in DESIGN.md).
		if strings.Contains(name, m.term) {
			return true, 100
		}
		return false, 0
	case domain.MatchRegex:
		if m.regex.MatchString(name) {
			return true, 100
		}
		return false, 0
	case domain.MatchFuzzy:
		score := PartialRatio(m.term, name)
		if m.threshold >= 100 {
			// fuzzy_threshold=100 behaves identically to Exact on names
			// (spec §8 boundary behavior).
			if strings.Contains(name, m.term) {
				return true, 100
			}
			return false, score
		}
		return score >= float64(m.threshold), score
	}
	return false, 0
}

// PartialRatio computes a substring-tolerant similarity score in [0,100]
// between query and candidate: the best Levenshtein-based similarity of
// query against any equal-length window of candidate, so a short query
// fully contained in a long candidate still scores near 100.
func PartialRatio(query, candidate string) float64 {
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)
	if q == "" {
		return 100
	}
	if len(c) <= len(q) {
		return levenshtein.Match(q, c, partialRatioParams) * 100
	}

	best := 0.0
	qRunes := []rune(q)
	cRunes := []rune(c)
	qLen := len(qRunes)
	// Slide a qLen-wide window across the candidate; this is O(n*m) but
	// inventories are filtered per query against a bounded candidate set
	// well before this is called at scale.
	for start := 0; start+qLen <= len(cRunes); start++ {
		window := string(cRunes[start : start+qLen])
		score := levenshtein.Match(q, window, partialRatioParams)
		if score > best {
			best = score
		}
	}
	// Also score the full string in case a slightly longer/shorter
	// alignment scores better than any fixed-width window.
	full := levenshtein.Match(q, c, partialRatioParams)
	if full > best {
		best = full
	}
	return best * 100
}
