package match

import (
	"testing"

	"github.com/librovore/librovore/internal/domain"
)

func TestMatcher_Exact(t *testing.T) {
	m, err := New(domain.MatchExact, "path.join", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	matched, score := m.Match("os.path.join")
	if !matched || score != 100 {
		t.Errorf("expected substring containment match, got matched=%v score=%v", matched, score)
	}
	if matched, _ := m.Match("os.path.split"); matched {
		t.Error("expected no match for unrelated name")
	}
}

func TestMatcher_Regex(t *testing.T) {
	m, err := New(domain.MatchRegex, `^os\.path\..+`, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if matched, _ := m.Match("os.path.join"); !matched {
		t.Error("expected regex match")
	}
	if matched, _ := m.Match("sys.path.join"); matched {
		t.Error("expected no match outside the anchored prefix")
	}
}

func TestMatcher_Regex_InvalidPattern(t *testing.T) {
	if _, err := New(domain.MatchRegex, "(unclosed", 0); err == nil {
		t.Error("expected an error compiling an invalid regex")
	}
}

func TestMatcher_Fuzzy(t *testing.T) {
	m, err := New(domain.MatchFuzzy, "pathjoin", 50)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	matched, score := m.Match("os.path.join")
	if !matched {
		t.Errorf("expected fuzzy match above threshold, got score=%v", score)
	}
	if score < 50 {
		t.Errorf("score %v below threshold but reported matched", score)
	}
}

func TestMatcher_Fuzzy_ThresholdHundredActsExact(t *testing.T) {
	m, err := New(domain.MatchFuzzy, "os.path.join", 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if matched, _ := m.Match("os.path.join"); !matched {
		t.Error("expected exact-equivalent match at threshold 100")
	}
	if matched, _ := m.Match("os.path.joi"); matched {
		t.Error("expected no match for a non-identical name at threshold 100")
	}
	if matched, _ := m.Match("os.path.joins"); !matched {
		t.Error("expected substring containment at threshold 100, matching Exact mode semantics")
	}
}

func TestMatcher_EmptyTermMatchesEverything(t *testing.T) {
	m, err := New(domain.MatchFuzzy, "", 50)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	matched, score := m.Match("anything.at.all")
	if !matched || score != 100 {
		t.Errorf("expected empty term to match everything with score 100, got matched=%v score=%v", matched, score)
	}
}

func TestMatcher_InvalidMode(t *testing.T) {
	if _, err := New("bogus", "x", 0); err == nil {
		t.Error("expected an error for an unrecognized match mode")
	}
}

func TestPartialRatio_SubstringScoresHigh(t *testing.T) {
	score := PartialRatio("join", "os.path.join")
	if score < 90 {
		t.Errorf("expected a near-perfect partial ratio for an exact substring, got %v", score)
	}
}
