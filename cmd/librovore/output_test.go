package librovore

import (
	"errors"
	"testing"

	"github.com/librovore/librovore/internal/domain"
)

func TestParseFilters_EmptyReturnsNil(t *testing.T) {
	filters, err := parseFilters(nil)
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}
	if filters != nil {
		t.Errorf("expected nil filters, got %v", filters)
	}
}

func TestParseFilters_ParsesKeyValuePairs(t *testing.T) {
	filters, err := parseFilters([]string{"domain=py", "role=function"})
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}
	if filters["domain"] != "py" || filters["role"] != "function" {
		t.Errorf("unexpected filters: %v", filters)
	}
}

func TestParseFilters_RejectsMissingEquals(t *testing.T) {
	if _, err := parseFilters([]string{"nopair"}); err == nil {
		t.Error("expected an error for a filter argument without '='")
	}
}

func TestExitCodeForError_NonKindedDefaultsToUsageError(t *testing.T) {
	if got := exitCodeForError(errors.New("boom")); got != exitUsageError {
		t.Errorf("exitCodeForError(plain error) = %d, want %d", got, exitUsageError)
	}
}

func TestExitCodeForError_MapsKindsToExitCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.NewProcessorInavailabilityError("/docs", domain.GenusInventory), exitProcessorUnavailable},
		{domain.NewFilterUnsupportedError("priority", "sphinx"), exitUsageError},
		{domain.NewMatchModeInvalidError("bogus"), exitUsageError},
		{domain.NewNetworkFailureError("https://example.com", errors.New("timeout")), exitNetworkIO},
		{domain.NewAccessDisallowedError("https://example.com/robots"), exitNetworkIO},
	}
	for _, c := range cases {
		if got := exitCodeForError(c.err); got != c.want {
			t.Errorf("exitCodeForError(%T) = %d, want %d", c.err, got, c.want)
		}
	}
}
