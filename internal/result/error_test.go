package result

import (
	"errors"
	"testing"

	"github.com/librovore/librovore/internal/domain"
)

func TestFromError_KindedErrorCarriesTypeAndSuggestion(t *testing.T) {
	err := domain.NewMatchModeInvalidError("bogus")
	resp := FromError(err)
	if resp.ErrorType != string(domain.ErrKindMatchModeInvalid) {
		t.Errorf("ErrorType = %q, want %q", resp.ErrorType, domain.ErrKindMatchModeInvalid)
	}
	if resp.Suggestion == "" {
		t.Error("expected a non-empty suggestion from a KindedError")
	}
}

func TestFromError_PlainErrorFallsBackToInternalError(t *testing.T) {
	resp := FromError(errors.New("unexpected panic recovery"))
	if resp.ErrorType != "internal_error" {
		t.Errorf("ErrorType = %q, want internal_error", resp.ErrorType)
	}
	if resp.Message != "unexpected panic recovery" {
		t.Errorf("Message = %q, want the original error text", resp.Message)
	}
}

func TestErrorResponse_RenderJSON_HidesDetailsUnlessRevealed(t *testing.T) {
	resp := &ErrorResponse{ErrorType: "x", Message: "m", Suggestion: "s", Details: map[string]any{"k": "v"}}

	hidden := resp.RenderJSON(false)
	if _, ok := hidden["details"]; ok {
		t.Error("expected details to be hidden when revealInternals=false")
	}

	revealed := resp.RenderJSON(true)
	if _, ok := revealed["details"]; !ok {
		t.Error("expected details to be present when revealInternals=true")
	}
}

func TestErrorResponse_RenderMarkdown_IncludesSuggestion(t *testing.T) {
	resp := &ErrorResponse{ErrorType: "x", Message: "boom", Suggestion: "try again"}
	lines := resp.RenderMarkdown(false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
}
