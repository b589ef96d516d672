package result

import (
	"fmt"

	"github.com/librovore/librovore/internal/domain"
)

// ErrorResponse is returned (not raised) at the outermost orchestrator
// boundary so tool-callers get actionable structured errors rather than
// opaque failures (spec §4.6, §7).
type ErrorResponse struct {
	ErrorType  string
	Message    string
	Details    map[string]any
	Suggestion string
}

// FromError converts any error into an ErrorResponse, pulling
// ErrorType/Suggestion from a domain.KindedError when present and
// falling back to a generic "internal_error" otherwise.
func FromError(err error) *ErrorResponse {
	if kinded, ok := err.(domain.KindedError); ok {
		return &ErrorResponse{
			ErrorType:  string(kinded.Kind()),
			Message:    kinded.Error(),
			Suggestion: kinded.Suggestion(),
		}
	}
	return &ErrorResponse{
		ErrorType:  "internal_error",
		Message:    err.Error(),
		Suggestion: "this is an unclassified internal error; please file an issue with the source and term used",
	}
}

func (r *ErrorResponse) RenderJSON(revealInternals bool) map[string]any {
	out := map[string]any{
		"error_type": r.ErrorType,
		"message":    r.Message,
		"suggestion": r.Suggestion,
	}
	if revealInternals && len(r.Details) > 0 {
		out["details"] = r.Details
	}
	return out
}

func (r *ErrorResponse) RenderMarkdown(revealInternals bool) []string {
	lines := []string{
		fmt.Sprintf("**error (%s):** %s", r.ErrorType, r.Message),
		fmt.Sprintf("_suggestion: %s_", r.Suggestion),
	}
	return lines
}
