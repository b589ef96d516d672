package librovore

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/result"
)

// printResult renders r per --format and writes it to stdout.
func printResult(r result.Result) {
	if flags.format == "json" {
		data, err := json.MarshalIndent(r.RenderJSON(flags.revealInternals), "", "  ")
		if err != nil {
			fmt.Println(r.RenderJSON(flags.revealInternals))
			return
		}
		fmt.Println(string(data))
		return
	}
	fmt.Println(strings.Join(r.RenderMarkdown(flags.revealInternals), "\n"))
}

// exitCodeForError maps a query-layer error to the exit codes in spec §6.
func exitCodeForError(err error) int {
	kinded, ok := err.(domain.KindedError)
	if !ok {
		return exitUsageError
	}
	switch kinded.Kind() {
	case domain.ErrKindProcessorInavailability, domain.ErrKindProcessorIncompatible,
		domain.ErrKindStructureIncompatible, domain.ErrKindContentExtractFailure:
		return exitProcessorUnavailable
	case domain.ErrKindSourceInvalid, domain.ErrKindFilterUnsupported, domain.ErrKindMatchModeInvalid:
		return exitUsageError
	case domain.ErrKindNetworkFailure, domain.ErrKindHTTPRequestFailure,
		domain.ErrKindAccessDisallowed, domain.ErrKindContentTypeInvalid:
		return exitNetworkIO
	default:
		return exitUsageError
	}
}

// errorGlyph prefixes CLI error output with a distinguishing marker
// (spec §7: "CLI prefixes with a distinguishing glyph/color"). Actual
// ANSI colorization is the documented terminal-colorization non-goal;
// this only swaps the "✖" glyph for a plain "x" when --color is
// disabled.
func errorGlyph() string {
	if flags.color {
		return "✖" // heavy multiplication x, a plain non-ANSI glyph
	}
	return "x"
}

// reportQueryError prints the ErrorResponse rendering for err and
// returns the exit code the caller's RunE should propagate.
func reportQueryError(err error) error {
	resp := result.FromError(err)
	printResult(resp)
	return newExitError(exitCodeForError(err), "%s %s", errorGlyph(), err.Error())
}
