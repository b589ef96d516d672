package librovore

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/query"
)

func newQueryInventoryCommand() *cobra.Command {
	var (
		filterArgs     []string
		matchMode      string
		fuzzyThreshold int
		resultsMax     int
		summarize      bool
		groupBy        []string
	)

	cmd := &cobra.Command{
		Use:   "query-inventory <source> <term>",
		Short: "Search a documentation site's inventory by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(filterArgs)
			if err != nil {
				return newExitError(exitUsageError, "%s %v", errorGlyph(), err)
			}

			runtime, _, closer, err := buildRuntime(flags.cacheDir, flags.configPath)
			if err != nil {
				return newExitError(exitUsageError, "%s %v", errorGlyph(), err)
			}
			defer closer()

			var resultsMaxPtr *int
			if cmd.Flags().Changed("results-max") {
				resultsMaxPtr = &resultsMax
			}
			res, err := runtime.QueryInventory(context.Background(), query.InventoryParams{
				Source:         args[0],
				Term:           args[1],
				Filters:        filters,
				MatchMode:      domain.MatchMode(matchMode),
				FuzzyThreshold: fuzzyThreshold,
				ResultsMax:     resultsMaxPtr,
				Summarize:      summarize,
				GroupBy:        groupBy,
			})
			if err != nil {
				return reportQueryError(err)
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filterArgs, "filters", nil, "attribute filters as key=value (repeatable)")
	cmd.Flags().StringVar(&matchMode, "match-mode", "fuzzy", "exact, regex, or fuzzy")
	cmd.Flags().IntVar(&fuzzyThreshold, "fuzzy-threshold", 50, "fuzzy match threshold 0-100")
	cmd.Flags().IntVar(&resultsMax, "results-max", query.DefaultResultsMax, "maximum objects returned")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "return distribution counts instead of objects")
	cmd.Flags().StringArrayVar(&groupBy, "group-by", nil, "attributes to group the summary by")
	return cmd
}

// parseFilters turns ["k=v", ...] into a map, per spec §6's
// "--filters k=v ..." shared flag shape.
func parseFilters(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(args))
	for _, kv := range args {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q must be in key=value form", kv)
		}
		out[key] = val
	}
	return out, nil
}
