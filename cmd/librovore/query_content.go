package librovore

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/query"
)

func newQueryContentCommand() *cobra.Command {
	var (
		filterArgs      []string
		matchMode       string
		fuzzyThreshold  int
		resultsMax      int
		includeSnippets bool
	)

	cmd := &cobra.Command{
		Use:   "query-content <source> <term>",
		Short: "Fetch and extract content for inventory objects matching a name term",
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
			res, err := runtime.QueryContent(context.Background(), query.ContentParams{
				Source:          args[0],
				Term:            args[1],
				Filters:         filters,
				MatchMode:       domain.MatchMode(matchMode),
				FuzzyThreshold:  fuzzyThreshold,
				ResultsMax:      resultsMaxPtr,
				IncludeSnippets: includeSnippets,
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
	cmd.Flags().IntVar(&resultsMax, "results-max", query.DefaultResultsMax, "maximum documents returned")
	cmd.Flags().BoolVar(&includeSnippets, "include-snippets", true, "include a query-ranked excerpt per document")
	return cmd
}
