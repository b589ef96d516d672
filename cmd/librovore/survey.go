package librovore

import (
	"github.com/spf13/cobra"
)

func newSurveyProcessorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey-processors",
		Short: "List every registered inventory and structure processor with its declared capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, _, closer, err := buildRuntime(flags.cacheDir, flags.configPath)
			if err != nil {
				return newExitError(exitUsageError, "%s %v", errorGlyph(), err)
			}
			defer closer()

			printResult(runtime.SurveyProcessors())
			return nil
		},
	}
	return cmd
}
