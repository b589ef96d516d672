package librovore

import (
	"context"

	"github.com/spf13/cobra"
)

func newDetectCommand() *cobra.Command {
	var genus string

	cmd := &cobra.Command{
		Use:   "detect <source>",
		Short: "Report which inventory and structure processors a source detects as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, _, closer, err := buildRuntime(flags.cacheDir, flags.configPath)
			if err != nil {
				return newExitError(exitUsageError, "%s %v", errorGlyph(), err)
			}
			defer closer()

			res, err := runtime.DetectBoth(context.Background(), args[0], genus)
			if err != nil {
				return reportQueryError(err)
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&genus, "genus", "", "limit detection to inventory or structure (default: both)")
	return cmd
}
