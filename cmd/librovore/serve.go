package librovore

import (
	"context"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/librovore/librovore/internal/mcpserver"
)

const (
	serverName    = "librovore"
	serverVersion = "v1.0.0"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run librovore as an MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// MCP stdio servers must log to stderr only.
			log.SetOutput(os.Stderr)

			runtime, logger, closer, err := buildRuntime(flags.cacheDir, flags.configPath)
			if err != nil {
				return newExitError(exitUsageError, "%s %v", errorGlyph(), err)
			}
			defer closer()

			handlers := mcpserver.NewHandlers(runtime, logger)
			server := mcp.NewServer(&mcp.Implementation{
				Name:    serverName,
				Version: serverVersion,
			}, &mcp.ServerOptions{
				Instructions: "Use query_inventory to search a documentation site's inventory by name, then query_content to fetch extracted content for matching objects.",
			})
			mcpserver.RegisterTools(server, handlers)

			logger.Info("server ready, waiting for requests")
			if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
				logger.Error("server error", "error", err)
				return newExitError(exitNetworkIO, "%s server error: %v", errorGlyph(), err)
			}
			return nil
		},
	}
	return cmd
}
