// Package mcpserver is the thin MCP tool-server adapter (spec §1, §6):
// four tools delegating straight to internal/query, each returning
// render_as_json() output as the tool result (spec §6's MCP surface).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/query"
	"github.com/librovore/librovore/internal/result"
)

// Handlers wraps the query Runtime and provides MCP tool handlers.
type Handlers struct {
	runtime *query.Runtime
	logger  *slog.Logger
}

// NewHandlers constructs Handlers over an already-wired Runtime.
func NewHandlers(runtime *query.Runtime, logger *slog.Logger) *Handlers {
	return &Handlers{runtime: runtime, logger: logger}
}

// QueryInventoryArgs mirrors query_inventory's CLI flags (spec §6).
type QueryInventoryArgs struct {
	Source         string            `json:"source" jsonschema_description:"Documentation site URL or local path"`
	Term           string            `json:"term" jsonschema_description:"Name term to search for"`
	Filters        map[string]string `json:"filters,omitempty" jsonschema_description:"Attribute filters, e.g. {\"domain\":\"py\"}"`
	MatchMode      string            `json:"match_mode,omitempty" jsonschema_description:"exact, regex, or fuzzy (default fuzzy)"`
	FuzzyThreshold int               `json:"fuzzy_threshold,omitempty" jsonschema_description:"Fuzzy match threshold 0-100 (default 50)"`
	ResultsMax     *int              `json:"results_max,omitempty" jsonschema_description:"Maximum objects returned (default 5; 0 returns none)"`
	Summarize      bool              `json:"summarize,omitempty" jsonschema_description:"Return distribution counts instead of objects"`
	GroupBy        []string          `json:"group_by,omitempty" jsonschema_description:"Attributes to group the summary by"`
	RevealInternals bool             `json:"reveal_internals,omitempty" jsonschema_description:"Include internal fields in the response"`
}

// QueryContentArgs mirrors query_content's CLI flags (spec §6).
type QueryContentArgs struct {
	Source          string            `json:"source" jsonschema_description:"Documentation site URL or local path"`
	Term            string            `json:"term" jsonschema_description:"Name term to search for"`
	Filters         map[string]string `json:"filters,omitempty" jsonschema_description:"Attribute filters applied to the inventory"`
	MatchMode       string            `json:"match_mode,omitempty" jsonschema_description:"exact, regex, or fuzzy (default fuzzy)"`
	FuzzyThreshold  int               `json:"fuzzy_threshold,omitempty" jsonschema_description:"Fuzzy match threshold 0-100 (default 50)"`
	ResultsMax      *int              `json:"results_max,omitempty" jsonschema_description:"Maximum documents returned (default 5; 0 returns none)"`
	IncludeSnippets *bool             `json:"include_snippets,omitempty" jsonschema_description:"Include a query-ranked excerpt per document (default true)"`
	RevealInternals bool              `json:"reveal_internals,omitempty" jsonschema_description:"Include internal fields in the response"`
}

// DetectArgs mirrors the `detect` CLI subcommand's flags.
type DetectArgs struct {
	Source          string `json:"source" jsonschema_description:"Documentation site URL or local path"`
	Genus           string `json:"genus,omitempty" jsonschema_description:"inventory or structure; omit for both"`
	RevealInternals bool   `json:"reveal_internals,omitempty" jsonschema_description:"Include internal fields; all_inventory and all_structure stay empty, since only the selected detection per genus is returned"`
}

// SurveyProcessorsArgs takes no parameters beyond the shared reveal flag.
type SurveyProcessorsArgs struct {
	RevealInternals bool `json:"reveal_internals,omitempty"`
}

// QueryInventory handles the query_inventory tool call.
func (h *Handlers) QueryInventory(ctx context.Context, req *mcp.CallToolRequest, args QueryInventoryArgs) (*mcp.CallToolResult, any, error) {
	params := query.InventoryParams{
		Source:         args.Source,
		Term:           args.Term,
		Filters:        args.Filters,
		MatchMode:      domain.MatchMode(args.MatchMode),
		FuzzyThreshold: args.FuzzyThreshold,
		ResultsMax:     args.ResultsMax,
		Summarize:      args.Summarize,
		GroupBy:        args.GroupBy,
	}
	res, err := h.runtime.QueryInventory(ctx, params)
	if err != nil {
		h.logger.Warn("query_inventory failed", "source", args.Source, "term", args.Term, "error", err)
		return renderResult(result.FromError(err), args.RevealInternals)
	}
	return renderResult(res, args.RevealInternals)
}

// QueryContent handles the query_content tool call.
func (h *Handlers) QueryContent(ctx context.Context, req *mcp.CallToolRequest, args QueryContentArgs) (*mcp.CallToolResult, any, error) {
	includeSnippets := true
	if args.IncludeSnippets != nil {
		includeSnippets = *args.IncludeSnippets
	}
	params := query.ContentParams{
		Source:          args.Source,
		Term:            args.Term,
		Filters:         args.Filters,
		MatchMode:       domain.MatchMode(args.MatchMode),
		FuzzyThreshold:  args.FuzzyThreshold,
		ResultsMax:      args.ResultsMax,
		IncludeSnippets: includeSnippets,
	}
	res, err := h.runtime.QueryContent(ctx, params)
	if err != nil {
		h.logger.Warn("query_content failed", "source", args.Source, "term", args.Term, "error", err)
		return renderResult(result.FromError(err), args.RevealInternals)
	}
	return renderResult(res, args.RevealInternals)
}

// Detect handles the detect tool call.
func (h *Handlers) Detect(ctx context.Context, req *mcp.CallToolRequest, args DetectArgs) (*mcp.CallToolResult, any, error) {
	res, err := h.runtime.DetectBoth(ctx, args.Source, args.Genus)
	if err != nil {
		h.logger.Warn("detect failed", "source", args.Source, "error", err)
		return renderResult(result.FromError(err), args.RevealInternals)
	}
	return renderResult(res, args.RevealInternals)
}

// SurveyProcessors handles the survey_processors tool call.
func (h *Handlers) SurveyProcessors(ctx context.Context, req *mcp.CallToolRequest, args SurveyProcessorsArgs) (*mcp.CallToolResult, any, error) {
	res := h.runtime.SurveyProcessors()
	return renderResult(res, args.RevealInternals)
}

// renderResult marshals a result.Result's JSON rendering into the MCP
// tool-result content, matching the teacher's delegate-and-format shape.
func renderResult(r result.Result, revealInternals bool) (*mcp.CallToolResult, any, error) {
	payload := r.RenderJSON(revealInternals)
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, payload, nil
}

// RegisterTools wires the four query entry points onto server, mirroring
// the teacher's main.go tool-registration shape.
func RegisterTools(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_inventory",
		Description: "Search a documentation site's inventory by name, with optional domain/role/priority filters.",
	}, h.QueryInventory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_content",
		Description: "Fetch and extract signature/description content for the inventory objects matching a name term.",
	}, h.QueryContent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect",
		Description: "Classify a documentation source's inventory and/or structure processor, with confidence scores.",
	}, h.Detect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "survey_processors",
		Description: "List every registered inventory/structure processor and its static capabilities.",
	}, h.SurveyProcessors)
}
