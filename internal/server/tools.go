package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roach88/cypherlite/internal/engine"
	"github.com/roach88/cypherlite/internal/ir"
)

// Dependencies are shared by the tool handlers.
type Dependencies struct {
	Graph    Graph
	Executor *engine.Executor
	Logger   *slog.Logger
}

// ExecuteCypherInput is the execute-cypher argument schema.
type ExecuteCypherInput struct {
	Query  string         `json:"query" jsonschema:"description=The Cypher query to execute"`
	Params map[string]any `json:"params,omitempty" jsonschema:"description=Values for the $name parameters of the query"`
}

// ExecuteCypherSpec describes the execute-cypher tool.
func ExecuteCypherSpec() mcp.Tool {
	return mcp.NewTool("execute-cypher",
		mcp.WithDescription("execute-cypher runs one Cypher query (CREATE, MATCH, MERGE, SET, DELETE, DETACH DELETE, WHERE, RETURN) in a single transaction against the embedded graph. Returns rows, count, stats and trace_id as JSON; failures return a JSON object with kind, code, message and, for syntax errors, line and column."),
		mcp.WithInputSchema[ExecuteCypherInput](),
		mcp.WithTitleAnnotation("Execute Cypher"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// ExecuteCypherHandler returns the tool handler function for execute-cypher.
func ExecuteCypherHandler(deps *Dependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleExecuteCypher(ctx, request, deps)
	}
}

func handleExecuteCypher(ctx context.Context, request mcp.CallToolRequest, deps *Dependencies) (*mcp.CallToolResult, error) {
	if deps.Graph == nil || deps.Executor == nil {
		errMessage := "Database service is not initialized"
		deps.logger().Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	args := request.GetArguments()
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	params, err := decodeParams(args["params"])
	if err != nil {
		deps.logger().Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := deps.Executor.Execute(ctx, deps.Graph, query, params)
	if err != nil {
		failure := engine.Describe(err)
		deps.logger().Info("query failed", "kind", failure.Kind, "code", failure.Code)
		return failureResult(failure), nil
	}

	body, err := json.Marshal(res)
	if err != nil {
		deps.logger().Error("error serializing result", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

// decodeParams converts decoded JSON arguments to query parameters,
// restoring integers that the JSON decoder turned into float64.
func decodeParams(raw any) (map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	v, err := ir.UnmarshalIRValue(data)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("params must be an object, got %s", ir.TypeName(v))
	}
	params := make(map[string]any, len(obj))
	for k, val := range obj {
		params[k] = val
	}
	return params, nil
}

func failureResult(f engine.Failure) *mcp.CallToolResult {
	body, err := json.Marshal(f)
	if err != nil {
		return mcp.NewToolResultError(f.Message)
	}
	return mcp.NewToolResultError(string(body))
}

// GraphSummarySpec describes the graph-summary tool.
func GraphSummarySpec() mcp.Tool {
	return mcp.NewTool("graph-summary",
		mcp.WithDescription("graph-summary returns the number of nodes and relationships, grouped by node label and relationship type. Use it to discover what the graph contains before writing a query."),
		mcp.WithTitleAnnotation("Graph Summary"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// GraphSummaryHandler returns the tool handler function for graph-summary.
func GraphSummaryHandler(deps *Dependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Graph == nil {
			errMessage := "Database service is not initialized"
			deps.logger().Error(errMessage)
			return mcp.NewToolResultError(errMessage), nil
		}
		sum, err := deps.Graph.Summarize(ctx)
		if err != nil {
			deps.logger().Error("error reading summary", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := json.Marshal(sum)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
