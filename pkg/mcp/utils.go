package mcp

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
)

// stringArg returns an optional string argument, "" when absent.
func stringArg(request mcp.CallToolRequest, name string) string {
	v, _ := request.Params.Arguments[name].(string)
	return v
}

// requiredString returns a tool error result when the argument is missing or empty.
func requiredString(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v, ok := request.Params.Arguments[name].(string)
	if !ok || v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' parameter is required and must be a non-empty string.", name))
	}
	return v, nil
}

// hasArg reports whether the argument was sent with a non-null value.
func hasArg(request mcp.CallToolRequest, name string) bool {
	raw, ok := request.Params.Arguments[name]
	return ok && raw != nil
}

// countArg reads an optional non-negative integer. JSON numbers arrive as float64.
func countArg(request mcp.CallToolRequest, name string) (int, *mcp.CallToolResult) {
	if !hasArg(request, name) {
		return 0, nil
	}
	f, ok := request.Params.Arguments[name].(float64)
	if !ok || f < 0 || f != math.Trunc(f) {
		return 0, mcp.NewToolResultError(fmt.Sprintf("'%s' must be a non-negative integer.", name))
	}
	return int(f), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
