package github

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates a new actions-triage MCP server.
func NewServer(version string, opts *mcp.ServerOptions) *mcp.Server {
	if opts == nil {
		opts = &mcp.ServerOptions{}
	}

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "actions-triage-mcp-server",
		Title:   "Actions Triage MCP Server",
		Version: version,
	}, opts)

	return s
}

// RequiredParam is a helper function that can be used to fetch a requested parameter from the request.
// It does the following checks:
// 1. Checks if the parameter is present in the request.
// 2. Checks if the parameter is of the expected type.
// 3. Checks if the parameter is not empty, i.e: non-zero value
func RequiredParam[T comparable](args map[string]any, p string) (T, error) {
	var zero T

	if _, ok := args[p]; !ok {
		return zero, fmt.Errorf("missing required parameter: %s", p)
	}

	val, ok := args[p].(T)
	if !ok {
		return zero, fmt.Errorf("parameter %s is not of type %T", p, zero)
	}

	if val == zero {
		return zero, fmt.Errorf("missing required parameter: %s", p)
	}

	return val, nil
}

// RequiredInt is a helper function that can be used to fetch a requested parameter from the request.
// JSON numbers arrive as float64; the value is converted after presence and
// type checks.
func RequiredInt(args map[string]any, p string) (int, error) {
	v, err := RequiredParam[float64](args, p)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// RequiredBigInt is like RequiredInt but validates that the float64 value
// can be converted to int64 without truncation.
func RequiredBigInt(args map[string]any, p string) (int64, error) {
	v, err := RequiredParam[float64](args, p)
	if err != nil {
		return 0, err
	}

	result := int64(v)
	if float64(result) != v {
		return 0, fmt.Errorf("parameter %s value %f is too large to fit in int64", p, v)
	}
	return result, nil
}

// OptionalParam is a helper function that can be used to fetch a requested parameter from the request.
// It does the following checks:
// 1. Checks if the parameter is present in the request, if not, it returns its zero-value
// 2. If it is present, it checks if the parameter is of the expected type and returns it
func OptionalParam[T any](args map[string]any, p string) (T, error) {
	var zero T

	if _, ok := args[p]; !ok {
		return zero, nil
	}

	if _, ok := args[p].(T); !ok {
		return zero, fmt.Errorf("parameter %s is not of type %T, is %T", p, zero, args[p])
	}

	return args[p].(T), nil
}
