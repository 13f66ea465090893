package github

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GitHub API endpoint patterns used in HTTP mocking for tests.
const (
	GetReposActionsRunsByOwnerByRepo            = "GET /repos/{owner}/{repo}/actions/runs"
	GetReposActionsRunsByOwnerByRepoByRunID     = "GET /repos/{owner}/{repo}/actions/runs/{run_id}"
	GetReposActionsRunsJobsByOwnerByRepoByRunID = "GET /repos/{owner}/{repo}/actions/runs/{run_id}/jobs"
	GetReposActionsRunsLogsByOwnerByRepoByRunID = "GET /repos/{owner}/{repo}/actions/runs/{run_id}/logs"
	GetReposCommitsCheckRunsByOwnerByRepoByRef  = "GET /repos/{owner}/{repo}/commits/{ref}/check-runs"
	GetReposCheckRunsAnnotationsByOwnerByRepo   = "GET /repos/{owner}/{repo}/check-runs/{check_run_id}/annotations"
	GetReposContentsByOwnerByRepoByPath         = "GET /repos/{owner}/{repo}/contents/{path:.*}"
)

// createMCPRequest is a helper function to create a MCP request with the given arguments.
func createMCPRequest(args any) mcp.CallToolRequest {
	argsMap, ok := args.(map[string]any)
	if !ok {
		argsMap = make(map[string]any)
	}

	argsJSON, err := json.Marshal(argsMap)
	if err != nil {
		return mcp.CallToolRequest{}
	}

	return mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Arguments: json.RawMessage(argsJSON),
		},
	}
}

// getTextResult is a helper function that returns a text result from a tool call.
func getTextResult(t *testing.T, result *mcp.CallToolResult) *mcp.TextContent {
	t.Helper()
	assert.NotNil(t, result)
	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected content to be of type TextContent")
	return textContent
}

func getErrorResult(t *testing.T, result *mcp.CallToolResult) *mcp.TextContent {
	res := getTextResult(t, result)
	require.True(t, result.IsError, "expected tool call result to be an error")
	return res
}

// mockResponse is a helper function to create a mock HTTP response handler
// that returns a specified status code and marshaled body.
func mockResponse(t *testing.T, code int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		b, err := json.Marshal(body)
		require.NoError(t, err)
		_, _ = w.Write(b)
	}
}

// MockHTTPClientWithHandlers creates an HTTP client with handlers keyed by
// "METHOD /path/pattern". Requests that match no handler get a 404.
func MockHTTPClientWithHandlers(handlers map[string]http.HandlerFunc) *http.Client {
	return &http.Client{Transport: &multiHandlerTransport{handlers: handlers}}
}

type multiHandlerTransport struct {
	handlers map[string]http.HandlerFunc
}

func (m *multiHandlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.Path
	if handler, ok := m.handlers[key]; ok {
		return executeHandler(handler, req), nil
	}

	// Pattern matching, preferring patterns without wildcards so that a
	// wildcard like {path:.*} cannot shadow a more specific route.
	var wildcardHandler http.HandlerFunc
	for pattern, handler := range m.handlers {
		parts := strings.SplitN(pattern, " ", 2)
		if len(parts) != 2 || req.Method != parts[0] {
			continue
		}
		if matchPath(parts[1], req.URL.Path) {
			if strings.Contains(parts[1], ":.*}") {
				wildcardHandler = handler
				continue
			}
			return executeHandler(handler, req), nil
		}
	}
	if wildcardHandler != nil {
		return executeHandler(wildcardHandler, req), nil
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(bytes.NewReader([]byte("not found"))),
		Request:    req,
	}, nil
}

// matchPath checks if a request path matches a pattern with {param} segments.
// A trailing {name:.*} segment matches the remainder of the path.
func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) > 0 {
		lastPart := patternParts[len(patternParts)-1]
		if strings.HasPrefix(lastPart, "{") && strings.Contains(lastPart, ":") && strings.HasSuffix(lastPart, "}") {
			if len(pathParts) < len(patternParts)-1 {
				return false
			}
			for i := 0; i < len(patternParts)-1; i++ {
				if strings.HasPrefix(patternParts[i], "{") && strings.HasSuffix(patternParts[i], "}") {
					continue
				}
				if patternParts[i] != pathParts[i] {
					return false
				}
			}
			return true
		}
	}

	if len(patternParts) != len(pathParts) {
		return false
	}
	for i := range patternParts {
		if strings.HasPrefix(patternParts[i], "{") && strings.HasSuffix(patternParts[i], "}") {
			continue
		}
		if patternParts[i] != pathParts[i] {
			return false
		}
	}
	return true
}

// executeHandler executes an HTTP handler and returns the response.
func executeHandler(handler http.HandlerFunc, req *http.Request) *http.Response {
	recorder := &responseRecorder{
		header: make(http.Header),
		body:   &bytes.Buffer{},
	}
	handler(recorder, req)

	return &http.Response{
		StatusCode: recorder.statusCode,
		Header:     recorder.header,
		Body:       io.NopCloser(bytes.NewReader(recorder.body.Bytes())),
		Request:    req,
	}
}

// responseRecorder is a simple response recorder for the mock transport.
type responseRecorder struct {
	statusCode int
	header     http.Header
	body       *bytes.Buffer
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	return r.body.Write(data)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
}
