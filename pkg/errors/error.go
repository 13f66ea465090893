package errors

import (
	"context"
	"fmt"

	"github.com/google/go-github/v79/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/triageops/actions-triage-mcp-server/pkg/utils"
)

// GitHubAPIError captures a failed REST call together with its response, so
// middleware and tests can observe what went wrong during a tool invocation.
type GitHubAPIError struct {
	Message  string           `json:"message"`
	Response *github.Response `json:"-"`
	Err      error            `json:"-"`
}

func newGitHubAPIError(message string, resp *github.Response, err error) *GitHubAPIError {
	return &GitHubAPIError{
		Message:  message,
		Response: resp,
		Err:      err,
	}
}

func (e *GitHubAPIError) Error() string {
	return fmt.Errorf("%s: %w", e.Message, e.Err).Error()
}

type GitHubErrorKey struct{}

type GitHubCtxErrors struct {
	api []*GitHubAPIError
}

// ContextWithGitHubErrors updates or creates a context with a pointer to
// GitHub error information (to be used by middleware).
func ContextWithGitHubErrors(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if val, ok := ctx.Value(GitHubErrorKey{}).(*GitHubCtxErrors); ok {
		// Context already carries the slot, empty it to start fresh
		val.api = []*GitHubAPIError{}
	} else {
		ctx = context.WithValue(ctx, GitHubErrorKey{}, &GitHubCtxErrors{})
	}
	return ctx
}

// GetGitHubAPIErrors retrieves the slice of GitHubAPIErrors from the context.
func GetGitHubAPIErrors(ctx context.Context) ([]*GitHubAPIError, error) {
	if val, ok := ctx.Value(GitHubErrorKey{}).(*GitHubCtxErrors); ok {
		return val.api, nil
	}
	return nil, fmt.Errorf("context does not contain GitHubCtxErrors")
}

func addGitHubAPIErrorToContext(ctx context.Context, err *GitHubAPIError) {
	if val, ok := ctx.Value(GitHubErrorKey{}).(*GitHubCtxErrors); ok {
		val.api = append(val.api, err)
	}
}

// NewGitHubAPIErrorToCtx records an API error in the context without
// producing a tool result.
func NewGitHubAPIErrorToCtx(ctx context.Context, message string, resp *github.Response, err error) context.Context {
	if ctx != nil {
		addGitHubAPIErrorToContext(ctx, newGitHubAPIError(message, resp, err))
	}
	return ctx
}

// NewGitHubAPIErrorResponse returns an error tool result and retains the
// error in the context for access via middleware.
func NewGitHubAPIErrorResponse(ctx context.Context, message string, resp *github.Response, err error) *mcp.CallToolResult {
	if ctx != nil {
		addGitHubAPIErrorToContext(ctx, newGitHubAPIError(message, resp, err))
	}
	return utils.NewToolResultErrorFromErr(message, err)
}
