package github

import (
	"context"
	"errors"

	gogithub "github.com/google/go-github/v79/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/triageops/actions-triage-mcp-server/pkg/inventory"
	"github.com/triageops/actions-triage-mcp-server/pkg/translations"
)

// depsContextKey is the context key for ToolDependencies.
// Using a private type prevents collisions with other packages.
type depsContextKey struct{}

// ErrDepsNotInContext is returned when ToolDependencies is not found in context.
var ErrDepsNotInContext = errors.New("ToolDependencies not found in context; use ContextWithDeps to inject")

// ContextWithDeps returns a new context with the ToolDependencies stored in
// it. Dependencies are injected at request time rather than at registration
// time, so tool handlers can be registered once without closures.
func ContextWithDeps(ctx context.Context, deps ToolDependencies) context.Context {
	return context.WithValue(ctx, depsContextKey{}, deps)
}

// DepsFromContext retrieves ToolDependencies from the context.
func DepsFromContext(ctx context.Context) (ToolDependencies, bool) {
	deps, ok := ctx.Value(depsContextKey{}).(ToolDependencies)
	return deps, ok
}

// MustDepsFromContext retrieves ToolDependencies from the context.
// Panics if deps are not found - use this in handlers where deps are required.
func MustDepsFromContext(ctx context.Context) ToolDependencies {
	deps, ok := DepsFromContext(ctx)
	if !ok {
		panic(ErrDepsNotInContext)
	}
	return deps
}

// ToolDependencies defines the dependencies that tool handlers need.
type ToolDependencies interface {
	// GetClient returns a GitHub REST API client
	GetClient(ctx context.Context) (*gogithub.Client, error)

	// GetLogger returns the process logger used as the diagnostic channel
	GetLogger() *logrus.Logger

	// GetT returns the translation helper function
	GetT() translations.TranslationHelperFunc
}

// BaseDeps is the standard implementation of ToolDependencies, holding a
// pre-created client and static dependencies.
type BaseDeps struct {
	Client *gogithub.Client
	Logger *logrus.Logger
	T      translations.TranslationHelperFunc
}

// NewBaseDeps creates a BaseDeps with the provided client and configuration.
func NewBaseDeps(client *gogithub.Client, logger *logrus.Logger, t translations.TranslationHelperFunc) *BaseDeps {
	return &BaseDeps{
		Client: client,
		Logger: logger,
		T:      t,
	}
}

// GetClient implements ToolDependencies.
func (d BaseDeps) GetClient(_ context.Context) (*gogithub.Client, error) {
	return d.Client, nil
}

// GetLogger implements ToolDependencies.
func (d BaseDeps) GetLogger() *logrus.Logger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}

// GetT implements ToolDependencies.
func (d BaseDeps) GetT() translations.TranslationHelperFunc {
	if d.T == nil {
		return translations.NullTranslationHelper
	}
	return d.T
}

// NewTool creates a ServerTool that retrieves ToolDependencies from context
// at call time. Ensure ContextWithDeps is called to inject deps before any
// tool handlers are invoked.
func NewTool[In, Out any](toolset inventory.ToolsetMetadata, tool mcp.Tool, handler func(ctx context.Context, deps ToolDependencies, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, Out, error)) inventory.ServerTool {
	return inventory.NewServerToolWithContextHandler(tool, toolset, func(ctx context.Context, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, Out, error) {
		deps := MustDepsFromContext(ctx)
		return handler(ctx, deps, req, args)
	})
}
