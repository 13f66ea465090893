// Package triagemcp wires configuration, the GitHub client and the tool
// inventory into a runnable MCP server.
package triagemcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	gogithub "github.com/google/go-github/v79/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	mcpgithub "github.com/triageops/actions-triage-mcp-server/pkg/github"
	"github.com/triageops/actions-triage-mcp-server/pkg/translations"
)

// MCPServerConfig is everything NewMCPServer needs to build a server.
type MCPServerConfig struct {
	// Version of the server, reported in the MCP implementation info and
	// the outbound User-Agent.
	Version string

	// Host is the GitHub hostname. Empty means github.com; anything else
	// is treated as a GitHub Enterprise Server hostname.
	Host string

	// Token is the GitHub personal access token. Required.
	Token string

	// EnabledToolsets is the list of toolset IDs to enable. Nil enables
	// the default toolsets.
	EnabledToolsets []string

	// ReadOnly restricts the server to read-only tools.
	ReadOnly bool

	// Translator resolves tool description overrides.
	Translator translations.TranslationHelperFunc

	// Logger is the diagnostic channel. Nil falls back to a logger
	// writing to stderr.
	Logger *logrus.Logger
}

// NewMCPServer builds an MCP server with the diagnosis tools registered and
// dependencies injected into every request's context.
func NewMCPServer(cfg MCPServerConfig) (*mcp.Server, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("a GitHub personal access token is required")
	}
	if cfg.Translator == nil {
		cfg.Translator = translations.NullTranslationHelper
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
	}

	client := gogithub.NewClient(nil).WithAuthToken(cfg.Token)
	client.UserAgent = fmt.Sprintf("actions-triage-mcp-server/%s", cfg.Version)
	if cfg.Host != "" {
		base := "https://" + cfg.Host
		var err error
		client, err = client.WithEnterpriseURLs(base+"/api/v3/", base+"/api/uploads/")
		if err != nil {
			return nil, fmt.Errorf("failed to configure GitHub host %q: %w", cfg.Host, err)
		}
		client.UserAgent = fmt.Sprintf("actions-triage-mcp-server/%s", cfg.Version)
	}

	deps := mcpgithub.NewBaseDeps(client, logger, cfg.Translator)

	server := mcpgithub.NewServer(cfg.Version, nil)

	// Deps ride the request context so handlers stay closure-free.
	server.AddReceivingMiddleware(func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			return next(mcpgithub.ContextWithDeps(ctx, deps), method, req)
		}
	})

	inv := mcpgithub.NewInventory(cfg.Translator).
		WithReadOnly(cfg.ReadOnly).
		WithToolsets(cfg.EnabledToolsets).
		Build()

	for _, unknown := range inv.UnrecognizedToolsets() {
		logger.WithField("toolset", unknown).Warn("requested toolset does not exist")
	}

	inv.RegisterAll(context.Background(), server, deps)

	return server, nil
}

// StdioServerConfig configures RunStdioServer.
type StdioServerConfig struct {
	Version         string
	Host            string
	Token           string
	EnabledToolsets []string
	ReadOnly        bool

	// LogFilePath, when set, sends diagnostics to a file instead of stderr.
	// Stdout is never used for logging; it carries the MCP framing.
	LogFilePath string

	// ExportTranslations writes the tool description keys seen during
	// startup back to the translation config file.
	ExportTranslations bool
}

// RunStdioServer builds the server and serves MCP over stdin/stdout until
// the context is cancelled by SIGINT or SIGTERM.
func RunStdioServer(cfg StdioServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.LogFilePath)
	if err != nil {
		return err
	}

	t, dumpTranslations := translations.TranslationHelper()
	if cfg.ExportTranslations {
		defer dumpTranslations()
	}

	server, err := NewMCPServer(MCPServerConfig{
		Version:         cfg.Version,
		Host:            cfg.Host,
		Token:           cfg.Token,
		EnabledToolsets: cfg.EnabledToolsets,
		ReadOnly:        cfg.ReadOnly,
		Translator:      t,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.WithField("version", cfg.Version).Info("starting stdio server")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func newLogger(logFilePath string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if logFilePath == "" {
		return logger, nil
	}
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(file)
	return logger, nil
}
