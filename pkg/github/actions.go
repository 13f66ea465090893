package github

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	ghErrors "github.com/triageops/actions-triage-mcp-server/pkg/errors"
	"github.com/triageops/actions-triage-mcp-server/pkg/inventory"
	"github.com/triageops/actions-triage-mcp-server/pkg/translations"
	"github.com/triageops/actions-triage-mcp-server/pkg/triage"
	"github.com/triageops/actions-triage-mcp-server/pkg/utils"
)

const (
	DescriptionRepositoryOwner = "Repository owner"
	DescriptionRepositoryName  = "Repository name"
	DescriptionWorkflowRunID   = "The unique identifier of the workflow run"
)

// ToolsetMetadataActions is the toolset all diagnosis tools belong to.
var ToolsetMetadataActions = inventory.ToolsetMetadata{
	ID:          "actions",
	Description: "GitHub Actions workflow failure diagnosis",
	Default:     true,
}

// GetFailedWorkflowRuns creates a tool to list the most recent failed
// workflow runs of a repository.
func GetFailedWorkflowRuns(t translations.TranslationHelperFunc) inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActions,
		mcp.Tool{
			Name:        "get-failed-workflow-runs",
			Description: t("TOOL_GET_FAILED_WORKFLOW_RUNS_DESCRIPTION", "List the most recent failed workflow runs for a repository"),
			Annotations: &mcp.ToolAnnotations{
				Title:        t("TOOL_GET_FAILED_WORKFLOW_RUNS_USER_TITLE", "Get failed workflow runs"),
				ReadOnlyHint: true,
			},
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"owner": {
						Type:        "string",
						Description: DescriptionRepositoryOwner,
					},
					"repo": {
						Type:        "string",
						Description: DescriptionRepositoryName,
					},
				},
				Required: []string{"owner", "repo"},
			},
		},
		func(ctx context.Context, deps ToolDependencies, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			owner, err := RequiredParam[string](args, "owner")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			repo, err := RequiredParam[string](args, "repo")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			fetcher := triage.NewFetcher(client, deps.GetLogger())

			runs, err := fetcher.FailedRuns(ctx, owner, repo)
			if err != nil {
				ghErrors.NewGitHubAPIErrorToCtx(ctx, "failed to list workflow runs", nil, err)
				runs = nil
			}

			entries := make([]triage.RunReportEntry, 0, len(runs))
			for _, run := range runs {
				// The logs reference is optional; a failed resolution just
				// drops the line from the block.
				logsURL, _ := fetcher.LogsURL(ctx, owner, repo, run.GetID())
				entries = append(entries, triage.RunReportEntry{Run: run, LogsURL: logsURL})
			}

			return utils.NewToolResultText(triage.RenderFailedRuns(owner, repo, entries)), nil, nil
		},
	)
}

// GetWorkflowRunJobs creates a tool to list the jobs of a workflow run with
// their steps and check-run annotations.
func GetWorkflowRunJobs(t translations.TranslationHelperFunc) inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActions,
		mcp.Tool{
			Name:        "get-workflow-run-jobs",
			Description: t("TOOL_GET_WORKFLOW_RUN_JOBS_DESCRIPTION", "List the jobs of a workflow run with their steps and annotations"),
			Annotations: &mcp.ToolAnnotations{
				Title:        t("TOOL_GET_WORKFLOW_RUN_JOBS_USER_TITLE", "Get workflow run jobs"),
				ReadOnlyHint: true,
			},
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"owner": {
						Type:        "string",
						Description: DescriptionRepositoryOwner,
					},
					"repo": {
						Type:        "string",
						Description: DescriptionRepositoryName,
					},
					"run_id": {
						Type:        "number",
						Description: DescriptionWorkflowRunID,
					},
				},
				Required: []string{"owner", "repo", "run_id"},
			},
		},
		func(ctx context.Context, deps ToolDependencies, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			owner, err := RequiredParam[string](args, "owner")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			repo, err := RequiredParam[string](args, "repo")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			runID, err := RequiredBigInt(args, "run_id")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			fetcher := triage.NewFetcher(client, deps.GetLogger())

			jobs, err := fetcher.Jobs(ctx, owner, repo, runID)
			if err != nil {
				ghErrors.NewGitHubAPIErrorToCtx(ctx, "failed to list workflow jobs", nil, err)
				jobs = nil
			}

			// The head SHA is taken from the first job; run metadata is not
			// fetched for this report.
			diags := fetcher.Correlate(ctx, owner, repo, runID, "", jobs)

			return utils.NewToolResultText(triage.RenderJobs(runID, diags)), nil, nil
		},
	)
}

// GetWorkflowFile creates a tool to fetch a workflow file's decoded content.
func GetWorkflowFile(t translations.TranslationHelperFunc) inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActions,
		mcp.Tool{
			Name:        "get-workflow-file",
			Description: t("TOOL_GET_WORKFLOW_FILE_DESCRIPTION", "Get the contents of a workflow file"),
			Annotations: &mcp.ToolAnnotations{
				Title:        t("TOOL_GET_WORKFLOW_FILE_USER_TITLE", "Get workflow file"),
				ReadOnlyHint: true,
			},
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"owner": {
						Type:        "string",
						Description: DescriptionRepositoryOwner,
					},
					"repo": {
						Type:        "string",
						Description: DescriptionRepositoryName,
					},
					"path": {
						Type:        "string",
						Description: "Path to the workflow file (e.g., .github/workflows/ci.yml)",
					},
				},
				Required: []string{"owner", "repo", "path"},
			},
		},
		func(ctx context.Context, deps ToolDependencies, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			owner, err := RequiredParam[string](args, "owner")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			repo, err := RequiredParam[string](args, "repo")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			path, err := RequiredParam[string](args, "path")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			fetcher := triage.NewFetcher(client, deps.GetLogger())

			content, err := fetcher.WorkflowFile(ctx, owner, repo, path)
			if err != nil {
				ghErrors.NewGitHubAPIErrorToCtx(ctx, "failed to get workflow file", nil, err)
				return utils.NewToolResultText(triage.RenderWorkflowFileAbsent(path)), nil, nil
			}

			return utils.NewToolResultText(triage.RenderWorkflowFile(path, content)), nil, nil
		},
	)
}

// AnalyzeWorkflowFailure creates a tool that correlates a failed run's jobs,
// check runs and annotations and classifies each failed step against the
// known-issue table.
func AnalyzeWorkflowFailure(t translations.TranslationHelperFunc) inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActions,
		mcp.Tool{
			Name:        "analyze-workflow-failure",
			Description: t("TOOL_ANALYZE_WORKFLOW_FAILURE_DESCRIPTION", "Analyze a failed workflow run and suggest likely fixes"),
			Annotations: &mcp.ToolAnnotations{
				Title:        t("TOOL_ANALYZE_WORKFLOW_FAILURE_USER_TITLE", "Analyze workflow failure"),
				ReadOnlyHint: true,
			},
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"owner": {
						Type:        "string",
						Description: DescriptionRepositoryOwner,
					},
					"repo": {
						Type:        "string",
						Description: DescriptionRepositoryName,
					},
					"run_id": {
						Type:        "number",
						Description: DescriptionWorkflowRunID,
					},
				},
				Required: []string{"owner", "repo", "run_id"},
			},
		},
		func(ctx context.Context, deps ToolDependencies, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			owner, err := RequiredParam[string](args, "owner")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			repo, err := RequiredParam[string](args, "repo")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			runID, err := RequiredBigInt(args, "run_id")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			fetcher := triage.NewFetcher(client, deps.GetLogger())

			// Run metadata supplies the head SHA; when it cannot be fetched
			// the correlation falls back to the first job's SHA.
			var headSHA string
			if run, err := fetcher.Run(ctx, owner, repo, runID); err == nil {
				headSHA = run.GetHeadSHA()
			} else {
				ghErrors.NewGitHubAPIErrorToCtx(ctx, "failed to get workflow run", nil, err)
			}

			jobs, err := fetcher.Jobs(ctx, owner, repo, runID)
			if err != nil {
				ghErrors.NewGitHubAPIErrorToCtx(ctx, "failed to list workflow jobs", nil, err)
				jobs = nil
			}

			diags := fetcher.Correlate(ctx, owner, repo, runID, headSHA, jobs)

			return utils.NewToolResultText(triage.RenderAnalysis(runID, diags)), nil, nil
		},
	)
}
