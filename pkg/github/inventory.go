package github

import (
	"github.com/triageops/actions-triage-mcp-server/pkg/inventory"
	"github.com/triageops/actions-triage-mcp-server/pkg/translations"
)

// AllTools returns every tool this server can expose.
func AllTools(t translations.TranslationHelperFunc) []inventory.ServerTool {
	return []inventory.ServerTool{
		GetFailedWorkflowRuns(t),
		GetWorkflowRunJobs(t),
		GetWorkflowFile(t),
		AnalyzeWorkflowFailure(t),
	}
}

// NewInventory creates an inventory builder seeded with all available tools.
// Handlers are generated on-demand during registration via
// RegisterAll(ctx, server, deps).
func NewInventory(t translations.TranslationHelperFunc) *inventory.Builder {
	return inventory.NewBuilder().SetTools(AllTools(t))
}

// GetDefaultToolsetIDs returns the toolset IDs enabled by default, as strings
// suitable for configuration plumbing.
func GetDefaultToolsetIDs() []string {
	inv := NewInventory(translations.NullTranslationHelper).Build()
	ids := inv.DefaultToolsetIDs()
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, string(id))
	}
	return result
}
