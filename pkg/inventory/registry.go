package inventory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Inventory holds a collection of tools with filtering applied. Create one
// using Builder. The Inventory is configured at build time and provides
// filtered access to tools via AvailableTools, deterministic ordering for
// documentation, and lazy dependency injection during RegisterAll.
type Inventory struct {
	// tools holds all tools in this group (ordered for iteration)
	tools []ServerTool

	// Pre-computed toolset metadata (set during Build)
	toolsetIDs          []ToolsetID          // sorted list of all toolset IDs
	toolsetIDSet        map[ToolsetID]bool   // set for O(1) HasToolset lookup
	defaultToolsetIDs   []ToolsetID          // sorted list of default toolset IDs
	toolsetDescriptions map[ToolsetID]string // toolset ID -> description

	// readOnly when true filters out write tools
	readOnly bool
	// enabledToolsets when non-nil, only include tools from these toolsets;
	// when nil, all toolsets are enabled
	enabledToolsets map[ToolsetID]bool
	// unrecognizedToolsets holds requested toolset IDs that match nothing
	unrecognizedToolsets []string
}

// UnrecognizedToolsets returns toolset IDs that were passed to WithToolsets
// but don't match any registered toolsets. Useful for warning about typos.
func (r *Inventory) UnrecognizedToolsets() []string {
	return r.unrecognizedToolsets
}

// ToolsetIDs returns a sorted list of unique toolset IDs from all tools.
func (r *Inventory) ToolsetIDs() []ToolsetID {
	return r.toolsetIDs
}

// DefaultToolsetIDs returns the IDs of toolsets marked as Default, sorted.
func (r *Inventory) DefaultToolsetIDs() []ToolsetID {
	return r.defaultToolsetIDs
}

// ToolsetDescriptions returns a map of toolset ID to description.
func (r *Inventory) ToolsetDescriptions() map[ToolsetID]string {
	return r.toolsetDescriptions
}

// HasToolset checks if any tool belongs to the given toolset.
func (r *Inventory) HasToolset(toolsetID ToolsetID) bool {
	return r.toolsetIDSet[toolsetID]
}

// AllTools returns all tools without any filtering, sorted deterministically
// by toolset ID then tool name.
func (r *Inventory) AllTools() []ServerTool {
	result := slices.Clone(r.tools)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Toolset.ID != result[j].Toolset.ID {
			return result[i].Toolset.ID < result[j].Toolset.ID
		}
		return result[i].Tool.Name < result[j].Tool.Name
	})
	return result
}

// AvailableTools returns the tools that pass the configured filters, in
// deterministic order.
func (r *Inventory) AvailableTools() []ServerTool {
	var result []ServerTool
	for _, tool := range r.AllTools() {
		if r.includes(&tool) {
			result = append(result, tool)
		}
	}
	return result
}

// IsToolAvailable reports whether the named tool passes the configured filters.
func (r *Inventory) IsToolAvailable(toolName string) bool {
	for i := range r.tools {
		if r.tools[i].Tool.Name == toolName {
			return r.includes(&r.tools[i])
		}
	}
	return false
}

// FindToolByName searches all tools for one matching the given name,
// regardless of filters.
func (r *Inventory) FindToolByName(toolName string) (*ServerTool, ToolsetID, error) {
	for i := range r.tools {
		if r.tools[i].Tool.Name == toolName {
			return &r.tools[i], r.tools[i].Toolset.ID, nil
		}
	}
	return nil, "", fmt.Errorf("tool %q does not exist", toolName)
}

// RegisterAll registers all available tools with the server using the
// provided dependencies.
func (r *Inventory) RegisterAll(_ context.Context, s *mcp.Server, deps any) {
	for _, tool := range r.AvailableTools() {
		tool.RegisterFunc(s, deps)
	}
}

func (r *Inventory) includes(tool *ServerTool) bool {
	if r.readOnly && !tool.IsReadOnly() {
		return false
	}
	if r.enabledToolsets != nil && !r.enabledToolsets[tool.Toolset.ID] {
		return false
	}
	return true
}
