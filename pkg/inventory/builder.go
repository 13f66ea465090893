package inventory

import (
	"sort"
	"strings"
)

// Builder builds an Inventory with the specified configuration. Create one
// with NewBuilder, chain configuration methods, then call Build.
//
//	inv := inventory.NewBuilder().
//	    SetTools(tools).
//	    WithReadOnly(true).
//	    WithToolsets([]string{"actions"}).
//	    Build()
type Builder struct {
	tools []ServerTool

	readOnly        bool
	toolsetIDs      []string // raw input, processed at Build()
	toolsetIDsIsNil bool     // tracks if nil was passed (nil = defaults)
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		toolsetIDsIsNil: true, // default to nil (use defaults)
	}
}

// SetTools sets the tools for the inventory. Returns self for chaining.
func (b *Builder) SetTools(tools []ServerTool) *Builder {
	b.tools = tools
	return b
}

// WithReadOnly sets whether only read-only tools should be available.
// When true, write tools are filtered out. Returns self for chaining.
func (b *Builder) WithReadOnly(readOnly bool) *Builder {
	b.readOnly = readOnly
	return b
}

// WithToolsets specifies which toolsets should be enabled. Special keywords:
//   - "all": enables all toolsets
//   - "default": expands to toolsets marked with Default: true
//
// Input strings are trimmed and deduplicated. Pass nil to use default
// toolsets; pass an empty slice to disable all toolsets. Returns self for
// chaining.
func (b *Builder) WithToolsets(toolsetIDs []string) *Builder {
	b.toolsetIDs = toolsetIDs
	b.toolsetIDsIsNil = toolsetIDs == nil
	return b
}

// Build creates the final Inventory with all configuration applied.
func (b *Builder) Build() *Inventory {
	r := &Inventory{
		tools:    b.tools,
		readOnly: b.readOnly,
	}
	r.enabledToolsets, r.unrecognizedToolsets, r.toolsetIDs, r.toolsetIDSet, r.defaultToolsetIDs, r.toolsetDescriptions = b.processToolsets()
	return r
}

// processToolsets processes the toolsetIDs configuration and returns the
// enabled set (nil means all enabled), the unrecognized IDs for warnings,
// and the pre-computed toolset metadata.
func (b *Builder) processToolsets() (map[ToolsetID]bool, []string, []ToolsetID, map[ToolsetID]bool, []ToolsetID, map[ToolsetID]string) {
	validIDs := make(map[ToolsetID]bool)
	defaultIDs := make(map[ToolsetID]bool)
	descriptions := make(map[ToolsetID]string)

	for i := range b.tools {
		t := &b.tools[i]
		validIDs[t.Toolset.ID] = true
		if t.Toolset.Default {
			defaultIDs[t.Toolset.ID] = true
		}
		if t.Toolset.Description != "" {
			descriptions[t.Toolset.ID] = t.Toolset.Description
		}
	}

	allToolsetIDs := make([]ToolsetID, 0, len(validIDs))
	for id := range validIDs {
		allToolsetIDs = append(allToolsetIDs, id)
	}
	sort.Slice(allToolsetIDs, func(i, j int) bool { return allToolsetIDs[i] < allToolsetIDs[j] })

	defaultToolsetIDList := make([]ToolsetID, 0, len(defaultIDs))
	for id := range defaultIDs {
		defaultToolsetIDList = append(defaultToolsetIDList, id)
	}
	sort.Slice(defaultToolsetIDList, func(i, j int) bool { return defaultToolsetIDList[i] < defaultToolsetIDList[j] })

	toolsetIDs := b.toolsetIDs

	// "all" enables every toolset
	for _, id := range toolsetIDs {
		if strings.TrimSpace(id) == "all" {
			return nil, nil, allToolsetIDs, validIDs, defaultToolsetIDList, descriptions
		}
	}

	// nil means use defaults, empty slice means no toolsets
	if b.toolsetIDsIsNil {
		toolsetIDs = []string{"default"}
	}

	seen := make(map[ToolsetID]bool)
	expanded := make([]ToolsetID, 0, len(toolsetIDs))
	var unrecognized []string

	for _, id := range toolsetIDs {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if trimmed == "default" {
			for _, defaultID := range defaultToolsetIDList {
				if !seen[defaultID] {
					seen[defaultID] = true
					expanded = append(expanded, defaultID)
				}
			}
			continue
		}
		tsID := ToolsetID(trimmed)
		if !seen[tsID] {
			seen[tsID] = true
			expanded = append(expanded, tsID)
			if !validIDs[tsID] {
				unrecognized = append(unrecognized, trimmed)
			}
		}
	}

	enabledToolsets := make(map[ToolsetID]bool, len(expanded))
	for _, id := range expanded {
		enabledToolsets[id] = true
	}
	return enabledToolsets, unrecognized, allToolsetIDs, validIDs, defaultToolsetIDList, descriptions
}
