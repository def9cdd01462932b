package registry

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// WriteToolFilter conditionally hides report export tools unless enabled
// with MCPCELLAR_ENABLE_WRITES.
type WriteToolFilter struct {
	allowWrites bool
}

// NewWriteToolFilter constructs a filter; pass config.WritesEnabled().
func NewWriteToolFilter(allowWrites bool) *WriteToolFilter {
	return &WriteToolFilter{allowWrites: allowWrites}
}

// FilterTools drops write_ tools from discovery when writes are disabled.
func (f *WriteToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.allowWrites {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if strings.HasPrefix(strings.ToLower(t.Name), "write_") {
			continue
		}
		out = append(out, t)
	}
	return out
}
