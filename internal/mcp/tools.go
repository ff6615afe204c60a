package mcp

import (
	"github.com/cliffyan/go-meta-search/internal/config"
)

// GetTools 获取所有 MCP 工具定义
func GetTools(cfg *config.Config, engines []string) []Tool {
	return []Tool{
		{
			Name:        cfg.MCP.Tools.SearchName,
			Description: cfg.MCP.Tools.SearchDescription,
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"query": {
						Type:        "string",
						Description: "The search query string",
					},
					"limit": {
						Type:        "number",
						Description: "Maximum number of results per engine",
						Default:     cfg.Search.Limit,
					},
					"engines": {
						Type:        "array",
						Description: "Search engines to query. Defaults to the configured default engines.",
						Items:       &Items{Type: "string", Enum: engines},
					},
					"snippets": {
						Type:        "boolean",
						Description: "Fetch every result page and build a highlighted snippet with a relevance score. Unreachable pages are dropped.",
						Default:     true,
					},
				},
				Required: []string{"query"},
			},
		},
	}
}
