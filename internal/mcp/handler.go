package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cliffyan/go-meta-search/internal/aggregate"
	"github.com/cliffyan/go-meta-search/internal/config"
)

const (
	MCPVersion = "2024-11-05"
)

// Searcher 聚合搜索，由 aggregate.Aggregator 实现
type Searcher interface {
	Search(ctx context.Context, req aggregate.Request) (aggregate.Response, error)
}

// Handler MCP 请求处理器
type Handler struct {
	config   *config.Config
	searcher Searcher
	engines  []string
}

// NewHandler 创建 MCP 处理器，engines 为可用引擎名称
func NewHandler(cfg *config.Config, searcher Searcher, engines []string) *Handler {
	return &Handler{
		config:   cfg,
		searcher: searcher,
		engines:  engines,
	}
}

// HandleRequest 处理 MCP JSON-RPC 请求
func (h *Handler) HandleRequest(ctx context.Context, req JSONRPCRequest) JSONRPCResponse {
	log.Printf("📥 MCP Request: method=%s, id=%v", req.Method, req.ID)

	var result any
	var rpcErr *RPCError

	switch req.Method {
	case "initialize":
		result = h.handleInitialize()
	case "notifications/initialized":
		// 通知不需要返回结果
		return JSONRPCResponse{}
	case "tools/list":
		result = ListToolsResult{Tools: GetTools(h.config, h.engines)}
	case "tools/call":
		res, err := h.handleToolsCall(ctx, req.Params)
		if err != nil {
			rpcErr = &RPCError{Code: CodeInvalidParams, Message: err.Error()}
		}
		result = res
	case "resources/list":
		result = ListResourcesResult{Resources: []any{}}
	case "prompts/list":
		result = ListPromptsResult{Prompts: []any{}}
	default:
		rpcErr = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)}
	}

	if rpcErr != nil {
		log.Printf("❌ MCP Error: %s", rpcErr.Message)
		return JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
	}
	return JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// handleInitialize 处理初始化请求
func (h *Handler) handleInitialize() InitializeResult {
	return InitializeResult{
		ProtocolVersion: MCPVersion,
		Capabilities: Capability{
			Tools: ToolCapability{ListChanged: false},
		},
		ServerInfo: ServerInfo{
			Name:    h.config.MCP.ServerName,
			Version: h.config.MCP.ServerVersion,
		},
	}
}

// handleToolsCall 处理工具调用请求
func (h *Handler) handleToolsCall(ctx context.Context, params any) (*CallToolResult, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	var callParams CallToolParams
	if err := json.Unmarshal(raw, &callParams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}

	log.Printf("🔧 Tool call: name=%s, args=%v", callParams.Name, callParams.Arguments)

	switch callParams.Name {
	case h.config.MCP.Tools.SearchName:
		return h.handleSearch(ctx, callParams.Arguments), nil
	default:
		return textResult(fmt.Sprintf("Unknown tool: %s", callParams.Name), true), nil
	}
}

// handleSearch 执行聚合搜索
func (h *Handler) handleSearch(ctx context.Context, args map[string]any) *CallToolResult {
	req, err := parseSearchArgs(args)
	if err != nil {
		return textResult(err.Error(), true)
	}

	resp, err := h.searcher.Search(ctx, req)
	if err != nil {
		return textResult(fmt.Sprintf("Search failed: %v", err), true)
	}

	out, err := json.MarshalIndent(resp.Results, "", "  ")
	if err != nil {
		return textResult(fmt.Sprintf("Failed to format results: %v", err), true)
	}
	return textResult(string(out), false)
}

func parseSearchArgs(args map[string]any) (aggregate.Request, error) {
	req := aggregate.Request{WithSnippets: true}

	req.Query, _ = args["query"].(string)
	if req.Query == "" {
		return req, fmt.Errorf("query is required")
	}
	if l, ok := args["limit"].(float64); ok {
		req.Limit = int(l)
	}
	if list, ok := args["engines"].([]any); ok {
		for _, e := range list {
			if s, ok := e.(string); ok {
				req.Engines = append(req.Engines, s)
			}
		}
	}
	if s, ok := args["snippets"].(bool); ok {
		req.WithSnippets = s
	}
	return req, nil
}
