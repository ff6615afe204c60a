package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/cliffyan/go-meta-search/internal/aggregate"
	"github.com/cliffyan/go-meta-search/internal/config"
	"github.com/cliffyan/go-meta-search/internal/mcp"
)

const keepaliveInterval = 30 * time.Second

// Server HTTP 服务器，提供 MCP 与 JSON 搜索接口
type Server struct {
	config     *config.Config
	searcher   mcp.Searcher
	engines    []string
	mcpHandler *mcp.Handler
	sessions   map[string]*Session
	sessionsMu sync.RWMutex
	httpServer *http.Server
}

// Session 会话信息
type Session struct {
	ID        string
	CreatedAt time.Time
}

// New 创建新的服务器实例
func New(cfg *config.Config, searcher mcp.Searcher, engines []string) *Server {
	return &Server{
		config:     cfg,
		searcher:   searcher,
		engines:    engines,
		mcpHandler: mcp.NewHandler(cfg, searcher, engines),
		sessions:   make(map[string]*Session),
	}
}

// Handler 返回注册了全部路由的 http.Handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleMCP)
	mux.HandleFunc("/sse", s.handleSSE)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/health", s.handleHealth)

	if !s.config.Server.CORS.Enabled {
		return mux
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.config.Server.CORS.Origin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "mcp-session-id"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

// Start 启动 HTTP 服务器，阻塞直到关闭
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 Starting HTTP server on %s", addr)
	log.Printf("📡 MCP endpoint: http://%s/mcp", addr)
	log.Printf("🔍 Search endpoint: http://%s/search?q=", addr)
	log.Printf("❤️ Health check: http://%s/health", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleSearch 处理 GET /search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseSearchQuery(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		log.Printf("❌ Search '%s' failed: %v", req.Query, err)
		s.writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func parseSearchQuery(r *http.Request) (aggregate.Request, error) {
	q := r.URL.Query()
	req := aggregate.Request{
		Query:        strings.TrimSpace(q.Get("q")),
		WithSnippets: true,
	}
	if req.Query == "" {
		return req, fmt.Errorf("missing query parameter q")
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return req, fmt.Errorf("invalid limit: %s", v)
		}
		req.Limit = limit
	}
	if v := q.Get("engines"); v != "" {
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				req.Engines = append(req.Engines, e)
			}
		}
	}
	if v := q.Get("snippets"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid snippets flag: %s", v)
		}
		req.WithSnippets = b
	}
	return req, nil
}

// handleMCP 处理 MCP 请求
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleMCPPost(w, r)
	case http.MethodGet:
		s.handleMCPGet(w, r)
	case http.MethodDelete:
		s.handleMCPDelete(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleMCPPost 处理 MCP POST 请求
func (s *Server) handleMCPPost(w http.ResponseWriter, r *http.Request) {
	var req mcp.JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusOK, mcp.JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &mcp.RPCError{Code: mcp.CodeParseError, Message: "Parse error: " + err.Error()},
		})
		return
	}

	// 初始化请求创建新会话
	if req.Method == "initialize" && r.Header.Get("mcp-session-id") == "" {
		session := s.newSession()
		w.Header().Set("mcp-session-id", session.ID)
		log.Printf("📝 Created new session: %s", session.ID)
	}

	resp := s.mcpHandler.HandleRequest(r.Context(), req)

	if req.Method == "notifications/initialized" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleMCPGet 处理 MCP GET 请求（SSE 流）
func (s *Server) handleMCPGet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("mcp-session-id")
	if sessionID == "" {
		http.Error(w, "Missing session ID", http.StatusBadRequest)
		return
	}
	if !s.hasSession(sessionID) {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	s.streamSSE(w, r, `{"uri": "/mcp"}`)
}

// handleMCPDelete 关闭会话
func (s *Server) handleMCPDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("mcp-session-id")
	if sessionID == "" {
		http.Error(w, "Missing session ID", http.StatusBadRequest)
		return
	}

	s.deleteSession(sessionID)
	log.Printf("🗑️ Deleted session: %s", sessionID)
	w.WriteHeader(http.StatusOK)
}

// handleSSE 处理 SSE 端点（兼容旧客户端）
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := s.newSession()
	defer s.deleteSession(session.ID)

	log.Printf("📡 SSE connection established: %s", session.ID)
	s.streamSSE(w, r, fmt.Sprintf(`{"uri": "/messages?sessionId=%s"}`, session.ID))
	log.Printf("📡 SSE connection closed: %s", session.ID)
}

// streamSSE 发送 endpoint 事件并保持连接直到客户端断开
func (s *Server) streamSSE(w http.ResponseWriter, r *http.Request, endpoint string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", endpoint)
	flusher.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": s.config.MCP.ServerName,
		"version": s.config.MCP.ServerVersion,
		"engines": s.engines,
	})
}

func (s *Server) newSession() *Session {
	session := &Session{ID: uuid.New().String(), CreatedAt: time.Now()}
	s.sessionsMu.Lock()
	s.sessions[session.ID] = session
	s.sessionsMu.Unlock()
	return session
}

func (s *Server) hasSession(id string) bool {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

func (s *Server) deleteSession(id string) {
	s.sessionsMu.Lock()
	delete(s.sessions, id)
	s.sessionsMu.Unlock()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}
