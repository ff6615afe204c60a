package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cliffyan/go-meta-search/internal/config"
)

// Manager 搜索引擎管理器
type Manager struct {
	engines map[string]SearchEngine
	config  *config.Config
	mu      sync.RWMutex
}

// NewManager 创建搜索引擎管理器并注册已配置的引擎
func NewManager(cfg *config.Config) *Manager {
	m := NewEmptyManager(cfg)
	m.initEngines()
	return m
}

// NewEmptyManager 创建未注册任何引擎的管理器
func NewEmptyManager(cfg *config.Config) *Manager {
	return &Manager{
		engines: make(map[string]SearchEngine),
		config:  cfg,
	}
}

// initEngines 初始化所有搜索引擎
func (m *Manager) initEngines() {
	proxyURL := m.config.ProxyURL()

	m.RegisterEngine(NewDuckDuckGoEngine(proxyURL))
	m.RegisterEngine(NewBingEngine(proxyURL))

	// API 引擎需要凭据
	if m.config.HasGoogleAPI() {
		g := m.config.Providers.Google
		m.RegisterEngine(NewGoogleEngine(g.Key, g.CX, proxyURL))
	}
	if m.config.HasBingAPI() {
		m.RegisterEngine(NewBingAPIEngine(m.config.Providers.Bing.Key, proxyURL))
	}

	log.Printf("✅ Initialized %d search engine(s): %v", len(m.engines), m.GetEngineNames())
}

// RegisterEngine 注册搜索引擎
func (m *Manager) RegisterEngine(engine SearchEngine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engines[engine.Name()] = engine
	log.Printf("📝 Registered search engine: %s", engine.Name())
}

// GetEngine 获取搜索引擎
func (m *Manager) GetEngine(name string) (SearchEngine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	engine, ok := m.engines[name]
	return engine, ok
}

// GetEngineNames 获取所有引擎名称（已排序）
func (m *Manager) GetEngineNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.engines))
	for name := range m.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search 并发调用多个引擎，结果按引擎顺序合并并按 URL 去重
// 单个引擎失败只记录日志，全部失败时返回错误
func (m *Manager) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	names := req.Engines
	if len(names) == 0 {
		names = m.config.Search.DefaultEngines
	}

	limit := req.Limit
	if limit <= 0 {
		limit = m.config.Search.Limit
	}

	var engines []SearchEngine
	for _, name := range names {
		if !m.config.IsEngineAllowed(name) {
			log.Printf("⚠️ Engine %s is not allowed, skipping", name)
			continue
		}
		engine, ok := m.GetEngine(name)
		if !ok {
			log.Printf("⚠️ Engine %s not found, skipping", name)
			continue
		}
		engines = append(engines, engine)
	}
	if len(engines) == 0 {
		return nil, fmt.Errorf("no usable search engine in %v", names)
	}

	perEngine := make([][]SearchResult, len(engines))
	errs := make([]error, len(engines))

	var g errgroup.Group
	for i, eng := range engines {
		i, eng := i, eng
		g.Go(func() error {
			results, err := eng.Search(ctx, req.Query, limit)
			if err != nil {
				log.Printf("❌ Search with %s failed: %v", eng.Name(), err)
				errs[i] = err
				return nil
			}
			perEngine[i] = results
			log.Printf("✅ Search with %s returned %d results", eng.Name(), len(results))
			return nil
		})
	}
	_ = g.Wait()

	var lastErr error
	seen := make(map[string]bool)
	allResults := []SearchResult{}
	for i, results := range perEngine {
		if errs[i] != nil {
			lastErr = errs[i]
		}
		for _, r := range results {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			allResults = append(allResults, r)
		}
	}

	if len(allResults) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all searches failed, last error: %w", lastErr)
	}
	return allResults, nil
}
