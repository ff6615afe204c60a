package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	// 服务器配置
	Server ServerConfig `yaml:"server"`

	// 搜索引擎配置
	Search SearchConfig `yaml:"search"`

	// 搜索 API 凭据
	Providers ProvidersConfig `yaml:"providers"`

	// 页面抓取配置
	Fetch FetchConfig `yaml:"fetch"`

	// 摘要生成配置
	Snippet SnippetConfig `yaml:"snippet"`

	// 代理配置
	Proxy ProxyConfig `yaml:"proxy"`

	// MCP 配置
	MCP MCPConfig `yaml:"mcp"`

	// 浏览器配置
	Browser BrowserConfig `yaml:"browser"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int        `yaml:"port"`
	Host string     `yaml:"host"`
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Origin  string `yaml:"origin"`
}

// SearchConfig 搜索引擎配置
type SearchConfig struct {
	DefaultEngines []string `yaml:"default_engines"`
	AllowedEngines []string `yaml:"allowed_engines"`
	Limit          int      `yaml:"limit"`
}

// ProvidersConfig 搜索 API 凭据，留空则不注册对应引擎
type ProvidersConfig struct {
	Google GoogleConfig `yaml:"google"`
	Bing   BingConfig   `yaml:"bing"`
}

// GoogleConfig Google Custom Search 配置
type GoogleConfig struct {
	Key string `yaml:"key"`
	CX  string `yaml:"cx"`
}

// BingConfig Bing Web Search API 配置
type BingConfig struct {
	Key string `yaml:"key"`
}

// FetchConfig 页面抓取配置
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxBytes       int64  `yaml:"max_bytes"`
	Concurrency    int    `yaml:"concurrency"`
	UserAgent      string `yaml:"user_agent"`
	UseBrowser     bool   `yaml:"use_browser"`
}

// SnippetConfig 摘要生成配置
type SnippetConfig struct {
	ContextWidth int     `yaml:"context_width"`
	MaxMatches   int     `yaml:"max_matches"`
	ScoreEpsilon float64 `yaml:"score_epsilon"`
}

// ProxyConfig 代理配置
type ProxyConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// MCPConfig MCP 协议配置
type MCPConfig struct {
	ServerName    string         `yaml:"server_name"`
	ServerVersion string         `yaml:"server_version"`
	Tools         MCPToolsConfig `yaml:"tools"`
}

// MCPToolsConfig MCP 工具名称配置
type MCPToolsConfig struct {
	SearchName        string `yaml:"search_name"`
	SearchDescription string `yaml:"search_description"`
}

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	Headless bool `yaml:"headless"`
}

// ValidEngines 有效的搜索引擎列表
var ValidEngines = []string{"duckduckgo", "bing", "google", "bing_api"}

// DefaultConfig 默认配置
var DefaultConfig = &Config{
	Server: ServerConfig{
		Port: 3456,
		Host: "0.0.0.0",
		CORS: CORSConfig{
			Enabled: false,
			Origin:  "*",
		},
	},
	Search: SearchConfig{
		DefaultEngines: []string{"duckduckgo", "bing"},
		AllowedEngines: []string{},
		Limit:          10,
	},
	Fetch: FetchConfig{
		TimeoutSeconds: 15,
		MaxBytes:       2 << 20,
		Concurrency:    8,
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		UseBrowser:     false,
	},
	Snippet: SnippetConfig{
		ContextWidth: 10,
		MaxMatches:   3,
		ScoreEpsilon: 0.05,
	},
	Proxy: ProxyConfig{
		Enabled: false,
		URL:     "http://127.0.0.1:7890",
	},
	MCP: MCPConfig{
		ServerName:    "go-meta-search",
		ServerVersion: "1.0.0",
		Tools: MCPToolsConfig{
			SearchName:        "search",
			SearchDescription: "Search the web across several engines at once. Each result carries a highlighted snippet taken from the linked page itself and a relevance score.",
		},
	},
	Browser: BrowserConfig{
		Headless: true,
	},
}

// configSearchPaths 配置文件搜索路径
var configSearchPaths = []string{
	"config.yaml",
	"config.yml",
	"configs/config.yaml",
	"configs/config.yml",
}

// Default 返回默认配置的副本
func Default() *Config {
	cfg := *DefaultConfig
	cfg.Search.DefaultEngines = append([]string(nil), DefaultConfig.Search.DefaultEngines...)
	cfg.Search.AllowedEngines = append([]string(nil), DefaultConfig.Search.AllowedEngines...)
	return &cfg
}

// Load 从 YAML 配置文件加载配置
// 支持通过 CONFIG_FILE 环境变量指定配置文件路径，出错时回退到默认配置
func Load() *Config {
	configPath := findConfigFile()
	if configPath == "" {
		log.Printf("⚠️ No config file found, using default configuration")
		cfg := Default()
		cfg.validate()
		cfg.Print()
		return cfg
	}

	log.Printf("📄 Loading configuration from: %s", configPath)
	cfg, err := LoadFromFile(configPath)
	if err != nil {
		log.Printf("⚠️ %v, using defaults", err)
		cfg = Default()
		cfg.validate()
	}

	cfg.Print()
	return cfg
}

// LoadFromFile 从指定路径加载配置
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 配置内容
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}
	cfg.validate()
	return cfg, nil
}

// findConfigFile 查找配置文件
func findConfigFile() string {
	if envPath := os.Getenv("CONFIG_FILE"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		log.Printf("⚠️ CONFIG_FILE=%s not found, searching default paths", envPath)
	}

	var searchDirs []string
	if workDir, err := os.Getwd(); err == nil {
		searchDirs = append(searchDirs, workDir)
	}
	if execPath, err := os.Executable(); err == nil {
		if execDir := filepath.Dir(execPath); len(searchDirs) == 0 || execDir != searchDirs[0] {
			searchDirs = append(searchDirs, execDir)
		}
	}

	for _, dir := range searchDirs {
		for _, name := range configSearchPaths {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// validate 验证并修正配置
func (c *Config) validate() {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		log.Printf("⚠️ Invalid port %d, using default %d", c.Server.Port, DefaultConfig.Server.Port)
		c.Server.Port = DefaultConfig.Server.Port
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfig.Server.Host
	}
	if c.Server.CORS.Origin == "" {
		c.Server.CORS.Origin = DefaultConfig.Server.CORS.Origin
	}

	c.Search.AllowedEngines = filterEngines(c.Search.AllowedEngines)
	defaults := []string{}
	for _, e := range filterEngines(c.Search.DefaultEngines) {
		if c.IsEngineAllowed(e) {
			defaults = append(defaults, e)
		}
	}
	if len(defaults) == 0 {
		if len(c.Search.AllowedEngines) > 0 {
			defaults = []string{c.Search.AllowedEngines[0]}
		} else {
			defaults = append(defaults, DefaultConfig.Search.DefaultEngines...)
		}
		log.Printf("⚠️ No usable default engines, falling back to %s", strings.Join(defaults, ", "))
	}
	c.Search.DefaultEngines = defaults
	if c.Search.Limit <= 0 {
		c.Search.Limit = DefaultConfig.Search.Limit
	}

	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = DefaultConfig.Fetch.TimeoutSeconds
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = DefaultConfig.Fetch.MaxBytes
	}
	if c.Fetch.Concurrency <= 0 {
		log.Printf("⚠️ Invalid fetch concurrency %d, using default %d", c.Fetch.Concurrency, DefaultConfig.Fetch.Concurrency)
		c.Fetch.Concurrency = DefaultConfig.Fetch.Concurrency
	}
	if strings.TrimSpace(c.Fetch.UserAgent) == "" {
		c.Fetch.UserAgent = DefaultConfig.Fetch.UserAgent
	}

	if c.Snippet.ContextWidth <= 0 {
		c.Snippet.ContextWidth = DefaultConfig.Snippet.ContextWidth
	}
	if c.Snippet.MaxMatches <= 0 {
		c.Snippet.MaxMatches = DefaultConfig.Snippet.MaxMatches
	}
	if c.Snippet.ScoreEpsilon <= 0 || c.Snippet.ScoreEpsilon >= 1 {
		c.Snippet.ScoreEpsilon = DefaultConfig.Snippet.ScoreEpsilon
	}

	if c.Proxy.Enabled && c.Proxy.URL == "" {
		log.Printf("⚠️ Proxy enabled but URL is empty, using default")
		c.Proxy.URL = DefaultConfig.Proxy.URL
	}

	if c.MCP.ServerName == "" {
		c.MCP.ServerName = DefaultConfig.MCP.ServerName
	}
	if c.MCP.ServerVersion == "" {
		c.MCP.ServerVersion = DefaultConfig.MCP.ServerVersion
	}
	if c.MCP.Tools.SearchName == "" {
		c.MCP.Tools.SearchName = DefaultConfig.MCP.Tools.SearchName
	}
	if c.MCP.Tools.SearchDescription == "" {
		c.MCP.Tools.SearchDescription = DefaultConfig.MCP.Tools.SearchDescription
	}
}

// Print 打印配置信息
func (c *Config) Print() {
	log.Printf("🔍 Default search engines: %s", strings.Join(c.Search.DefaultEngines, ", "))
	if len(c.Search.AllowedEngines) > 0 {
		log.Printf("🔍 Allowed search engines: %s", strings.Join(c.Search.AllowedEngines, ", "))
	} else {
		log.Printf("🔍 No search engine restrictions, all available engines can be used")
	}
	log.Printf("🔑 Google API: %v, Bing API: %v", c.HasGoogleAPI(), c.HasBingAPI())
	if c.Proxy.Enabled {
		log.Printf("🌐 Using proxy: %s", c.Proxy.URL)
	} else {
		log.Printf("🌐 No proxy configured")
	}
	log.Printf("📥 Fetch: timeout=%ds, max_bytes=%d, concurrency=%d, browser=%v",
		c.Fetch.TimeoutSeconds, c.Fetch.MaxBytes, c.Fetch.Concurrency, c.Fetch.UseBrowser)
	log.Printf("✂️ Snippet: context_width=%d, max_matches=%d, score_epsilon=%.2f",
		c.Snippet.ContextWidth, c.Snippet.MaxMatches, c.Snippet.ScoreEpsilon)
	if c.Server.CORS.Enabled {
		log.Printf("🔒 CORS enabled with origin: %s", c.Server.CORS.Origin)
	} else {
		log.Printf("🔒 CORS disabled")
	}
	log.Printf("🔧 MCP Server: %s v%s", c.MCP.ServerName, c.MCP.ServerVersion)
	log.Printf("🖥️ Server will listen on %s", c.Addr())
}

// IsEngineAllowed 检查搜索引擎是否被允许使用
func (c *Config) IsEngineAllowed(engine string) bool {
	if len(c.Search.AllowedEngines) == 0 {
		return isValidEngine(engine)
	}
	return contains(c.Search.AllowedEngines, engine)
}

// Addr 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ProxyURL 返回启用的代理地址，未启用时为空
func (c *Config) ProxyURL() string {
	if !c.Proxy.Enabled {
		return ""
	}
	return c.Proxy.URL
}

// FetchTimeout 页面抓取超时
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// HasGoogleAPI 是否配置了 Google Custom Search
func (c *Config) HasGoogleAPI() bool {
	return c.Providers.Google.Key != "" && c.Providers.Google.CX != ""
}

// HasBingAPI 是否配置了 Bing Web Search API
func (c *Config) HasBingAPI() bool {
	return c.Providers.Bing.Key != ""
}

func filterEngines(engines []string) []string {
	valid := []string{}
	for _, e := range engines {
		e = strings.TrimSpace(e)
		if isValidEngine(e) && !contains(valid, e) {
			valid = append(valid, e)
		} else if !isValidEngine(e) {
			log.Printf("⚠️ Invalid search engine ignored: %s", e)
		}
	}
	return valid
}

func isValidEngine(engine string) bool {
	return contains(ValidEngines, engine)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
