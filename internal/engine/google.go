package engine

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
)

const (
	googleURL = "https://www.googleapis.com/customsearch/v1"
	// googleMaxNum Custom Search 单次请求最多返回 10 条
	googleMaxNum = 10
)

// GoogleEngine Google Custom Search JSON API
type GoogleEngine struct {
	client  *http.Client
	baseURL string
	key     string
	cx      string
}

// NewGoogleEngine 创建 Google 搜索引擎实例
func NewGoogleEngine(key, cx, proxyURL string) *GoogleEngine {
	return &GoogleEngine{
		client:  newHTTPClient(proxyURL),
		baseURL: googleURL,
		key:     key,
		cx:      cx,
	}
}

// Name 返回引擎名称
func (e *GoogleEngine) Name() string {
	return "google"
}

// Search 执行 Google 搜索
func (e *GoogleEngine) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("key", e.key)
	params.Set("cx", e.cx)
	params.Set("q", query)
	params.Set("num", fmt.Sprint(min(max(limit, 1), googleMaxNum)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	var resp struct {
		Items []apiDocument `json:"items"`
	}
	if err := getJSON(e.client, req, &resp); err != nil {
		return nil, err
	}

	results := toResults(resp.Items, e.Name(), limit)
	log.Printf("🔍 Google: found %d results for query '%s'", len(results), query)
	return results, nil
}
