package engine

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
)

const bingAPIURL = "https://api.cognitive.microsoft.com/bing/v7.0/search"

// BingAPIEngine Bing Web Search v7 API
type BingAPIEngine struct {
	client  *http.Client
	baseURL string
	key     string
}

// NewBingAPIEngine 创建 Bing API 搜索引擎实例
func NewBingAPIEngine(key, proxyURL string) *BingAPIEngine {
	return &BingAPIEngine{
		client:  newHTTPClient(proxyURL),
		baseURL: bingAPIURL,
		key:     key,
	}
}

// Name 返回引擎名称
func (e *BingAPIEngine) Name() string {
	return "bing_api"
}

// Search 执行 Bing API 搜索
func (e *BingAPIEngine) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprint(max(limit, 1)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.key)

	var resp struct {
		WebPages struct {
			Value []apiDocument `json:"value"`
		} `json:"webPages"`
	}
	if err := getJSON(e.client, req, &resp); err != nil {
		return nil, err
	}

	results := toResults(resp.WebPages.Value, e.Name(), limit)
	log.Printf("🔍 Bing API: found %d results for query '%s'", len(results), query)
	return results, nil
}
