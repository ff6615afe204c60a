package engine

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoEngine DuckDuckGo HTML 版搜索引擎
type DuckDuckGoEngine struct {
	client  *http.Client
	baseURL string
}

// NewDuckDuckGoEngine 创建 DuckDuckGo 搜索引擎实例
func NewDuckDuckGoEngine(proxyURL string) *DuckDuckGoEngine {
	return &DuckDuckGoEngine{
		client:  newHTTPClient(proxyURL),
		baseURL: duckDuckGoURL,
	}
}

// Name 返回引擎名称
func (e *DuckDuckGoEngine) Name() string {
	return "duckduckgo"
}

// Search 执行 DuckDuckGo 搜索
func (e *DuckDuckGoEngine) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	searchURL := fmt.Sprintf("%s?q=%s", e.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	setBrowserHeaders(req)

	body, err := doGet(e.client, req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	results := parseDuckDuckGo(doc, limit)
	log.Printf("🔍 DuckDuckGo: found %d results for query '%s'", len(results), query)
	return results, nil
}

// parseDuckDuckGo 解析搜索结果页
func parseDuckDuckGo(doc *goquery.Document, limit int) []SearchResult {
	var results []SearchResult

	doc.Find(".result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}

		linkEl := s.Find(".result__a").First()
		href, exists := linkEl.Attr("href")
		if !exists {
			return true
		}

		// 跳转链接中真实地址在 uddg 参数里
		if strings.HasPrefix(href, "//duckduckgo.com/l/") {
			if parsed, err := url.Parse("https:" + href); err == nil {
				href = parsed.Query().Get("uddg")
			}
		}
		if !strings.HasPrefix(href, "http") {
			return true
		}

		results = append(results, SearchResult{
			Title:       strings.TrimSpace(linkEl.Text()),
			URL:         href,
			Description: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Source:      strings.TrimSpace(s.Find(".result__url").First().Text()),
			Engine:      "duckduckgo",
		})
		return true
	})

	return results
}
