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

const (
	bingURL      = "https://www.bing.com/search"
	bingMaxPages = 5
)

// BingEngine Bing 网页搜索引擎
type BingEngine struct {
	client  *http.Client
	baseURL string
}

// NewBingEngine 创建 Bing 搜索引擎实例
func NewBingEngine(proxyURL string) *BingEngine {
	return &BingEngine{
		client:  newHTTPClient(proxyURL),
		baseURL: bingURL,
	}
}

// Name 返回引擎名称
func (e *BingEngine) Name() string {
	return "bing"
}

// Search 执行 Bing 搜索，按页抓取直到满足 limit
func (e *BingEngine) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	var allResults []SearchResult

	for page := 0; len(allResults) < limit && page < bingMaxPages; page++ {
		results, err := e.searchPage(ctx, query, page)
		if err != nil {
			if len(allResults) > 0 {
				break
			}
			return nil, err
		}
		if len(results) == 0 {
			break
		}
		allResults = append(allResults, results...)
	}

	if len(allResults) > limit {
		allResults = allResults[:limit]
	}
	return allResults, nil
}

// searchPage 搜索单页结果
func (e *BingEngine) searchPage(ctx context.Context, query string, page int) ([]SearchResult, error) {
	searchURL := fmt.Sprintf("%s?q=%s&first=%d&setlang=en", e.baseURL, url.QueryEscape(query), 1+page*10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	body, err := doGet(e.client, req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	results := parseBing(doc)
	log.Printf("🔍 Bing page %d: found %d results", page, len(results))
	return results, nil
}

// parseBing 解析结果列表
func parseBing(doc *goquery.Document) []SearchResult {
	var results []SearchResult

	doc.Find("li.b_algo").Each(func(i int, s *goquery.Selection) {
		linkEl := s.Find("h2 a").First()
		href, exists := linkEl.Attr("href")
		if !exists || !strings.HasPrefix(href, "http") {
			return
		}

		description := ""
		for _, sel := range []string{".b_caption p", "p", ".b_algoSlug"} {
			if d := strings.TrimSpace(s.Find(sel).First().Text()); d != "" {
				description = d
				break
			}
		}

		results = append(results, SearchResult{
			Title:       strings.TrimSpace(s.Find("h2").First().Text()),
			URL:         href,
			Description: description,
			Source:      strings.TrimSpace(s.Find("cite").First().Text()),
			Engine:      "bing",
		})
	})

	return results
}
