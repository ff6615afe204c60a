package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// apiDocument 搜索 API 返回的单条结果
// Google 使用 link/title，Bing 使用 url/name
type apiDocument struct {
	Link    string
	Title   string
	Snippet string
	Source  string
}

func (d *apiDocument) UnmarshalJSON(data []byte) error {
	var raw struct {
		Link        string `json:"link"`
		URL         string `json:"url"`
		Title       string `json:"title"`
		Name        string `json:"name"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
		DisplayURL  string `json:"displayUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Link = firstNonEmpty(raw.Link, raw.URL)
	d.Title = firstNonEmpty(raw.Title, raw.Name)
	d.Snippet = raw.Snippet
	d.Source = firstNonEmpty(raw.DisplayLink, raw.DisplayURL)
	return nil
}

func (d apiDocument) toResult(engine string) SearchResult {
	return SearchResult{
		Title:       d.Title,
		URL:         d.Link,
		Description: d.Snippet,
		Source:      d.Source,
		Engine:      engine,
	}
}

// getJSON 执行请求并解码 JSON 响应
func getJSON(client *http.Client, req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	body, err := doGet(client, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

func toResults(docs []apiDocument, engine string, limit int) []SearchResult {
	results := make([]SearchResult, 0, len(docs))
	for _, d := range docs {
		if d.Link == "" {
			continue
		}
		results = append(results, d.toResult(engine))
		if len(results) >= limit {
			break
		}
	}
	return results
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
