// Package aggregate 组合多引擎搜索、页面抓取与摘要生成
package aggregate

import (
	"context"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cliffyan/go-meta-search/internal/engine"
	"github.com/cliffyan/go-meta-search/internal/fetch"
	"github.com/cliffyan/go-meta-search/internal/keyword"
	"github.com/cliffyan/go-meta-search/internal/snippet"
)

// Searcher 多引擎搜索，由 engine.Manager 实现
type Searcher interface {
	Search(ctx context.Context, req engine.SearchRequest) ([]engine.SearchResult, error)
}

// Request 聚合搜索请求
type Request struct {
	Query        string   `json:"query"`
	Limit        int      `json:"limit,omitempty"`
	Engines      []string `json:"engines,omitempty"`
	WithSnippets bool     `json:"with_snippets"`
}

// Result 带摘要的搜索结果
type Result struct {
	engine.SearchResult
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score"`
}

// Response 聚合搜索响应
type Response struct {
	Query    string        `json:"query"`
	Keywords []string      `json:"keywords,omitempty"`
	Results  []Result      `json:"results"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Aggregator 聚合搜索服务
type Aggregator struct {
	searcher    Searcher
	fetcher     fetch.Fetcher
	opts        snippet.Options
	concurrency int
}

// New 创建聚合器，concurrency 限制同时抓取的页面数
func New(searcher Searcher, fetcher fetch.Fetcher, opts snippet.Options, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Aggregator{
		searcher:    searcher,
		fetcher:     fetcher,
		opts:        opts,
		concurrency: concurrency,
	}
}

// Search 执行搜索；开启摘要时丢弃无法抓取的结果并按分数降序排列
func (a *Aggregator) Search(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	docs, err := a.searcher.Search(ctx, engine.SearchRequest{
		Query:   req.Query,
		Limit:   req.Limit,
		Engines: req.Engines,
	})
	if err != nil {
		return Response{}, err
	}

	resp := Response{Query: req.Query, Results: []Result{}}
	if !req.WithSnippets {
		for _, d := range docs {
			resp.Results = append(resp.Results, Result{SearchResult: d})
		}
		resp.Elapsed = time.Since(start)
		return resp, nil
	}

	resp.Keywords = keyword.Extract(req.Query)
	metas := a.generateAll(ctx, docs, resp.Keywords)

	for i, d := range docs {
		if !metas[i].IsUsable() {
			continue
		}
		resp.Results = append(resp.Results, Result{
			SearchResult: d,
			Snippet:      metas[i].Snippet,
			Score:        metas[i].Score,
		})
	}
	sort.SliceStable(resp.Results, func(i, j int) bool {
		return resp.Results[i].Score > resp.Results[j].Score
	})

	resp.Elapsed = time.Since(start)
	log.Printf("✂️ Generated snippets for %d/%d results of '%s' in %v", len(resp.Results), len(docs), req.Query, resp.Elapsed)
	return resp, nil
}

// generateAll 并发为每个文档生成 Meta，单个失败不影响其他文档
func (a *Aggregator) generateAll(ctx context.Context, docs []engine.SearchResult, keywords []string) []snippet.Meta {
	metas := make([]snippet.Meta, len(docs))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, d := range docs {
		i, d := i, d
		g.Go(func() error {
			metas[i] = a.Generate(ctx, d, keywords)
			return nil
		})
	}
	_ = g.Wait()

	return metas
}

// Generate 抓取文档页面并生成 Meta，抓取失败时返回不可用的 Meta
func (a *Aggregator) Generate(ctx context.Context, doc engine.SearchResult, keywords []string) snippet.Meta {
	if ctx.Err() != nil {
		return snippet.UnusableMeta()
	}
	page, err := a.fetcher.Fetch(ctx, doc.URL)
	if err != nil {
		log.Printf("⚠️ Fetch %s failed: %v", doc.URL, err)
		return snippet.UnusableMeta()
	}
	return snippet.Generate(snippet.ExtractWords(page.Body, page.ContentType), keywords, a.opts)
}
