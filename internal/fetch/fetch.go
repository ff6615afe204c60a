// Package fetch 抓取搜索结果指向的页面
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/cliffyan/go-meta-search/internal/httpclient"
)

// Page 抓取到的页面
type Page struct {
	Body        []byte
	ContentType string
}

// Fetcher 页面抓取接口
type Fetcher interface {
	Fetch(ctx context.Context, link string) (Page, error)
}

// ErrUnsupportedScheme 非 http/https 链接
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// HTTPFetcher 通过 HTTP 抓取页面
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// Options HTTPFetcher 参数
type Options struct {
	ProxyURL  string
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// NewHTTPFetcher 创建 HTTP 抓取器
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	return &HTTPFetcher{
		client:    httpclient.New(opts.ProxyURL, opts.Timeout),
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
}

// Fetch 抓取页面，超过 maxBytes 的部分被截断
func (f *HTTPFetcher) Fetch(ctx context.Context, link string) (Page, error) {
	if err := checkLink(link); err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return Page{}, fmt.Errorf("create request failed: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if f.maxBytes > 0 {
		r = io.LimitReader(resp.Body, f.maxBytes)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return Page{}, fmt.Errorf("read body failed: %w", err)
	}

	return Page{Body: body, ContentType: resp.Header.Get("Content-Type")}, nil
}

func checkLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", link, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return nil
}

// FallbackFetcher 主抓取器失败时使用备用抓取器
type FallbackFetcher struct {
	Primary   Fetcher
	Secondary Fetcher
}

// Fetch 依次尝试两个抓取器
func (f FallbackFetcher) Fetch(ctx context.Context, link string) (Page, error) {
	page, err := f.Primary.Fetch(ctx, link)
	if err == nil || f.Secondary == nil || ctx.Err() != nil || errors.Is(err, ErrUnsupportedScheme) {
		return page, err
	}
	log.Printf("⚠️ Primary fetch of %s failed: %v, trying fallback", link, err)
	return f.Secondary.Fetch(ctx, link)
}
