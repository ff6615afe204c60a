// Package httpclient 构建搜索引擎与页面抓取共用的 HTTP 客户端
package httpclient

import (
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// New 创建带 cookie 和可选代理的 HTTP 客户端，代理地址无效时直连
func New(proxyURL string, timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{}
	if proxyURL != "" {
		if proxy, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxy)
		} else {
			log.Printf("⚠️ Invalid proxy url %q, connecting directly: %v", proxyURL, err)
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Jar:       jar,
		Transport: transport,
	}
}
