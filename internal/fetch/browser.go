package fetch

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserManager 共享的无头浏览器实例
type BrowserManager struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancelFunc  context.CancelFunc
	mu          sync.Mutex
	initialized bool
}

var (
	browserManagerInstance *BrowserManager
	browserManagerOnce     sync.Once
)

// GetBrowserManager 获取浏览器管理器单例
func GetBrowserManager() *BrowserManager {
	browserManagerOnce.Do(func() {
		browserManagerInstance = &BrowserManager{}
	})
	return browserManagerInstance
}

// findChromePath 查找 Chrome 可执行文件路径
func findChromePath() string {
	var paths []string

	switch runtime.GOOS {
	case "darwin":
		paths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "linux":
		paths = []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	case "windows":
		paths = []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			os.Getenv("LOCALAPPDATA") + `\Google\Chrome\Application\chrome.exe`,
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Initialize 启动浏览器，重复调用无副作用
func (bm *BrowserManager) Initialize(proxyURL, userAgent string, headless bool) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.initLocked(proxyURL, userAgent, headless)
}

func (bm *BrowserManager) initLocked(proxyURL, userAgent string, headless bool) error {
	if bm.initialized {
		return nil
	}

	chromePath := findChromePath()
	if chromePath == "" {
		return fmt.Errorf("chrome/chromium not found, please install a Chrome browser")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1920, 1080),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
		log.Printf("🌐 Browser using proxy: %s", proxyURL)
	}

	bm.allocCtx, bm.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	bm.browserCtx, bm.cancelFunc = chromedp.NewContext(bm.allocCtx, chromedp.WithLogf(log.Printf))

	if err := chromedp.Run(bm.browserCtx); err != nil {
		bm.cancelFunc()
		bm.allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	bm.initialized = true
	log.Printf("✅ Browser initialized (headless=%v, path=%s)", headless, chromePath)
	return nil
}

// NewTabContext 创建新的标签页上下文，parent 取消时标签页随之关闭
func (bm *BrowserManager) NewTabContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if !bm.initialized {
		return nil, nil, fmt.Errorf("browser not initialized")
	}

	tabCtx, tabCancel := chromedp.NewContext(bm.browserCtx)
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	stop := context.AfterFunc(parent, timeoutCancel)

	return timeoutCtx, func() {
		stop()
		timeoutCancel()
		tabCancel()
	}, nil
}

// Close 关闭浏览器
func (bm *BrowserManager) Close() {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if !bm.initialized {
		return
	}
	bm.cancelFunc()
	bm.allocCancel()
	bm.initialized = false
	log.Printf("🔴 Browser closed")
}

// IsInitialized 检查是否已初始化
func (bm *BrowserManager) IsInitialized() bool {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.initialized
}

// BrowserFetcher 用无头浏览器渲染页面后取 HTML，适用于依赖 JS 的页面
type BrowserFetcher struct {
	manager   *BrowserManager
	proxyURL  string
	userAgent string
	headless  bool
	timeout   time.Duration
}

// NewBrowserFetcher 创建浏览器抓取器
func NewBrowserFetcher(bm *BrowserManager, opts Options, headless bool) *BrowserFetcher {
	return &BrowserFetcher{
		manager:   bm,
		proxyURL:  opts.ProxyURL,
		userAgent: opts.UserAgent,
		headless:  headless,
		timeout:   opts.Timeout,
	}
}

// Fetch 渲染页面并返回 outerHTML
func (f *BrowserFetcher) Fetch(ctx context.Context, link string) (Page, error) {
	if err := checkLink(link); err != nil {
		return Page{}, err
	}
	if err := f.manager.Initialize(f.proxyURL, f.userAgent, f.headless); err != nil {
		return Page{}, fmt.Errorf("failed to initialize browser: %w", err)
	}

	tabCtx, cancel, err := f.manager.NewTabContext(ctx, f.timeout)
	if err != nil {
		return Page{}, err
	}
	defer cancel()

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(link),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return Page{}, fmt.Errorf("render page failed: %w", err)
	}

	return Page{Body: []byte(html), ContentType: "text/html; charset=utf-8"}, nil
}
