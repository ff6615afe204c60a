package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cliffyan/go-meta-search/internal/aggregate"
	"github.com/cliffyan/go-meta-search/internal/config"
	"github.com/cliffyan/go-meta-search/internal/engine"
	"github.com/cliffyan/go-meta-search/internal/fetch"
	"github.com/cliffyan/go-meta-search/internal/server"
	"github.com/cliffyan/go-meta-search/internal/snippet"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("🔍 Starting go-meta-search server...")

	cfg := config.Load()

	engineManager := engine.NewManager(cfg)

	fetchOpts := fetch.Options{
		ProxyURL:  cfg.ProxyURL(),
		Timeout:   cfg.FetchTimeout(),
		UserAgent: cfg.Fetch.UserAgent,
		MaxBytes:  cfg.Fetch.MaxBytes,
	}
	var fetcher fetch.Fetcher = fetch.NewHTTPFetcher(fetchOpts)
	if cfg.Fetch.UseBrowser {
		// 浏览器渲染失败时退回 HTTP 抓取
		fetcher = fetch.FallbackFetcher{
			Primary:   fetch.NewBrowserFetcher(fetch.GetBrowserManager(), fetchOpts, cfg.Browser.Headless),
			Secondary: fetcher,
		}
		defer fetch.GetBrowserManager().Close()
	}

	agg := aggregate.New(engineManager, fetcher, snippet.Options{
		ContextWidth: cfg.Snippet.ContextWidth,
		MaxMatches:   cfg.Snippet.MaxMatches,
		ScoreEpsilon: cfg.Snippet.ScoreEpsilon,
	}, cfg.Fetch.Concurrency)

	srv := server.New(cfg, agg, engineManager.GetEngineNames())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
