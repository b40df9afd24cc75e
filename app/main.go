package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Qwedfgr/jaundice-rate-dvmn/app/api"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/article"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/cfg"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/charged"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/feed"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/morph"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/sanitize"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if err := run(appCfg); err != nil {
		slog.Error("Jaundice Rate stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Jaundice Rate", "version", appCfg.Version, "language", appCfg.Language)

	stemmer, err := morph.NewStemmer(appCfg.Language)
	if err != nil {
		return fmt.Errorf("failed to create normalizer: %w", err)
	}

	chargedWords, err := charged.LoadDir(appCfg.ChargedDictDir, stemmer)
	if err != nil {
		return fmt.Errorf("failed to load charged words: %w", err)
	}
	slog.Info("Charged words loaded", "dir", appCfg.ChargedDictDir, "count", chargedWords.Len())

	registry, err := sanitize.BuildRegistry(appCfg.SitesFile, appCfg.ReadabilityFallback)
	if err != nil {
		return fmt.Errorf("failed to build site adapters: %w", err)
	}
	slog.Info("Site adapters ready", "hosts", registry.Hosts(), "readability_fallback", appCfg.ReadabilityFallback)

	pool := tasks.NewPool(appCfg.WorkerCount)
	pool.Start()
	defer pool.Stop()

	fetcher := article.NewFetcher(newHTTPClient(), appCfg.UserAgent, appCfg.MaxBodyBytes)
	pipeline := article.NewPipeline(article.PipelineDeps{
		Fetcher:        fetcher,
		Sanitizer:      registry,
		Tokenizer:      article.NewTokenizer(stemmer),
		Charged:        chargedWords,
		Runner:         pool,
		FetchTimeout:   appCfg.FetchTimeout,
		ProcessTimeout: appCfg.ProcessTimeout,
	})
	analyzer := article.NewAnalyzer(pipeline, appCfg.MaxURLs)

	if len(appCfg.URLs) > 0 {
		return scoreOnce(analyzer, appCfg.URLs)
	}

	handler := api.NewHandler(analyzer, fetcher, feed.NewParser(), appCfg.FetchTimeout, api.ServiceInfo{
		Version:      appCfg.Version,
		ChargedWords: chargedWords.Len(),
		Sites:        registry.Hosts(),
	})

	return serve(api.NewServer(handler, appCfg.APIAccessKey), appCfg)
}

// scoreOnce scores the command-line URLs and prints the outcomes as JSON.
func scoreOnce(analyzer *article.Analyzer, urls []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, err := analyzer.ProcessBatch(ctx, urls, article.Options{})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(outcomes)
}

func serve(handler http.Handler, appCfg *cfg.Cfg) error {
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "port", appCfg.Port, "max_urls", appCfg.MaxURLs)
		if appCfg.APIAccessKey == "" {
			slog.Warn("API_ACCESS_KEY not set, /api endpoints are open")
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("Jaundice Rate shutdown complete")
	return nil
}

// newHTTPClient returns the client shared by all article downloads. Deadlines
// come from the request context, so the client has no global timeout.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}
