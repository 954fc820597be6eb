package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ganiszulfa/okblog/search/cmd/internal/cache"
	"github.com/ganiszulfa/okblog/search/cmd/internal/config"
	"github.com/ganiszulfa/okblog/search/cmd/internal/handlers"
	"github.com/ganiszulfa/okblog/search/cmd/internal/logger"
	"github.com/ganiszulfa/okblog/search/cmd/internal/logsink"
	"github.com/ganiszulfa/okblog/search/cmd/internal/metrics"
	"github.com/ganiszulfa/okblog/search/cmd/internal/search"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet.
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Initialize Elasticsearch
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	esClient, err := search.Connect(startCtx, cfg)
	cancel()
	if err != nil {
		log.Fatal("Failed to connect to Elasticsearch",
			zap.String("url", cfg.ElasticsearchURL),
			zap.Error(err),
		)
	}
	log.Info("Connected to Elasticsearch", zap.String("url", cfg.ElasticsearchURL))

	var sink logsink.Sink = logsink.Nop{}
	var elasticSink *logsink.Elastic
	if cfg.LoggingEnabled {
		elasticSink = logsink.NewElastic(esClient, cfg.LoggingIndex, cfg.LogSinkQueueSize, os.Stderr, m)
		sink = elasticSink
	}
	log = logger.WithSink(log, sink)
	log.Info("Elasticsearch logging configured",
		zap.Bool("enabled", cfg.LoggingEnabled),
		zap.String("index", cfg.LoggingIndex),
	)

	// Initialize Redis when a cache is configured
	var searchCache search.Cache
	if cfg.CacheEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		rc := cache.NewRedisCache(rdb, cfg.ElasticsearchIndex, cfg.QueryMode, cfg.CacheTTL)
		startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		err := rc.Ping(startCtx)
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		searchCache = rc
		log.Info("Search cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	}

	es := search.NewElasticSearch(esClient, cfg.ElasticsearchIndex, search.QueryMode(cfg.QueryMode), cfg.SearchTimeout, m)
	svc := search.NewService(es, searchCache, log, m)
	handler := handlers.NewSearchHandler(svc, log, cfg.SurfaceErrors)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(handler, log, m, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Search service starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down search service")
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	if elasticSink != nil {
		if err := elasticSink.Close(shutdownCtx); err != nil {
			log.Warn("Log sink did not drain", zap.Error(err))
		}
	}

	log.Info("Search service stopped")
}
