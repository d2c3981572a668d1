package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nimbusdocs/docsearch/internal/analytics"
	"github.com/nimbusdocs/docsearch/internal/content"
	"github.com/nimbusdocs/docsearch/internal/searcher"
	"github.com/nimbusdocs/docsearch/internal/searcher/cache"
	"github.com/nimbusdocs/docsearch/internal/searcher/handler"
	"github.com/nimbusdocs/docsearch/pkg/config"
	"github.com/nimbusdocs/docsearch/pkg/health"
	"github.com/nimbusdocs/docsearch/pkg/kafka"
	"github.com/nimbusdocs/docsearch/pkg/logger"
	"github.com/nimbusdocs/docsearch/pkg/metrics"
	"github.com/nimbusdocs/docsearch/pkg/middleware"
	"github.com/nimbusdocs/docsearch/pkg/postgres"
	pkgredis "github.com/nimbusdocs/docsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting docsearch", "port", cfg.Server.Port, "content_source", cfg.Content.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var source content.Source
	var pgClient *postgres.Client
	switch cfg.Content.Source {
	case "postgres":
		pgClient, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to CMS database", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()
		source = content.NewPostgresSource(pgClient, cfg.Content.LoadTimeout.Std())
	default:
		source = content.NewManifestSource(cfg.Content.ManifestPath)
	}
	slog.Info("content source initialized", "source", source.Name())

	var queryCache *cache.QueryCache
	var invalidator searcher.Invalidator
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		invalidator = queryCache
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL.Std())
	}

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	aggregator := analytics.NewAggregator()
	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	analyticsH := analytics.NewHandler(aggregator)

	indexProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer indexProducer.Close()

	svc := searcher.New(source, cfg.Search, invalidator, indexProducer, m)
	if err := svc.Rebuild(ctx); err != nil {
		slog.Error("initial index build failed", "error", err)
		os.Exit(1)
	}

	updateListener := content.NewUpdateListener(cfg.Kafka, cfg.Kafka.Topics.ContentUpdates, svc.Rebuild)

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		idx := svc.Index()
		if idx == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "index not built"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d entries", idx.Len())}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := handler.New(svc, queryCache, collector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/entries/{id}", h.Entry)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout.Std())(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return updateListener.Start(gctx)
	})
	g.Go(func() error {
		return analyticsConsumer.Start(gctx)
	})
	g.Go(func() error {
		return svc.StartRefreshing(gctx, cfg.Content.RefreshInterval.Std())
	})
	g.Go(func() error {
		slog.Info("docsearch listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("docsearch stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("docsearch stopped")
}
