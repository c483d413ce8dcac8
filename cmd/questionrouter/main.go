// Command questionrouter starts the federated question-answering
// aggregator HTTP service.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/howard-nolan/questionrouter/internal/auth"
	"github.com/howard-nolan/questionrouter/internal/cache"
	"github.com/howard-nolan/questionrouter/internal/config"
	"github.com/howard-nolan/questionrouter/internal/embed"
	"github.com/howard-nolan/questionrouter/internal/fanout"
	"github.com/howard-nolan/questionrouter/internal/httpclient"
	"github.com/howard-nolan/questionrouter/internal/metrics"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
	"github.com/howard-nolan/questionrouter/internal/provider/adapters"
	"github.com/howard-nolan/questionrouter/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("fatal startup error", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		return err
	}
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	var store cache.Store = cache.NewPostgresStore(pool).
		WithSimilarityThreshold(cfg.Embedding.SimilarityMin).
		WithANNCandidates(cfg.Embedding.ANNCandidates)

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		store = cache.NewRedisReadThrough(store, redisClient).WithTTL(cfg.Redis.TTL)
	}

	embedder := buildEmbedder(cfg.Embedding, logger)
	if closer, ok := embedder.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	client := httpclient.New(httpclient.Config{})
	registry, err := provider.NewRegistry(adapters.All(store, client)...)
	if err != nil {
		return err
	}

	m := metrics.New()
	m.MustRegister(prometheus.DefaultRegisterer)

	engine := fanout.New(registry, store, embedder,
		fanout.WithConcurrency(cfg.Fanout.Concurrency),
		fanout.WithLogger(logger),
		fanout.WithMetrics(m),
	)

	tokens := auth.NewInMemoryTokenStore(callersFromConfig(cfg))

	addr := ":" + portOrDefault(cfg.Server.Port)
	srv := server.New(addr, engine, tokens, logger,
		cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// buildEmbedder returns embed.NoneClient when no model is configured,
// matching the degraded exact-match-only mode of §9.
func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) embed.Client {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		logger.Warn("no embedding model configured, running in exact-match-only mode")
		return embed.NoneClient{}
	}

	client, err := embed.NewONNXClient(embed.ONNXConfig{
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		Dimension:     cfg.Dimension,
		MaxSeqLen:     cfg.MaxSeqLen,
	})
	if err != nil {
		logger.Warn("failed to load embedding model, falling back to exact-match-only mode", zap.Error(err))
		return embed.NoneClient{}
	}
	return client
}

func callersFromConfig(cfg *config.Config) map[string]model.Caller {
	providers := make([]model.Provider, 0, len(cfg.Providers))
	for name, p := range cfg.Providers {
		cfgMap := map[string]any{}
		if p.APIKey != "" {
			cfgMap["api_key"] = p.APIKey
		}
		if p.Token != "" {
			cfgMap["token"] = p.Token
		}
		providers = append(providers, model.Provider{Name: name, Priority: p.Priority, Config: cfgMap})
	}
	// A single, process-default caller backed by the config file's
	// provider list. Multi-tenant auth is out of scope (§6).
	return map[string]model.Caller{
		"default": {ID: "default", ProviderConfigs: providers},
	}
}

func portOrDefault(port int) string {
	if port == 0 {
		return "8080"
	}
	return strconv.Itoa(port)
}
