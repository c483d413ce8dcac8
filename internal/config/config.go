// Package config handles loading and validating questionrouter
// configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for the questionrouter service.
type Config struct {
	Server    ServerConfig              `koanf:"server"`
	Database  DatabaseConfig            `koanf:"database"`
	Redis     RedisConfig               `koanf:"redis"`
	Embedding EmbeddingConfig           `koanf:"embedding"`
	Fanout    FanoutConfig              `koanf:"fanout"`
	Providers map[string]ProviderConfig `koanf:"providers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// DatabaseConfig configures the Postgres/pgvector connection pool
// backing internal/cache.
type DatabaseConfig struct {
	DSN      string `koanf:"dsn"`
	MaxConns int32  `koanf:"max_conns"`
	MinConns int32  `koanf:"min_conns"`
}

// RedisConfig configures the read-through cache layer in internal/cache.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

// EmbeddingConfig configures internal/embed. An empty ModelPath leaves
// the service in the degraded, exact-match-only mode of §9.
type EmbeddingConfig struct {
	ModelPath     string  `koanf:"model_path"`
	TokenizerPath string  `koanf:"tokenizer_path"`
	Dimension     int     `koanf:"dimension"`
	MaxSeqLen     int     `koanf:"max_seq_len"`
	SimilarityMin float64 `koanf:"similarity_min"`
	ANNCandidates int     `koanf:"ann_candidates"`
}

// FanoutConfig configures internal/fanout's dispatch concurrency.
type FanoutConfig struct {
	Concurrency int `koanf:"concurrency"`
}

// ProviderConfig holds the default settings for a single question-bank
// or LLM provider. internal/server does not merge it with a request's
// own per-provider config.
type ProviderConfig struct {
	APIKey   string   `koanf:"api_key"`
	Token    string   `koanf:"token"`
	BaseURL  string   `koanf:"base_url"`
	Models   []string `koanf:"models"`
	Priority int      `koanf:"priority"`
}

// Load reads configuration from a YAML file, layers environment variable
// overrides on top, and returns a fully populated Config.
func Load(path string) (*Config, error) {
	// Load .env file into the process environment (ignored if not present).
	_ = godotenv.Load()

	// Create a new koanf instance. The "." delimiter tells koanf how to
	// separate nested keys internally (e.g., "server.port").
	k := koanf.New(".")

	// Load the YAML config file. file.Provider reads the file,
	// yaml.Parser() decodes the YAML format into koanf's internal map.
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	// Layer environment variables on top. Any env var starting with
	// "QROUTER_" can override a config value. The callback transforms
	// the env var name into a koanf key path:
	//   QROUTER_DATABASE_DSN -> database.dsn
	if err := k.Load(env.Provider("QROUTER_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "QROUTER_")),
			"_", ".",
		)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR_NAME} placeholders in provider credentials and the
	// database DSN, since koanf doesn't do this automatically.
	for name, p := range cfg.Providers {
		p.APIKey = expandEnvPlaceholder(p.APIKey)
		p.Token = expandEnvPlaceholder(p.Token)
		cfg.Providers[name] = p
	}
	cfg.Database.DSN = expandEnvPlaceholder(cfg.Database.DSN)
	cfg.Redis.Password = expandEnvPlaceholder(cfg.Redis.Password)

	applyDefaults(&cfg)
	return &cfg, nil
}

func expandEnvPlaceholder(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		return os.Getenv(v[2 : len(v)-1])
	}
	return v
}

func applyDefaults(cfg *Config) {
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 30
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 10
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 60 * time.Second
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 1024
	}
	if cfg.Embedding.MaxSeqLen == 0 {
		cfg.Embedding.MaxSeqLen = 256
	}
	if cfg.Embedding.SimilarityMin == 0 {
		cfg.Embedding.SimilarityMin = 0.82
	}
	if cfg.Embedding.ANNCandidates == 0 {
		cfg.Embedding.ANNCandidates = 5
	}
	if cfg.Fanout.Concurrency == 0 {
		cfg.Fanout.Concurrency = 20
	}
}
