package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	redisAdapter "github.com/espalier-dev/espalier/pkg/adapters/redis"
	"github.com/espalier-dev/espalier/pkg/adapters/yamlcat"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/espalier-dev/espalier/pkg/session"
)

// Options carries the flag values shared by the CLI commands.
type Options struct {
	CatalogDir string
	ConfigPath string
	Store      string // "memory" or "redis"
	RedisAddr  string
	Metrics    bool
	Debug      bool
}

// Runtime bundles everything a command needs to run turns.
type Runtime struct {
	Engine  *espalier.Engine
	Manager *session.Manager
	Catalog *yamlcat.Catalog
	Logger  *slog.Logger
}

// Build initializes the engine, session manager and catalogs with standard
// CLI conventions.
func Build(opts Options) (*Runtime, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	catalog, err := yamlcat.Load(opts.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogs from %s: %w", opts.CatalogDir, err)
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	engineOpts := []espalier.Option{
		espalier.WithConfig(cfg),
		espalier.WithLogger(logger),
	}
	if opts.Metrics {
		engineOpts = append(engineOpts, espalier.WithMetrics(
			observability.NewMetrics(prometheus.DefaultRegisterer),
		))
	}

	engine, err := espalier.New(catalog, catalog, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	manager, err := buildManager(opts, logger)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Engine:  engine,
		Manager: manager,
		Catalog: catalog,
		Logger:  logger,
	}, nil
}

// buildManager selects the session backend from flags.
func buildManager(opts Options, logger *slog.Logger) (*session.Manager, error) {
	switch opts.Store {
	case "", "memory":
		return session.NewManager(memory.NewStore(), session.WithLogger(logger)), nil
	case "redis":
		client := backend.NewClient(&backend.Options{Addr: opts.RedisAddr})
		store := redisAdapter.NewFromClient(client)
		locker := redisAdapter.NewLocker(client, "espalier:session:")
		return session.NewManager(store,
			session.WithLocker(locker),
			session.WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want memory or redis)", opts.Store)
	}
}

// loadConfig reads engine configuration from a YAML file, falling back to
// defaults when no path is given. Validation happens in espalier.New.
func loadConfig(path string) (espalier.Config, error) {
	cfg := espalier.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
