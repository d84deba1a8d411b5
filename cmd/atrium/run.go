package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"stencil-hq/atrium/pkg/cli"
	"stencil-hq/atrium/pkg/config"
	"stencil-hq/atrium/pkg/server"
	"stencil-hq/atrium/pkg/telemetry/logging"
	"stencil-hq/atrium/pkg/telemetry/metrics"
	"stencil-hq/atrium/pkg/template/cache"
	"stencil-hq/atrium/pkg/template/conditions"
	"stencil-hq/atrium/pkg/template/engine"
	"stencil-hq/atrium/pkg/template/store"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Atrium resolution server",
	Long: `Start the Atrium resolution server with the specified configuration.

The server exposes the template management API and the resolution
endpoints on the configured address.

Examples:
  # Start with default config
  atrium run

  # Start with custom config
  atrium run --config /etc/atrium/config.yaml

  # Override listen address
  atrium run --listen 0.0.0.0:8080

  # Validate config without starting server
  atrium run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.Addr = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Atrium v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Template store
	st, watcher, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()
	if watcher != nil {
		defer watcher.Stop()
	}
	fmt.Printf("✓ Template store initialized (%s backend)\n", cfg.Store.Backend)

	// Condition registry and resolver
	registryOpts := []conditions.Option{conditions.WithLogger(logger)}
	if cfg.Commerce.Enabled {
		registryOpts = append(registryOpts, conditions.WithCommerce())
	}
	registry := conditions.NewRegistry(registryOpts...)
	evaluator := engine.NewEvaluator(registry, logger)

	resolverOpts := []engine.ResolverOption{
		engine.WithLogger(logger),
		engine.WithConfig(&engine.Config{
			MaxTemplates:             cfg.Engine.MaxTemplates,
			MaxConditionsPerTemplate: cfg.Engine.MaxConditionsPerTemplate,
		}),
	}

	var promRegistry *prometheus.Registry
	if cfg.Metrics.Enabled {
		promRegistry = prometheus.NewRegistry()
		m := metrics.NewResolutionMetrics(&metrics.Config{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: cfg.Metrics.Subsystem,
		}, promRegistry)
		resolverOpts = append(resolverOpts, engine.WithObserver(m))
	}

	resolver := engine.NewResolver(st, evaluator, resolverOpts...)
	fmt.Printf("✓ Resolver initialized (%d condition kinds)\n", len(registry.Kinds()))

	// Optional Redis decision cache
	var serverResolver server.Resolver = resolver
	var flusher *cache.Flusher
	if cfg.Cache.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.Addr, err)
		}
		defer client.Close()

		decisionCache := cache.New(client, resolver, &cache.Config{TTL: cfg.Cache.TTL}, logger)
		serverResolver = decisionCache

		if cfg.Cache.FlushSchedule != "" {
			flusher = cache.NewFlusher(decisionCache, cfg.Cache.FlushSchedule, logger)
			if err := flusher.Start(ctx); err != nil {
				slog.Warn("failed to start cache flusher", "error", err)
			} else {
				defer flusher.Stop()
			}
		}
		fmt.Printf("✓ Decision cache enabled (redis %s, ttl %s)\n", cfg.Cache.Addr, cfg.Cache.TTL)
	}

	// HTTP server
	var serverOpts []server.Option
	if promRegistry != nil {
		serverOpts = append(serverOpts, server.WithMetricsRegistry(promRegistry))
	}
	srv := server.New(&cfg.Server, st, serverResolver, logger, serverOpts...)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "address", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.Addr)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.Addr)
	if promRegistry != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.Addr)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return err
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// buildStore constructs the configured store backend. For the file backend
// it also starts the fsnotify watcher when watching is enabled; the caller
// owns the returned watcher's shutdown.
func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, *store.Watcher, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil, nil

	case config.BackendSQLite:
		st, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil

	case config.BackendFile:
		source, err := store.NewFileSource(cfg.Store.Path, logger)
		if err != nil {
			return nil, nil, err
		}

		var watcher *store.Watcher
		if cfg.Store.Watch {
			watcher, err = store.NewWatcher(source, store.DefaultWatcherConfig(), logger)
			if err != nil {
				return nil, nil, err
			}
			if err := watcher.Start(ctx); err != nil {
				return nil, nil, err
			}
		}
		return store.NewReadOnlyStore(source), watcher, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}
