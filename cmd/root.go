package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/nulzo/llm-relay/internal/analytics"
	"github.com/nulzo/llm-relay/internal/cli"
	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/gateway"
	"github.com/nulzo/llm-relay/internal/llm"
	_ "github.com/nulzo/llm-relay/internal/llm/builtin"
	"github.com/nulzo/llm-relay/internal/platform/logger"
	"github.com/nulzo/llm-relay/internal/platform/otel"
	"github.com/nulzo/llm-relay/internal/server"
	"github.com/nulzo/llm-relay/internal/status"
	"github.com/nulzo/llm-relay/internal/store"
	"github.com/nulzo/llm-relay/internal/store/cache"
	"github.com/nulzo/llm-relay/internal/store/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCommand builds the llm-relay CLI. Running it without a subcommand serves.
func NewRootCommand(ctx context.Context) *cobra.Command {
	var (
		configPath string
		port       int
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat relay HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := os.Setenv("CONFIG_FILE", configPath); err != nil {
					return err
				}
			}
			if port != 0 {
				if port < 0 || port > 65535 {
					return fmt.Errorf("port override %d must be a valid TCP port", port)
				}
				if err := os.Setenv("SERVER_PORT", strconv.Itoa(port)); err != nil {
					return err
				}
			}
			return serve(ctx)
		},
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")

	var checkUpdates bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), AppVersion)
			if !checkUpdates {
				return nil
			}
			latest, outdated, err := CheckForUpdates(cmd.Context(), http.DefaultClient, config.DefaultUpdateRepo)
			if err != nil {
				return err
			}
			if outdated {
				fmt.Fprintf(cmd.OutOrStdout(), "%s a newer release is available: %s\n", cli.WarningSign(), latest)
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVar(&checkUpdates, "check", false, "compare with the latest GitHub release")

	rootCmd := &cobra.Command{
		Use:           "llm-relay",
		Short:         "A single /chat endpoint in front of many LLM providers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd, versionCmd)
	return rootCmd
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	root := NewRootCommand(ctx)
	return root.ExecuteContext(ctx)
}

func serve(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cli.Enabled(),
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	})
	log := logger.Get()
	defer logger.Sync()

	printBanner(cfg)

	if cfg.Update.Check {
		go func() {
			latest, outdated, err := CheckForUpdates(ctx, http.DefaultClient, cfg.Update.Repo)
			if err != nil {
				log.Debug("Update check failed", zap.Error(err))
				return
			}
			if outdated {
				log.Warn("A newer release is available", zap.String("current", AppVersion), zap.String("latest", latest))
			}
		}()
	}

	if cfg.Tracing.Enabled {
		shutdown, err := otel.InitTracer(cfg.Tracing.ServiceName, cfg.Server.Env, log, os.Stdout)
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("Tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	var probeCache cache.CacheService = cache.NewMemoryCache()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		defer func() { _ = client.Close() }()
		probeCache = cache.NewRedisCache(client, "llm-relay:")
		log.Info("Using redis cache", zap.String("addr", cfg.Redis.Addr))
	}

	var (
		repo     store.Repository
		ingestor = analytics.NewNoopIngestor()
	)
	if cfg.Database.Enabled {
		repo, err = sqlite.NewSQLiteStorage(cfg.Database.Path, log)
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()

		ingestor = analytics.NewIngestor(log, repo)
		ingestor.Start(ctx)
		defer ingestor.Stop()
	}

	registry, err := gateway.BootstrapProviders(cfg.Providers, cfg.Server.FallbackProvider, llm.EnvSecrets{}, log)
	if err != nil {
		return err
	}

	// per-call deadlines come from request contexts
	httpClient := &http.Client{}

	deps := server.Deps{
		Chat: gateway.NewService(log, registry, httpClient, ingestor, gateway.Options{
			UpstreamTimeout: cfg.Server.UpstreamTimeout,
		}),
		Status: status.NewReporter(registry, httpClient, probeCache, log, status.Options{
			Environment:      cfg.Server.Env,
			LiveProbe:        cfg.Status.LiveProbe,
			ProbeTimeout:     cfg.Status.ProbeTimeout,
			ProbeConcurrency: cfg.Status.ProbeConcurrency,
			CacheTTL:         cfg.Status.CacheTTL,
		}),
		Analytics: analytics.NewService(repo),
	}

	if cfg.Server.DebugEnabled {
		log.Warn("Debug endpoint enabled; it reports masked credential previews")
	}

	return server.New(cfg, log, deps).Run(ctx)
}

func printBanner(cfg *config.Config) {
	banner := cli.Gradient("llm-relay "+AppVersion, cli.RelayTeal, cli.RelayAmber)
	fmt.Printf("\n  %s\n  %s listening on :%s (%s)\n\n", cli.Style(banner, cli.Bold), cli.Arrow(), cfg.Server.Port, cfg.Server.Env)
}
