package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MarkoPoloResearchLab/hotel/internal/console"
	"github.com/MarkoPoloResearchLab/hotel/internal/httpapi"
	"github.com/MarkoPoloResearchLab/hotel/internal/oplog"
	"github.com/MarkoPoloResearchLab/hotel/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/hotel/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	envPrefix = "HOTEL"

	flagStore          = "store"
	flagLogFormat      = "log-format"
	flagSeed           = "seed"
	flagListenAddr     = "listen-addr"
	flagAllowedOrigins = "allowed-origins"
	flagRequestTimeout = "request-timeout"

	configKeyStore          = "store"
	configKeyLogFormat      = "log_format"
	configKeySeed           = "seed"
	configKeyListenAddr     = "listen_addr"
	configKeyAllowedOrigins = "allowed_origins"
	configKeyRequestTimeout = "request_timeout"

	storeMemory      = "memory"
	storeSQLite      = "sqlite"
	logFormatJSON    = "json"
	logFormatConsole = "console"

	defaultListenAddr     = ":8080"
	defaultAllowedOrigins = "http://localhost:8000"
	defaultRequestTimeout = 3 * time.Second
)

type runtimeConfig struct {
	Store          string
	LogFormat      string
	Seed           bool
	ListenAddr     string
	AllowedOrigins string
	RequestTimeout time.Duration
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hoteld: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	settings := newSettings()
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "hoteld",
		Short:         "Hotel rooms, accounts, and reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, settings, cfg)
		},
	}

	cmd.PersistentFlags().String(flagStore, storeMemory, "storage backend: memory or sqlite (in-memory database)")
	cmd.PersistentFlags().String(flagLogFormat, logFormatJSON, "log encoding: json or console")
	cmd.PersistentFlags().Bool(flagSeed, false, "register the demonstration rooms and accounts on start")

	cmd.AddCommand(newServeCommand(cfg), newMenuCommand(cfg), newScenarioCommand(cfg))
	return cmd
}

func newServeCommand(cfg *runtimeConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withRuntime(ctx, cfg, func(ctx context.Context, service *booking.Service, logger *zap.Logger) error {
				return httpapi.Run(ctx, httpapi.Config{
					ListenAddr:     cfg.ListenAddr,
					AllowedOrigins: httpapi.ParseAllowedOrigins(cfg.AllowedOrigins),
					RequestTimeout: cfg.RequestTimeout,
				}, service, logger)
			})
		},
	}
	cmd.Flags().String(flagListenAddr, defaultListenAddr, "HTTP listen address")
	cmd.Flags().String(flagAllowedOrigins, defaultAllowedOrigins, "comma-separated CORS origins")
	cmd.Flags().Duration(flagRequestTimeout, defaultRequestTimeout, "per-request timeout")
	return cmd
}

func newMenuCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive text menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withRuntime(ctx, cfg, func(ctx context.Context, service *booking.Service, _ *zap.Logger) error {
				return console.New(service, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
			})
		},
	}
}

func newScenarioCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Run the demonstration scenario and print the final reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The scenario seeds its own data.
			scenarioCfg := *cfg
			scenarioCfg.Seed = false
			return withRuntime(cmd.Context(), &scenarioCfg, func(ctx context.Context, service *booking.Service, _ *zap.Logger) error {
				_, err := console.RunScenario(ctx, service, cmd.OutOrStdout())
				return err
			})
		},
	}
}

func newSettings() *viper.Viper {
	return viper.New()
}

func loadConfig(cmd *cobra.Command, settings *viper.Viper, cfg *runtimeConfig) error {
	settings.SetEnvPrefix(envPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	bindings := map[string]string{
		configKeyStore:          flagStore,
		configKeyLogFormat:      flagLogFormat,
		configKeySeed:           flagSeed,
		configKeyListenAddr:     flagListenAddr,
		configKeyAllowedOrigins: flagAllowedOrigins,
		configKeyRequestTimeout: flagRequestTimeout,
	}
	for key, flagName := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := settings.BindPFlag(key, flag); err != nil {
			return err
		}
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(settings.GetString(configKeyStore)))
	if cfg.Store == "" {
		cfg.Store = storeMemory
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(settings.GetString(configKeyLogFormat)))
	if cfg.LogFormat == "" {
		cfg.LogFormat = logFormatJSON
	}
	cfg.Seed = settings.GetBool(configKeySeed)
	cfg.ListenAddr = settings.GetString(configKeyListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	cfg.AllowedOrigins = settings.GetString(configKeyAllowedOrigins)
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = defaultAllowedOrigins
	}
	cfg.RequestTimeout = settings.GetDuration(configKeyRequestTimeout)
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	if cfg.Store != storeMemory && cfg.Store != storeSQLite {
		return fmt.Errorf("unsupported store %q", cfg.Store)
	}
	if cfg.LogFormat != logFormatJSON && cfg.LogFormat != logFormatConsole {
		return fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}
	return nil
}

type runtimeFunc func(ctx context.Context, service *booking.Service, logger *zap.Logger) error

func withRuntime(ctx context.Context, cfg *runtimeConfig, run runtimeFunc) error {
	logger, err := newLogger(cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, cleanup, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("store open: %w", err)
	}
	defer func() {
		if cleanupErr := cleanup(); cleanupErr != nil {
			logger.Warn("store close error", zap.Error(cleanupErr))
		}
	}()

	service, err := booking.NewService(store, booking.WithOperationLogger(oplog.New(logger)))
	if err != nil {
		return fmt.Errorf("booking service init: %w", err)
	}
	if cfg.Seed {
		if err := console.Seed(ctx, service); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("demonstration data seeded")
	}
	return run(ctx, service, logger)
}

func newLogger(format string) (*zap.Logger, error) {
	if format == logFormatConsole {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(ctx context.Context, kind string) (booking.Store, func() error, error) {
	switch kind {
	case storeMemory:
		return memstore.New(), func() error { return nil }, nil
	case storeSQLite:
		db, err := gormstore.OpenInMemory(ctx)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return gormstore.New(db), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store %q", kind)
	}
}
