package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/surajmandalcell/asrpro-sub001/internal/catalog"
	"github.com/surajmandalcell/asrpro-sub001/internal/config"
	"github.com/surajmandalcell/asrpro-sub001/internal/httpapi"
	"github.com/surajmandalcell/asrpro-sub001/internal/orchestrator"
	"github.com/surajmandalcell/asrpro-sub001/internal/runtime"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "asrprod",
		Short:         "Container orchestrator daemon for speech-recognition models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

// serveOptions carries the effective settings after merging defaults, the
// config file, and explicit flags (flags win).
type serveOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	cfg        config.Config
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{
		cfg: config.Config{
			Addr:                 envOr("ASRPRO_ADDR", ":8080"),
			DockerHost:           envOr("ASRPRO_DOCKER_HOST", ""),
			CatalogPath:          envOr("ASRPRO_CATALOG", ""),
			CapacityUnits:        envOrInt("ASRPRO_CAPACITY_UNITS", 8192),
			InactivityTimeoutSec: envOrInt("ASRPRO_INACTIVITY_TIMEOUT_SEC", 300),
			StartupTimeoutSec:    envOrInt("ASRPRO_STARTUP_TIMEOUT_SEC", 60),
			ReapIntervalSec:      envOrInt("ASRPRO_REAP_INTERVAL_SEC", 60),
		},
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", envOr("ASRPRO_CONFIG", ""), "Path to config file (.yaml/.json/.toml)")
	f.StringVar(&opts.logLevel, "log-level", envOr("ASRPRO_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	f.StringVar(&opts.logFormat, "log-format", envOr("ASRPRO_LOG_FORMAT", "console"), "Log format: console|json")
	f.StringVar(&opts.cfg.Addr, "addr", opts.cfg.Addr, "HTTP listen address, e.g. :8080")
	f.StringVar(&opts.cfg.DockerHost, "docker-host", opts.cfg.DockerHost, "Docker daemon address (empty = environment default)")
	f.StringVar(&opts.cfg.CatalogPath, "catalog", opts.cfg.CatalogPath, "YAML model catalog (empty = built-in whisper catalog)")
	f.IntVar(&opts.cfg.CapacityUnits, "capacity-units", opts.cfg.CapacityUnits, "Shared capacity pool in memory units")
	f.IntVar(&opts.cfg.InactivityTimeoutSec, "inactivity-timeout-sec", opts.cfg.InactivityTimeoutSec, "Idle seconds before an instance is reaped")
	f.IntVar(&opts.cfg.StartupTimeoutSec, "startup-timeout-sec", opts.cfg.StartupTimeoutSec, "Seconds to wait for an instance to become ready")
	f.IntVar(&opts.cfg.ReapIntervalSec, "reap-interval-sec", opts.cfg.ReapIntervalSec, "Seconds between reaper sweeps")
	f.StringVar(&corsOrigins, "cors-origins", envOr("ASRPRO_CORS_ORIGINS", ""), "Comma-separated CORS origins (empty disables CORS)")
	return cmd
}

var corsOrigins string

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	logger := newLogger(opts.logLevel, opts.logFormat)

	if opts.configPath != "" {
		fileCfg, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		opts.cfg = mergeConfig(fileCfg, opts.cfg, cmd)
	}
	cfg := opts.cfg

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	rt, err := runtime.NewDocker(cfg.DockerHost)
	if err != nil {
		return fmt.Errorf("docker client: %w", err)
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Ping(ctx); err != nil {
		// start anyway; /readyz reports the runtime state and a later start
		// attempt may find the daemon back
		logger.Warn().Err(err).Msg("container runtime not reachable at startup")
	}

	hub := httpapi.NewEventHub()
	orch := orchestrator.New(orchestrator.Config{
		Catalog:           cat,
		Runtime:           rt,
		CapacityUnits:     cfg.CapacityUnits,
		StartupTimeout:    time.Duration(cfg.StartupTimeoutSec) * time.Second,
		InactivityTimeout: time.Duration(cfg.InactivityTimeoutSec) * time.Second,
		Publisher:         hub,
		Logger:            logger.With().Str("component", "orchestrator").Logger(),
	})

	httpapi.SetLogger(logger.With().Str("component", "http").Logger())
	httpapi.SetBaseContext(ctx)
	httpapi.RegisterPoolMetrics(orch.Allocator())
	if origins := splitCSV(corsOrigins); len(origins) > 0 || cfg.CORSEnabled {
		if len(origins) == 0 {
			origins = cfg.CORSAllowedOrigins
		}
		httpapi.SetCORSOptions(true, origins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)
	}

	mux := httpapi.MetricsMiddleware(httpapi.NewMux(orch, hub))
	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go orch.RunReaper(ctx, time.Duration(cfg.ReapIntervalSec)*time.Second)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Int("models", cat.Len()).
			Int("capacity_units", cfg.CapacityUnits).Msg("asrprod listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	orch.StopAll(shutdownCtx)
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var w = os.Stderr
	if format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// mergeConfig overlays file values onto the effective config, keeping any
// value the operator set explicitly on the command line.
func mergeConfig(file, eff config.Config, cmd *cobra.Command) config.Config {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	out := eff
	if file.Addr != "" && !changed("addr") {
		out.Addr = file.Addr
	}
	if file.DockerHost != "" && !changed("docker-host") {
		out.DockerHost = file.DockerHost
	}
	if file.CatalogPath != "" && !changed("catalog") {
		out.CatalogPath = file.CatalogPath
	}
	if file.CapacityUnits > 0 && !changed("capacity-units") {
		out.CapacityUnits = file.CapacityUnits
	}
	if file.InactivityTimeoutSec > 0 && !changed("inactivity-timeout-sec") {
		out.InactivityTimeoutSec = file.InactivityTimeoutSec
	}
	if file.StartupTimeoutSec > 0 && !changed("startup-timeout-sec") {
		out.StartupTimeoutSec = file.StartupTimeoutSec
	}
	if file.ReapIntervalSec > 0 && !changed("reap-interval-sec") {
		out.ReapIntervalSec = file.ReapIntervalSec
	}
	out.CORSEnabled = file.CORSEnabled || eff.CORSEnabled
	if len(file.CORSAllowedOrigins) > 0 {
		out.CORSAllowedOrigins = file.CORSAllowedOrigins
	}
	if len(file.CORSAllowedMethods) > 0 {
		out.CORSAllowedMethods = file.CORSAllowedMethods
	}
	if len(file.CORSAllowedHeaders) > 0 {
		out.CORSAllowedHeaders = file.CORSAllowedHeaders
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
