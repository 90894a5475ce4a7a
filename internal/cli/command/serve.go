package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rest0-go/internal/host"
	"github.com/yndnr/rest0-go/internal/infra/buildinfo"
	"github.com/yndnr/rest0-go/internal/infra/shutdown"
	"github.com/yndnr/rest0-go/internal/server/apiservice"
	"github.com/yndnr/rest0-go/internal/server/config"
	"github.com/yndnr/rest0-go/internal/server/httpserver"
	"github.com/yndnr/rest0-go/internal/server/httpserver/handler"
	"github.com/yndnr/rest0-go/internal/telemetry/metric"
)

// ServeCommand returns the serve subcommand.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the host until SIGINT or SIGTERM (default)",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	cfg, loader, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	initLogger(c, cfg)
	log := slog.Default()

	info := buildinfo.Get()
	log.Info("starting rest0-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", flags.ConfigFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()
	metrics.SetBuildInfo(info.Version, info.Commit, info.GoVersion)

	svc := apiservice.New()

	opts := []host.Option{
		host.WithValues(host.ValuesFromMap(loader.Section("handler"))),
		host.WithLogger(log),
		host.WithMetrics(metrics),
	}
	if cfg.Server.TLSCertFile != "" {
		opts = append(opts, host.WithTLSFiles(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile))
	}
	h := host.New(svc, opts...)

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)
	shutdownHandler.OnReload(func() {
		log.Info("SIGHUP received, refreshing configuration")
		svc.Refresh()
	})

	// Hooks run in reverse order: the host drains before the side listener
	// stops answering /ready.
	if cfg.Metrics.Enabled {
		side, err := startSideServer(cfg, h, svc, metrics, log)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics listener")
			return side.Shutdown(ctx)
		})
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down host")
		return h.Shutdown(ctx)
	})

	runErr := make(chan error, 1)
	go func() {
		err := h.Run(c.Context, cfg.Server.Prefixes...)
		runErr <- err
		shutdownHandler.Trigger()
	}()

	go func() {
		select {
		case <-h.Serving():
			log.Info("host serving, press Ctrl+C to stop",
				"prefixes", h.Prefixes(),
				"addrs", fmt.Sprint(h.Addrs()))
		case <-shutdownHandler.Done():
		}
	}()

	waitErr := shutdownHandler.Wait(c.Context)
	if err := <-runErr; err != nil {
		return err
	}
	if waitErr != nil {
		log.Error("shutdown error", "error", waitErr)
		return waitErr
	}

	log.Info("server stopped gracefully")
	return nil
}

func startSideServer(cfg *config.ServerConfig, h *host.Host, svc *apiservice.Service, metrics *metric.Registry, log *slog.Logger) (*httpserver.Server, error) {
	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Logger = log
	routerCfg.AuthTokenHash = cfg.Metrics.AuthTokenHash
	routerCfg.Handler = handler.Config{
		Ready:    func() bool { return h.State() == host.StateServing },
		Snapshot: svc.Current,
		Metrics:  metrics,
	}

	side := httpserver.New(cfg.Metrics.Addr, httpserver.NewRouter(routerCfg))
	if err := side.Listen(); err != nil {
		return nil, err
	}
	go func() {
		if err := side.Serve(); err != nil {
			log.Error("metrics listener error", "error", err)
		}
	}()
	log.Info("metrics listener started", "addr", side.Addr().String())
	return side, nil
}
