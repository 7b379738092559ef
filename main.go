package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"schedule-planner/core"
	"schedule-planner/pkg/resources"
	"schedule-planner/pkg/servers"
)

const (
	name    = "schedule-planner"
	version = "1.0"
)

func main() {
	app := &cli.App{
		Name:    name,
		Version: version,
		Usage:   "Calendar and assistant chat backend for the schedule planner.",
		Action:  serve,
		Commands: []*cli.Command{
			serveCommand(),
			askCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("application failed")
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the REST API used by the calendar widget and the chat panel.",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	// 1. Config (Logger base included)
	cfg := resources.LoadConfig(name, version)
	ctx := resources.CreateLogger(c.Context, cfg)

	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	// 2. Telemetry (traces/metrics/logs) and zerolog -> OTel logs bridge
	var closables []resources.Closable
	if cfg.OtelEnabled {
		shutdown, err := resources.CreateTelemetry(ctx, cfg)
		if err != nil {
			return fmt.Errorf("unable to setup otel telemetry: %w", err)
		}
		closables = append(closables, resources.ClosableFunc(func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
			defer cancel()

			if err := shutdown(shutdownCtx); err != nil {
				shutdownLogger.Error().Err(err).Msg("unable to flush telemetry")
			}
		}))

		log.Logger = log.Logger.Hook(resources.NewOtelLogHook(name, version))
		ctx = log.Logger.WithContext(ctx)
	}

	// 3. Wiring
	adapter, channel, err := buildCore(cfg)
	if err != nil {
		return fmt.Errorf("unable to load the initial schedule: %w", err)
	}
	handlers := core.NewHandlers(adapter, channel)

	// 4. Daemons/servers setup
	gin.SetMode(gin.ReleaseMode)

	restHandler := gin.New()
	restHandler.Use(gin.Recovery())
	restHandler.Use(otelgin.Middleware(name))
	restHandler.Use(resources.MeterMiddleware(name))
	restHandler.Use(resources.LoggerMiddleware())
	core.RegisterRoutes(restHandler, handlers)

	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 5. Daemons/servers lifecycle
	errChan := make(chan error, 16)

	baseName, baseServer := servers.BuildBaseServer(closables...)
	stopFn := servers.Start(ctx, baseName, baseServer, errChan)
	defer stopFn(ctx, 15*time.Second)

	debugName, debugServer := servers.BuildHttpServer("debug-server", net.JoinHostPort(cfg.HttpHost, cfg.DebugPort), debugHandler)
	stopFn = servers.Start(ctx, debugName, debugServer, errChan)
	defer stopFn(ctx, 15*time.Second)

	restName, restServer := servers.BuildHttpServer("rest-server", net.JoinHostPort(cfg.HttpHost, cfg.HttpPort), restHandler)
	stopFn = servers.Start(ctx, restName, restServer, errChan)
	defer stopFn(ctx, 15*time.Second)

	startupLogger.Info().Msg("application running")

	// 6. Wait for shutdown signal
	notifyCtx, cancelNotifyFn := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelNotifyFn()

	select {
	case <-notifyCtx.Done():
		startupLogger.Info().Msg("application shutdown requested")
	case runErr := <-errChan:
		shutdownLogger.Error().Err(runErr).Msg("runtime error")
		return runErr
	}

	return nil
}

func buildCore(cfg *resources.Config) (core.CalendarAdapter, core.Channel, error) {
	var seed []core.Event

	switch {
	case cfg.SeedFile != "":
		events, err := core.LoadSeedEvents(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		seed = events
	case cfg.SeedEvents:
		seed = core.DefaultSeedEvents()
	}

	store := core.NewStore(seed, core.ClockIdGenerator(time.Now))
	responder := core.NewHttpResponder(cfg.ResponderURL, resources.CreateResponderClient(cfg))

	channel := core.NewChannel(store, responder,
		core.WithFallbackDelay(cfg.FallbackDelay),
		core.WithPanelVisible(cfg.ChatPanelOpen),
	)

	return core.NewCalendarAdapter(store, nil), channel, nil
}
