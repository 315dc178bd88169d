// Package main implements the entry point for the waverobot server. It
// loads a robot configuration, binds the example echo handlers, and
// serves the robot HTTP surface until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/waverobot/config"
	"github.com/c360/waverobot/events"
	"github.com/c360/waverobot/metric"
	"github.com/c360/waverobot/pkg/retry"
	"github.com/c360/waverobot/robot"
	"github.com/c360/waverobot/rpc"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "waverobot"
)

const (
	defaultListenAddr  = ":8080"
	defaultMetricsAddr = ":9090"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cliCfg.Validate {
		slog.Info("Configuration is valid", "config_path", cliCfg.ConfigPath)
		return nil
	}

	var metrics *metric.Set
	if cfg.Metrics.Enabled {
		metrics = metric.NewSet()
	}

	r, err := robot.New(*cfg,
		robot.WithLogger(logger),
		robot.WithMetrics(metrics),
		robot.WithFetcher(rpc.NewRetryingFetcher(rpc.NewHTTPFetcher(), retry.DefaultConfig())),
	)
	if err != nil {
		return fmt.Errorf("building robot: %w", err)
	}
	bindEchoHandlers(r)

	slog.Info("Starting wave robot",
		"robot", cfg.Robot.Address,
		"capability_version", r.CapabilityVersion(),
		"config_path", cliCfg.ConfigPath)

	return serve(cfg, r, metrics, cliCfg.ShutdownTimeout)
}

// bindEchoHandlers installs the example behavior: greet a wave when the
// robot joins it and acknowledge submitted blips.
func bindEchoHandlers(r *robot.Robot) {
	must(r.Handle(events.WaveletSelfAdded, func(ev *events.Event) error {
		_, err := ev.Wavelet().Reply("\nHi, I'm " + r.Name() + ". Say something and I'll echo it.")
		return err
	}))
	must(r.Handle(events.BlipSubmitted, func(ev *events.Event) error {
		b := ev.Blip()
		if b == nil || b.Creator() == ev.Wavelet().RobotAddress() {
			return nil
		}
		_, err := ev.Wavelet().Reply("\n" + strippedContent(b.Content()))
		return err
	}))
}

func strippedContent(content string) string {
	if len(content) > 0 && content[0] == '\n' {
		return content[1:]
	}
	return content
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// serve runs the robot HTTP server, and the metrics server when enabled,
// until a signal arrives, then shuts both down within the timeout.
func serve(cfg *config.Config, r *robot.Robot, metrics *metric.Set, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenAddr := cfg.ListenAddr
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}
	robotServer := &http.Server{
		Addr:    listenAddr,
		Handler: r.Router(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Robot HTTP server listening", "addr", listenAddr)
		if err := robotServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("robot server: %w", err)
		}
		return nil
	})

	var metricsServer *http.Server
	if metrics != nil {
		metricsAddr := cfg.Metrics.Addr
		if metricsAddr == "" {
			metricsAddr = defaultMetricsAddr
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{Addr: metricsAddr, Handler: mux}
		g.Go(func() error {
			slog.Info("Metrics server listening", "addr", metricsAddr)
			if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down", "timeout", shutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := robotServer.Shutdown(shutdownCtx)
		if metricsServer != nil {
			if merr := metricsServer.Shutdown(shutdownCtx); err == nil {
				err = merr
			}
		}
		return err
	})

	return g.Wait()
}
