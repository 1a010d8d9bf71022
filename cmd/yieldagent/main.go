package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	yieldagent "github.com/vitwit/yieldagent"
	"github.com/vitwit/yieldagent/logger"
	"github.com/vitwit/yieldagent/metrics"
	"github.com/vitwit/yieldagent/types"
	"github.com/vitwit/yieldagent/utils"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "yieldagent: %v\n", err)
		os.Exit(1)
	}
}

// flagValues holds the command line. Empty strings mean "keep the config value".
type flagValues struct {
	configPath  string
	addr        string
	metricsAddr string
	logLevel    string
}

func parseFlags(args []string) (*flagValues, error) {
	fv := &flagValues{}
	fs := pflag.NewFlagSet("yieldagent", pflag.ContinueOnError)
	fs.StringVar(&fv.configPath, "config", "", "path to a JSON config file overlaid on the built-in defaults")
	fs.StringVar(&fv.addr, "addr", "", "listen address (overrides config)")
	fs.StringVar(&fv.metricsAddr, "metrics-addr", "", "Prometheus listen address, enables metrics (overrides config)")
	fs.StringVar(&fv.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fv, nil
}

// apply overlays the non-empty flags on cfg. Flags win over the config file.
func (fv *flagValues) apply(cfg *types.AgentConfig) {
	if fv.addr != "" {
		cfg.ListenAddr = fv.addr
	}
	if fv.metricsAddr != "" {
		cfg.MetricsAddr = fv.metricsAddr
		cfg.EnableMetrics = true
	}
	if fv.logLevel != "" {
		cfg.LogLevel = fv.logLevel
	}
}

// buildConfig resolves defaults, then the config file, then flags, and
// validates the result.
func buildConfig(args []string) (*types.AgentConfig, error) {
	fv, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(fv.configPath)
	if err != nil {
		return nil, err
	}
	fv.apply(cfg)

	if err := utils.ValidateAgentConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(args []string) error {
	cfg, err := buildConfig(args)
	if err != nil {
		return err
	}

	log, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	opts := []yieldagent.Option{yieldagent.WithLogger(log)}

	var metricsServer *http.Server
	if cfg.EnableMetrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, yieldagent.WithMetrics(metrics.NewPrometheusRecorder(registry)))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	agent, err := yieldagent.New(cfg, opts...)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           agent,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go serve(server, errCh)
	if metricsServer != nil {
		go serve(metricsServer, errCh)
		log.Info("metrics listener started", map[string]any{"addr": cfg.MetricsAddr})
	}

	log.Info("yield agent listening", map[string]any{
		"addr":    cfg.ListenAddr,
		"network": cfg.Network.String(),
		"pay_to":  cfg.PaymentAddress,
		"amount":  cfg.PaymentAmount,
		"version": yieldagent.Version,
	})

	select {
	case <-ctx.Done():
		log.Info("shutting down", nil)
	case err := <-errCh:
		log.Error("listener failed", map[string]any{"error": err.Error()})
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGraceSeconds)*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics shutdown incomplete", map[string]any{"error": err.Error()})
		}
	}
	return server.Shutdown(shutdownCtx)
}

func serve(server *http.Server, errCh chan<- error) {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- fmt.Errorf("%s: %w", server.Addr, err)
	}
}

func loadConfig(path string) (*types.AgentConfig, error) {
	if path == "" {
		return types.DefaultAgentConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return utils.ParseAgentConfig(data)
}
