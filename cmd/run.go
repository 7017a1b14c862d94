// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/open-instrumentation/gometrics/config"
	"github.com/open-instrumentation/gometrics/logging"
	"github.com/open-instrumentation/gometrics/metrics"
	prompub "github.com/open-instrumentation/gometrics/publish/prometheus"
)

type runParams struct {
	addr       string
	configFile string
	logLevel   string
}

func init() {
	params := runParams{}

	runCommand := &cobra.Command{
		Use:   "run",
		Short: "Run the demo workload and serve its metrics",
		Long: `Starts a synthetic instrumented workload and serves the collected
metrics over HTTP: the native text exposition on /metrics and the
client_golang bridge on /metrics/prometheus.`,
		RunE: func(*cobra.Command, []string) error {
			return runDaemon(params)
		},
	}

	runCommand.Flags().StringVarP(&params.addr, "addr", "a", "", "set the listen address (overrides config)")
	runCommand.Flags().StringVarP(&params.configFile, "config-file", "c", "", "set path of configuration file")
	runCommand.Flags().StringVarP(&params.logLevel, "log-level", "l", "", "set log level (overrides config)")
	RootCommand.AddCommand(runCommand)
}

func runDaemon(params runParams) error {
	cfg := &config.Config{}
	if params.configFile != "" {
		raw, err := os.ReadFile(params.configFile)
		if err != nil {
			return err
		}
		cfg, err = config.ParseConfig(raw)
		if err != nil {
			return err
		}
	} else {
		parsed, err := config.ParseConfig(nil)
		if err != nil {
			return err
		}
		cfg = parsed
	}
	if params.addr != "" {
		cfg.Addr = params.addr
	}
	if params.logLevel != "" {
		cfg.LogLevel = params.logLevel
	}

	logger := logging.New()
	logger.SetLevel(logLevel(cfg.LogLevel))

	registry := metrics.New(metrics.WithLogger(logger))
	opts, err := cfg.PublishOptions()
	if err != nil {
		return err
	}
	registry.SetPublishOptions(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := startWorkload(ctx, registry); err != nil {
		return err
	}

	textPublisher := prompub.NewPublisher(registry)
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(prompub.NewCollector(registry))

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := textPublisher.Write(w); err != nil {
			logger.Error("Failed to write metrics: %v.", err)
		}
	})
	mux.Handle("/metrics/prometheus", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: cfg.Addr, Handler: mux}
	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening on %v.", cfg.Addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// startWorkload registers the demo metrics and starts goroutines that feed
// them until ctx is done.
func startWorkload(ctx context.Context, registry *metrics.Registry) error {
	requests, err := registry.Counter(metrics.NewPath("demo", "requests"), 0, nil)
	if err != nil {
		return err
	}
	throughput, err := registry.Meter(metrics.NewPath("demo", "throughput"), metrics.Seconds(1), nil,
		metrics.Minutes(1), metrics.Minutes(5))
	if err != nil {
		return err
	}
	latency, err := registry.Timer(metrics.NewPath("demo", "latency"), metrics.Seconds(1),
		metrics.NewUniformReservoir(1024), nil, metrics.Minutes(1))
	if err != nil {
		return err
	}
	_, err = registry.Gauge(metrics.NewPath("demo", "goroutines"), metrics.AggregateAverage,
		func() metrics.Value { return metrics.IntValue(int64(runtime.NumGoroutine())) }, nil)
	if err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				requests.Inc()
				throughput.Mark(1)
				latency.Update(time.Duration(rand.Intn(5000)) * time.Microsecond)
			}
		}
	}()
	return nil
}

func logLevel(name string) logging.Level {
	switch name {
	case "debug":
		return logging.Debug
	case "warn":
		return logging.Warn
	case "error":
		return logging.Error
	default:
		return logging.Info
	}
}
