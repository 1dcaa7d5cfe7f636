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

	"github.com/anrid/risk-dashboard/pkg/dashboard"
	"github.com/anrid/risk-dashboard/pkg/stats"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	v := dashboard.NewViper()
	var configPath string

	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the risk factor dashboard over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dashboard.LoadConfig(v, configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.String("dataset", "", "dataset URL or file (JSON, CSV, XLSX or XLS)")
	flags.String("boundaries", "", "GeoJSON boundary URL or file")
	flags.String("addr", "", "listen address")
	flags.String("log-level", "", "debug, info, warn or error")
	for key, name := range map[string]string{
		"dataset.url":    "dataset",
		"boundaries.url": "boundaries",
		"http.addr":      "addr",
		"log.level":      "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	return cmd
}

func serve(ctx context.Context, cfg *dashboard.Config) error {
	log, err := dashboard.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d := dashboard.New(log, dashboard.NewMetrics(reg), dashboard.Options{
		Palette:    cfg.Map.Colors,
		ChartColor: cfg.Chart.Color,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The page is up before the data is; selectors stay empty until the
	// fetches land, and stay empty for good if the dataset fetch fails.
	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, cfg.Fetch.Timeout)
		defer cancel()
		f := stats.NewFetcher(cfg.Fetch.Timeout, log.Named("fetch"))
		if err := d.Load(fetchCtx, f, cfg.Dataset.URL, cfg.Boundaries.URL); err != nil {
			log.Warn("dashboard only partly loaded", zap.Error(err))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           dashboard.NewServer(d, reg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTP.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
