// Command reportd serves product reports from the marketplace database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/bjaus/report"
	"github.com/bjaus/report/internal/config"
	"github.com/bjaus/report/internal/httpapi"
	"github.com/bjaus/report/internal/logger"
	"github.com/bjaus/report/internal/metrics"
	"github.com/bjaus/report/internal/store"
)

func main() {
	configDir := flag.String("config", "", "directory holding config.yaml (default ./configs and .)")
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	var dirs []string
	if *configDir != "" {
		dirs = append(dirs, *configDir)
	}
	cfg, err := config.Load(dirs...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reportd:", err)
		os.Exit(1)
	}
	if *printConfig {
		if err := config.Dump(os.Stdout, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "reportd:", err)
			os.Exit(1)
		}
		return
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reportd: build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("reportd stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := store.Open(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	factory := report.NewFactory(cfg.ReportOptions())
	log.Info("report formats available",
		zap.Stringers("formats", factory.Available()),
		zap.String("default", cfg.Report.Format),
	)
	// Surface a misconfigured default at startup. Requests still get a
	// report_unavailable error for it.
	if _, err := factory.Select(cfg.Report.Format); err != nil {
		log.Error("configured report format is unavailable", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := httpapi.NewHandler(store.NewProducts(db), factory, cfg.Report.Format, metrics.NewReports(reg), log)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.NewRouter(handler, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
