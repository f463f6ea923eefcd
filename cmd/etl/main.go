// Command etl runs one full warehouse build: it reads the catalog and
// activity NDJSON dumps under the input root, derives the five dimensional
// tables, writes them as parquet datasets under the output root, and runs
// post-load validation. Metrics and health endpoints are served for the
// duration of the run.
//
// Usage:
//
//	go run ./cmd/etl -input ./data -output ./warehouse
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/l11ary/Data-Lake-with-Spark/internal/adapter/http"
	"github.com/l11ary/Data-Lake-with-Spark/internal/adapter/jsonsource"
	"github.com/l11ary/Data-Lake-with-Spark/internal/adapter/parquetstore"
	"github.com/l11ary/Data-Lake-with-Spark/internal/config"
	"github.com/l11ary/Data-Lake-with-Spark/internal/domain"
	"github.com/l11ary/Data-Lake-with-Spark/internal/observability"
	"github.com/l11ary/Data-Lake-with-Spark/internal/pipeline"
	"github.com/l11ary/Data-Lake-with-Spark/internal/validate"
)

func main() {
	inputRoot := flag.String("input", "", "content root holding song_data/ and log_data/ (overrides INPUT_ROOT)")
	outputRoot := flag.String("output", "", "warehouse root for the parquet tables (overrides OUTPUT_ROOT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *inputRoot != "" {
		cfg.InputRoot = *inputRoot
	}
	if *outputRoot != "" {
		cfg.OutputRoot = *outputRoot
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	policy, err := domain.ParseDedupPolicy(cfg.UserDedup)
	if err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	store, err := parquetstore.New(cfg.OutputRoot, logger)
	if err != nil {
		logger.Error("failed to open warehouse", "error", err)
		os.Exit(1)
	}
	source := jsonsource.New(cfg.InputRoot, logger, metrics)

	p := pipeline.New(source, store, logger, metrics, clockwork.NewRealClock(), policy)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := 0
	if _, err := p.Run(ctx); err != nil {
		logger.Error("warehouse run failed", "error", err)
		exitCode = 1
	} else if report, err := validate.Warehouse(store, cfg.SampleLocation, cfg.SampleLimit, logger); err != nil {
		// Validation is observational; the tables are already committed.
		logger.Warn("warehouse validation failed", "error", err)
	} else if !report.OK() {
		for _, problem := range report.Problems {
			logger.Warn("validation finding", "problem", problem)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	os.Exit(exitCode)
}
