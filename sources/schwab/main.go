package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/config"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/gate"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/llm"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/logger"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/notify"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/pipeline"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/store"
)

func main() {
	envFile := flag.String("env", ".env", "path of the .env file")
	once := flag.Bool("once", false, "run once even if SCHEDULE is set")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logger.NewLogger("SCHWAB", cfg.LogPath, cfg.LogMaxSize, cfg.LogMaxBackups, cfg.LogMaxAge, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := newRunner(ctx, cfg, logger)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if cfg.Schedule == "" || *once {
		if err := runOnce(ctx, runner, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := runScheduled(ctx, cfg.Schedule, runner, logger); err != nil {
		logger.Error("Scheduler failed: %v", err)
		os.Exit(1)
	}
}

func newRunner(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*pipeline.Runner, error) {
	classifier, err := llm.NewClassifier(cfg.LLM())
	if err != nil {
		return nil, err
	}
	logger.Debug("Using model %s (%s)", classifier.ModelVersion(), classifier.Provider())

	stores := store.Multi{store.NewCSVStore(cfg.CSVPath)}
	if cfg.DatabaseURL != "" {
		pg := store.NewPostgresStore(cfg.DatabaseURL)
		pg.Timeout = cfg.HTTPTimeout
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		stores = append(stores, &store.Mirror{Store: pg, Logger: logger})
		logger.Debug("Mirroring records to Postgres")
	}

	runner := &pipeline.Runner{
		Source:     &ArticleSource{URL: cfg.ArticleURL, Client: &http.Client{Timeout: cfg.HTTPTimeout}},
		Classifier: classifier,
		Store:      stores,
		Gate:       gate.New(cfg.RetryDelay, logger),
		Logger:     logger,
		DumpDir:    cfg.DebugDumpDir,
	}
	if cfg.NotificationsEnabled() {
		runner.Notifier = notify.NewPushover(cfg.PushoverAPIToken, cfg.PushoverUserKey, cfg.HTTPTimeout)
		logger.Debug("Push notifications enabled")
	}
	return runner, nil
}

func runOnce(ctx context.Context, runner *pipeline.Runner, logger *logger.Logger) error {
	outcome, err := runner.Run(ctx)
	if err != nil {
		logger.Error("Run failed: %v", err)
		return err
	}
	if outcome.Status == pipeline.Aborted {
		logger.Info("No record written: %s", outcome.Gate.Reason)
	}
	return nil
}
