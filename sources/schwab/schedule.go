package main

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/config"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/logger"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/pipeline"
)

// runScheduled triggers a run on every tick of schedule until ctx is done. A tick that
// arrives while a run is still waiting on a stale article is skipped.
func runScheduled(ctx context.Context, schedule string, runner *pipeline.Runner, logger *logger.Logger) error {
	c := cron.New(
		cron.WithParser(config.ScheduleParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
	)

	_, err := c.AddFunc(schedule, func() {
		logger.Info("Starting scheduled market sentiment check")
		_ = runOnce(ctx, runner, logger)
	})
	if err != nil {
		return err
	}

	c.Start()
	logger.Info("Scheduler started with schedule %q", schedule)

	<-ctx.Done()
	logger.Info("Shutting down scheduler")
	<-c.Stop().Done()
	return nil
}
