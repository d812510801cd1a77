package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/windlass-labs/windlass/internal/adapters/driven/config/file"
	"github.com/windlass-labs/windlass/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync scheduler until interrupted",
	Long: `Runs the periodic scheduler in the foreground. An enumeration
pass starts immediately, then repeats at the configured interval.
Changes to the scheduler interval in config.toml are picked up without
a restart. Stop with Ctrl-C.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reload the scheduling interval when the config file changes.
	go func() {
		err := cfgStore.Watch(ctx, func(cfg file.Config) {
			if interval := cfg.Scheduler.Interval(); interval != scheduler.Interval() {
				logger.Info("Scheduler interval changed to %s", interval)
				scheduler.SetInterval(interval)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Config watch stopped: %v", err)
		}
	}()

	cmd.Printf("Scheduler running (interval %s). Press Ctrl-C to stop.\n", scheduler.Interval())

	errCh := make(chan error, 1)
	go func() {
		errCh <- scheduler.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	cmd.Println("Shutting down...")
	scheduler.Stop()
	dispatcher.Drain()
	return nil
}
