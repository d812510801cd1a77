package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/dispatch"
)

var syncFirstFlag bool

var syncCmd = &cobra.Command{
	Use:   "sync [organisation-id]",
	Short: "Synchronise organisation members to the hub",
	Long: `Triggers member synchronisation for configured organisations.
If an organisation ID is provided, only that organisation is
synchronised. Otherwise, every eligible organisation is synchronised.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFirstFlag, "first", false, "treat this as the organisation's first synchronisation")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := context.Background()
	results.reset()

	if len(args) > 0 {
		organisationID := args[0]
		cmd.Printf("Synchronising organisation: %s...\n", organisationID)
		if err := scheduler.ScheduleNow(ctx, organisationID, syncFirstFlag); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
	} else {
		cmd.Println("Synchronising all organisations...")
		report, err := scheduler.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		if len(report.OrganisationIDs) == 0 {
			cmd.Println("No organisations eligible for synchronisation.")
			return nil
		}
	}

	dispatcher.Drain()
	printSummary(cmd, results.snapshot())
	return nil
}

// printSummary reports per-organisation outcomes after the queues have
// drained.
func printSummary(cmd *cobra.Command, finished []dispatch.Result) {
	upserted := make(map[string]int)
	pages := make(map[string]int)
	failed := make(map[string]error)

	for _, r := range finished {
		id := r.Job.OrganisationID
		pages[id]++
		if r.Report != nil {
			upserted[id] += r.Report.UsersUpserted
		}
		if r.Err != nil {
			failed[id] = r.Err
		}
	}

	for id, count := range pages {
		if err, ok := failed[id]; ok {
			cmd.Printf("Organisation %s: failed after %d page(s): %v\n", id, count, err)
			if domain.IsTerminal(err) {
				cmd.Printf("Organisation %s: connection disabled, reconnect to resume syncing\n", id)
			}
			continue
		}
		cmd.Printf("Organisation %s: %d user(s) across %d page(s)\n", id, upserted[id], count)
	}
}
