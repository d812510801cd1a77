package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/windlass-labs/windlass/internal/adapters/driven/config/file"
	"github.com/windlass-labs/windlass/internal/adapters/driven/hub"
	"github.com/windlass-labs/windlass/internal/adapters/driven/storage/memory"
	"github.com/windlass-labs/windlass/internal/adapters/driven/storage/sqlite"
	"github.com/windlass-labs/windlass/internal/connectors"
	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
	"github.com/windlass-labs/windlass/internal/core/services"
	"github.com/windlass-labs/windlass/internal/dispatch"
	"github.com/windlass-labs/windlass/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verboseFlag   bool
	configDirFlag string
)

// Wired services, populated by ensureServices.
var (
	cfgStore    *file.ConfigStore
	orgStore    driven.OrganisationStore
	scheduler   *services.SyncScheduler
	dispatcher  *dispatch.Dispatcher
	sqliteStore *sqlite.Store

	results  resultLog
	wireOnce sync.Once
	wireErr  error
)

var rootCmd = &cobra.Command{
	Use:   "windlass",
	Short: "Synchronise organisation members from SaaS connectors to the hub",
	Long: `Windlass pulls user directories from connected SaaS providers
(GitHub organisations, Dropbox teams) page by page and pushes them to
the central hub, keeping membership and connection status up to date.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "config directory (default ~/.windlass)")
}

// Execute runs the root command.
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

// ensureServices wires all adapters and services on first use.
func ensureServices() error {
	wireOnce.Do(func() {
		wireErr = wireServices()
	})
	return wireErr
}

func wireServices() error {
	var err error
	cfgStore, err = file.NewConfigStore(configDirFlag)
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	cfg := cfgStore.Config()

	if cfg.Storage.DataDir != "" {
		sqliteStore, err = sqlite.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		orgStore = sqliteStore.OrganisationStore()
	} else {
		orgStore = memory.NewOrganisationStore()
	}

	sink := hub.NewClient(hub.Config{
		BaseURL:           cfg.Hub.BaseURL,
		APIKey:            cfg.Hub.APIKey,
		RequestsPerSecond: cfg.Hub.RequestsPerSecond,
	})

	dispatchCfg := dispatch.DefaultConfig()
	if cfg.Dispatch.MaxAttempts > 0 {
		dispatchCfg.MaxAttempts = cfg.Dispatch.MaxAttempts
	}
	if cfg.Dispatch.RetryDelaySeconds > 0 {
		dispatchCfg.RetryDelay = time.Duration(cfg.Dispatch.RetryDelaySeconds) * time.Second
	}
	dispatcher = dispatch.New(dispatchCfg, results.record)

	worker := services.NewPageSyncWorker(orgStore, connectors.DefaultRegistry(), sink, dispatcher)
	dispatcher.Bind(services.NewFailureClassifier(worker, sink, orgStore))

	var policy domain.EligibilityPolicy
	if window := cfg.Scheduler.EligibilityWindow(); window > 0 {
		policy = domain.NotSyncedWithin(window)
	}
	scheduler = services.NewSyncScheduler(orgStore, dispatcher, policy, cfg.Scheduler.Interval())

	return nil
}

// shutdown flushes and releases whatever got wired.
func shutdown() {
	if dispatcher != nil {
		dispatcher.Close()
	}
	if sqliteStore != nil {
		if err := sqliteStore.Close(); err != nil {
			logger.Warn("Failed to close store: %v", err)
		}
	}
}

// resultLog collects finished-job results for command summaries.
type resultLog struct {
	mu      sync.Mutex
	results []dispatch.Result
}

func (l *resultLog) record(r dispatch.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, r)
}

func (l *resultLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = nil
}

func (l *resultLog) snapshot() []dispatch.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]dispatch.Result, len(l.results))
	copy(out, l.results)
	return out
}
