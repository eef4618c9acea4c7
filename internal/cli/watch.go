// internal/cli/watch.go
package noteweave

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwiater/noteweave/internal/appconfig"
	"github.com/mwiater/noteweave/internal/index"
	"github.com/mwiater/noteweave/internal/logging"
	"github.com/mwiater/noteweave/internal/vault"
	"github.com/spf13/cobra"
)

// watchDebounce batches bursts of filesystem events into one rebuild.
const watchDebounce = 2 * time.Second

// watchCmd keeps the index fresh by rebuilding when vault files change.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and rebuild the index on changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return err
		}
		defer logging.Close()

		v, err := openVault(cfg)
		if err != nil {
			return err
		}
		client := newLLMClient(cfg)
		m := newIndexManager(cfg, v, client)

		watcher, err := vault.NewWatcher(v)
		if err != nil {
			return fmt.Errorf("watch vault: %w", err)
		}
		defer watcher.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s for changes (ctrl+c to stop)\n", cfg.VaultPath)
		events := watcher.Events(ctx)

		var timer *time.Timer
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return nil
			case path, ok := <-events:
				if !ok {
					return nil
				}
				logging.LogEvent("vault change: %s", path)
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
				} else {
					timer.Reset(watchDebounce)
				}
				pending = timer.C
			case <-pending:
				pending = nil
				rebuildOnChange(ctx, cfg, m)
			}
		}
	},
}

func rebuildOnChange(ctx context.Context, cfg *appconfig.Config, m *index.Manager) {
	start := time.Now()
	idx, err := m.Rebuild(ctx)
	if err != nil {
		if errors.Is(err, index.ErrRebuildInProgress) {
			logging.LogEvent("rebuild skipped: one is already running")
			return
		}
		logging.LogEvent("rebuild failed: %v", err)
		return
	}
	if err := m.Save(cfg.IndexFilePath()); err != nil {
		logging.LogEvent("could not persist index: %v", err)
	}
	logging.LogEvent("reindexed %d chunks in %s", idx.Len(), time.Since(start).Truncate(time.Millisecond))
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
