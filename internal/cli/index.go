// internal/cli/index.go
package noteweave

import (
	"context"
	"fmt"
	"time"

	"github.com/mwiater/noteweave/internal/logging"
	"github.com/spf13/cobra"
)

// indexCmd rebuilds the vault's vector index and persists it.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the vault's semantic index",
	Long: `The 'index' command reads every note in the vault, chunks and embeds it,
and writes the resulting vector index to the vault's .noteweave directory.`,
	Args: cobra.NoArgs,
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
		size, overlap := cfg.ChunkSettings()
		if cfg.ChunkOverlapTokens >= size {
			logging.LogEvent("chunkOverlapTokens %d clamped below chunkSizeTokens %d", cfg.ChunkOverlapTokens, size)
		}

		m := newIndexManager(cfg, v, client)

		start := time.Now()
		logging.LogEvent("indexing vault %s (chunk size %d tokens, overlap %d)", cfg.VaultPath, size, overlap)

		idx, err := m.Rebuild(context.Background())
		if err != nil {
			return err
		}
		logging.LogEvent("indexed %d chunks in %s", idx.Len(), time.Since(start).Truncate(time.Millisecond))

		saveIndex(cfg, m)
		fmt.Printf("Index rebuilt: %d chunks from vault %s\n", idx.Len(), cfg.VaultPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
