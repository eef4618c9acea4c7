// internal/cli/helpers.go
package noteweave

import (
	"fmt"
	"strings"

	"github.com/mwiater/noteweave/internal/appconfig"
	"github.com/mwiater/noteweave/internal/index"
	"github.com/mwiater/noteweave/internal/llm"
	"github.com/mwiater/noteweave/internal/logging"
	"github.com/mwiater/noteweave/internal/vault"
)

// openVault opens the configured vault directory.
func openVault(cfg *appconfig.Config) (*vault.Vault, error) {
	if strings.TrimSpace(cfg.VaultPath) == "" {
		return nil, fmt.Errorf("vaultPath is not configured (set it in %s or pass --vaultPath)", appconfig.DefaultConfigPath)
	}
	return vault.New(cfg.VaultPath, cfg.Extensions(), cfg.ExcludeGlobs)
}

// newLLMClient builds the LLM client from the merged configuration.
func newLLMClient(cfg *appconfig.Config) *llm.Client {
	return llm.NewClient(llm.Config{
		EmbeddingEndpoint: cfg.EmbeddingEndpoint,
		EmbeddingModel:    cfg.EmbeddingModel,
		ChatEndpoint:      cfg.ChatEndpoint,
		ChatModel:         cfg.ChatModel,
		APIKey:            cfg.ResolveAPIKey(),
		Debug:             cfg.Debug,
	}, cfg.RequestTimeout())
}

// newIndexManager wires the index manager for the vault and loads the
// persisted index if one exists. Load failures are logged and leave an empty
// index; the in-memory state stays usable either way.
func newIndexManager(cfg *appconfig.Config, v *vault.Vault, client *llm.Client) *index.Manager {
	size, overlap := cfg.ChunkSettings()
	m := index.NewManager(v, client, size, overlap)
	if err := m.Load(cfg.IndexFilePath()); err != nil {
		logging.LogEvent("could not load persisted index: %v", err)
	}
	return m
}

// saveIndex persists the current index snapshot. A failed save is a notice,
// not an error: the in-memory index remains authoritative for this process.
func saveIndex(cfg *appconfig.Config, m *index.Manager) {
	if err := m.Save(cfg.IndexFilePath()); err != nil {
		logging.LogEvent("could not persist index to %s: %v", cfg.IndexFilePath(), err)
	}
}
