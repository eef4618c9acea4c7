// internal/cli/root_test.go
package noteweave

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mwiater/noteweave/internal/appconfig"
	"github.com/spf13/viper"
)

// TestViperUnmarshalHonorsTimeout covers the config decode path the root
// command uses: a timeout set in config.json must reach RequestTimeout through
// viper's unmarshal, not just through appconfig.Load.
func TestViperUnmarshalHonorsTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	configJSON := `{
        "vaultPath": "/tmp/vault",
        "embeddingEndpoint": "http://localhost:8080/v1/embeddings",
        "embeddingModel": "embed-model",
        "chatEndpoint": "http://localhost:8080/v1/chat/completions",
        "chatModel": "chat-model",
        "timeout": 42
    }`
	if err := os.WriteFile(path, []byte(configJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	var cfg appconfig.Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}

	if cfg.TimeoutSeconds != 42 {
		t.Fatalf("expected TimeoutSeconds 42, got %d", cfg.TimeoutSeconds)
	}
	if got := cfg.RequestTimeout(); got != 42*time.Second {
		t.Fatalf("expected request timeout 42s, got %s", got)
	}
	if cfg.VaultPath != "/tmp/vault" {
		t.Fatalf("expected vaultPath decoded, got %q", cfg.VaultPath)
	}
}
