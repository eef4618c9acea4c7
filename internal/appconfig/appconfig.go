// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 600 * time.Second
	// defaultChunkSizeTokens is the chunk window used when the config omits the value.
	defaultChunkSizeTokens = 512
	// defaultChunkOverlapTokens is the chunk overlap used when the config omits the value.
	defaultChunkOverlapTokens = 64
	// defaultTopK is the number of retrieved chunks used when the config omits the value.
	defaultTopK = 5
	// defaultSimilarityThreshold is the discovery cutoff used when the config omits the value.
	defaultSimilarityThreshold = 0.7
	// defaultMaxContextTokens is the advisory prompt budget used when the config omits the value.
	defaultMaxContextTokens = 8192
	// indexDirName is the vault-relative directory holding noteweave's persisted state.
	indexDirName = ".noteweave"
	// indexFileName is the persisted vector index file inside indexDirName.
	indexFileName = "index.json"
)

// Config represents the top-level application configuration.
type Config struct {
	VaultPath           string   `json:"vaultPath"`
	IndexPath           string   `json:"indexPath,omitempty"`
	EmbeddingEndpoint   string   `json:"embeddingEndpoint"`
	EmbeddingModel      string   `json:"embeddingModel"`
	ChatEndpoint        string   `json:"chatEndpoint"`
	ChatModel           string   `json:"chatModel"`
	APIKey              string   `json:"apiKey,omitempty"`
	SystemPrompt        string   `json:"systemPrompt,omitempty"`
	UserName            string   `json:"userName,omitempty"`
	SemanticSearch      bool     `json:"semanticSearch"`
	ChunkSizeTokens     int      `json:"chunkSizeTokens,omitempty"`
	ChunkOverlapTokens  int      `json:"chunkOverlapTokens,omitempty"`
	TopK                int      `json:"topK,omitempty"`
	SimilarityThreshold float64  `json:"similarityThreshold,omitempty"`
	MaxContextTokens    int      `json:"maxContextTokens,omitempty"`
	AllowedExtensions   []string `json:"allowedExtensions,omitempty"`
	ExcludeGlobs        []string `json:"excludeGlobs,omitempty"`
	TimeoutSeconds      int      `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile             string   `json:"logFile,omitempty"`
	Debug               bool     `json:"debug"`
	ConfigPath          string   `json:"-"`
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ChunkSettings returns the chunk window and overlap in estimated tokens.
// The overlap is clamped below the window size: an overlap at or above the
// window would stall chunking forward progress.
func (c Config) ChunkSettings() (size, overlap int) {
	size = c.ChunkSizeTokens
	if size <= 0 {
		size = defaultChunkSizeTokens
	}
	overlap = c.ChunkOverlapTokens
	if overlap < 0 {
		overlap = defaultChunkOverlapTokens
	}
	if overlap >= size {
		overlap = size - 1
	}
	return size, overlap
}

// ResolvedTopK returns the retrieval result count, falling back to the default if not specified.
func (c Config) ResolvedTopK() int {
	if c.TopK <= 0 {
		return defaultTopK
	}
	return c.TopK
}

// ResolvedThreshold returns the discovery similarity threshold clamped to [0, 1].
func (c Config) ResolvedThreshold() float64 {
	t := c.SimilarityThreshold
	if t <= 0 {
		return defaultSimilarityThreshold
	}
	if t > 1 {
		return 1
	}
	return t
}

// MaxTokens returns the advisory prompt token budget, falling back to the default if not specified.
func (c Config) MaxTokens() int {
	if c.MaxContextTokens <= 0 {
		return defaultMaxContextTokens
	}
	return c.MaxContextTokens
}

// Extensions returns the note file extensions included in the vault corpus.
func (c Config) Extensions() []string {
	if len(c.AllowedExtensions) > 0 {
		return c.AllowedExtensions
	}
	return []string{".md", ".markdown", ".txt"}
}

// IndexFilePath returns the persisted index location, defaulting to a
// well-known path inside the vault.
func (c Config) IndexFilePath() string {
	if p := strings.TrimSpace(c.IndexPath); p != "" {
		return p
	}
	return filepath.Join(c.VaultPath, indexDirName, indexFileName)
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "noteweave.log"
}

// ResolveAPIKey returns the configured credential, falling back to the
// NOTEWEAVE_API_KEY and OPENAI_API_KEY environment variables.
func (c Config) ResolveAPIKey() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	if key := strings.TrimSpace(os.Getenv("NOTEWEAVE_API_KEY")); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if strings.TrimSpace(config.VaultPath) == "" {
			return Config{}, errors.New("config must set vaultPath")
		}
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if err := ValidateDocument(raw); err != nil {
		return Config{}, fmt.Errorf("config file %q: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(raw, &config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
