// internal/index/persist.go
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwiater/noteweave/internal/logging"
)

type persistedChunk struct {
	FilePath  string    `json:"filePath"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	StartLine int       `json:"startLine"`
	EndLine   int       `json:"endLine"`
}

type persistedIndex struct {
	Chunks      []persistedChunk `json:"chunks"`
	LastUpdated int64            `json:"lastUpdated"`
}

// Save writes the current snapshot to path as a single JSON document. The
// write is best-effort whole-file overwrite; failure leaves the in-memory
// index authoritative for the rest of the process lifetime.
func (m *Manager) Save(path string) error {
	snapshot := m.Snapshot()

	out := persistedIndex{
		Chunks:      make([]persistedChunk, 0, len(snapshot.Chunks)),
		LastUpdated: snapshot.LastUpdated.UnixMilli(),
	}
	for _, c := range snapshot.Chunks {
		out.Chunks = append(out.Chunks, persistedChunk{
			FilePath:  c.Path,
			Text:      c.Text,
			Embedding: c.Embedding,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	return nil
}

// Load reads a persisted index from path and swaps it in. Each stored chunk's
// path is re-resolved against the vault; chunks whose note no longer exists
// are dropped silently. A missing file yields an empty index, not an error.
func (m *Manager) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.current.Store(Empty())
			return nil
		}
		return fmt.Errorf("read index file: %w", err)
	}

	var stored persistedIndex
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("parse index file: %w", err)
	}

	loaded := &VaultIndex{LastUpdated: time.UnixMilli(stored.LastUpdated)}
	dropped := 0
	for _, c := range stored.Chunks {
		note, ok := m.vault.Resolve(c.FilePath)
		if !ok {
			dropped++
			continue
		}
		loaded.Chunks = append(loaded.Chunks, IndexedChunk{
			Path:      note.Path,
			Text:      c.Text,
			Embedding: c.Embedding,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
		})
	}
	if dropped > 0 {
		logging.LogEvent("index: dropped %d chunks referencing missing notes", dropped)
	}

	m.current.Store(loaded)
	return nil
}
