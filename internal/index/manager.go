// internal/index/manager.go
package index

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mwiater/noteweave/internal/chunker"
	"github.com/mwiater/noteweave/internal/logging"
	"github.com/mwiater/noteweave/internal/vault"
)

// ErrRebuildInProgress is returned when a rebuild is requested while another
// one is still running. Rebuild requests are rejected, never queued.
var ErrRebuildInProgress = errors.New("index: rebuild already in progress")

// Embedder computes an embedding vector for a text. *llm.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Manager owns the current index snapshot and coordinates rebuilds. Readers
// take snapshots via Snapshot; a rebuild assembles a complete new index and
// swaps it in atomically, so a concurrent search sees either the fully-old or
// fully-new index, never a mixture.
type Manager struct {
	vault        *vault.Vault
	embedder     Embedder
	chunkSize    int
	chunkOverlap int

	current    atomic.Pointer[VaultIndex]
	rebuilding atomic.Bool
}

// NewManager creates a Manager seeded with an empty index.
func NewManager(v *vault.Vault, embedder Embedder, chunkSize, chunkOverlap int) *Manager {
	m := &Manager{
		vault:        v,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
	m.current.Store(Empty())
	return m
}

// Snapshot returns the current index. The returned value is immutable.
func (m *Manager) Snapshot() *VaultIndex {
	return m.current.Load()
}

// Rebuild re-reads the whole vault, chunks and embeds every note, and swaps
// the assembled index in. A chunk whose embedding fails is logged and
// skipped; the rebuild carries on and completes with a partial chunk set.
// Only one rebuild may run at a time; concurrent requests get
// ErrRebuildInProgress.
func (m *Manager) Rebuild(ctx context.Context) (*VaultIndex, error) {
	if !m.rebuilding.CompareAndSwap(false, true) {
		return nil, ErrRebuildInProgress
	}
	defer m.rebuilding.Store(false)

	notes, err := m.vault.Notes()
	if err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	fresh := &VaultIndex{LastUpdated: time.Now()}
	for _, note := range notes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := m.vault.Read(note)
		if err != nil {
			logging.LogEvent("index: skipping unreadable note %s: %v", note.Path, err)
			continue
		}

		chunks := chunker.Split(content, m.chunkSize, m.chunkOverlap)
		for i, c := range chunks {
			vec, err := m.embedder.Embed(ctx, c.Text)
			if err != nil {
				logging.LogEvent("index: skipping chunk %d of %s: %v", i, note.Path, err)
				continue
			}
			fresh.Chunks = append(fresh.Chunks, IndexedChunk{
				Path:      note.Path,
				Text:      c.Text,
				Embedding: vec,
				StartLine: c.StartLine,
				EndLine:   c.EndLine,
			})
		}
	}

	m.current.Store(fresh)
	return fresh, nil
}

// Rebuilding reports whether a rebuild is currently in flight.
func (m *Manager) Rebuilding() bool {
	return m.rebuilding.Load()
}
