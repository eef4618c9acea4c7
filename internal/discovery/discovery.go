// internal/discovery/discovery.go
// Package discovery finds notes semantically related to a reference note and
// can synthesize a hub note linking the selected results.
package discovery

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/mwiater/noteweave/internal/index"
	"github.com/mwiater/noteweave/internal/vault"
)

// maxEmbedChars caps how much of the reference note is embedded. A bounded
// prefix keeps the query embedding cheap and stable for long notes.
const maxEmbedChars = 8000

// Embedder computes the reference note's query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Indexer exposes the current index snapshot.
type Indexer interface {
	Snapshot() *index.VaultIndex
}

// Engine runs related-note discovery against the vault index.
type Engine struct {
	vault    *vault.Vault
	embedder Embedder
	indexer  Indexer
}

// New creates a discovery engine.
func New(v *vault.Vault, embedder Embedder, indexer Indexer) *Engine {
	return &Engine{vault: v, embedder: embedder, indexer: indexer}
}

// Session holds one discovery run's ranked results. Threshold changes
// re-filter the already-computed scores without re-embedding.
type Session struct {
	SourcePath string
	Documents  []index.SimilarDocument
	Threshold  float64
}

// FindRelated embeds a bounded prefix of the note's content and ranks every
// other indexed document by mean chunk similarity.
func (e *Engine) FindRelated(ctx context.Context, note vault.Note, threshold float64) (*Session, error) {
	content, err := e.vault.Read(note)
	if err != nil {
		return nil, err
	}
	content = boundedPrefix(content, maxEmbedChars)

	queryVec, err := e.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed reference note %s: %w", note.Path, err)
	}

	docs := e.indexer.Snapshot().FindSimilar(note.Path, queryVec, threshold)
	return &Session{
		SourcePath: note.Path,
		Documents:  docs,
		Threshold:  threshold,
	}, nil
}

// boundedPrefix caps content at maxChars bytes, backing up to a rune boundary
// so the prefix stays valid UTF-8.
func boundedPrefix(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	n := maxChars
	for n > 0 && !utf8.RuneStart(content[n]) {
		n--
	}
	return content[:n]
}

// SetThreshold re-applies the selection filter with a new threshold. Manual
// additions keep their selection: their score of 1.0 passes any threshold.
func (s *Session) SetThreshold(threshold float64) {
	s.Threshold = threshold
	index.ApplySelection(s.Documents, threshold)
}

// Selected returns the documents at or above the current threshold, in rank
// order.
func (s *Session) Selected() []index.SimilarDocument {
	var out []index.SimilarDocument
	for _, doc := range s.Documents {
		if doc.Selected {
			out = append(out, doc)
		}
	}
	return out
}

// AddManual inserts an explicitly chosen note as a synthetic result with a
// score of 1.0 and no matching chunks. Duplicates by path are ignored.
func (s *Session) AddManual(note vault.Note) {
	if note.Path == s.SourcePath {
		return
	}
	for _, doc := range s.Documents {
		if doc.Path == note.Path {
			return
		}
	}
	s.Documents = append([]index.SimilarDocument{{
		Path:     note.Path,
		Score:    1.0,
		Selected: true,
	}}, s.Documents...)
}
