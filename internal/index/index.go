// internal/index/index.go
// Package index maintains the vault's vector index: embedded note chunks,
// brute-force cosine search over them, and document-level similarity
// aggregation. The index is rebuilt wholesale and swapped atomically; it is
// never patched in place.
package index

import "time"

// IndexedChunk is one embedded chunk of a note. Path is the vault-relative
// slash path of the owning note, a weak reference re-resolved at load time.
type IndexedChunk struct {
	Path      string
	Text      string
	Embedding []float64
	StartLine int
	EndLine   int
}

// VaultIndex is an immutable snapshot of the embedded vault. Readers holding
// a snapshot keep scoring against it even if a rebuild swaps in a newer one.
type VaultIndex struct {
	Chunks      []IndexedChunk
	LastUpdated time.Time
}

// Empty returns a fresh index with no chunks.
func Empty() *VaultIndex {
	return &VaultIndex{LastUpdated: time.Now()}
}

// Len returns the number of indexed chunks.
func (idx *VaultIndex) Len() int {
	return len(idx.Chunks)
}
