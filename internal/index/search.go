// internal/index/search.go
package index

import (
	"math"
	"sort"
)

// maxMatchingChunks bounds the per-document chunk detail kept by FindSimilar.
const maxMatchingChunks = 5

// MatchingChunk pairs an indexed chunk with its similarity to a query.
type MatchingChunk struct {
	Chunk IndexedChunk
	Score float64
}

// SimilarDocument aggregates chunk-level similarity into one candidate note.
type SimilarDocument struct {
	Path           string
	Score          float64
	Selected       bool
	MatchingChunks []MatchingChunk
}

// CosineSimilarity returns the normalized dot product of a and b in [-1, 1].
// Mismatched lengths, zero vectors, and NaN results all yield exactly 0
// rather than an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) {
		return 0
	}
	return score
}

// Search scores every chunk against queryVec and returns the topK best,
// sorted descending by score. Ties keep original index order. A topK larger
// than the index returns everything.
func (idx *VaultIndex) Search(queryVec []float64, topK int) []MatchingChunk {
	if topK <= 0 {
		return nil
	}

	scored := make([]MatchingChunk, 0, len(idx.Chunks))
	for _, chunk := range idx.Chunks {
		scored = append(scored, MatchingChunk{
			Chunk: chunk,
			Score: CosineSimilarity(queryVec, chunk.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}

// FindSimilar groups every chunk not owned by queryPath by document, scores
// each document as the mean similarity of its chunks, and returns documents
// sorted descending by that mean. Each document keeps at most five of its
// best-scoring chunks as MatchingChunks. Selected is initialized against
// threshold and can be recomputed with ApplySelection without re-scoring.
func (idx *VaultIndex) FindSimilar(queryPath string, queryVec []float64, threshold float64) []SimilarDocument {
	type group struct {
		chunks []MatchingChunk
		sum    float64
	}

	groups := make(map[string]*group)
	var order []string

	for _, chunk := range idx.Chunks {
		if chunk.Path == queryPath {
			continue
		}
		g, ok := groups[chunk.Path]
		if !ok {
			g = &group{}
			groups[chunk.Path] = g
			order = append(order, chunk.Path)
		}
		score := CosineSimilarity(queryVec, chunk.Embedding)
		g.chunks = append(g.chunks, MatchingChunk{Chunk: chunk, Score: score})
		g.sum += score
	}

	docs := make([]SimilarDocument, 0, len(order))
	for _, path := range order {
		g := groups[path]

		sort.SliceStable(g.chunks, func(i, j int) bool {
			return g.chunks[i].Score > g.chunks[j].Score
		})
		matching := g.chunks
		if len(matching) > maxMatchingChunks {
			matching = matching[:maxMatchingChunks]
		}

		mean := g.sum / float64(len(g.chunks))
		docs = append(docs, SimilarDocument{
			Path:           path,
			Score:          mean,
			Selected:       mean >= threshold,
			MatchingChunks: matching,
		})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Score > docs[j].Score
	})

	return docs
}

// ApplySelection recomputes each document's Selected flag against a new
// threshold. It is a pure re-filter over already-computed scores.
func ApplySelection(docs []SimilarDocument, threshold float64) {
	for i := range docs {
		docs[i].Selected = docs[i].Score >= threshold
	}
}
