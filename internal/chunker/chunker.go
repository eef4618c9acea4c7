// internal/chunker/chunker.go
// Package chunker splits note text into overlapping line-bounded windows
// sized for embedding.
package chunker

import "strings"

// Chunk is a contiguous slice of a note's lines. Line indices are zero-based
// and inclusive.
type Chunk struct {
	Text      string
	StartLine int
	EndLine   int
}

// EstimateTokens approximates the token count of text as ceil(len/4). It is a
// fixed heuristic, not a real tokenizer, and is used consistently for chunk
// sizing and the prompt budget advisory.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// Split cuts text into chunks of roughly targetSize estimated tokens, each
// seeded with a trailing-line window of at most overlap estimated tokens from
// the previous chunk. Lines are never split: a single line larger than
// targetSize still becomes its own chunk. The overlap is clamped below
// targetSize to guarantee forward progress.
func Split(text string, targetSize, overlap int) []Chunk {
	if targetSize <= 0 || text == "" {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= targetSize {
		overlap = targetSize - 1
	}

	lines := strings.Split(text, "\n")

	var (
		chunks    []Chunk
		buffer    []string
		bufTokens int
		startLine int
	)

	flush := func(endLine int) {
		chunks = append(chunks, Chunk{
			Text:      strings.Join(buffer, "\n"),
			StartLine: startLine,
			EndLine:   endLine,
		})
	}

	for i, line := range lines {
		lineTokens := EstimateTokens(line)

		if len(buffer) > 0 && bufTokens+lineTokens > targetSize {
			flush(i - 1)

			// Seed the next chunk with trailing lines from the closed
			// buffer, bounded by the overlap budget.
			seed, seedTokens := trailingWindow(buffer, overlap)
			startLine = i - len(seed)
			buffer = seed
			bufTokens = seedTokens
		}

		buffer = append(buffer, line)
		bufTokens += lineTokens
	}

	if len(buffer) > 0 {
		flush(len(lines) - 1)
	}

	return chunks
}

// trailingWindow takes lines from the end of buffer backward while their
// cumulative estimated tokens stay within budget.
func trailingWindow(buffer []string, budget int) ([]string, int) {
	if budget <= 0 {
		return nil, 0
	}
	total := 0
	start := len(buffer)
	for i := len(buffer) - 1; i >= 0; i-- {
		tokens := EstimateTokens(buffer[i])
		if total+tokens > budget {
			break
		}
		total += tokens
		start = i
	}
	seed := make([]string, len(buffer)-start)
	copy(seed, buffer[start:])
	return seed, total
}
