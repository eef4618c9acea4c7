package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Fatalf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if chunks := Split("", 100, 10); chunks != nil {
		t.Fatalf("expected no chunks for empty input, got %v", chunks)
	}
}

func TestSplitSingleChunk(t *testing.T) {
	text := "first line\nsecond line\nthird line"
	chunks := Split(text, 500, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Fatalf("chunk text mismatch: %q", chunks[0].Text)
	}
	if chunks[0].StartLine != 0 || chunks[0].EndLine != 2 {
		t.Fatalf("unexpected line range: %d-%d", chunks[0].StartLine, chunks[0].EndLine)
	}
}

func TestSplitOversizedLineBecomesOwnChunk(t *testing.T) {
	long := strings.Repeat("w", 200) // 50 estimated tokens, target is 10
	chunks := Split("short\n"+long+"\ntail", 10, 0)
	found := false
	for _, c := range chunks {
		if c.Text == long {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the oversized line to form its own chunk: %v", chunks)
	}
}

func TestSplitLineRangesCoverEveryLine(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, strings.Repeat("a", 40)) // 10 tokens per line
	}
	text := strings.Join(lines, "\n")

	chunks := Split(text, 50, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	covered := make([]bool, len(lines))
	prevStart := -1
	for _, c := range chunks {
		if c.StartLine <= prevStart {
			t.Fatalf("chunk starts are not monotonically increasing: %v", chunks)
		}
		prevStart = c.StartLine
		if c.EndLine < c.StartLine {
			t.Fatalf("invalid range %d-%d", c.StartLine, c.EndLine)
		}
		for i := c.StartLine; i <= c.EndLine; i++ {
			covered[i] = true
		}
	}
	for i, ok := range covered {
		if !ok {
			t.Fatalf("line %d not covered by any chunk", i)
		}
	}
}

func TestSplitOverlapBoundedByBudget(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, strings.Repeat("b", 40)) // 10 tokens per line
	}
	text := strings.Join(lines, "\n")

	overlap := 20
	chunks := Split(text, 50, overlap)
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.StartLine > prev.EndLine+1 {
			t.Fatalf("gap between chunks %d and %d", i-1, i)
		}
		overlapTokens := 0
		for line := cur.StartLine; line <= prev.EndLine; line++ {
			overlapTokens += EstimateTokens(lines[line])
		}
		if overlapTokens > overlap {
			t.Fatalf("overlap of %d tokens exceeds budget %d", overlapTokens, overlap)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("some note content with several words\n", 50)
	a := Split(text, 60, 15)
	b := Split(text, 60, 15)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("Split is not deterministic for identical inputs")
	}
}

func TestSplitClampsDegenerateOverlap(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, strings.Repeat("c", 40))
	}
	text := strings.Join(lines, "\n")

	// Overlap >= size must not stall; result must still cover all lines.
	chunks := Split(text, 20, 20)
	if len(chunks) == 0 {
		t.Fatal("expected chunks despite degenerate overlap")
	}
	last := chunks[len(chunks)-1]
	if last.EndLine != len(lines)-1 {
		t.Fatalf("expected final chunk to reach last line, got %d", last.EndLine)
	}
}
