// internal/index/manager_test.go
package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/noteweave/internal/vault"
)

// stubEmbedder returns a fixed vector per exact text prefix, and an error for
// texts containing "fail".
type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	s.calls++
	if strings.Contains(text, "fail") {
		return nil, errors.New("stub embed failure")
	}
	if strings.Contains(text, "alpha") {
		return []float64{1, 0}, nil
	}
	return []float64{0, 1}, nil
}

// blockingEmbedder parks on release after signalling started, so tests can
// hold a rebuild open.
type blockingEmbedder struct {
	started chan struct{}
	release chan struct{}
	once    bool
}

func (b *blockingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if !b.once {
		b.once = true
		close(b.started)
		<-b.release
	}
	return []float64{1, 0}, nil
}

func newTestManager(t *testing.T, files map[string]string, embedder Embedder) (*Manager, *vault.Vault) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	v, err := vault.New(root, []string{".md"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewManager(v, embedder, 500, 50), v
}

func TestRebuildIndexesEveryNote(t *testing.T) {
	m, _ := newTestManager(t, map[string]string{
		"alpha.md": strings.Repeat("alpha topic sentence. ", 20),
		"beta.md":  strings.Repeat("beta topic sentence. ", 20),
	}, &stubEmbedder{})

	idx, err := m.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 chunks (one per note), got %d", idx.Len())
	}

	results := idx.Search([]float64{1, 0}, 1)
	if len(results) != 1 || results[0].Chunk.Path != "alpha.md" {
		t.Fatalf("expected alpha.md as top result, got %v", results)
	}
}

func TestRebuildSkipsFailedChunks(t *testing.T) {
	m, _ := newTestManager(t, map[string]string{
		"good.md": "alpha content",
		"bad.md":  "this chunk will fail to embed",
	}, &stubEmbedder{})

	idx, err := m.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}
	if idx.Len() != 1 || idx.Chunks[0].Path != "good.md" {
		t.Fatalf("expected only good.md indexed, got %+v", idx.Chunks)
	}
}

func TestRebuildReplacesNotAppends(t *testing.T) {
	m, _ := newTestManager(t, map[string]string{"alpha.md": "alpha"}, &stubEmbedder{})

	if _, err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := m.Snapshot().Len(); got != 1 {
		t.Fatalf("expected 1 chunk after two rebuilds, got %d", got)
	}
}

func TestRebuildMutualExclusion(t *testing.T) {
	embedder := &blockingEmbedder{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m, _ := newTestManager(t, map[string]string{"alpha.md": "alpha"}, embedder)

	done := make(chan error, 1)
	go func() {
		_, err := m.Rebuild(context.Background())
		done <- err
	}()

	<-embedder.started
	if _, err := m.Rebuild(context.Background()); !errors.Is(err, ErrRebuildInProgress) {
		t.Fatalf("expected ErrRebuildInProgress, got %v", err)
	}

	close(embedder.release)
	if err := <-done; err != nil {
		t.Fatalf("first rebuild failed: %v", err)
	}
	if m.Snapshot().Len() != 1 {
		t.Fatalf("in-flight rebuild result corrupted: %d chunks", m.Snapshot().Len())
	}

	// Guard must be released after completion.
	if _, err := m.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild after completion should succeed, got %v", err)
	}
}

func TestRebuildGuardReleasedOnFailure(t *testing.T) {
	m, v := newTestManager(t, map[string]string{"alpha.md": "alpha"}, &stubEmbedder{})
	_ = v

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Rebuild(ctx); err == nil {
		t.Fatal("expected rebuild with cancelled context to fail")
	}
	if m.Rebuilding() {
		t.Fatal("rebuild guard not released after failure")
	}
	if _, err := m.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild after failure should succeed, got %v", err)
	}
}

func TestSnapshotIsolatedFromRebuild(t *testing.T) {
	m, v := newTestManager(t, map[string]string{"alpha.md": "alpha"}, &stubEmbedder{})

	if _, err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	old := m.Snapshot()

	if _, err := v.Create("beta.md", "beta"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	if old.Len() != 1 {
		t.Fatalf("pre-rebuild snapshot mutated: %d chunks", old.Len())
	}
	if m.Snapshot().Len() != 2 {
		t.Fatalf("expected new snapshot with 2 chunks, got %d", m.Snapshot().Len())
	}
}
