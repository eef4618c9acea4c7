// internal/discovery/hub.go
package discovery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mwiater/noteweave/internal/index"
	"github.com/mwiater/noteweave/internal/vault"
)

// HubContent renders a hub note body: the source reference followed by a
// backlink list of the selected documents with their scores.
func HubContent(title, sourcePath string, docs []index.SimilarDocument) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", title))
	b.WriteString(fmt.Sprintf("Source: [[%s]]\n\n", noteLink(sourcePath)))
	b.WriteString("## Related notes\n\n")
	for _, doc := range docs {
		b.WriteString(fmt.Sprintf("- [[%s]] (similarity %.2f)\n", noteLink(doc.Path), doc.Score))
	}

	return b.String()
}

// CreateHub writes a hub note into the vault linking the session's currently
// selected documents to its source note.
func (e *Engine) CreateHub(s *Session, relPath string) (vault.Note, error) {
	selected := s.Selected()
	if len(selected) == 0 {
		return vault.Note{}, fmt.Errorf("no selected documents to link from %s", s.SourcePath)
	}

	title := strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))
	content := HubContent(title, s.SourcePath, selected)
	return e.vault.Create(relPath, content)
}

// noteLink strips the extension so links use the wiki style common to note
// vaults.
func noteLink(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
