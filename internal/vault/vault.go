// internal/vault/vault.go
// Package vault provides access to the note corpus on disk. Notes are
// addressed by vault-relative slash paths, which act as the stable keys the
// index stores instead of live file handles.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Note is a reference to a single note inside the vault.
type Note struct {
	// Path is the vault-relative slash path, e.g. "projects/garden.md".
	Path string
	// AbsPath is the resolved filesystem location.
	AbsPath string
}

// Name returns the note's base name without extension.
func (n Note) Name() string {
	base := filepath.Base(n.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Vault is a directory of notes filtered by extension and exclude globs.
type Vault struct {
	root       string
	extensions map[string]struct{}
	exclude    []string
}

// New opens a vault rooted at dir.
func New(dir string, extensions, excludeGlobs []string) (*Vault, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open vault %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %q is not a directory", dir)
	}

	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	return &Vault{
		root:       dir,
		extensions: extSet,
		exclude:    excludeGlobs,
	}, nil
}

// Root returns the vault's root directory.
func (v *Vault) Root() string {
	return v.root
}

// Notes walks the vault and returns every note matching the configured
// extensions, ordered by walk order (lexical within each directory).
func (v *Vault) Notes() ([]Note, error) {
	var notes []Note

	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == v.root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || v.shouldExclude(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if v.shouldExclude(path) {
			return nil
		}
		if len(v.extensions) > 0 {
			ext := strings.ToLower(filepath.Ext(path))
			if _, ok := v.extensions[ext]; !ok {
				return nil
			}
		}

		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return err
		}
		notes = append(notes, Note{Path: filepath.ToSlash(rel), AbsPath: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	return notes, nil
}

// Resolve maps a stored vault-relative path back to a live note. The second
// return is false when the note no longer exists.
func (v *Vault) Resolve(relPath string) (Note, bool) {
	relPath = strings.TrimSpace(filepath.ToSlash(relPath))
	if relPath == "" || strings.HasPrefix(relPath, "../") {
		return Note{}, false
	}
	abs := filepath.Join(v.root, filepath.FromSlash(relPath))
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return Note{}, false
	}
	return Note{Path: relPath, AbsPath: abs}, true
}

// Read returns a note's full content.
func (v *Vault) Read(note Note) (string, error) {
	raw, err := os.ReadFile(note.AbsPath)
	if err != nil {
		return "", fmt.Errorf("read note %s: %w", note.Path, err)
	}
	return string(raw), nil
}

// Create writes a new note at the given vault-relative path, creating parent
// directories as needed. An existing note at that path is overwritten.
func (v *Vault) Create(relPath, content string) (Note, error) {
	relPath = filepath.ToSlash(relPath)
	if strings.TrimSpace(relPath) == "" || strings.HasPrefix(relPath, "../") {
		return Note{}, fmt.Errorf("invalid note path %q", relPath)
	}
	abs := filepath.Join(v.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return Note{}, fmt.Errorf("create note directory: %w", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return Note{}, fmt.Errorf("write note %s: %w", relPath, err)
	}
	return Note{Path: relPath, AbsPath: abs}, nil
}

func (v *Vault) shouldExclude(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range v.exclude {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		pattern = filepath.ToSlash(pattern)
		if strings.Contains(pattern, "**") {
			trimmed := strings.ReplaceAll(pattern, "**", "")
			if trimmed != "" && strings.Contains(normalized, trimmed) {
				return true
			}
		}
		if ok, _ := filepath.Match(pattern, normalized); ok {
			return true
		}
	}
	return false
}
