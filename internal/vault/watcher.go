// internal/vault/watcher.go
package vault

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher emits the vault-relative path of every note created, modified, or
// removed under the vault root.
type Watcher struct {
	vault   *Vault
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the vault root and all of its subdirectories.
func NewWatcher(v *Vault) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != v.root && (strings.HasPrefix(d.Name(), ".") || v.shouldExclude(path)) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	return &Watcher{vault: v, watcher: w}, nil
}

// Events returns a channel of changed note paths. The channel closes when the
// context is cancelled or the underlying watcher shuts down.
func (w *Watcher) Events(ctx context.Context) <-chan string {
	changes := make(chan string, 64)

	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				// New directories need their own watch.
				if event.Op&fsnotify.Create != 0 {
					_ = w.addIfDir(event.Name)
				}
				if !w.isNotePath(event.Name) {
					continue
				}
				rel, err := filepath.Rel(w.vault.root, event.Name)
				if err != nil {
					continue
				}
				select {
				case changes <- filepath.ToSlash(rel):
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return changes
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addIfDir(path string) error {
	if w.vault.shouldExclude(path) || strings.HasPrefix(filepath.Base(path), ".") {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	return w.watcher.Add(path)
}

func (w *Watcher) isNotePath(path string) bool {
	if w.vault.shouldExclude(path) {
		return false
	}
	if len(w.vault.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := w.vault.extensions[ext]
	return ok
}
