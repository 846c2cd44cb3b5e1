package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Registry is the persisted workspace-name→context mapping read from
// Cursor's global storage.json ({backupWorkspaces: {folders: [{folderUri}]}}).
// It resolves a declared project root name to the full path Cursor actually
// had open under that name.
type Registry struct {
	mu      sync.RWMutex
	path    string
	entries []Context
}

type storageFile struct {
	BackupWorkspaces struct {
		Folders []struct {
			FolderURI string `json:"folderUri"`
		} `json:"folders"`
	} `json:"backupWorkspaces"`
}

// NewRegistry creates a registry reading from the given storage.json path
// and performs an initial load. A missing or unreadable file yields an
// empty registry, not an error; lookups simply miss.
func NewRegistry(path string) *Registry {
	r := &Registry{path: path}
	_ = r.Reload()
	return r
}

// Reload re-reads the registry file. Individual unparseable folder URIs are
// skipped.
func (r *Registry) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("workspace: read registry: %w", err)
	}

	var sf storageFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("workspace: decode registry: %w", err)
	}

	var entries []Context
	for _, f := range sf.BackupWorkspaces.Folders {
		ctx, err := ParseFolderURI(f.FolderURI)
		if err != nil {
			continue
		}
		entries = append(entries, ctx)
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

// ResolveName returns the first registered context whose path's final
// segment equals name.
func (r *Registry) ResolveName(name string) (Context, bool) {
	if name == "" {
		return Context{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Basename() == name {
			return e, true
		}
	}
	return Context{}, false
}

// All returns a copy of the registered contexts.
func (r *Registry) All() []Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Context, len(r.entries))
	copy(out, r.entries)
	return out
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.path
}
