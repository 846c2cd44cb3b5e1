package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}
	return path
}

func TestRegistry_ResolveName(t *testing.T) {
	path := writeRegistry(t, `{
		"backupWorkspaces": {
			"folders": [
				{"folderUri": "file:///home/u/alpha"},
				{"folderUri": "file:///home/u/beta"},
				{"folderUri": "vscode-remote://wsl+Ubuntu/home/u/gamma"}
			]
		}
	}`)
	r := NewRegistry(path)

	ctx, ok := r.ResolveName("beta")
	if !ok {
		t.Fatal("expected beta to resolve")
	}
	if ctx.Path != "/home/u/beta" || !ctx.IsLocal() {
		t.Errorf("got %+v", ctx)
	}

	ctx, ok = r.ResolveName("gamma")
	if !ok {
		t.Fatal("expected gamma to resolve")
	}
	if ctx.Kind != KindWSL || ctx.Host != "Ubuntu" {
		t.Errorf("got %+v", ctx)
	}

	if _, ok := r.ResolveName("delta"); ok {
		t.Error("unknown name should not resolve")
	}
	if _, ok := r.ResolveName(""); ok {
		t.Error("empty name should not resolve")
	}
}

func TestRegistry_MissingFile(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "nope.json"))

	if _, ok := r.ResolveName("anything"); ok {
		t.Error("missing registry should resolve nothing")
	}
	if len(r.All()) != 0 {
		t.Errorf("expected empty registry, got %d entries", len(r.All()))
	}
}

func TestRegistry_SkipsBadURIs(t *testing.T) {
	path := writeRegistry(t, `{
		"backupWorkspaces": {
			"folders": [
				{"folderUri": "http://not-a-workspace"},
				{"folderUri": "file:///home/u/good"}
			]
		}
	}`)
	r := NewRegistry(path)

	if len(r.All()) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(r.All()))
	}
	if _, ok := r.ResolveName("good"); !ok {
		t.Error("good entry should survive a bad sibling")
	}
}

func TestRegistry_Reload(t *testing.T) {
	path := writeRegistry(t, `{"backupWorkspaces": {"folders": [{"folderUri": "file:///home/u/one"}]}}`)
	r := NewRegistry(path)

	if err := os.WriteFile(path, []byte(`{"backupWorkspaces": {"folders": [{"folderUri": "file:///home/u/two"}]}}`), 0o644); err != nil {
		t.Fatalf("rewrite registry: %v", err)
	}
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if _, ok := r.ResolveName("one"); ok {
		t.Error("stale entry survived reload")
	}
	if _, ok := r.ResolveName("two"); !ok {
		t.Error("new entry missing after reload")
	}
}
