package workspace

import (
	"testing"

	"github.com/cursorvault/cursorvault/internal/record"
)

// mapLookup is an in-memory Lookup for tests.
type mapLookup map[string]string

func (m mapLookup) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func testContainer(id string, fragIDs ...string) record.Container {
	c := record.Container{ID: id, Kind: record.KindComposer}
	for _, fid := range fragIDs {
		c.Fragments = append(c.Fragments, record.FragmentRef{ID: fid, Type: 1})
	}
	return c
}

func localRegistry(t *testing.T, uris ...string) *Registry {
	t.Helper()
	content := `{"backupWorkspaces": {"folders": [`
	for i, u := range uris {
		if i > 0 {
			content += ","
		}
		content += `{"folderUri": "` + u + `"}`
	}
	content += `]}}`
	return NewRegistry(writeRegistry(t, content))
}

func TestResolve_NoActiveContext(t *testing.T) {
	r := NewResolver(localRegistry(t), nil)

	if _, ok := r.Resolve(Context{}, testContainer("c1", "f1"), mapLookup{}); ok {
		t.Error("resolution must fail with no active context")
	}
}

func TestResolve_LocalMatch(t *testing.T) {
	r := NewResolver(localRegistry(t, "file:///home/a/proj1"), nil)
	active := Context{Kind: KindLocal, Path: "/home/a/proj1"}
	lookup := mapLookup{
		"checkpointId:c1:f1": `{"workspaceRootName": "proj1"}`,
	}

	resolved, ok := r.Resolve(active, testContainer("c1", "f1"), lookup)
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if resolved.Path != "/home/a/proj1" {
		t.Errorf("resolved path: got %q", resolved.Path)
	}
}

func TestResolve_LocalMismatchSkips(t *testing.T) {
	r := NewResolver(localRegistry(t, "file:///home/a/proj1"), nil)
	active := Context{Kind: KindLocal, Path: "/home/a/proj2"}
	lookup := mapLookup{
		"checkpointId:c1:f1": `{"workspaceRootName": "proj1"}`,
	}

	if _, ok := r.Resolve(active, testContainer("c1", "f1"), lookup); ok {
		t.Error("conversation for proj1 must not resolve against active proj2")
	}
}

func TestResolve_LocalNameNotInRegistry(t *testing.T) {
	r := NewResolver(localRegistry(t), nil)
	active := Context{Kind: KindLocal, Path: "/home/a/proj1"}
	lookup := mapLookup{
		"checkpointId:c1:f1": `{"workspaceRootName": "unknown"}`,
	}

	if _, ok := r.Resolve(active, testContainer("c1", "f1"), lookup); ok {
		t.Error("unregistered workspace name must not resolve")
	}
}

func TestResolve_LocalNoHints(t *testing.T) {
	r := NewResolver(localRegistry(t, "file:///home/a/proj1"), nil)
	active := Context{Kind: KindLocal, Path: "/home/a/proj1"}

	if _, ok := r.Resolve(active, testContainer("c1", "f1", "f2"), mapLookup{}); ok {
		t.Error("no layout hints means no resolution")
	}
}

func TestResolve_RemoteAttachmentMatch(t *testing.T) {
	r := NewResolver(localRegistry(t), nil)
	active := Context{Kind: KindWSL, Host: "Ubuntu", Path: "/home/u/proj"}
	lookup := mapLookup{
		"bubbleId:c1:f1": `{
			"type": 1,
			"text": "check this",
			"context": {"fileSelections": [{"uri": {"scheme": "vscode-remote", "authority": "wsl+Ubuntu", "path": "/home/u/proj/src/main.go"}}]}
		}`,
	}

	resolved, ok := r.Resolve(active, testContainer("c1", "f1"), lookup)
	if !ok {
		t.Fatal("expected remote resolution to succeed")
	}
	if resolved.String() != "Ubuntu:/home/u/proj" {
		t.Errorf("resolved: got %q", resolved.String())
	}
}

func TestResolve_RemoteOtherDistroSkips(t *testing.T) {
	r := NewResolver(localRegistry(t), nil)
	active := Context{Kind: KindWSL, Host: "Ubuntu", Path: "/home/u/proj"}
	lookup := mapLookup{
		"bubbleId:c1:f1": `{
			"type": 1,
			"text": "x",
			"attachedFileCodeChunksUris": ["vscode-remote://wsl+Debian/home/u/proj/a.go"]
		}`,
	}

	if _, ok := r.Resolve(active, testContainer("c1", "f1"), lookup); ok {
		t.Error("conversation in another distro must not resolve")
	}
}

func TestResolve_RemoteForeignAttachmentFirst(t *testing.T) {
	r := NewResolver(localRegistry(t), nil)
	active := Context{Kind: KindWSL, Host: "Ubuntu", Path: "/home/u/proj"}
	// A shared file from another distro precedes the active remote's own
	// files; the scan must not stop at the first non-matching URI.
	lookup := mapLookup{
		"bubbleId:c1:f1": `{
			"type": 1,
			"text": "compare these",
			"attachedFileCodeChunksUris": [
				"vscode-remote://wsl+Debian/etc/nginx/nginx.conf",
				"vscode-remote://wsl+Ubuntu/home/u/proj/conf/nginx.conf"
			]
		}`,
	}

	resolved, ok := r.Resolve(active, testContainer("c1", "f1"), lookup)
	if !ok {
		t.Fatal("a later matching attachment must still resolve")
	}
	if resolved.String() != "Ubuntu:/home/u/proj" {
		t.Errorf("resolved: got %q", resolved.String())
	}
}

func TestResolve_RemoteIgnoresLocalAttachments(t *testing.T) {
	r := NewResolver(localRegistry(t), nil)
	active := Context{Kind: KindSSH, Host: "box", Path: "/srv/app"}
	lookup := mapLookup{
		"bubbleId:c1:f1": `{"type": 1, "text": "x", "attachedFileCodeChunksUris": ["file:///tmp/scratch.go"]}`,
		"bubbleId:c1:f2": `{"type": 2, "text": "y", "attachedFileCodeChunksUris": ["vscode-remote://ssh-remote+box/srv/app/handler.go"]}`,
	}
	c := testContainer("c1", "f1", "f2")

	resolved, ok := r.Resolve(active, c, lookup)
	if !ok {
		t.Fatal("expected resolution from second fragment")
	}
	if resolved.String() != "box:/srv/app" {
		t.Errorf("resolved: got %q", resolved.String())
	}
}
