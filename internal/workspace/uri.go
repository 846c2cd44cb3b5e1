// Package workspace resolves which project context a conversation belongs
// to. Cursor records locations in several ad hoc URI forms; each scheme gets
// its own parser returning the one canonical Context shape so the matching
// logic never touches raw strings.
package workspace

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Kind classifies a project context location.
type Kind string

const (
	KindLocal        Kind = "local"
	KindWSL          Kind = "wsl"
	KindSSH          Kind = "ssh"
	KindDevContainer Kind = "dev-container"
	KindCodespace    Kind = "codespace"
)

// Context is a canonical project location: a plain local path, or a remote
// path qualified by a host, WSL distro, or container identifier.
type Context struct {
	Kind Kind
	Host string // distro, ssh host, or container id; empty for local
	Path string
}

// IsZero reports whether the context is unset.
func (c Context) IsZero() bool {
	return c.Kind == "" && c.Host == "" && c.Path == ""
}

// IsLocal reports whether the context is a plain local path.
func (c Context) IsLocal() bool {
	return c.Kind == KindLocal
}

// String renders the single comparable form: the path for local contexts,
// "<host-or-distro-or-container-id>:<path>" for remote ones.
func (c Context) String() string {
	if c.IsLocal() {
		return c.Path
	}
	return c.Host + ":" + c.Path
}

// ParseFolderURI parses a workspace folderUri from Cursor's registry or an
// attachment reference into a canonical Context. Supported forms:
//
//	file:///home/u/proj
//	vscode-remote://wsl+Ubuntu/home/u/proj
//	vscode-remote://ssh-remote+host/home/u/proj
//	vscode-remote://dev-container+1a2b.../workspaces/proj
//	vscode-remote://codespaces+name/workspaces/proj
//	/home/u/proj  (bare path, treated as local)
func ParseFolderURI(raw string) (Context, error) {
	if raw == "" {
		return Context{}, fmt.Errorf("workspace: empty folder URI")
	}
	if strings.HasPrefix(raw, "/") {
		return Context{Kind: KindLocal, Path: path.Clean(raw)}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Context{}, fmt.Errorf("workspace: parse folder URI %q: %w", raw, err)
	}

	switch u.Scheme {
	case "file":
		p, err := url.PathUnescape(u.Path)
		if err != nil || p == "" {
			return Context{}, fmt.Errorf("workspace: bad file URI %q", raw)
		}
		return Context{Kind: KindLocal, Path: path.Clean(p)}, nil

	case "vscode-remote":
		return parseRemoteAuthority(u, raw)
	}

	return Context{}, fmt.Errorf("workspace: unsupported URI scheme %q", u.Scheme)
}

// parseRemoteAuthority splits a vscode-remote authority ("<type>+<id>") and
// classifies it. The "+" is sometimes percent-encoded as %2B.
func parseRemoteAuthority(u *url.URL, raw string) (Context, error) {
	authority, err := url.PathUnescape(u.Host)
	if err != nil {
		authority = u.Host
	}

	remoteType, id, ok := strings.Cut(authority, "+")
	if !ok || id == "" {
		return Context{}, fmt.Errorf("workspace: bad remote authority %q", raw)
	}

	p := u.Path
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	if p == "" {
		return Context{}, fmt.Errorf("workspace: remote URI %q has no path", raw)
	}
	p = path.Clean(p)

	switch remoteType {
	case "wsl":
		return Context{Kind: KindWSL, Host: id, Path: p}, nil
	case "ssh-remote":
		return Context{Kind: KindSSH, Host: id, Path: p}, nil
	case "dev-container", "attached-container":
		return Context{Kind: KindDevContainer, Host: id, Path: p}, nil
	case "codespaces":
		return Context{Kind: KindCodespace, Host: id, Path: p}, nil
	}

	return Context{}, fmt.Errorf("workspace: unknown remote type %q in %q", remoteType, raw)
}

// DeriveProjectRoot walks the context's path segments down to the project
// root that would have been registered as a workspace folder. Attachment
// URIs point at files deep inside the tree; the root is what matching runs
// against.
func DeriveProjectRoot(c Context) Context {
	segs := splitPath(c.Path)
	if len(segs) == 0 {
		return c
	}

	keep := len(segs)
	switch segs[0] {
	case "workspaces":
		// Dev containers and codespaces mount projects at /workspaces/<name>.
		keep = 2
	case "home", "Users":
		// /home/<user>/<project> (or macOS /Users/<user>/<project>).
		keep = 3
	case "root":
		keep = 2
	case "mnt":
		// WSL drive mounts: /mnt/<drive>/.../<project> is unbounded; keep
		// the full path and rely on prefix matching.
	}
	if keep > len(segs) {
		keep = len(segs)
	}

	c.Path = "/" + strings.Join(segs[:keep], "/")
	return c
}

// Matches reports whether resolved belongs to the active context. Local
// contexts require normalized path equality; remote contexts match when host
// and kind agree and one path is a prefix of the other at a segment
// boundary, since remote identifiers may carry a deeper dynamic path than
// the registered root.
func Matches(active, resolved Context) bool {
	if active.IsZero() || resolved.IsZero() {
		return false
	}
	if active.IsLocal() != resolved.IsLocal() {
		return false
	}
	if active.IsLocal() {
		return path.Clean(active.Path) == path.Clean(resolved.Path)
	}
	if active.Kind != resolved.Kind || active.Host != resolved.Host {
		return false
	}
	return pathHasPrefix(resolved.Path, active.Path) || pathHasPrefix(active.Path, resolved.Path)
}

// pathHasPrefix reports whether p equals prefix or sits beneath it.
func pathHasPrefix(p, prefix string) bool {
	p, prefix = path.Clean(p), path.Clean(prefix)
	if p == prefix {
		return true
	}
	if prefix == "/" {
		return strings.HasPrefix(p, "/")
	}
	return strings.HasPrefix(p, prefix+"/")
}

// Basename returns the final path segment of the context's path.
func (c Context) Basename() string {
	return path.Base(c.Path)
}

func splitPath(p string) []string {
	p = strings.Trim(path.Clean(p), "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}
