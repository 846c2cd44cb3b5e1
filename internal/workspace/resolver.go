package workspace

import (
	"log/slog"

	"github.com/cursorvault/cursorvault/internal/cursordb"
	"github.com/cursorvault/cursorvault/internal/record"
)

// Lookup is the point-lookup slice of the datastore reader the resolver
// needs for auxiliary records.
type Lookup interface {
	Get(key string) (string, bool, error)
}

// Resolver decides whether a container belongs to the active project
// context. Stateless per call; auxiliary records are read through the
// supplied Lookup.
type Resolver struct {
	registry *Registry
	logger   *slog.Logger
}

// NewResolver creates a Resolver backed by the given registry.
func NewResolver(registry *Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{registry: registry, logger: logger}
}

// Resolve determines the project context the container belongs to and
// reports whether it matches active. A false result is not an error; the
// conversation simply is not for the current project. First match wins.
func (r *Resolver) Resolve(active Context, c record.Container, lookup Lookup) (Context, bool) {
	// No active context means nothing is attachable.
	if active.IsZero() {
		return Context{}, false
	}

	if active.IsLocal() {
		return r.resolveLocal(active, c, lookup)
	}
	return r.resolveRemote(active, c, lookup)
}

// resolveLocal consults layout records for a declared project root name and
// resolves it through the workspace registry.
func (r *Resolver) resolveLocal(active Context, c record.Container, lookup Lookup) (Context, bool) {
	for _, frag := range c.Fragments {
		raw, ok, err := lookup.Get(cursordb.ContextKey(c.ID, frag.ID))
		if err != nil {
			r.logger.Debug("layout record lookup failed", "container", c.ID, "fragment", frag.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		hint, err := record.DecodeLayoutHint(raw)
		if err != nil || hint.WorkspaceRootName == "" {
			continue
		}

		resolved, found := r.registry.ResolveName(hint.WorkspaceRootName)
		if !found {
			r.logger.Debug("workspace name not in registry", "container", c.ID, "name", hint.WorkspaceRootName)
			return Context{}, false
		}
		if !Matches(active, resolved) {
			return Context{}, false
		}
		return resolved, true
	}
	return Context{}, false
}

// resolveRemote scans fragment attachment URIs for a remote-scheme location
// and derives its project root for prefix matching against active.
func (r *Resolver) resolveRemote(active Context, c record.Container, lookup Lookup) (Context, bool) {
	for _, frag := range c.Fragments {
		raw, ok, err := lookup.Get(cursordb.FragmentKey(c.ID, frag.ID))
		if err != nil {
			r.logger.Debug("fragment lookup failed", "container", c.ID, "fragment", frag.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		body, err := record.DecodeFragment(frag.ID, raw)
		if err != nil {
			continue
		}

		for _, att := range body.Attachments {
			ctx, err := ParseFolderURI(att.URI)
			if err != nil || ctx.IsLocal() {
				continue
			}
			root := DeriveProjectRoot(ctx)
			if Matches(active, root) {
				// The active context is the registered root; the derived
				// path may sit deeper inside it.
				return active, true
			}
			// A non-matching attachment alone does not settle it: the
			// conversation may also reference files under the active
			// remote. Keep scanning.
		}
	}
	return Context{}, false
}
