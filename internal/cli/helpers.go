package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cursorvault/cursorvault/internal/config"
	"github.com/cursorvault/cursorvault/internal/conversation"
	"github.com/cursorvault/cursorvault/internal/cursordb"
	"github.com/cursorvault/cursorvault/internal/engine"
	"github.com/cursorvault/cursorvault/internal/persist"
	"github.com/cursorvault/cursorvault/internal/track"
	"github.com/cursorvault/cursorvault/internal/workspace"
)

// findRoot locates the project root: the nearest ancestor containing
// .cursorvault/, else the nearest containing .git.
func findRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for _, marker := range []string{".cursorvault", ".git"} {
		dir, _ := filepath.Abs(cwd)
		for {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	return "", fmt.Errorf("no project found (no .cursorvault/ or .git in %s or any parent)", cwd)
}

// activeContext derives the project context the engine is scoped to.
func activeContext(cfg config.GlobalConfig, root string) (workspace.Context, error) {
	switch cfg.Context.Kind {
	case "", "local":
		return workspace.Context{Kind: workspace.KindLocal, Path: root}, nil
	}

	host, path, ok := strings.Cut(cfg.Context.Remote, ":")
	if !ok || host == "" || path == "" {
		return workspace.Context{}, fmt.Errorf("context.remote must be \"<host>:<path>\" for kind %q", cfg.Context.Kind)
	}
	return workspace.Context{
		Kind: workspace.Kind(cfg.Context.Kind),
		Host: host,
		Path: path,
	}, nil
}

// newLogger builds a slog logger per config, writing to stderr so stdout
// stays clean for command output.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var lvl slog.Level
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// pipeline bundles the wired extraction components for a project.
type pipeline struct {
	engine   *engine.Engine
	reader   *cursordb.Reader
	registry *workspace.Registry
	store    *persist.Store
	root     string
	cfg      config.GlobalConfig
	logger   *slog.Logger
}

// buildPipeline wires reader, registry, resolver, tracker, and store for the
// project root, reseeding dedup state from the persisted conversations.
func buildPipeline(root string) (*pipeline, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log)

	active, err := activeContext(cfg, root)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.EffectiveDatabasePath()
	if dbPath == "" {
		return nil, fmt.Errorf("cannot locate Cursor storage; set storage.cursor_global_dir in config or run `cursorvault setup`")
	}
	reader, err := cursordb.Open(dbPath)
	if err != nil {
		return nil, err
	}

	registry := workspace.NewRegistry(cfg.Storage.EffectiveRegistryPath())
	resolver := workspace.NewResolver(registry, logger)

	store := persist.NewStore(config.ConversationsDir(root))
	tracker := track.NewTracker()
	if err := store.Reseed(tracker); err != nil {
		reader.Close()
		return nil, err
	}

	eng := engine.New(engine.Options{
		Reader:      reader,
		Resolver:    resolver,
		Tracker:     tracker,
		Store:       store,
		Counter:     conversation.CounterFor(cfg.Tokens.Counter),
		Active:      active,
		ProjectRoot: root,
		FilterCode:  cfg.Filter.IgnoreCodeOutput,
		Logger:      logger,
	})

	return &pipeline{
		engine:   eng,
		reader:   reader,
		registry: registry,
		store:    store,
		root:     root,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Close releases the pipeline's store reader.
func (p *pipeline) Close() {
	_ = p.reader.Close()
}
