// Package config manages global (~/.config/cursorvault/config.toml) and
// per-project (.cursorvault/config.toml) configuration for Cursorvault.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Poll interval bounds in milliseconds. Values outside this range are clamped.
const (
	MinPollIntervalMs = 5000
	MaxPollIntervalMs = 300000

	DefaultPollIntervalMs = 30000
)

// GlobalConfig holds user-wide settings.
type GlobalConfig struct {
	Storage StorageConfig `toml:"storage"`
	Poll    PollConfig    `toml:"poll"`
	Filter  FilterConfig  `toml:"filter"`
	Tokens  TokensConfig  `toml:"tokens"`
	Context ContextConfig `toml:"context"`
	Export  ExportConfig  `toml:"export"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig points at Cursor's on-disk storage. Empty values are filled
// in from per-OS defaults at load time.
type StorageConfig struct {
	// CursorGlobalDir is Cursor's User/globalStorage directory, which holds
	// both state.vscdb and storage.json.
	CursorGlobalDir string `toml:"cursor_global_dir"`
	// DatabasePath overrides the state.vscdb location (mostly for tests).
	DatabasePath string `toml:"database_path"`
	// RegistryPath overrides the storage.json workspace registry location.
	RegistryPath string `toml:"registry_path"`
}

// PollConfig controls the extraction poll loop.
type PollConfig struct {
	AutoSave   bool `toml:"auto_save"`
	IntervalMs int  `toml:"interval_ms"`
}

// FilterConfig controls code redaction of assistant messages.
type FilterConfig struct {
	IgnoreCodeOutput bool `toml:"ignore_code_output"`
}

// TokensConfig selects the token estimator: "heuristic" (word count × 1.3)
// or "tiktoken" (exact cl100k_base counts).
type TokensConfig struct {
	Counter string `toml:"counter"`
}

// ContextConfig describes the active project context the engine is scoped to.
// Kind "local" resolves the project root from the working directory; remote
// kinds ("wsl", "ssh", "dev-container", "codespace") require Remote to be set
// to the canonical "<host-or-distro-or-container-id>:<path>" form.
type ContextConfig struct {
	Kind   string `toml:"kind"`
	Remote string `toml:"remote"`
}

// ExportConfig controls the export command's default formats.
type ExportConfig struct {
	Formats []string `toml:"formats"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// ProjectConfig holds per-project overrides stored in .cursorvault/config.toml.
type ProjectConfig struct {
	Poll    PollConfig    `toml:"poll"`
	Filter  FilterConfig  `toml:"filter"`
	Context ContextConfig `toml:"context"`

	// Which sections were present in the file, so zero values in absent
	// sections don't clobber globals.
	hasPoll    bool
	hasFilter  bool
	hasContext bool
}

// DefaultGlobal returns sensible defaults.
func DefaultGlobal() GlobalConfig {
	return GlobalConfig{
		Storage: StorageConfig{
			CursorGlobalDir: defaultCursorGlobalDir(),
		},
		Poll: PollConfig{
			AutoSave:   true,
			IntervalMs: DefaultPollIntervalMs,
		},
		Tokens:  TokensConfig{Counter: "heuristic"},
		Context: ContextConfig{Kind: "local"},
		Export:  ExportConfig{Formats: []string{"markdown", "json"}},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// defaultCursorGlobalDir returns the per-OS Cursor globalStorage location.
func defaultCursorGlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Cursor", "User", "globalStorage")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Cursor", "User", "globalStorage")
		}
		return filepath.Join(home, "AppData", "Roaming", "Cursor", "User", "globalStorage")
	default:
		return filepath.Join(home, ".config", "Cursor", "User", "globalStorage")
	}
}

// EffectiveDatabasePath returns the effective state.vscdb path.
func (s StorageConfig) EffectiveDatabasePath() string {
	if s.DatabasePath != "" {
		return s.DatabasePath
	}
	if s.CursorGlobalDir == "" {
		return ""
	}
	return filepath.Join(s.CursorGlobalDir, "state.vscdb")
}

// EffectiveRegistryPath returns the effective storage.json path.
func (s StorageConfig) EffectiveRegistryPath() string {
	if s.RegistryPath != "" {
		return s.RegistryPath
	}
	if s.CursorGlobalDir == "" {
		return ""
	}
	return filepath.Join(s.CursorGlobalDir, "storage.json")
}

// ClampedInterval returns the poll interval clamped to [5s, 300s].
func (p PollConfig) ClampedInterval() int {
	switch {
	case p.IntervalMs < MinPollIntervalMs:
		return MinPollIntervalMs
	case p.IntervalMs > MaxPollIntervalMs:
		return MaxPollIntervalMs
	default:
		return p.IntervalMs
	}
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cursorvault", "config.toml"), nil
}

// LoadGlobal loads the global config, applying defaults for any missing values.
func LoadGlobal() (GlobalConfig, error) {
	cfg := DefaultGlobal()

	path, err := GlobalConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("config: load global: %w", err)
			}
		}
	}

	// Env vars override file settings for storage locations.
	if v := os.Getenv("CURSORVAULT_CURSOR_DIR"); v != "" {
		cfg.Storage.CursorGlobalDir = v
	}
	if v := os.Getenv("CURSORVAULT_DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}

	return cfg, nil
}

// SaveGlobal writes the global config to disk.
func SaveGlobal(cfg GlobalConfig) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create global config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// LoadProject loads .cursorvault/config.toml from the given project root.
func LoadProject(root string) (ProjectConfig, error) {
	var cfg ProjectConfig
	path := filepath.Join(root, ".cursorvault", "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: load project: %w", err)
	}
	cfg.hasPoll = meta.IsDefined("poll")
	cfg.hasFilter = meta.IsDefined("filter")
	cfg.hasContext = meta.IsDefined("context")
	return cfg, nil
}

// Load returns the effective config for a project root (global merged with
// project overrides).
func Load(root string) (GlobalConfig, error) {
	global, err := LoadGlobal()
	if err != nil {
		global = DefaultGlobal()
	}

	project, err := LoadProject(root)
	if err != nil {
		return global, nil
	}
	if project.hasPoll {
		global.Poll = project.Poll
	}
	if project.hasFilter {
		global.Filter = project.Filter
	}
	if project.hasContext && project.Context.Kind != "" {
		global.Context = project.Context
	}

	return global, nil
}

// SaveProject writes the project config to .cursorvault/config.toml.
func SaveProject(root string, cfg ProjectConfig) error {
	dir := filepath.Join(root, ".cursorvault")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: mkdir project: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create project config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ProjectVaultDir returns the path to the project's .cursorvault/ directory.
func ProjectVaultDir(root string) string {
	return filepath.Join(root, ".cursorvault")
}

// ConversationsDir returns the directory holding persisted conversation files.
func ConversationsDir(root string) string {
	return filepath.Join(root, ".cursorvault", "conversations")
}
