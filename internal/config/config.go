// Package config manages shipout configuration and the .shipout directory
// structure. It handles loading, saving, and initializing the per-repository
// configuration, with defaults derived from the repository itself when no
// configuration exists yet.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	ShipoutDir  = ".shipout"
	ConfigFile  = "config"
	JournalFile = "journal.db"
)

// BuildConfig holds the build collaborator commands.
type BuildConfig struct {
	// Check runs the build against the source repository before exporting.
	Check bool `toml:"check"`
	// Command is the build entry point run in the target directory.
	Command string `toml:"command"`
	// SyncCommand refreshes dependencies before the build.
	SyncCommand string `toml:"sync_command"`
	// Manifest gates SyncCommand: the sync runs only when this file exists
	// in the target directory.
	Manifest string `toml:"manifest"`
}

// TargetConfig describes one deployment target.
type TargetConfig struct {
	// Path of the target directory; relative paths resolve against the
	// source repository root.
	Path string `toml:"path"`
	// Remote is the publish URL registered as origin when the target
	// repository is first initialized.
	Remote string `toml:"remote"`
}

// Config represents the shipout configuration.
type Config struct {
	IgnoreDir string                  `toml:"ignore_dir"`
	Build     BuildConfig             `toml:"build"`
	Targets   map[string]TargetConfig `toml:"targets"`

	root string // source repository root
	path string // path to the .shipout directory, empty when running on defaults
}

// Load locates the configuration by walking up from the working directory.
// A repository without a .shipout directory runs on defaults derived from
// the repository name; the run journal is disabled in that case.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return loadFrom(cwd)
}

func loadFrom(startDir string) (*Config, error) {
	if root, ok := findUp(startDir, ShipoutDir, true); ok {
		return readConfig(root)
	}
	root, ok := findUp(startDir, ".git", false)
	if !ok {
		return nil, fmt.Errorf("not a git repository (or any parent up to root)")
	}
	return Defaults(root), nil
}

// findUp walks up from dir looking for an entry named marker. When dirOnly
// is set, only directories match (.git may legitimately be a file in a
// linked worktree). Returns the directory containing the marker.
func findUp(dir, marker string, dirOnly bool) (string, bool) {
	for {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err == nil && (!dirOnly || info.IsDir()) {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func readConfig(root string) (*Config, error) {
	shipoutPath := filepath.Join(root, ShipoutDir)
	data, err := os.ReadFile(filepath.Join(shipoutPath, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.root = root
	cfg.path = shipoutPath
	applyBuildDefaults(&cfg.Build)
	return cfg, nil
}

// Defaults builds the zero-configuration Config for a repository root:
// docs/ ignored, task-runner build gated on a Python manifest, and dev/pub
// target directories named after the repository as siblings of it.
func Defaults(root string) *Config {
	name := filepath.Base(root)
	cfg := &Config{
		IgnoreDir: "docs",
		Build:     BuildConfig{Check: true},
		Targets: map[string]TargetConfig{
			"dev":     {Path: filepath.Join("..", name+"-dev")},
			"publish": {Path: filepath.Join("..", name+"-pub")},
		},
		root: root,
	}
	applyBuildDefaults(&cfg.Build)
	return cfg
}

func applyBuildDefaults(b *BuildConfig) {
	if b.Command == "" {
		b.Command = "task build"
	}
	if b.SyncCommand == "" {
		b.SyncCommand = "uv sync"
	}
	if b.Manifest == "" {
		b.Manifest = "pyproject.toml"
	}
}

// Target returns the configured target for a flow name, with its path
// resolved to an absolute location.
func (c *Config) Target(flow string) (TargetConfig, error) {
	target, ok := c.Targets[flow]
	if !ok {
		return TargetConfig{}, fmt.Errorf("no target configured for %q", flow)
	}
	if target.Path == "" {
		return TargetConfig{}, fmt.Errorf("target %q has no path", flow)
	}
	if !filepath.IsAbs(target.Path) {
		target.Path = filepath.Join(c.root, target.Path)
	}
	return target, nil
}

// Root returns the source repository root.
func (c *Config) Root() string {
	return c.root
}

// ShipoutPath returns the path to the .shipout directory, empty when the
// repository has no configuration directory.
func (c *Config) ShipoutPath() string {
	return c.path
}

// DatabasePath returns the path to the run journal database, empty when
// journaling is disabled.
func (c *Config) DatabasePath() string {
	if c.path == "" {
		return ""
	}
	return filepath.Join(c.path, JournalFile)
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("no .shipout directory to save into")
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.path, ConfigFile), data, 0644)
}

// Initialize creates the .shipout directory with a starter configuration at
// the enclosing repository root.
func Initialize() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return initializeFrom(cwd)
}

func initializeFrom(startDir string) (*Config, error) {
	root, ok := findUp(startDir, ".git", false)
	if !ok {
		return nil, fmt.Errorf("not a git repository (or any parent up to root)")
	}

	shipoutPath := filepath.Join(root, ShipoutDir)
	if _, err := os.Stat(shipoutPath); err == nil {
		return nil, fmt.Errorf("shipout configuration already exists")
	}

	if err := os.MkdirAll(shipoutPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .shipout directory: %w", err)
	}

	cfg := Defaults(root)
	cfg.path = shipoutPath

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(shipoutPath)
		return nil, err
	}

	return cfg, nil
}
