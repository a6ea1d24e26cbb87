package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultServer is the panel address used when nothing else is set.
const DefaultServer = "localhost:8000"

// ErrProfileNotFound is returned for an unknown profile name.
var ErrProfileNotFound = errors.New("profile not found")

// CLIConfig is the on-disk CLI configuration.
type CLIConfig struct {
	// CurrentProfile is used when no profile is named explicitly.
	CurrentProfile string `yaml:"current_profile,omitempty"`

	// Profiles are the saved panels by name.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile is one saved status panel.
type Profile struct {
	Server string `yaml:"server"`
	CAFile string `yaml:"ca_file,omitempty"`
}

// Default returns an empty configuration.
func Default() *CLIConfig {
	return &CLIConfig{Profiles: make(map[string]Profile)}
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sysvalidator", "cli.yaml")
}

// Load reads the CLI configuration. An empty path selects
// DefaultConfigPath; a missing file yields Default.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions, creating the
// parent directory.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode cli config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Resolve returns the named profile, or the current one when name is
// empty. With no name and no current profile it returns a profile for
// DefaultServer.
func (c *CLIConfig) Resolve(name string) (Profile, error) {
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return Profile{Server: DefaultServer}, nil
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p, nil
}

// Set adds or replaces a profile.
func (c *CLIConfig) Set(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = p
}

// Use makes name the current profile.
func (c *CLIConfig) Use(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.CurrentProfile = name
	return nil
}

// Names returns the profile names in sorted order.
func (c *CLIConfig) Names() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
