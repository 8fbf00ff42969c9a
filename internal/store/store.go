package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ClaudeConfig holds Claude Code CLI settings.
type ClaudeConfig struct {
	// Path is an explicit path to the claude binary. Blank means auto-detect.
	Path string `yaml:"path,omitempty"`
}

// PromptConfig holds prompt customization.
type PromptConfig struct {
	// Extra is appended to the built-in instruction block.
	Extra string `yaml:"extra,omitempty"`
}

// CommitConfig holds commit behavior settings.
type CommitConfig struct {
	// Confirm asks before running git commit with a generated message.
	Confirm bool `yaml:"confirm"`
}

// Config holds scribe configuration.
type Config struct {
	Version string       `yaml:"version"`
	Debug   bool         `yaml:"debug"`
	Claude  ClaudeConfig `yaml:"claude,omitempty"`
	Prompt  PromptConfig `yaml:"prompt,omitempty"`
	Commit  CommitConfig `yaml:"commit,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Version: "1",
		Commit: CommitConfig{
			Confirm: true,
		},
	}
}

// Store represents a loaded SCRIBE_HOME.
type Store struct {
	Home   string
	Config Config
}

// Issue represents a health check finding.
type Issue struct {
	Severity string // "warning" or "error"
	Message  string
}

// Home returns the SCRIBE_HOME path, respecting the SCRIBE_HOME env var.
func Home() string {
	if h := os.Getenv("SCRIBE_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".scribe")
	}
	return filepath.Join(home, ".scribe")
}

// Init creates the SCRIBE_HOME directory and default config.
func Init(home string, force bool) error {
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); err == nil && !force {
		return fmt.Errorf("SCRIBE_HOME already initialized at %s (use --force to reinitialize)", home)
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", home, err)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Load reads an existing SCRIBE_HOME. Missing config fields are filled
// from defaults.
func Load(home string) (*Store, error) {
	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read SCRIBE_HOME config at %s: %w", cfgPath, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config.yaml: %w", err)
	}
	return &Store{Home: home, Config: cfg}, nil
}

// LoadOrDefault loads SCRIBE_HOME if initialized, otherwise returns an
// in-memory store with defaults. Generation works out of the box without
// requiring scribe init.
func LoadOrDefault(home string) *Store {
	s, err := Load(home)
	if err != nil {
		return &Store{Home: home, Config: DefaultConfig()}
	}
	return s
}

// SaveConfig writes the current config to config.yaml.
func (s *Store) SaveConfig() error {
	data, err := yaml.Marshal(s.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	cfgPath := filepath.Join(s.Home, "config.yaml")
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SetConfigValue sets a config value by dot-path key (e.g. "claude.path").
func (s *Store) SetConfigValue(key, value string) error {
	switch key {
	case "claude.path":
		s.Config.Claude.Path = value
	case "debug":
		s.Config.Debug = value == "true"
	case "prompt.extra":
		s.Config.Prompt.Extra = value
	case "commit.confirm":
		s.Config.Commit.Confirm = value == "true"
	default:
		return fmt.Errorf("unknown config key: %s\nValid keys: claude.path, debug, prompt.extra, commit.confirm", key)
	}
	return s.SaveConfig()
}

// Path resolves a path within SCRIBE_HOME.
func (s *Store) Path(parts ...string) string {
	all := append([]string{s.Home}, parts...)
	return filepath.Join(all...)
}

// LogPath returns the debug log file path within SCRIBE_HOME.
func (s *Store) LogPath() string {
	return s.Path("scribe.log")
}

// CheckHealth verifies SCRIBE_HOME integrity.
func CheckHealth(home string) []Issue {
	var issues []Issue

	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		issues = append(issues, Issue{"warning", fmt.Sprintf("no config.yaml at %s (run 'scribe init' to create one)", home)})
		return issues
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		issues = append(issues, Issue{"error", fmt.Sprintf("config.yaml is not valid YAML: %v", err)})
	}

	return issues
}
