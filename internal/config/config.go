// Package config loads and persists unc's configuration: a YAML file
// under the user config directory, overridable by CODE_UNC_* environment
// variables and a local .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CODE_UNC_"

// Config is the on-disk configuration shape.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Review   ReviewConfig   `yaml:"review"`
	Output   OutputConfig   `yaml:"output"`
	Cache    CacheConfig    `yaml:"cache"`
	GitHub   GitHubConfig   `yaml:"github"`
}

// ProviderConfig selects and tunes the model backend.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
}

// ReviewConfig holds the default review parameters.
type ReviewConfig struct {
	Focus           string   `yaml:"focus"`
	MaxFiles        int      `yaml:"max_files"`
	IncludePatterns []string `yaml:"include_patterns,omitempty"`
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
	RedactSecrets   bool     `yaml:"redact_secrets"`
	// SensitivePatterns name files whose content never leaves the
	// machine, regardless of the diff.
	SensitivePatterns []string `yaml:"sensitive_patterns,omitempty"`
}

// OutputConfig holds formatting defaults.
type OutputConfig struct {
	Format    string `yaml:"format"`
	Color     bool   `yaml:"color"`
	SaveToDir string `yaml:"save_to_dir,omitempty"`
}

// CacheConfig controls the SQLite result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Path    string        `yaml:"path,omitempty"`
}

// GitHubConfig holds PR integration settings. The token itself always
// comes from GITHUB_TOKEN; it is never written to disk.
type GitHubConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:       "anthropic",
			Model:      "claude-sonnet-4-5",
			Timeout:    120 * time.Second,
			MaxRetries: 3,
			RetryDelay: time.Second,
			MaxTokens:  4096,
		},
		Review: ReviewConfig{
			Focus:         "general",
			MaxFiles:      50,
			RedactSecrets: true,
			ExcludePatterns: []string{
				"*.lock", "*.sum", "node_modules/*", "vendor/*", "dist/*",
			},
			SensitivePatterns: []string{
				"*.pem", "*.key", "**/.env", "**/id_rsa", "**/credentials",
			},
		},
		Output: OutputConfig{
			Format: "rich",
			Color:  true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
	}
}

// Dir returns the unc config directory, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(base, "unc"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file if it exists, then applies .env and
// CODE_UNC_* environment overrides. A missing file yields defaults.
func Load() (*Config, error) {
	// Best effort; a missing .env is the common case.
	_ = godotenv.Load()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the given YAML file over defaults, then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv folds CODE_UNC_* variables into the config. Only a focused
// subset is supported; secrets prefer the provider-native variables.
func (c *Config) applyEnv() {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	setStr("PROVIDER", &c.Provider.Name)
	setStr("MODEL", &c.Provider.Model)
	setStr("API_KEY", &c.Provider.APIKey)
	setStr("BASE_URL", &c.Provider.BaseURL)
	setStr("FOCUS", &c.Review.Focus)
	setStr("FORMAT", &c.Output.Format)
	setStr("CACHE_PATH", &c.Cache.Path)

	if v := os.Getenv(envPrefix + "MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Review.MaxFiles = n
		}
	}
	if v := os.Getenv(envPrefix + "CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = b
		}
	}
	if v := os.Getenv(envPrefix + "CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Cache.TTL = d
		}
	}
}

// Save writes the config as YAML, creating the directory as needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to the given path.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// DataDir returns the directory for the SQLite database, creating it.
func DataDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	return dir, nil
}

// DBPath resolves the SQLite database path from config or the default
// location under the config directory.
func (c *Config) DBPath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "unc.db"), nil
}
