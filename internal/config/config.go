package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// CatalogConfig locates the perfume catalog.
type CatalogConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv, xlsx, yaml; empty detects from the extension
	Sheet  string `yaml:"sheet"`
}

// RankerConfig configures the similarity ranker.
type RankerConfig struct {
	TopK          int      `yaml:"top_k"`
	Weighting     string   `yaml:"weighting"` // repeat, multiply
	MinWeight     int      `yaml:"min_weight"`
	MaxWeight     int      `yaml:"max_weight"`
	DefaultWeight int      `yaml:"default_weight"`
	ExactLimit    int      `yaml:"exact_limit"` // -1 = no limit; 0 or unset = default (3)
	Stopwords     []string `yaml:"stopwords,omitempty"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_secs"`
	WriteTimeoutSec int    `yaml:"write_timeout_secs"`
	ShutdownSec     int    `yaml:"shutdown_timeout_secs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // local, dev, prod
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // output path; stderr when empty
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Ranker  RankerConfig  `yaml:"ranker"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config bytes, expanding ${VAR} references, then applies defaults
// and validates.
func Parse(data []byte) (*AppConfig, error) {
	data = expandEnvVars(data)
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/perfume/config.yaml.
// If neither exists, it writes defaults to ~/.config/perfume/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyDefaults fills zero values with defaults. A zero ranker.exact_limit is treated as
// unset; hiding every exact match is not a supported setting.
func (c *AppConfig) ApplyDefaults() {
	if c.Catalog.Path == "" {
		c.Catalog.Path = "perfumes.csv"
	}
	if c.Ranker.TopK == 0 {
		c.Ranker.TopK = 3
	}
	if c.Ranker.Weighting == "" {
		c.Ranker.Weighting = "repeat"
	}
	if c.Ranker.MinWeight == 0 {
		c.Ranker.MinWeight = 1
	}
	if c.Ranker.MaxWeight == 0 {
		c.Ranker.MaxWeight = 3
	}
	if c.Ranker.DefaultWeight == 0 {
		c.Ranker.DefaultWeight = 2
	}
	if c.Ranker.ExactLimit == 0 {
		c.Ranker.ExactLimit = 3
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeoutSec == 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec == 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec == 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the config for consistency.
func (c *AppConfig) Validate() error {
	switch c.Catalog.Format {
	case "", "csv", "xlsx", "yaml":
	default:
		return fmt.Errorf("catalog.format must be csv, xlsx or yaml, got %q", c.Catalog.Format)
	}
	if c.Ranker.TopK < 1 {
		return fmt.Errorf("ranker.top_k must be >= 1, got %d", c.Ranker.TopK)
	}
	switch c.Ranker.Weighting {
	case "repeat", "multiply":
	default:
		return fmt.Errorf(`ranker.weighting must be "repeat" or "multiply", got %q`, c.Ranker.Weighting)
	}
	r := c.Ranker
	if r.MinWeight < 1 || r.MinWeight > r.DefaultWeight || r.DefaultWeight > r.MaxWeight {
		return fmt.Errorf("ranker weights must satisfy 1 <= min (%d) <= default (%d) <= max (%d)",
			r.MinWeight, r.DefaultWeight, r.MaxWeight)
	}
	if r.ExactLimit < -1 {
		return fmt.Errorf("ranker.exact_limit must be >= -1, got %d", r.ExactLimit)
	}
	switch c.Logging.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("logging.env must be local, dev or prod, got %q", c.Logging.Env)
	}
	return nil
}

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} with the environment value (empty if unset).
func expandEnvVars(data []byte) []byte {
	return envVarRe.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envVarRe.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "perfume", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	return cfg
}
