// Package config loads the aperture configuration by layering defaults,
// an optional YAML file, and environment variables.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/iandesj/aperture/pkg/errors"
)

const (
	// envPrefix is the prefix for configuration environment variables.
	envPrefix = "APERTURE_"
	// configPathVar points at an explicit config file.
	configPathVar = "APERTURE_CONFIG"
	// defaultConfigFile is loaded when present and no explicit path is set.
	defaultConfigFile = "aperture.yaml"
)

// ProviderConfig configures one remote source-control provider.
type ProviderConfig struct {
	Enabled bool     `koanf:"enabled"`
	Token   string   `koanf:"token"`
	Targets []string `koanf:"targets"`
}

// Config is the full aperture configuration.
type Config struct {
	LogLevel   string         `koanf:"log_level"`
	CatalogDir string         `koanf:"catalog_dir"`
	DataDir    string         `koanf:"data_dir"`
	GitHub     ProviderConfig `koanf:"github"`
	GitLab     ProviderConfig `koanf:"gitlab"`
}

// New returns the built-in defaults.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		CatalogDir: "catalog",
		DataDir:    ".aperture",
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML): APERTURE_CONFIG if set, else ./aperture.yaml if present
//  3. env (prefix APERTURE_, "__" nests: APERTURE_GITHUB__TOKEN -> github.token)
func Load() (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv(configPathVar)
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to load config file %s", path)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to load environment config")
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid configuration")
	}
	return &cfg, nil
}

// Snapshot paths inside the data directory.

// ImportedPath is the imported-entities overlay snapshot.
func (c *Config) ImportedPath() string { return filepath.Join(c.DataDir, "imported.json") }

// HiddenPath is the hidden-names overlay snapshot.
func (c *Config) HiddenPath() string { return filepath.Join(c.DataDir, "hidden.json") }

// ActivityCachePath is the activity-metrics cache snapshot.
func (c *Config) ActivityCachePath() string {
	return filepath.Join(c.DataDir, "git-activity-cache.json")
}

// FeaturesPath is the feature-flags overlay snapshot.
func (c *Config) FeaturesPath() string { return filepath.Join(c.DataDir, "features.json") }
