// Package config handles schemagen CLI configuration: a YAML file, an
// optional .env file, and SCHEMAGEN_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the current version of the config file format.
const CurrentVersion = 1

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "schemagen.yaml"

const envPrefix = "SCHEMAGEN_"

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents the schemagen.yaml file.
type Config struct {
	Version        int               `yaml:"version"`
	BaseDir        string            `yaml:"base_dir,omitempty"`
	Seed           *uint64           `yaml:"seed,omitempty"`
	Count          int               `yaml:"count,omitempty"`
	Format         string            `yaml:"format,omitempty"`
	AllowHTTP      bool              `yaml:"allow_http"`
	RequestTimeout time.Duration     `yaml:"request_timeout,omitempty"`
	MetaValidation bool              `yaml:"meta_validation"`
	LogLevel       string            `yaml:"log_level,omitempty"`
	Generators     map[string]string `yaml:"generators,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:        CurrentVersion,
		Count:          1,
		Format:         FormatJSON,
		AllowHTTP:      true,
		MetaValidation: true,
		LogLevel:       "warn",
	}
}

// Load reads a Config from path on top of the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault reads path, falling back to the defaults when the file does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the Config to path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from SCHEMAGEN_* variables read through getenv.
// SCHEMAGEN_GENERATORS takes comma separated key=name pairs.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	lookup := func(name string) (string, bool) {
		value := strings.TrimSpace(getenv(envPrefix + name))
		return value, value != ""
	}

	if value, ok := lookup("BASE_DIR"); ok {
		c.BaseDir = value
	}
	if value, ok := lookup("FORMAT"); ok {
		c.Format = strings.ToLower(value)
	}
	if value, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = value
	}
	if value, ok := lookup("SEED"); ok {
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sSEED: %w", envPrefix, err)
		}
		c.Seed = &seed
	}
	if value, ok := lookup("COUNT"); ok {
		count, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %sCOUNT: %w", envPrefix, err)
		}
		c.Count = count
	}
	if value, ok := lookup("ALLOW_HTTP"); ok {
		allow, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %sALLOW_HTTP: %w", envPrefix, err)
		}
		c.AllowHTTP = allow
	}
	if value, ok := lookup("META_VALIDATION"); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %sMETA_VALIDATION: %w", envPrefix, err)
		}
		c.MetaValidation = enabled
	}
	if value, ok := lookup("REQUEST_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: %sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		c.RequestTimeout = timeout
	}
	if value, ok := lookup("GENERATORS"); ok {
		mapping, err := ParseMapping(strings.Split(value, ","))
		if err != nil {
			return fmt.Errorf("config: %sGENERATORS: %w", envPrefix, err)
		}
		c.MergeGenerators(mapping)
	}
	return nil
}

// MergeGenerators adds mapping entries, replacing existing keys.
func (c *Config) MergeGenerators(mapping map[string]string) {
	if len(mapping) == 0 {
		return
	}
	if c.Generators == nil {
		c.Generators = make(map[string]string, len(mapping))
	}
	for key, name := range mapping {
		c.Generators[key] = name
	}
}

// ParseMapping turns key=name pairs into a generator mapping.
func ParseMapping(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, name, ok := strings.Cut(pair, "=")
		key, name = strings.TrimSpace(key), strings.TrimSpace(name)
		if !ok || key == "" || name == "" {
			return nil, fmt.Errorf("invalid generator mapping %q, want key=name", pair)
		}
		out[key] = name
	}
	return out, nil
}

// Validate checks the configuration for supported values.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return errors.New("unsupported config version")
	}
	if c.Count < 0 {
		return errors.New("count must not be negative")
	}
	switch c.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unsupported output format %q", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	return level, nil
}
