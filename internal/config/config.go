// Package config loads run settings from defaults, a YAML file, a .env file, and
// IMPRUN_* environment variables, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings for one run.
type Config struct {
	Timeout         time.Duration `yaml:"timeout"`
	AllowDuplicates bool          `yaml:"allow_duplicates"`
	Format          string        `yaml:"format"`
	Color           bool          `yaml:"color"`
	OutputPath      string        `yaml:"output"`
	Verbose         bool          `yaml:"verbose"`
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Option configures Load.
type Option func(*loader)

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Timeout:    DefaultTimeout,
		Format:     DefaultFormat,
		Color:      DefaultColor,
		OutputPath: DefaultOutputPath,
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped when path
// is empty), then the .env file, then the process environment. Unknown YAML keys
// are rejected. A missing .env file is not an error; a missing YAML file is.
func Load(path string, options ...Option) (*Config, error) {
	l := &loader{envFile: DefaultEnvFile, lookup: os.LookupEnv}

	for _, o := range options {
		o(l)
	}

	cfg := New()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	dotenv, err := readDotenv(l.envFile)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := l.lookup(key); ok {
			return value, true
		}

		value, ok := dotenv[key]

		return value, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithEnvFile sets the .env file to read. Empty skips it.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = path
	}
}

// WithLookup replaces os.LookupEnv as the environment source.
func WithLookup(lookup LookupFunc) Option {
	return func(l *loader) {
		l.lookup = lookup
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("%w: format %q (want %q or %q)", ErrInvalid, c.Format, FormatText, FormatJSON)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalid, c.Timeout)
	}

	return nil
}

// ErrInvalid is returned for settings outside their allowed values.
var ErrInvalid = errors.New("invalid config")

type loader struct {
	envFile string
	lookup  LookupFunc
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	if value, ok := lookup(EnvTimeout); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvTimeout, err)
		}

		c.Timeout = timeout
	}

	for key, target := range map[string]*bool{
		EnvAllowDuplicates: &c.AllowDuplicates,
		EnvColor:           &c.Color,
		EnvVerbose:         &c.Verbose,
	} {
		value, ok := lookup(key)
		if !ok {
			continue
		}

		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
		}

		*target = parsed
	}

	if value, ok := lookup(EnvFormat); ok {
		c.Format = value
	}

	if value, ok := lookup(EnvOutput); ok {
		c.OutputPath = value
	}

	return nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file: %w", err)
	}

	return nil
}

func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil //nolint:nilnil // no file, no values
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // a missing .env is optional
	}

	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}

	return values, nil
}
