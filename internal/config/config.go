// Package config loads the project configuration from defaults, the
// .tokpat.yaml file, TOKPAT_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	FileName    = ".tokpat.yaml"
	FileNameAlt = ".tokpat.yml"

	envPrefix = "TOKPAT_"
)

type Config struct {
	// Rules lists rule files, relative to the config file.
	Rules []string `koanf:"rules" yaml:"rules"`
	// Extensions selects the files a directory walk picks up.
	Extensions  []string `koanf:"extensions" yaml:"extensions"`
	Exclude     []string `koanf:"exclude" yaml:"exclude,omitempty"`
	CacheDir    string   `koanf:"cache_dir" yaml:"cache_dir"`
	NoCache     bool     `koanf:"no_cache" yaml:"no_cache,omitempty"`
	Concurrency int      `koanf:"concurrency" yaml:"concurrency"`
	LogLevel    string   `koanf:"log_level" yaml:"log_level"`

	// File is the config file that was read, if any.
	File string `koanf:"-" yaml:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Rules:       []string{"rules.yaml"},
		Extensions:  []string{".rs"},
		CacheDir:    ".tokpat-cache",
		Concurrency: runtime.NumCPU(),
		LogLevel:    "info",
	}
}

func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"rules":       d.Rules,
		"extensions":  d.Extensions,
		"exclude":     []string{},
		"cache_dir":   d.CacheDir,
		"no_cache":    d.NoCache,
		"concurrency": d.Concurrency,
		"log_level":   d.LogLevel,
	}
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"ext":   "extensions",
	"rules": "rules",
}

// findConfigFile returns explicit if set, otherwise the config file in dir.
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{FileName, FileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load builds the configuration. cfgFile may be empty, in which case the
// working directory is searched. flags may be nil; only flags the user set
// take part.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path := findConfigFile(cfgFile, cwd)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// TOKPAT_CACHE_DIR -> cache_dir
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if path != "" {
		cfg.File = path
		base := filepath.Dir(path)
		if flags == nil || !flags.Changed("rules") {
			for i, r := range cfg.Rules {
				cfg.Rules[i] = resolvePathRelativeTo(r, base)
			}
		}
		if flags == nil || !flags.Changed("cache-dir") {
			cfg.CacheDir = resolvePathRelativeTo(cfg.CacheDir, base)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
