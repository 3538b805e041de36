package rewrite

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule rewrites every occurrence of Match into Replace. With presets some
// of the rule's parameters; both patterns are specialized with it before
// use.
type Rule struct {
	Name        string         `yaml:"name"`
	Match       string         `yaml:"match"`
	Replace     string         `yaml:"replace"`
	With        map[string]any `yaml:"with,omitempty"`
	Description string         `yaml:"description,omitempty"`
}

type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads the rules of one YAML file.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// LoadFiles reads and concatenates the rules of several files, in order.
func LoadFiles(paths []string) ([]Rule, error) {
	var all []Rule
	for _, path := range paths {
		rules, err := Load(path)
		if err != nil {
			return nil, err
		}
		all = append(all, rules...)
	}
	return all, nil
}

func Parse(data []byte) ([]Rule, error) {
	var cfg RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	for i, r := range cfg.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule #%d: missing name", i+1)
		}
		if r.Match == "" {
			return nil, fmt.Errorf("rule %q: %w", r.Name, errEmptyMatch)
		}
	}
	return cfg.Rules, nil
}

var errEmptyMatch = errors.New("match pattern is empty")
