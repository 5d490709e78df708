// Package fixture ensures dataset and pretrained-weight archives exist
// locally before a training benchmark runs. Rules come from a declarative
// yaml manifest keyed on model-name substrings.
package fixture

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/fixtures.yml
var defaultsFS embed.FS

// Archive describes one remote archive and the local paths it owns.
type Archive struct {
	Name    string   `yaml:"name"`    // human-readable label for logging
	URL     string   `yaml:"url"`     // remote archive location
	File    string   `yaml:"archive"` // local archive filename
	Cleanup []string `yaml:"cleanup"` // paths removed before fetching
}

// Rule gates a set of archives on a model-name substring.
type Rule struct {
	Match    string    `yaml:"match"`
	Archives []Archive `yaml:"archives"`
}

// Manifest is an ordered list of fixture rules.
type Manifest struct {
	Rules []Rule `yaml:"rules"`
}

// LoadManifest reads fixture rules from the given yaml file, falling back
// to the embedded defaults when path is empty.
func LoadManifest(path string) (*Manifest, error) {
	var data []byte
	var err error

	if path == "" {
		data, err = defaultsFS.ReadFile("defaults/fixtures.yml")
		if err != nil {
			return nil, fmt.Errorf("read embedded fixture rules: %w", err)
		}
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path comes from CLI flag
		if err != nil {
			return nil, fmt.Errorf("read fixture manifest %s: %w", path, err)
		}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse fixture manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Match returns the rules whose substring matches the model name, in
// manifest order. Rules are independent, several may match at once.
func (m *Manifest) Match(modelName string) []Rule {
	var matched []Rule
	for _, r := range m.Rules {
		if strings.Contains(modelName, r.Match) {
			matched = append(matched, r)
		}
	}
	return matched
}

func (m *Manifest) validate() error {
	for i, r := range m.Rules {
		if r.Match == "" {
			return fmt.Errorf("fixture rule %d: empty match substring", i)
		}
		for j, a := range r.Archives {
			if a.URL == "" {
				return fmt.Errorf("fixture rule %q archive %d: empty url", r.Match, j)
			}
			if a.File == "" {
				return fmt.Errorf("fixture rule %q archive %d: empty archive filename", r.Match, j)
			}
		}
	}
	return nil
}
