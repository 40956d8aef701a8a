// Package config loads the compiler's YAML configuration file: which
// domain record classes a compile run has available (internal/builtins'
// DomainClasses is the full catalog; a project may want a narrower
// allow-list so an unexpected import doesn't silently reach the chain)
// and how diagnostics should be printed.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Compiler is the top-level shape of eopsin.yml.
type Compiler struct {
	// Domain lists which of internal/builtins' DomainClasses a compile run
	// may reference. An empty list means every registered class is
	// available, matching the compiler's own default.
	Domain DomainConfig `yaml:"domain"`

	// Diagnostics controls how the CLI renders a *errors.Diagnostic.
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// DomainConfig narrows the set of domain record classes a project compiles
// against.
type DomainConfig struct {
	Allow []string `yaml:"allow"`
}

// DiagnosticsConfig controls CLI-facing diagnostic rendering. These fields
// have no effect on the core compiler, which always returns a
// *errors.Diagnostic regardless of how the caller chooses to print it.
type DiagnosticsConfig struct {
	Color   bool `yaml:"color"`
	Compact bool `yaml:"compact_json"`
}

// Default returns the configuration a compile run uses when no eopsin.yml
// is found: every domain class available, colorized, pretty-printed
// diagnostics.
func Default() *Compiler {
	return &Compiler{
		Diagnostics: DiagnosticsConfig{Color: true, Compact: false},
	}
}

// Load reads and parses a configuration file at path.
func Load(path string) (*Compiler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Find walks upward from startDir looking for an eopsin.yml, the same
// nearest-ancestor search a project-local tool config uses to avoid
// requiring an explicit --config flag for every invocation.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "eopsin.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("config: no eopsin.yml found above %s", startDir)
}

// LoadNearest finds and loads the nearest eopsin.yml above startDir,
// falling back to Default if none exists.
func LoadNearest(startDir string) (*Compiler, error) {
	path, err := Find(startDir)
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}

// AllowsClass reports whether name may be used by a compile run under this
// configuration. An empty allow-list permits every domain class.
func (c *Compiler) AllowsClass(name string) bool {
	if len(c.Domain.Allow) == 0 {
		return true
	}
	for _, allowed := range c.Domain.Allow {
		if allowed == name {
			return true
		}
	}
	return false
}
