// Package config loads store configuration manifests.
//
// A manifest is a YAML file declaring the store options and the strategy
// bindings a host application wants in place before Init. Manifests are
// validated against an embedded CUE schema, so a typo in a medium name or
// a misshapen strategy entry fails loudly at load time instead of
// silently resolving to no strategy at runtime.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/mfshell/shellstore/internal/coordinator"
	"github.com/mfshell/shellstore/internal/strategy"
)

//go:embed schema.cue
var schemaCUE string

// Manifest mirrors the YAML configuration file.
type Manifest struct {
	StorageKey        string         `yaml:"storage_key"`
	EnablePersistence bool           `yaml:"enable_persistence"`
	EnableEncryption  bool           `yaml:"enable_encryption"`
	Strategies        []StrategyDecl `yaml:"strategies"`
}

// StrategyDecl is one prefix-to-policy binding from the manifest.
type StrategyDecl struct {
	Prefix    string `yaml:"prefix"`
	Medium    string `yaml:"medium"`
	Encrypted bool   `yaml:"encrypted"`
}

// Load reads, validates, and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML against the schema and decodes it.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// validate unifies the raw document with the #Manifest schema.
func validate(raw map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Manifest"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("encode manifest for validation: %w", err)
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}

// Options converts the manifest into coordinator Init options.
func (m *Manifest) Options() coordinator.Options {
	return coordinator.Options{
		StorageKey:        m.StorageKey,
		EnablePersistence: m.EnablePersistence,
		EnableEncryption:  m.EnableEncryption,
	}
}

// Apply registers every declared strategy on the coordinator. Safe to call
// before Init.
func (m *Manifest) Apply(c *coordinator.Coordinator) error {
	for _, decl := range m.Strategies {
		med, err := strategy.ParseMedium(decl.Medium)
		if err != nil {
			return fmt.Errorf("strategy %q: %w", decl.Prefix, err)
		}
		c.ConfigureStrategy(decl.Prefix, strategy.Strategy{Medium: med, Encrypted: decl.Encrypted})
	}
	return nil
}
