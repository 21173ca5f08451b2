package config

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/forward-slots/internal/forwarding"
	"github.com/stacklok/forward-slots/internal/pattern"
	"github.com/stacklok/forward-slots/internal/render"
	"github.com/stacklok/forward-slots/internal/versions"
)

// Manifest describes one forwarding pass: the parent's channels and
// attributes, the selection rules and the render targets
type Manifest struct {
	// MinVersion is the oldest forward-slots release that can serve the manifest
	MinVersion string `yaml:"minVersion,omitempty" json:"minVersion,omitempty"`

	// Only is the allow-list. A single string or a list of strings.
	Only pattern.Set `yaml:"only,omitempty" json:"only,omitempty"`

	// Except is the deny-list. Ignored when Only is non-empty.
	Except pattern.Set `yaml:"except,omitempty" json:"except,omitempty"`

	// InheritAttrs forwards Attrs to every target. Defaults to true.
	InheritAttrs *bool `yaml:"inheritAttrs,omitempty" json:"inheritAttrs,omitempty"`

	// FilterNative applies Only/Except to the targets' native channels too
	FilterNative bool `yaml:"filterNative,omitempty" json:"filterNative,omitempty"`

	// Args is the value channel templates are executed with
	Args any `yaml:"args,omitempty" json:"args,omitempty"`

	// Attrs are the parent's ambient attributes
	Attrs map[string]any `yaml:"attrs,omitempty" json:"attrs,omitempty"`

	// Slots are the parent's channels as name -> text/template
	Slots map[string]string `yaml:"slots,omitempty" json:"slots,omitempty"`

	// Targets are the render targets, in render order
	Targets []TargetConfig `yaml:"targets" json:"targets"`
}

// TargetConfig describes one render target
type TargetConfig struct {
	// Name identifies the target in output and warnings
	Name string `yaml:"name" json:"name"`

	// Props are the attributes the target declares
	Props []string `yaml:"props,omitempty" json:"props,omitempty"`

	// Slots are the target's native channels as name -> text/template
	Slots map[string]string `yaml:"slots,omitempty" json:"slots,omitempty"`
}

// LoadManifest loads, parses and validates a manifest from a YAML file
func LoadManifest(opts ...Option) (*Manifest, error) {
	data, err := readFile(opts)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// ParseManifest parses and validates a YAML manifest. JSON is a subset of
// YAML, so JSON manifests are accepted too.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return &manifest, nil
}

// GetInheritAttrs returns whether attributes are inherited, defaulting to true
func (m *Manifest) GetInheritAttrs() bool {
	if m.InheritAttrs == nil {
		return true
	}
	return *m.InheritAttrs
}

// Validate checks the targets and compiles every channel template
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("manifest cannot be nil")
	}

	var errs []error

	if err := versions.CheckMinimum(versions.Version, m.MinVersion); err != nil {
		errs = append(errs, fmt.Errorf("minVersion: %w", err))
	}

	if _, err := render.Templates(m.Slots); err != nil {
		errs = append(errs, fmt.Errorf("slots: %w", err))
	}

	seen := make(map[string]bool, len(m.Targets))
	for i, target := range m.Targets {
		if target.Name == "" {
			errs = append(errs, fmt.Errorf("targets[%d]: name is required", i))
			continue
		}
		if seen[target.Name] {
			errs = append(errs, fmt.Errorf("targets[%d]: duplicate target name '%s'", i, target.Name))
		}
		seen[target.Name] = true

		if _, err := render.Templates(target.Slots); err != nil {
			errs = append(errs, fmt.Errorf("targets[%d] (%s): slots: %w", i, target.Name, err))
		}
	}

	return errors.Join(errs...)
}

// GetAttrs returns the parent's attributes
func (m *Manifest) GetAttrs() forwarding.Attrs {
	return forwarding.Attrs(m.Attrs)
}

// Options returns the forwarding options described by the manifest
func (m *Manifest) Options() (forwarding.Options, error) {
	slots, err := render.Templates(m.Slots)
	if err != nil {
		return forwarding.Options{}, err
	}

	return forwarding.Options{
		Slots:        slots,
		Only:         m.Only,
		Except:       m.Except,
		InheritAttrs: m.GetInheritAttrs(),
		FilterNative: m.FilterNative,
	}, nil
}

// BuildTargets returns the render targets described by the manifest
func (m *Manifest) BuildTargets() ([]forwarding.Target, error) {
	targets := make([]forwarding.Target, 0, len(m.Targets))
	for _, tc := range m.Targets {
		slots, err := render.Templates(tc.Slots)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", tc.Name, err)
		}
		targets = append(targets, &render.Component{
			Name:  tc.Name,
			Props: slices.Clone(tc.Props),
			Slots: slots,
		})
	}
	return targets, nil
}

// Source returns the targets as a TargetSource
func (m *Manifest) Source() (forwarding.TargetSource, error) {
	targets, err := m.BuildTargets()
	if err != nil {
		return nil, err
	}
	return forwarding.Targets(targets...), nil
}
