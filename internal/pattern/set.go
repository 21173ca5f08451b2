package pattern

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Set is an ordered list of patterns. Order never changes a selection outcome.
type Set []Pattern

// ParseSet parses each text with Parse. Empty strings are skipped, so a blank
// value behaves like an empty set.
func ParseSet(texts ...string) (Set, error) {
	set := make(Set, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			continue
		}
		p, err := Parse(text)
		if err != nil {
			return nil, fmt.Errorf("pattern[%d]: %w", i, err)
		}
		set = append(set, p)
	}
	return set, nil
}

// MustParseSet is like ParseSet but panics on error
func MustParseSet(texts ...string) Set {
	set, err := ParseSet(texts...)
	if err != nil {
		panic(err)
	}
	return set
}

// Of builds a set from already constructed patterns, dropping zero values
func Of(patterns ...Pattern) Set {
	set := make(Set, 0, len(patterns))
	for _, p := range patterns {
		if p.IsZero() {
			continue
		}
		set = append(set, p)
	}
	return set
}

// Matchers resolves every pattern in the set
func (s Set) Matchers() []Matcher {
	matchers := make([]Matcher, 0, len(s))
	for _, p := range s {
		matchers = append(matchers, Resolve(p))
	}
	return matchers
}

// Strings returns the text form of every pattern
func (s Set) Strings() []string {
	texts := make([]string, 0, len(s))
	for _, p := range s {
		texts = append(texts, p.String())
	}
	return texts
}

// UnmarshalYAML accepts a single string, a list of strings, or null
func (s *Set) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() == "!!null" {
			*s = Set{}
			return nil
		}
		if value.ShortTag() != "!!str" {
			return fmt.Errorf("%w: line %d: expected a string or a list of strings, got %s",
				ErrInvalidPattern, value.Line, value.ShortTag())
		}
		return s.set(value.Value)
	case yaml.SequenceNode:
		texts := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
				return fmt.Errorf("%w: line %d: list items must be strings", ErrInvalidPattern, item.Line)
			}
			texts = append(texts, item.Value)
		}
		return s.set(texts...)
	default:
		return fmt.Errorf("%w: line %d: expected a string or a list of strings", ErrInvalidPattern, value.Line)
	}
}

// MarshalYAML writes the set as a list of strings
func (s Set) MarshalYAML() (any, error) {
	return s.Strings(), nil
}

// UnmarshalJSON accepts a single string, an array of strings, or null
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*s = Set{}
		return nil
	case string:
		return s.set(v)
	case []any:
		texts := make([]string, 0, len(v))
		for i, item := range v {
			text, ok := item.(string)
			if !ok {
				return fmt.Errorf("%w: item %d must be a string, got %T", ErrInvalidPattern, i, item)
			}
			texts = append(texts, text)
		}
		return s.set(texts...)
	default:
		return fmt.Errorf("%w: expected a string or an array of strings, got %T", ErrInvalidPattern, raw)
	}
}

// MarshalJSON writes the set as an array of strings
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *Set) set(texts ...string) error {
	parsed, err := ParseSet(texts...)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
