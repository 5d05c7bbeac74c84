// Package schema holds the declarative leaf-type catalog that every
// validating store operation consults. A catalog maps slash-joined tag paths
// (relative to the document root, predicates ignored) to leaf content types;
// paths without an entry are structural and carry no typed text.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"flowcore/pkg/domain"
)

// Kind identifies a leaf content category.
type Kind string

// Supported leaf content categories.
const (
	KindString    Kind = "string"
	KindEnum      Kind = "enum"
	KindInt       Kind = "int"
	KindFloat     Kind = "float"
	KindFloatList Kind = "floatList"
)

// LeafType declares the content rules for one leaf path. Bounds are
// inclusive; a nil bound is unbounded.
type LeafType struct {
	Kind   Kind     `yaml:"kind"`
	Values []string `yaml:"values,omitempty"`
	Min    *float64 `yaml:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty"`
}

// Numeric reports whether the leaf holds numeric content.
func (t LeafType) Numeric() bool {
	return t.Kind == KindInt || t.Kind == KindFloat || t.Kind == KindFloatList
}

type catalogFile struct {
	Paths map[string]LeafType `yaml:"paths"`
}

// Catalog is an immutable path-to-leaf-type map loaded once at startup.
type Catalog struct {
	leaves map[string]LeafType
}

// Load parses a YAML catalog document.
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schema catalog: %w", err)
	}
	if len(file.Paths) == 0 {
		return nil, fmt.Errorf("schema catalog declares no paths")
	}
	for path, leaf := range file.Paths {
		switch leaf.Kind {
		case KindString, KindInt, KindFloat, KindFloatList:
		case KindEnum:
			if len(leaf.Values) == 0 {
				return nil, fmt.Errorf("schema catalog: enum path %s has no values", path)
			}
		default:
			return nil, fmt.Errorf("schema catalog: path %s has unknown kind %q", path, leaf.Kind)
		}
		if leaf.Min != nil && leaf.Max != nil && *leaf.Min > *leaf.Max {
			return nil, fmt.Errorf("schema catalog: path %s has min above max", path)
		}
	}
	return &Catalog{leaves: file.Paths}, nil
}

// Lookup returns the leaf type declared for a tag path.
func (c *Catalog) Lookup(tagPath string) (LeafType, bool) {
	leaf, ok := c.leaves[tagPath]
	return leaf, ok
}

// Len returns the number of declared leaf paths.
func (c *Catalog) Len() int { return len(c.leaves) }

// CheckValue validates raw content against a leaf type and returns the
// normalized text to store. Numeric content is trimmed and lowercased, list
// tokens are re-joined with single spaces, strings are trimmed. Parse and
// bounds failures come back as *domain.ValidationError; an enumeration
// violation is a programming error (domain.ErrEnumViolation) because callers
// are expected to offer only declared choices.
func (c *Catalog) CheckValue(leaf LeafType, path, raw string) (string, error) {
	switch leaf.Kind {
	case KindInt:
		trimmed := strings.TrimSpace(raw)
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return "", domain.Validation(domain.CodeIntegerOnly, path, fmt.Sprintf("%q is not an integer", raw))
		}
		if err := leaf.checkBounds(path, float64(n)); err != nil {
			return "", err
		}
		return strings.ToLower(trimmed), nil

	case KindFloat:
		trimmed := strings.TrimSpace(raw)
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return "", domain.Validation(domain.CodeFloatOnly, path, fmt.Sprintf("%q is not a number", raw))
		}
		if err := leaf.checkBounds(path, f); err != nil {
			return "", err
		}
		return strings.ToLower(trimmed), nil

	case KindFloatList:
		tokens := strings.Fields(raw)
		for _, tok := range tokens {
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return "", domain.Validation(domain.CodeFloatOnly, path, fmt.Sprintf("%q is not a number", tok))
			}
			if err := leaf.checkBounds(path, f); err != nil {
				return "", err
			}
		}
		return strings.ToLower(strings.Join(tokens, " ")), nil

	case KindEnum:
		trimmed := strings.TrimSpace(raw)
		for _, v := range leaf.Values {
			if v == trimmed {
				return trimmed, nil
			}
		}
		return "", fmt.Errorf("%w: %q at %s", domain.ErrEnumViolation, raw, path)

	default: // KindString
		return strings.TrimSpace(raw), nil
	}
}

func (t LeafType) checkBounds(path string, v float64) error {
	if t.Min != nil && v < *t.Min {
		return domain.Validation(domain.CodeOutOfRange, path, fmt.Sprintf("%g below minimum %g", v, *t.Min))
	}
	if t.Max != nil && v > *t.Max {
		return domain.Validation(domain.CodeOutOfRange, path, fmt.Sprintf("%g above maximum %g", v, *t.Max))
	}
	return nil
}
