package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type LimitKind string

const (
	LimitNumber LimitKind = "number"
	LimitBool   LimitKind = "bool"
	LimitEnum   LimitKind = "enum"
)

// LimitDefinition describes one key accepted in a plan-module limits bag.
type LimitDefinition struct {
	Key      string    `yaml:"key" json:"key"`
	Label    string    `yaml:"label" json:"label"`
	Kind     LimitKind `yaml:"kind" json:"kind"`
	Min      *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Options  []string  `yaml:"options,omitempty" json:"options,omitempty"`
	Category string    `yaml:"category" json:"category"`
}

type LimitsCatalog struct {
	Limits []LimitDefinition `yaml:"limits" json:"limits"`
	byKey  map[string]LimitDefinition
}

//go:embed limits_catalog.yaml
var limitsCatalogYAML []byte

// DefaultLimitsCatalog parses the embedded catalog.
func DefaultLimitsCatalog() (*LimitsCatalog, error) {
	return ParseLimitsCatalog(limitsCatalogYAML)
}

func ParseLimitsCatalog(data []byte) (*LimitsCatalog, error) {
	var catalog LimitsCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse limits catalog: %w", err)
	}

	catalog.byKey = make(map[string]LimitDefinition, len(catalog.Limits))
	for _, def := range catalog.Limits {
		if def.Key == "" {
			return nil, errors.New("limits catalog entry without key")
		}
		if _, dup := catalog.byKey[def.Key]; dup {
			return nil, fmt.Errorf("duplicate limit key %q", def.Key)
		}
		switch def.Kind {
		case LimitNumber, LimitBool:
		case LimitEnum:
			if len(def.Options) == 0 {
				return nil, fmt.Errorf("enum limit %q has no options", def.Key)
			}
		default:
			return nil, fmt.Errorf("limit %q has unknown kind %q", def.Key, def.Kind)
		}
		catalog.byKey[def.Key] = def
	}
	return &catalog, nil
}

// LimitError lists every offending key of a limits bag.
type LimitError struct {
	Problems map[string]string
}

func (e *LimitError) Error() string {
	keys := make([]string, 0, len(e.Problems))
	for k := range e.Problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Problems[k])
	}
	return "invalid limits: " + strings.Join(parts, "; ")
}

// Validate checks a limits bag as decoded from JSON. Numbers arrive as
// float64; number limits must be whole and at least Min.
func (c *LimitsCatalog) Validate(bag map[string]any) error {
	problems := map[string]string{}
	for key, value := range bag {
		def, ok := c.byKey[key]
		if !ok {
			problems[key] = "clave desconocida"
			continue
		}
		if msg := def.check(value); msg != "" {
			problems[key] = msg
		}
	}
	if len(problems) > 0 {
		return &LimitError{Problems: problems}
	}
	return nil
}

func (d LimitDefinition) check(value any) string {
	switch d.Kind {
	case LimitNumber:
		n, ok := value.(float64)
		if !ok {
			if i, isInt := value.(int); isInt {
				n, ok = float64(i), true
			}
		}
		if !ok || math.IsNaN(n) || n != math.Trunc(n) {
			return "debe ser un número entero"
		}
		if d.Min != nil && n < *d.Min {
			return fmt.Sprintf("debe ser al menos %v", *d.Min)
		}
	case LimitBool:
		if _, ok := value.(bool); !ok {
			return "debe ser verdadero o falso"
		}
	case LimitEnum:
		s, ok := value.(string)
		if !ok || !slices.Contains(d.Options, s) {
			return "debe ser uno de: " + strings.Join(d.Options, ", ")
		}
	}
	return ""
}
