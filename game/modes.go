package game

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultModeID is used whenever a requested mode is unknown
const DefaultModeID = "easy"

// ModeDefinition is a difficulty preset
type ModeDefinition struct {
	ID              string `yaml:"-" json:"id"`
	MaxNumber       int    `yaml:"max_number" json:"max_number"`
	MaxAttempts     int    `yaml:"max_attempts" json:"max_attempts"`
	PerTurnPenalty  int    `yaml:"per_turn_penalty" json:"per_turn_penalty"`
	HintBasePenalty int    `yaml:"hint_base_penalty" json:"hint_base_penalty"`
}

// Validate checks that the definition can back a playable game
func (m ModeDefinition) Validate() error {
	if m.MaxNumber < 1 {
		return fmt.Errorf("mode %q: max_number must be at least 1", m.ID)
	}
	if m.MaxAttempts < 1 {
		return fmt.Errorf("mode %q: max_attempts must be at least 1", m.ID)
	}
	if m.PerTurnPenalty < 0 || m.HintBasePenalty < 0 {
		return fmt.Errorf("mode %q: penalties cannot be negative", m.ID)
	}
	return nil
}

// Catalog maps mode identifiers to their definitions. It is never mutated after construction.
type Catalog struct {
	modes map[string]ModeDefinition
	order []string
}

// NewCatalog builds a catalog from the given definitions.
// The default mode must be present so Resolve always has a fallback.
func NewCatalog(defs ...ModeDefinition) (*Catalog, error) {
	c := &Catalog{modes: make(map[string]ModeDefinition, len(defs))}
	for _, def := range defs {
		def.ID = normalizeModeID(def.ID)
		if def.ID == "" {
			return nil, fmt.Errorf("mode identifier cannot be empty")
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.modes[def.ID]; exists {
			return nil, fmt.Errorf("duplicate mode %q", def.ID)
		}
		c.modes[def.ID] = def
		c.order = append(c.order, def.ID)
	}
	if _, ok := c.modes[DefaultModeID]; !ok {
		return nil, fmt.Errorf("catalog must define the %q mode", DefaultModeID)
	}
	return c, nil
}

// DefaultCatalog returns the built-in easy/medium/hard presets
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		ModeDefinition{ID: "easy", MaxNumber: 100, MaxAttempts: 10, PerTurnPenalty: 600, HintBasePenalty: 300},
		ModeDefinition{ID: "medium", MaxNumber: 1000, MaxAttempts: 14, PerTurnPenalty: 429, HintBasePenalty: 250},
		ModeDefinition{ID: "hard", MaxNumber: 10000, MaxAttempts: 18, PerTurnPenalty: 333, HintBasePenalty: 150},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog reads mode definitions from a YAML file keyed by mode identifier:
//
//	easy:
//	  max_number: 100
//	  max_attempts: 10
//	  per_turn_penalty: 600
//	  hint_base_penalty: 300
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modes file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes YAML mode definitions
func ParseCatalog(data []byte) (*Catalog, error) {
	raw := make(map[string]ModeDefinition)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse modes file: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	// Sort by range so listings go from easiest to hardest
	sort.Slice(ids, func(i, j int) bool {
		a, b := raw[ids[i]], raw[ids[j]]
		if a.MaxNumber != b.MaxNumber {
			return a.MaxNumber < b.MaxNumber
		}
		return ids[i] < ids[j]
	})

	defs := make([]ModeDefinition, 0, len(ids))
	for _, id := range ids {
		def := raw[id]
		def.ID = id
		defs = append(defs, def)
	}
	return NewCatalog(defs...)
}

// Resolve returns the definition for id, or the default mode when id is unknown
func (c *Catalog) Resolve(id string) ModeDefinition {
	if def, ok := c.modes[normalizeModeID(id)]; ok {
		return def
	}
	return c.modes[DefaultModeID]
}

// Lookup reports whether id names a mode in the catalog
func (c *Catalog) Lookup(id string) (ModeDefinition, bool) {
	def, ok := c.modes[normalizeModeID(id)]
	return def, ok
}

// Modes lists every definition in catalog order
func (c *Catalog) Modes() []ModeDefinition {
	out := make([]ModeDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.modes[id])
	}
	return out
}

func normalizeModeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
