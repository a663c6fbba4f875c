// Package gestures holds the ASL gesture library.
package gestures

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Difficulty is a gesture's learning level.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Gesture is one library entry.
type Gesture struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Category    string     `yaml:"category" json:"category"`
	Difficulty  Difficulty `yaml:"difficulty" json:"difficulty"`
	Featured    bool       `yaml:"featured" json:"featured"`
	Description string     `yaml:"description" json:"description"`
	Tips        []string   `yaml:"tips" json:"tips"`
}

// Catalog is an ordered gesture library.
type Catalog struct {
	gestures []Gesture
	byID     map[string]int
}

// Default parses the embedded library.
func Default() (*Catalog, error) {
	return Parse(catalogYAML)
}

// MustDefault is Default for callers that cannot recover from a broken
// embedded catalog.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse reads a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Gestures []Gesture `yaml:"gestures"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse gesture catalog: %w", err)
	}
	c := &Catalog{gestures: doc.Gestures, byID: make(map[string]int, len(doc.Gestures))}
	for i, g := range doc.Gestures {
		if g.ID == "" || g.Name == "" {
			return nil, fmt.Errorf("gesture %d: id and name are required", i)
		}
		switch g.Difficulty {
		case Beginner, Intermediate, Advanced:
		default:
			return nil, fmt.Errorf("gesture %s: invalid difficulty %q", g.ID, g.Difficulty)
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("gesture %s: duplicate id", g.ID)
		}
		c.byID[g.ID] = i
	}
	return c, nil
}

// All returns every gesture in catalog order.
func (c *Catalog) All() []Gesture {
	out := make([]Gesture, len(c.gestures))
	copy(out, c.gestures)
	return out
}

// Len returns the number of gestures.
func (c *Catalog) Len() int { return len(c.gestures) }

// ByID looks up a gesture.
func (c *Catalog) ByID(id string) (Gesture, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Gesture{}, false
	}
	return c.gestures[i], true
}

// ByName finds a gesture by case-insensitive name, e.g. a detected label.
func (c *Catalog) ByName(name string) (Gesture, bool) {
	for _, g := range c.gestures {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Gesture{}, false
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range c.gestures {
		if !seen[g.Category] {
			seen[g.Category] = true
			out = append(out, g.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Featured returns gestures flagged as featured.
func (c *Catalog) Featured() []Gesture {
	var out []Gesture
	for _, g := range c.gestures {
		if g.Featured {
			out = append(out, g)
		}
	}
	return out
}

// Query filters a search. Empty fields match everything.
type Query struct {
	Text       string
	Category   string
	Difficulty Difficulty
}

// Search returns gestures whose name or category contains Text
// (case-insensitive) and that match Category and Difficulty exactly.
func (c *Catalog) Search(q Query) []Gesture {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	var out []Gesture
	for _, g := range c.gestures {
		if q.Category != "" && !strings.EqualFold(g.Category, q.Category) {
			continue
		}
		if q.Difficulty != "" && g.Difficulty != q.Difficulty {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(g.Name), text) &&
			!strings.Contains(strings.ToLower(g.Category), text) {
			continue
		}
		out = append(out, g)
	}
	return out
}
