// Package catalog holds the static registry of museum exhibits.
//
// An exhibit is identified by its display name (the location the robot travels
// to) and matched against visitor speech by its keywords. A Catalog is built
// once at startup and is safe for concurrent reads; it is never mutated.
package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for catalog construction.
var (
	// ErrEmpty is returned when a catalog has no exhibits.
	ErrEmpty = errors.New("catalog: no exhibits")

	// ErrDuplicate is returned when two exhibits share a name.
	ErrDuplicate = errors.New("catalog: duplicate exhibit")

	// ErrInvalid is returned for an exhibit without a name or keywords.
	ErrInvalid = errors.New("catalog: invalid exhibit")
)

// Exhibit is one stop on a tour.
type Exhibit struct {
	// Name is the location string and the exhibit's identity.
	Name string `yaml:"name" json:"name"`

	// Keywords are lowercase topics matched against visitor speech.
	Keywords []string `yaml:"keywords" json:"keywords"`

	// Description is optional background handed to the answer generator.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Matches reports whether any keyword occurs in the lowercased text.
func (e Exhibit) Matches(lowered string) bool {
	for _, kw := range e.Keywords {
		if kw != "" && strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Catalog is an immutable, ordered set of exhibits.
type Catalog struct {
	exhibits []Exhibit
	byName   map[string]int // lowercased name -> index
}

// New validates the exhibits and builds a catalog.
// Keywords are normalized to lowercase; input order is preserved.
func New(exhibits []Exhibit) (*Catalog, error) {
	if len(exhibits) == 0 {
		return nil, ErrEmpty
	}

	c := &Catalog{
		exhibits: make([]Exhibit, 0, len(exhibits)),
		byName:   make(map[string]int, len(exhibits)),
	}

	for i, e := range exhibits {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalid, i)
		}
		key := strings.ToLower(name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, name)
		}

		keywords := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: %q has no keywords", ErrInvalid, name)
		}

		c.byName[key] = len(c.exhibits)
		c.exhibits = append(c.exhibits, Exhibit{
			Name:        name,
			Keywords:    keywords,
			Description: strings.TrimSpace(e.Description),
		})
	}

	return c, nil
}

// MustNew is New that panics on error. Intended for static tables.
func MustNew(exhibits []Exhibit) *Catalog {
	c, err := New(exhibits)
	if err != nil {
		panic(err)
	}
	return c
}

// file is the YAML layout of a catalog file.
type file struct {
	Exhibits []Exhibit `yaml:"exhibits"`
}

// Load reads a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(f.Exhibits)
}

// Len returns the number of exhibits.
func (c *Catalog) Len() int {
	return len(c.exhibits)
}

// Exhibits returns a copy of all exhibits in catalog order.
func (c *Catalog) Exhibits() []Exhibit {
	out := make([]Exhibit, len(c.exhibits))
	copy(out, c.exhibits)
	return out
}

// Names returns all exhibit names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.exhibits))
	for i, e := range c.exhibits {
		names[i] = e.Name
	}
	return names
}

// Lookup finds an exhibit by case-insensitive exact name.
func (c *Catalog) Lookup(name string) (Exhibit, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Exhibit{}, false
	}
	return c.exhibits[i], true
}

// Available returns the exhibits not in excluding, in catalog order.
func (c *Catalog) Available(excluding Set) []Exhibit {
	out := make([]Exhibit, 0, len(c.exhibits))
	for _, e := range c.exhibits {
		if !excluding.Has(e.Name) {
			out = append(out, e)
		}
	}
	return out
}

// Sample draws up to n distinct exhibit names uniformly at random from the
// exhibits not in excluding.
func (c *Catalog) Sample(rng *rand.Rand, n int, excluding Set) []string {
	pool := c.Available(excluding)
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return nil
	}

	// Partial Fisher-Yates: only the first n slots are needed.
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	names := make([]string, n)
	for i := range names {
		names[i] = pool[i].Name
	}
	return names
}
