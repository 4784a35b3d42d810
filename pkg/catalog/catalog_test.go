package catalog

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Len() != 20 {
		t.Fatalf("Len() = %d, want 20", c.Len())
	}
	names := c.Names()
	if names[0] != "Renaissance Art Hall" || names[19] != "History of Medicine Chamber" {
		t.Errorf("catalog order changed: first=%q last=%q", names[0], names[19])
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		exhibits []Exhibit
		want     error
	}{
		{"empty", nil, ErrEmpty},
		{"no name", []Exhibit{{Keywords: []string{"x"}}}, ErrInvalid},
		{"no keywords", []Exhibit{{Name: "A", Keywords: []string{"  "}}}, ErrInvalid},
		{"duplicate", []Exhibit{
			{Name: "Hall", Keywords: []string{"a"}},
			{Name: "hall", Keywords: []string{"b"}},
		}, ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.exhibits)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewNormalizesKeywords(t *testing.T) {
	c := MustNew([]Exhibit{{Name: " Cosmos ", Keywords: []string{" SPACE ", "Stars"}}})

	e, ok := c.Lookup("cosmos")
	if !ok {
		t.Fatal("Lookup should be case-insensitive and trimmed")
	}
	if e.Name != "Cosmos" {
		t.Errorf("Name = %q", e.Name)
	}
	if e.Keywords[0] != "space" || e.Keywords[1] != "stars" {
		t.Errorf("Keywords = %v", e.Keywords)
	}
	if !e.Matches("tell me about the stars") {
		t.Error("Matches should find a lowercase keyword")
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	tests := []struct {
		in string
		ok bool
	}{
		{"Ocean Wonders Zone", true},
		{"ocean wonders zone", true},
		{"  OCEAN WONDERS ZONE ", true},
		{"Ocean Wonders", false},
		{"", false},
	}
	for _, tt := range tests {
		if _, ok := c.Lookup(tt.in); ok != tt.ok {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

func TestSample(t *testing.T) {
	c := Default()
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("distinct and excluded", func(t *testing.T) {
		excluding := NewSet("Ocean Wonders Zone", "Entomology Showcase")
		got := c.Sample(rng, 5, excluding)
		if len(got) != 5 {
			t.Fatalf("len = %d, want 5", len(got))
		}
		seen := NewSet()
		for _, n := range got {
			if excluding.Has(n) {
				t.Errorf("sampled excluded exhibit %q", n)
			}
			if seen.Has(n) {
				t.Errorf("duplicate %q", n)
			}
			seen.Add(n)
		}
	})

	t.Run("clamped to available", func(t *testing.T) {
		excluding := NewSet(c.Names()[2:]...)
		got := c.Sample(rng, 10, excluding)
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("none available", func(t *testing.T) {
		if got := c.Sample(rng, 3, NewSet(c.Names()...)); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("deterministic with seed", func(t *testing.T) {
		a := c.Sample(rand.New(rand.NewPCG(7, 7)), 3, nil)
		b := c.Sample(rand.New(rand.NewPCG(7, 7)), 3, nil)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("same seed gave %v and %v", a, b)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
exhibits:
  - name: Map Room
    keywords: [maps, cartography]
    description: Old charts.
  - name: Clock Tower
    keywords: [clocks]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d", c.Len())
	}
	e, _ := c.Lookup("map room")
	if e.Description != "Old charts." {
		t.Errorf("Description = %q", e.Description)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Parse([]byte("exhibits: [")); err == nil {
		t.Error("expected decode error")
	}
}

func TestSetUnion(t *testing.T) {
	a := NewSet("x", "y")
	b := NewSet("y", "z")
	u := a.Union(b)

	if got := u.Sorted(); len(got) != 3 || got[0] != "x" || got[2] != "z" {
		t.Errorf("Union = %v", got)
	}
	if len(a) != 2 {
		t.Error("Union mutated receiver")
	}
	var nilSet Set
	if nilSet.Has("x") {
		t.Error("nil set should be empty")
	}
}
