package tour

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-docent/pkg/catalog"
)

// Session is the mutable state of one tour. It is owned by a single
// orchestrator and not safe for concurrent use.
type Session struct {
	ID        string
	StartedAt time.Time

	// Input is the visitor's first stated interest.
	Input string
	// Intro is the spoken tour introduction.
	Intro string
	// Matched is the first selection.
	Matched []string

	current  string
	upcoming []string
	visited  catalog.Set
	order    []string
}

// NewSession creates an empty session with a fresh ID.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		visited:   catalog.NewSet(),
	}
}

// Current returns the exhibit the visitor is at, or "".
func (s *Session) Current() string { return s.current }

// Upcoming returns the queued exhibits in travel order.
func (s *Session) Upcoming() []string { return slices.Clone(s.upcoming) }

// Visited returns visited exhibits in the order they were reached.
func (s *Session) Visited() []string { return slices.Clone(s.order) }

// HasVisited reports whether name was already reached.
func (s *Session) HasVisited(name string) bool { return s.visited.Has(name) }

// Enqueue appends names to the queue, skipping any already queued.
func (s *Session) Enqueue(names ...string) {
	for _, n := range names {
		if n == "" || slices.Contains(s.upcoming, n) {
			continue
		}
		s.upcoming = append(s.upcoming, n)
	}
}

// Peek returns the next queued exhibit.
func (s *Session) Peek() (string, bool) {
	if len(s.upcoming) == 0 {
		return "", false
	}
	return s.upcoming[0], true
}

// Arrive makes name the current exhibit, marks it visited and removes it
// from the queue.
func (s *Session) Arrive(name string) {
	s.current = name
	if !s.visited.Has(name) {
		s.visited.Add(name)
		s.order = append(s.order, name)
	}
	s.upcoming = slices.DeleteFunc(s.upcoming, func(n string) bool { return n == name })
}

// Excluded returns visited ∪ upcoming, the names a new selection must avoid.
func (s *Session) Excluded() catalog.Set {
	return s.visited.Union(catalog.NewSet(s.upcoming...))
}

// Snapshot is a copy of the session queues.
type Snapshot struct {
	ID       string   `json:"id"`
	Current  string   `json:"current,omitempty"`
	Upcoming []string `json:"upcoming"`
	Visited  []string `json:"visited"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	up, vis := s.Upcoming(), s.Visited()
	if up == nil {
		up = []string{}
	}
	if vis == nil {
		vis = []string{}
	}
	return Snapshot{ID: s.ID, Current: s.current, Upcoming: up, Visited: vis}
}
