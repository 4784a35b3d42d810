// Package record persists a summary of each finished tour.
package record

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TimeLayout formats Record.Timestamp.
const TimeLayout = "2006-01-02 15:04:05"

var (
	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("record: not found")

	// ErrNoID is returned when saving a record without a session ID.
	ErrNoID = errors.New("record: missing session id")
)

// Record summarizes one tour.
type Record struct {
	SessionID        string   `json:"session_id"`
	Input            string   `json:"input"`
	SpokenReply      string   `json:"spoken_reply"`
	MatchedLocations []string `json:"matched_locations"`
	Visited          []string `json:"visited"`
	Upcoming         []string `json:"upcoming"`
	FinalReply       string   `json:"final_reply"`
	Reason           string   `json:"reason"`
	Timestamp        string   `json:"timestamp"`
}

// New creates a record stamped with the current time. An empty id gets a
// fresh UUID.
func New(id string) *Record {
	if id == "" {
		id = uuid.NewString()
	}
	return &Record{
		SessionID:        id,
		MatchedLocations: []string{},
		Visited:          []string{},
		Upcoming:         []string{},
		Timestamp:        time.Now().Format(TimeLayout),
	}
}

// Time parses Timestamp in local time. A malformed stamp yields the zero time.
func (r *Record) Time() time.Time {
	t, err := time.ParseInLocation(TimeLayout, r.Timestamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Store saves and retrieves records.
type Store interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// List returns records newest first, at most limit when limit > 0.
	List(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}

// Nop discards records.
type Nop struct{}

func (Nop) Save(context.Context, *Record) error { return nil }
func (Nop) Get(context.Context, string) (*Record, error) { return nil, ErrNotFound }
func (Nop) List(context.Context, int) ([]*Record, error) { return nil, nil }
func (Nop) Close() error { return nil }

var _ Store = Nop{}
