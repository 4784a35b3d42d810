package tour

import (
	"fmt"
	"slices"
)

// State is a step of the tour dialogue.
type State int

const (
	StateGreeting State = iota
	StateAwaitingInterest
	StateEnRoute
	StateAtExhibit
	StateAwaitingNext
	StateEnded
)

var stateNames = [...]string{
	StateGreeting:         "GREETING",
	StateAwaitingInterest: "AWAITING_INTEREST",
	StateEnRoute:          "EN_ROUTE",
	StateAtExhibit:        "AT_EXHIBIT_QA",
	StateAwaitingNext:     "AWAITING_NEXT",
	StateEnded:            "ENDED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("tour: unknown state %q", text)
}

var transitions = map[State][]State{
	StateGreeting:         {StateAwaitingInterest, StateEnded},
	StateAwaitingInterest: {StateEnRoute, StateEnded},
	StateEnRoute:          {StateAtExhibit, StateEnded},
	StateAtExhibit:        {StateAtExhibit, StateAwaitingNext, StateEnded},
	StateAwaitingNext:     {StateEnRoute, StateEnded},
}

// CanTransition reports whether the dialogue may move from one state to another.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// Reason records why a tour ended.
type Reason string

const (
	ReasonVisitorEnded    Reason = "visitor_ended"
	ReasonNoInterest      Reason = "no_interest"
	ReasonDeclined        Reason = "declined"
	ReasonNoResponse      Reason = "no_response"
	ReasonExhausted       Reason = "exhausted"
	ReasonNoMoreExhibits  Reason = "no_more_exhibits"
	ReasonSelectionFailed Reason = "selection_failed"
	ReasonCancelled       Reason = "cancelled"
)
