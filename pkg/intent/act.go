// Package intent classifies visitor utterances into dialogue acts.
//
// Classification is lexical first: an ordered table of keyword rules, matched on
// word boundaries, where the first matching rule wins. Free text that matches no
// rule can be handed to a Judge that decides whether the visitor stated a real
// interest or has no preference.
package intent

import (
	"fmt"
	"strings"
)

// Act is a dialogue act derived from one utterance.
type Act int

const (
	// Other is free text that matched no keyword rule: a question or a stated interest.
	Other Act = iota
	Affirm
	Deny
	MoveOn
	End
	Unsure
	// Unrecognized means no usable speech: silence, a failed transcription or blank text.
	Unrecognized
)

var actNames = map[Act]string{
	Other:        "OTHER",
	Affirm:       "AFFIRM",
	Deny:         "DENY",
	MoveOn:       "MOVE_ON",
	End:          "END",
	Unsure:       "UNSURE",
	Unrecognized: "UNRECOGNIZED",
}

func (a Act) String() string {
	if s, ok := actNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Act(%d)", int(a))
}

// ParseAct maps an act name (case-insensitive, "-" or "_") back to an Act.
func ParseAct(s string) (Act, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for a, name := range actNames {
		if name == key {
			return a, nil
		}
	}
	return Other, fmt.Errorf("intent: unknown act %q", s)
}

// Interest is the judge's reading of free text.
type Interest int

const (
	// InterestUnknown means the judge gave no usable answer.
	InterestUnknown Interest = iota
	// InterestVague means the visitor is unsure or has no preference.
	InterestVague
	// InterestSpecific means the visitor named topics or interests.
	InterestSpecific
)

func (i Interest) String() string {
	switch i {
	case InterestVague:
		return "vague"
	case InterestSpecific:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseInterest validates a judge reply. Only the words "vague" and "specific"
// are accepted, optionally wrapped in whitespace, quotes or a trailing period.
func ParseInterest(reply string) (Interest, error) {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(reply), "\"'`.!"))
	switch s {
	case "vague":
		return InterestVague, nil
	case "specific":
		return InterestSpecific, nil
	default:
		return InterestUnknown, fmt.Errorf("%w: %q", ErrUnexpectedReply, reply)
	}
}
