package intent

import (
	"context"
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		in   string
		want Act
	}{
		{"", Unrecognized},
		{"   \t\n", Unrecognized},
		{"...", Unrecognized},

		{"Yes please", Affirm},
		{"sure, why not", Affirm},
		{"OK", Affirm},
		{"no", Deny},
		{"Nope.", Deny},
		{"not really", Deny},
		{"let's move on", MoveOn},
		{"next one", MoveOn},
		{"goodbye!", End},
		{"I'm done", End},
		{"Im done", End},
		{"I'm not sure", Unsure},
		{"I don't know, surprise me", Unsure},

		// Word boundaries: "know" is not "no", "nothing" is not "no".
		{"I know a lot about dinosaurs", Other},
		{"nothing about ancient egypt", Other},
		{"tell me about the stopwatch collection", Other},
		{"who painted this?", Other},

		// Questions only match whole phrases.
		{"What's the next stop after this one?", Other},
		{"Where is the exit for this room?", Other},
		{"Is it ok to take photos here?", Other},
		{"how do you say goodbye in greek?", Other},
		{"what's next?", MoveOn},
		{"can we move on?", MoveOn},
		{"could you end the tour now?", End},
		{"next?", MoveOn},
		{"yes?", Affirm},
		{"stop", Other},
		{"exit the tour", End},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := c.Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyEndPriority(t *testing.T) {
	c := NewClassifier(nil)

	mixed := []string{
		"yes, but actually let's end the tour",
		"next... no wait, goodbye",
		"stop the tour, move on",
		"I'm not sure, I'm done",
		"no thanks, bye",
	}
	for _, in := range mixed {
		if got := c.Classify(in); got != End {
			t.Errorf("Classify(%q) = %v, want END", in, got)
		}
	}

	// MOVE_ON beats AFFIRM and DENY.
	if got := c.Classify("yes, next"); got != MoveOn {
		t.Errorf("Classify(yes, next) = %v, want MOVE_ON", got)
	}
	// AFFIRM beats DENY.
	if got := c.Classify("no, actually yes"); got != Affirm {
		t.Errorf("Classify(no, actually yes) = %v, want AFFIRM", got)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := NewClassifier(nil)
	for _, in := range []string{"", "yes", "tell me about space", "not sure", "bye"} {
		first := c.Classify(in)
		for i := 0; i < 3; i++ {
			if got := c.Classify(in); got != first {
				t.Fatalf("Classify(%q) changed from %v to %v", in, first, got)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		judge    Judge
		in       string
		want     Act
		wantCall bool
	}{
		{"vague", staticJudge(InterestVague, nil), "hmm, something fun", Unsure, true},
		{"specific", staticJudge(InterestSpecific, nil), "I like old ships", Other, true},
		{"judge error", staticJudge(InterestUnknown, errors.New("timeout")), "I like old ships", Other, true},
		{"unknown label", staticJudge(InterestUnknown, nil), "I like old ships", Other, true},
		{"keyword wins", staticJudge(InterestVague, nil), "yes", Affirm, false},
		{"blank skips judge", staticJudge(InterestVague, nil), " ", Unrecognized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			j := JudgeFunc(func(ctx context.Context, u string) (Interest, error) {
				calls++
				return tt.judge.Judge(ctx, u)
			})
			c := NewClassifier(nil, WithJudge(j))

			if got := c.Resolve(ctx, tt.in); got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if (calls > 0) != tt.wantCall {
				t.Errorf("judge calls = %d, wantCall %v", calls, tt.wantCall)
			}
		})
	}

	t.Run("no judge", func(t *testing.T) {
		c := NewClassifier(nil)
		if got := c.Resolve(ctx, "I like old ships"); got != Other {
			t.Errorf("Resolve without judge = %v, want OTHER", got)
		}
	})
}

func TestRulesWithOverrides(t *testing.T) {
	rules, err := DefaultRules().WithOverrides(map[string][]string{
		"end":     {"we're finished"},
		"MOVE-ON": {"onward"},
	})
	if err != nil {
		t.Fatalf("WithOverrides: %v", err)
	}
	c := NewClassifier(rules)

	if got := c.Classify("we're finished here"); got != End {
		t.Errorf("override END = %v", got)
	}
	if got := c.Classify("goodbye"); got != Other {
		t.Errorf("replaced END phrase still matched: %v", got)
	}
	if got := c.Classify("onward!"); got != MoveOn {
		t.Errorf("override MOVE_ON = %v", got)
	}

	// Overrides do not leak into the defaults.
	if got := NewClassifier(nil).Classify("goodbye"); got != End {
		t.Errorf("defaults mutated: %v", got)
	}

	if _, err := DefaultRules().WithOverrides(map[string][]string{"maybe": {"x"}}); err == nil {
		t.Error("expected error for unknown act")
	}
	if _, err := DefaultRules().WithOverrides(map[string][]string{"OTHER": {"x"}}); err == nil {
		t.Error("expected error for act without a rule")
	}
}

func TestParseInterest(t *testing.T) {
	tests := []struct {
		in      string
		want    Interest
		wantErr bool
	}{
		{"vague", InterestVague, false},
		{" Specific.\n", InterestSpecific, false},
		{"\"VAGUE\"", InterestVague, false},
		{"The input is vague", InterestUnknown, true},
		{"", InterestUnknown, true},
	}
	for _, tt := range tests {
		got, err := ParseInterest(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseInterest(%q) = %v, %v", tt.in, got, err)
		}
		if err != nil && !errors.Is(err, ErrUnexpectedReply) {
			t.Errorf("error should wrap ErrUnexpectedReply: %v", err)
		}
	}
}

func TestActString(t *testing.T) {
	if MoveOn.String() != "MOVE_ON" || Unrecognized.String() != "UNRECOGNIZED" {
		t.Errorf("unexpected names %s %s", MoveOn, Unrecognized)
	}
	if a, err := ParseAct("move_on"); err != nil || a != MoveOn {
		t.Errorf("ParseAct(move_on) = %v, %v", a, err)
	}
}

func staticJudge(i Interest, err error) Judge {
	return JudgeFunc(func(context.Context, string) (Interest, error) { return i, err })
}
