package intent

import (
	"fmt"
	"strings"
	"unicode"
)

// Rule maps a set of phrases to an act.
type Rule struct {
	Act     Act
	Phrases []string
}

// Rules is an ordered rule table. Earlier rules win.
type Rules []Rule

// DefaultRules returns the stock keyword table.
//
// Order matters: END beats everything, and UNSURE sits ahead of AFFIRM so that
// "not sure" is not read as "sure". "stop" and "exit" only count inside a
// phrase: on a tour they are as likely to name a place as to end it.
func DefaultRules() Rules {
	return Rules{
		{Act: End, Phrases: []string{
			"end the tour", "stop the tour", "finish the tour", "exit the tour", "end tour",
			"goodbye", "bye", "i'm done", "we're done", "that's all", "that is all",
			"quit",
		}},
		{Act: MoveOn, Phrases: []string{
			"move on", "moving on", "next", "what's next", "continue", "let's go", "keep going", "go on",
		}},
		{Act: Unsure, Phrases: []string{
			"not sure", "unsure", "no idea", "don't know", "dunno", "surprise me",
			"no preference", "whatever", "don't mind", "up to you", "you choose", "you pick",
			"anything is fine",
		}},
		{Act: Affirm, Phrases: []string{
			"yes", "yeah", "yep", "yup", "sure", "okay", "ok", "of course", "absolutely",
			"definitely", "sounds good", "let's do it", "why not",
		}},
		{Act: Deny, Phrases: []string{
			"no", "nope", "nah", "not really", "no thanks", "not interested",
		}},
	}
}

// WithOverrides returns a copy of r where the phrases of each named act are
// replaced. Keys are act names such as "END" or "move_on".
func (r Rules) WithOverrides(overrides map[string][]string) (Rules, error) {
	out := make(Rules, len(r))
	for i, rule := range r {
		out[i] = Rule{Act: rule.Act, Phrases: append([]string(nil), rule.Phrases...)}
	}

	for name, phrases := range overrides {
		act, err := ParseAct(name)
		if err != nil {
			return nil, err
		}
		found := false
		for i := range out {
			if out[i].Act == act {
				out[i].Phrases = append([]string(nil), phrases...)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("intent: act %s has no keyword rule", act)
		}
	}
	return out, nil
}

// compiled is a rule with phrases pre-split into tokens.
type compiled struct {
	act     Act
	phrases [][]string
}

func compile(rules Rules) []compiled {
	out := make([]compiled, 0, len(rules))
	for _, r := range rules {
		c := compiled{act: r.Act}
		for _, p := range r.Phrases {
			if toks := tokenize(p); len(toks) > 0 {
				c.phrases = append(c.phrases, toks)
			}
		}
		out = append(out, c)
	}
	return out
}

// tokenize lowercases s and splits it into words. Apostrophes are dropped so
// "don't" and "dont" compare equal.
func tokenize(s string) []string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("'", "", "’", "", "`", "").Replace(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// questionWords open a question whose single keywords are read as content
// ("where is the exit?", "what's the next stop?").
var questionWords = map[string]bool{
	"what": true, "whats": true, "where": true, "wheres": true, "when": true,
	"who": true, "whos": true, "whose": true, "why": true, "which": true,
	"how": true, "hows": true,
}

// isQuestion reports whether an utterance asks something rather than answers.
// A bare "next?" or "yes?" is still an answer.
func isQuestion(raw string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	if questionWords[words[0]] {
		return true
	}
	return strings.HasSuffix(strings.TrimSpace(raw), "?") && len(words) >= 3
}

// containsPhrase reports whether phrase occurs as a contiguous run of words.
func containsPhrase(words, phrase []string) bool {
	n := len(phrase)
	for i := 0; i+n <= len(words); i++ {
		match := true
		for j := 0; j < n; j++ {
			if words[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
