package tour

// Fixed dialogue lines.
const (
	lineGreeting       = "Hey! I'm your guide for today's museum tour."
	lineAskInterest    = "What kind of exhibits are you interested in today?"
	lineFallbackIntro  = "Today we'll visit %s. Let's get going!"
	lineHeadingTo      = "Let's head to the %s."
	lineArrived        = "Here we are! This piece is truly fascinating. Would you like to hear more about it or continue the tour?"
	lineMovingOn       = "I didn't catch that, so let's keep moving."
	lineAnswerFallback = "Sorry, I don't have an answer for that right now."
	lineAnotherExhibit = "Would you like to visit another exhibit?"
	lineNextUp         = "Great, next up: %s."
	lineHowAbout       = "How about the %s?"
	lineNoMoreExhibits = "Those are all the exhibits I can suggest."
	lineExhausted      = "You've seen every exhibit in the museum!"
	lineGoodbye        = "Thanks for touring with me today. Goodbye!"
)

func closingLine(r Reason) string {
	if r == ReasonExhausted {
		return lineExhausted + " " + lineGoodbye
	}
	return lineGoodbye
}
