package agent

import "strings"

// defaultClosingPhrases are the built-in substrings that signal the model
// has decided to wrap up the interview on its own, independent of the
// questions_asked counter. Configurable via AGENT_CLOSING_PHRASES.
var defaultClosingPhrases = []string{
	"thank you for completing",
	"that concludes",
	"wraps up",
}

// detectsClosingPhrase reports whether text contains any of phrases as a
// case-insensitive substring. An empty phrases list disables this check
// entirely, leaving questions_asked as the sole completion signal.
func detectsClosingPhrase(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// isComplete reports whether the interview should move to Closing: either
// the target question count has been reached, or the model's utterance
// contains a configured closing phrase.
func isComplete(text string, questionsAsked, numQuestions int, phrases []string) bool {
	if questionsAsked >= numQuestions {
		return true
	}
	return detectsClosingPhrase(text, phrases)
}
