package evaluator

import (
	"regexp"
	"strings"
)

// Rule violation tags.
const (
	ViolationMultipleQuestions = "multiple_questions"
	ViolationTooLong           = "too_long"
	ViolationDoubleNegative    = "double_negative"
	ViolationVagueLanguage     = "vague_language"
	ViolationLeadingLanguage   = "leading_language"
)

// maxQuestionWords is the token budget beyond which a question is too long.
const maxQuestionWords = 40

// doubleNegativeWindow is the number of following tokens scanned for a
// second negation after one is found.
const doubleNegativeWindow = 3

var negationWords = map[string]bool{
	"not": true, "never": true, "no": true, "none": true,
	"hardly": true, "rarely": true, "neither": true, "nor": true,
}

var vagueWords = []string{
	"often", "usually", "sometimes", "many", "some", "a lot", "regularly",
}

var leadingPhrases = []string{
	"would you agree",
	"would you say",
	"don't you think",
	"surely",
	"obviously",
	"naturally",
	"it's clear that",
	"as everyone knows",
	"most people",
	"everyone agrees",
}

var nonLetter = regexp.MustCompile(`[^a-z]`)

// RuleViolations scans a question for deterministic lexical defects and
// returns the set of violation tags found, possibly empty.
func RuleViolations(text string) []string {
	violations := []string{}
	lower := strings.ToLower(text)
	words := strings.Fields(lower)

	if strings.Count(text, "?") > 1 {
		violations = append(violations, ViolationMultipleQuestions)
	}

	if len(words) > maxQuestionWords {
		violations = append(violations, ViolationTooLong)
	}

	if hasDoubleNegative(words) {
		violations = append(violations, ViolationDoubleNegative)
	}

	for _, w := range vagueWords {
		if strings.Contains(lower, w) {
			violations = append(violations, ViolationVagueLanguage)
			break
		}
	}

	for _, phrase := range leadingPhrases {
		if strings.Contains(lower, phrase) {
			violations = append(violations, ViolationLeadingLanguage)
			break
		}
	}

	return violations
}

// hasDoubleNegative reports whether two negation words occur within
// doubleNegativeWindow tokens of each other.
func hasDoubleNegative(words []string) bool {
	for i, w := range words {
		if !negationWords[nonLetter.ReplaceAllString(w, "")] {
			continue
		}
		end := i + 1 + doubleNegativeWindow
		if end > len(words) {
			end = len(words)
		}
		for j := i + 1; j < end; j++ {
			if negationWords[nonLetter.ReplaceAllString(words[j], "")] {
				return true
			}
		}
	}
	return false
}
