package evaluator

import (
	"math"
	"regexp"
	"strings"
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]`)
	silentSuffix  = regexp.MustCompile(`([^laeiouy]es|ed|[^laeiouy]e)$`)
	leadingY      = regexp.MustCompile(`^y`)
	vowelGroups   = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// countSyllables estimates syllables for one word with the classic
// heuristic: words of three characters or fewer count as one, common
// silent suffixes are stripped, then vowel-group clusters are counted
// with a floor of one.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	if len(word) <= 3 {
		return 1
	}
	word = silentSuffix.ReplaceAllString(word, "")
	word = leadingY.ReplaceAllString(word, "")
	matches := vowelGroups.FindAllString(word, -1)
	if len(matches) == 0 {
		return 1
	}
	return len(matches)
}

// FleschReadingEase computes the reading-ease index
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words),
// clamped to [0, 100] and rounded to 2 decimals. Sentence count is the
// number of non-empty '.'/'!'/'?'-delimited segments, minimum 1.
func FleschReadingEase(text string) float64 {
	sentences := 0
	for _, seg := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(seg) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	words := strings.Fields(text)
	wordCount := len(words)
	if wordCount == 0 {
		wordCount = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	score := 206.835 - 1.015*(float64(wordCount)/float64(sentences)) - 84.6*(float64(syllables)/float64(wordCount))
	return round2(math.Min(100, math.Max(0, score)))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
