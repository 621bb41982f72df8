package linguistic

import (
	"regexp"
	"strings"
)

// wordPattern matches alphabetic words, apostrophes allowed ("don't").
var wordPattern = regexp.MustCompile(`[a-zA-Z']+`)

// Tokenize splits text into lowercased alphabetic word tokens.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// syllableExceptions lists common words whose syllable count the vowel-run
// heuristic gets wrong, mostly words where a trailing "-ed"/"-es" is or is
// not its own syllable, or where adjacent vowels belong to separate
// syllables.
var syllableExceptions = map[string]int{
	"area":      3,
	"being":     2,
	"business":  2,
	"create":    2,
	"creates":   2,
	"created":   3,
	"every":     2,
	"evening":   2,
	"idea":      3,
	"ideas":     3,
	"quiet":     2,
	"really":    2,
	"science":   2,
	"something": 2,
	"different": 3,
	"interest":  3,
	"people":    2,
	"little":    2,
	"able":      2,
	"simple":    2,
	"example":   3,
	"possible":  3,
}

// CountSyllables estimates the syllable count of a single lowercased word by
// counting transitions into vowel runs, with "y" treated as a vowel. A final
// silent "e" is discounted when the count exceeds one, and every word counts
// as at least one syllable. A small exceptions table covers common words the
// heuristic misjudges.
func CountSyllables(word string) int {
	word = strings.ToLower(strings.Trim(word, "'"))
	if word == "" {
		return 1
	}
	if n, ok := syllableExceptions[word]; ok {
		return n
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}

	return max(count, 1)
}

// isVowel reports whether r is a vowel for syllable-counting purposes.
func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
