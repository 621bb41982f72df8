package linguistic

import (
	"github.com/antzucaro/matchr"
)

// minFuzzyRepeatLen is the minimum word length for the fuzzy repetition
// check. Short function words ("to"/"too", "a"/"an") score deceptively high
// on Jaro-Winkler, so only exact matches count below this length.
const minFuzzyRepeatLen = 4

// detectRepairs scans the transcript for self-repair disfluencies and
// returns per-pattern match detail.
//
// Two detectors run:
//
//  1. The configured phrase patterns ("I mean" and variants), matched
//     case-insensitively against the raw text. Patterns are scanned
//     independently, so overlapping phrasings each count.
//  2. An adjacent-word repetition detector over the token stream. Identical
//     neighbours always count ("the the"); neighbours of four or more
//     letters also count when their Jaro-Winkler similarity reaches the
//     configured threshold, which catches cut-off restarts the recognizer
//     spells slightly differently ("belie believe").
func (e *Extractor) detectRepairs(text string, words []string) []RepairMatch {
	var out []RepairMatch

	for i, re := range e.patterns {
		matches := re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		examples := matches
		if len(examples) > 3 {
			examples = examples[:3]
		}
		out = append(out, RepairMatch{
			Pattern:  e.patternSrc[i],
			Count:    len(matches),
			Examples: examples,
		})
	}

	rep := RepairMatch{Pattern: "word repetition"}
	for i := 1; i < len(words); i++ {
		prev, cur := words[i-1], words[i]
		if prev == cur {
			rep.Count++
			if len(rep.Examples) < 3 {
				rep.Examples = append(rep.Examples, prev+" "+cur)
			}
			continue
		}
		if len(prev) >= minFuzzyRepeatLen && len(cur) >= minFuzzyRepeatLen &&
			matchr.JaroWinkler(prev, cur, false) >= e.repSimilarity {
			rep.Count++
			if len(rep.Examples) < 3 {
				rep.Examples = append(rep.Examples, prev+" "+cur)
			}
		}
	}
	if rep.Count > 0 {
		out = append(out, rep)
	}

	return out
}
