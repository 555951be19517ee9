// Package metricscalculator scores recognition transcripts against
// reference text (character and word error rates) and chatbot answers
// against keyword specifications.
package metricscalculator

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ScoringResult bundles the error rates of one transcript against its
// reference.
type ScoringResult struct {
	Reference  string  `json:"reference"`
	Hypothesis string  `json:"hypothesis"`
	CER        float64 `json:"cer"`
	WER        float64 `json:"wer"`
}

// ScoreTranscript computes both error rates for one reference/hypothesis
// pair.
func ScoreTranscript(reference, hypothesis string) ScoringResult {
	return ScoringResult{
		Reference:  reference,
		Hypothesis: hypothesis,
		CER:        CharacterErrorRate(reference, hypothesis),
		WER:        WordErrorRate(reference, hypothesis),
	}
}

// EditDistance is the rune-level Levenshtein distance between a and b with
// unit insert, delete and substitute costs.
func EditDistance(a, b string) int {
	return levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

// CharacterErrorRate calculates the Character Error Rate (CER).
// CER = (Substitutions + Insertions + Deletions) / Number of characters in reference.
// An empty reference yields 0.0 when the hypothesis is also empty and 1.0
// otherwise. The rate is not clamped: a hypothesis much longer than the
// reference legitimately scores above 1.0.
func CharacterErrorRate(reference, hypothesis string) float64 {
	refRunes := []rune(reference)
	if len(refRunes) == 0 {
		if len([]rune(hypothesis)) == 0 {
			return 0.0
		}
		return 1.0
	}
	distance := levenshtein.DistanceForStrings(refRunes, []rune(hypothesis), levenshtein.DefaultOptions)
	return float64(distance) / float64(len(refRunes))
}

// WordErrorRate calculates the Word Error Rate (WER).
// WER = (Substitutions + Insertions + Deletions) / Number of words in reference.
// Words are whitespace-delimited fields. The empty-reference policy and the
// no-clamping rule match CharacterErrorRate.
func WordErrorRate(reference, hypothesis string) float64 {
	refWords := strings.Fields(reference)
	hypWords := strings.Fields(hypothesis)
	if len(refWords) == 0 {
		if len(hypWords) == 0 {
			return 0.0
		}
		return 1.0
	}
	source, target := encodeWords(refWords, hypWords)
	distance := levenshtein.DistanceForStrings(source, target, levenshtein.DefaultOptions)
	return float64(distance) / float64(len(refWords))
}

// encodeWords maps every distinct word to a synthetic rune so the
// rune-based distance matrix applies unchanged at word granularity.
func encodeWords(ref, hyp []string) (source, target []rune) {
	index := make(map[string]rune, len(ref)+len(hyp))
	next := rune(0)
	encode := func(words []string) []rune {
		out := make([]rune, len(words))
		for i, w := range words {
			r, ok := index[w]
			if !ok {
				r = next
				index[w] = r
				next++
			}
			out[i] = r
		}
		return out
	}
	return encode(ref), encode(hyp)
}
