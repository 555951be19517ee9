package metricscalculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacterErrorRate(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		hyp  string
		want float64
	}{
		{"both empty", "", "", 0.0},
		{"empty ref nonempty hyp", "", "anything", 1.0},
		{"empty hyp", "abcd", "", 1.0},
		{"identical", "the lion sleeps", "the lion sleeps", 0.0},
		{"one substitution", "abcd", "abXd", 0.25},
		{"one deletion", "abcd", "abc", 0.25},
		{"cjk substitution", "獅子是肉食性", "獅子是草食性", 1.0 / 6.0},
		{"longer hypothesis exceeds one", "ab", "abcdef", 2.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CharacterErrorRate(tc.ref, tc.hyp), 1e-9)
		})
	}
}

func TestWordErrorRate(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		hyp  string
		want float64
	}{
		{"both empty", "", "", 0.0},
		{"empty ref nonempty hyp", "", "hello there", 1.0},
		{"identical", "the lion is a carnivore", "the lion is a carnivore", 0.0},
		{"one substitution", "the lion is a carnivore", "the tiger is a carnivore", 0.2},
		{"insertion and deletion", "a b c", "a x b", 2.0 / 3.0},
		{"all wrong plus extra exceeds one", "a", "x y z", 3.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, WordErrorRate(tc.ref, tc.hyp), 1e-9)
		})
	}
}

func TestEditDistanceSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"", "abc"},
		{"獅子", "獅子是"},
		{"flaw", "lawn"},
	}
	for _, p := range pairs {
		assert.Equal(t, EditDistance(p[0], p[1]), EditDistance(p[1], p[0]),
			"distance(%q,%q) should be symmetric", p[0], p[1])
	}
	assert.Equal(t, 3, EditDistance("kitten", "sitting"))
}

func TestScoreTranscript(t *testing.T) {
	res := ScoreTranscript("the cat", "the bat")
	assert.Equal(t, "the cat", res.Reference)
	assert.Equal(t, "the bat", res.Hypothesis)
	assert.InDelta(t, 1.0/7.0, res.CER, 1e-9)
	assert.InDelta(t, 0.5, res.WER, 1e-9)
}
