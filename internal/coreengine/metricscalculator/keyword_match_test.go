package metricscalculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitKeywords(t *testing.T) {
	assert.Nil(t, SplitKeywords(""))
	assert.Nil(t, SplitKeywords("   "))
	assert.Equal(t, []string{"lion", "carnivore"}, SplitKeywords("lion, carnivore"))
	assert.Equal(t, []string{"a", "b"}, SplitKeywords(" a ,, b , "))
}

func TestCheckAnswerWithKeywords(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		ok, missing := CheckAnswerWithKeywords("The lion is a carnivore", "lion, carnivore")
		assert.True(t, ok)
		assert.Empty(t, missing)
	})

	t.Run("case insensitive containment", func(t *testing.T) {
		ok, missing := CheckAnswerWithKeywords("LIONS eat meat", "lion")
		assert.True(t, ok)
		assert.Empty(t, missing)
	})

	t.Run("reports missing in spec order", func(t *testing.T) {
		ok, missing := CheckAnswerWithKeywords("the lion sleeps", "tiger, lion, zebra")
		assert.False(t, ok)
		assert.Equal(t, []string{"tiger", "zebra"}, missing)
	})

	t.Run("empty spec is not a pass", func(t *testing.T) {
		ok, missing := CheckAnswerWithKeywords("any answer at all", "")
		assert.False(t, ok)
		assert.Nil(t, missing)
	})

	t.Run("spec of only separators is not a pass", func(t *testing.T) {
		ok, missing := CheckAnswerWithKeywords("any answer", " , , ")
		assert.False(t, ok)
		assert.Nil(t, missing)
	})

	t.Run("cjk keywords", func(t *testing.T) {
		ok, missing := CheckAnswerWithKeywords("獅子是肉食性動物", "獅子, 肉食")
		assert.True(t, ok)
		assert.Empty(t, missing)
	})
}
