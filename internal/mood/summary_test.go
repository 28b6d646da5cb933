package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(30, nil)
	assert.Equal(t, 30, s.Days)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.Average)
	assert.Nil(t, s.First)
	assert.NotNil(t, s.TagCounts)
}

func TestSummarize_RoundsAverage(t *testing.T) {
	s := Summarize(30, []Entry{{Mood: 1}, {Mood: 2}, {Mood: 2}})
	assert.Equal(t, 1.67, s.Average)
	assert.Equal(t, 1, s.Min)
	assert.Equal(t, 2, s.Max)
}
