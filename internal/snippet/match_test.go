package snippet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliffyan/go-meta-search/internal/snippet"
)

func TestFindMatchExactWord(t *testing.T) {
	words := []string{"The", "best", "Pizza", "in", "town"}

	m, ok := snippet.FindMatch(words, "pizza")
	require.True(t, ok)
	assert.Equal(t, 2, m.Index)
	assert.Equal(t, 1, m.Count)
	assert.InDelta(t, 1.0, m.Score, 1e-9)
}

func TestFindMatchPhrase(t *testing.T) {
	words := []string{"The", "best", "Pizza", "in", "town"}

	m, ok := snippet.FindMatch(words, "best pizza")
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, 2, m.Count)
	assert.InDelta(t, 1.0, m.Score, 1e-9)
}

func TestFindMatchPrefersLeftmostOnTie(t *testing.T) {
	m, ok := snippet.FindMatch([]string{"pizza", "and", "pizza"}, "pizza")
	require.True(t, ok)
	assert.Equal(t, 0, m.Index)
}

func TestFindMatchIncludesFinalWindow(t *testing.T) {
	m, ok := snippet.FindMatch([]string{"a", "b", "c"}, "b c")
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.InDelta(t, 1.0, m.Score, 1e-9)

	m, ok = snippet.FindMatch([]string{"hello", "world"}, "hello world")
	require.True(t, ok)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, 2, m.Count)
}

func TestFindMatchKeywordLongerThanDocument(t *testing.T) {
	_, ok := snippet.FindMatch([]string{"only"}, "two words")
	assert.False(t, ok)

	_, ok = snippet.FindMatch(nil, "x")
	assert.False(t, ok)

	_, ok = snippet.FindMatch([]string{"a"}, "   ")
	assert.False(t, ok)
}

func TestFindMatchApproximate(t *testing.T) {
	m, ok := snippet.FindMatch([]string{"fresh", "pizzas", "daily"}, "pizza")
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.Greater(t, m.Score, 0.9)
	assert.Less(t, m.Score, 1.0)
}

func TestFindMatchesSkipsUnmatchable(t *testing.T) {
	words := []string{"margherita", "pizza", "recipe"}
	matches := snippet.FindMatches(words, []string{"pizza", "a very long keyword phrase", "recipe"})

	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].Index)
	assert.Equal(t, 2, matches[1].Index)
}

func TestSimilarityRange(t *testing.T) {
	assert.InDelta(t, 1.0, snippet.Similarity("pizza", "pizza"), 1e-9)
	assert.InDelta(t, 0.0, snippet.Similarity("abc", "xyz"), 1e-9)
}
