package snippet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cliffyan/go-meta-search/internal/snippet"
)

var alphabet = []string{"abc", "def", "ghi", "jkl", "mno", "pqr", "stu", "vwx", "yz"}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name    string
		matches []snippet.Match
		width   int
		want    string
	}{
		{
			name:    "single match truncated on both sides",
			matches: []snippet.Match{{Index: 3, Count: 2}},
			width:   2,
			want:    "... def ghi <b>jkl mno</b> pqr stu ...",
		},
		{
			name:    "two separate windows",
			matches: []snippet.Match{{Index: 1, Count: 1}, {Index: 6, Count: 1}},
			width:   2,
			want:    "abc <b>def</b> ghi jkl ... mno pqr <b>stu</b> vwx yz",
		},
		{
			name:    "touching windows merge",
			matches: []snippet.Match{{Index: 1, Count: 2}, {Index: 5, Count: 1}},
			width:   2,
			want:    "abc <b>def ghi</b> jkl mno <b>pqr</b> stu vwx ...",
		},
		{
			name:    "match at first word",
			matches: []snippet.Match{{Index: 0, Count: 1}},
			width:   2,
			want:    "<b>abc</b> def ghi ...",
		},
		{
			name:    "pre-context starts at word zero",
			matches: []snippet.Match{{Index: 2, Count: 1}},
			width:   2,
			want:    "abc def <b>ghi</b> jkl mno ...",
		},
		{
			name:    "match at last word",
			matches: []snippet.Match{{Index: 8, Count: 1}},
			width:   2,
			want:    "... stu vwx <b>yz</b>",
		},
		{
			name:    "adjacent core phrases",
			matches: []snippet.Match{{Index: 2, Count: 1}, {Index: 3, Count: 1}},
			width:   1,
			want:    "... def <b>ghi</b> <b>jkl</b> mno ...",
		},
		{
			name:    "overlapping core phrases",
			matches: []snippet.Match{{Index: 2, Count: 3}, {Index: 3, Count: 1}},
			width:   1,
			want:    "... def <b>ghi jkl mno</b> pqr ...",
		},
		{
			name:    "wide context covers everything",
			matches: []snippet.Match{{Index: 4, Count: 1}},
			width:   10,
			want:    "abc def ghi jkl <b>mno</b> pqr stu vwx yz",
		},
		{
			name:  "no matches",
			width: 2,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snippet.Assemble(alphabet, tt.matches, tt.width))
		})
	}
}

func TestAssembleBalancesHighlights(t *testing.T) {
	words := strings.Fields("one two three four five six seven eight nine ten eleven twelve")
	matches := []snippet.Match{
		{Index: 1, Count: 2},
		{Index: 2, Count: 3},
		{Index: 9, Count: 1},
	}
	out := snippet.Assemble(words, matches, 1)

	assert.Equal(t, strings.Count(out, snippet.HighlightOpen), strings.Count(out, snippet.HighlightClose))
	for _, w := range words[1:6] {
		assert.Equal(t, 1, strings.Count(out, " "+w+" ")+strings.Count(out, ">"+w+" ")+strings.Count(out, " "+w+"<"), w)
	}
	assert.Equal(t, out, strings.TrimRight(out, " "))
}
