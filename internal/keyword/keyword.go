// Package keyword 从查询语句中提取用于匹配的关键词
package keyword

import (
	_ "embed"
	"sort"
	"strings"
)

//go:embed stopwords.txt
var stopwordList string

var stopwords = func() map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(stopwordList) {
		set[w] = true
	}
	return set
}()

// IsStopword 是否为停用词
func IsStopword(word string) bool {
	return stopwords[strings.ToLower(word)]
}

// Normalize 转为小写并合并空白
func Normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Extract 使用 RAKE 算法提取关键词
// 结果按分数降序排列，最后一项总是完整查询
func Extract(query string) []string {
	normalized := Normalize(query)
	if normalized == "" {
		return []string{}
	}

	phrases := candidates(normalized)

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, p := range phrases {
		for _, w := range p {
			freq[w]++
			degree[w] += len(p)
		}
	}

	type scored struct {
		text  string
		score float64
	}
	seen := make(map[string]bool)
	var ranked []scored
	for _, p := range phrases {
		text := strings.Join(p, " ")
		if seen[text] || text == normalized {
			continue
		}
		seen[text] = true

		var s float64
		for _, w := range p {
			s += float64(degree[w]) / float64(freq[w])
		}
		ranked = append(ranked, scored{text: text, score: s})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	keywords := make([]string, 0, len(ranked)+1)
	for _, r := range ranked {
		keywords = append(keywords, r.text)
	}
	return append(keywords, normalized)
}

// phraseEnd 结束当前短语的标点
const phraseEnd = ",.;:!?"

// trimSet 词两端去除的字符
const trimSet = phraseEnd + "\"'()[]{}<>"

// candidates 以停用词和标点切分候选短语
func candidates(text string) [][]string {
	var phrases [][]string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			phrases = append(phrases, cur)
			cur = nil
		}
	}

	for _, field := range strings.Fields(text) {
		word := strings.Trim(field, trimSet)
		switch {
		case word == "" || stopwords[word]:
			flush()
			continue
		case strings.ContainsAny(field[:1], "\"'([{<"):
			flush()
		}
		cur = append(cur, word)
		if strings.ContainsAny(field[len(field)-1:], phraseEnd+"\"')]}>") {
			flush()
		}
	}
	flush()
	return phrases
}
