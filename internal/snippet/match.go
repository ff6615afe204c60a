package snippet

import (
	"strings"

	"github.com/xrash/smetrics"
)

// Jaro-Winkler 参数
const (
	boostThreshold = 0.7
	prefixSize     = 4
)

// Match 关键词在词序列中的最佳对齐位置
type Match struct {
	Index int     `json:"index"`
	Count int     `json:"count"`
	Score float64 `json:"score"`
}

func (m Match) end() int {
	return m.Index + m.Count
}

// Similarity 返回两个字符串的 Jaro-Winkler 相似度，范围 [0,1]
func Similarity(a, b string) float64 {
	return smetrics.JaroWinkler(a, b, boostThreshold, prefixSize)
}

// FindMatch 在词序列中查找与关键词最相似的窗口
// 关键词词数超过词序列长度时返回 false
func FindMatch(words []string, keyword string) (Match, bool) {
	parts := strings.Fields(keyword)
	klen := len(parts)
	if klen == 0 || klen > len(words) {
		return Match{}, false
	}
	target := strings.ToLower(strings.Join(parts, " "))

	best := Match{Index: -1, Count: klen}
	for i := 0; i+klen <= len(words); i++ {
		phrase := strings.ToLower(strings.Join(words[i:i+klen], " "))
		score := Similarity(phrase, target)
		if best.Index < 0 || score > best.Score {
			best.Index = i
			best.Score = score
		}
	}
	return best, true
}

// FindMatches 为每个可匹配的关键词生成一个 Match，顺序与关键词一致
func FindMatches(words []string, keywords []string) []Match {
	matches := make([]Match, 0, len(keywords))
	for _, kw := range keywords {
		if m, ok := FindMatch(words, kw); ok {
			matches = append(matches, m)
		}
	}
	return matches
}
