package snippet

import "strings"

const (
	// ContextWidth 匹配前后保留的词数
	ContextWidth = 10

	HighlightOpen  = "<b>"
	HighlightClose = "</b>"
	Ellipsis       = "..."
)

// Assemble 根据按位置排序的匹配生成高亮摘要
// 没有匹配时返回空字符串
func Assemble(words []string, matches []Match, width int) string {
	if len(matches) == 0 || len(words) == 0 {
		return ""
	}
	if width < 0 {
		width = 0
	}

	var sb strings.Builder
	i := 0
	open := false

	for j, word := range words {
		// 当前匹配的上下文结束，或当前匹配已结束且 j 落在下一个匹配内
		for i+1 < len(matches) {
			cur, next := matches[i], matches[i+1]
			if j >= cur.end()+width || (j >= cur.end() && j >= next.Index && j < next.end()) {
				i++
				continue
			}
			break
		}
		m := matches[i]

		switch {
		case j < m.Index-width:
			continue

		case j < m.Index:
			if i == 0 && j == m.Index-width && j > 0 {
				sb.WriteString(Ellipsis)
				sb.WriteByte(' ')
			}
			sb.WriteString(word)
			sb.WriteByte(' ')

		case j < m.end():
			if !open {
				sb.WriteString(HighlightOpen)
				open = true
			}
			sb.WriteString(word)
			if j == m.end()-1 {
				sb.WriteString(HighlightClose)
				open = false
			}
			sb.WriteByte(' ')

		case j < m.end()+width:
			sb.WriteString(word)
			sb.WriteByte(' ')
			if i+1 < len(matches) && matches[i+1].Index == j+1 {
				i++
			} else if j == m.end()+width-1 && j+1 < len(words) {
				sb.WriteString(Ellipsis)
				sb.WriteByte(' ')
			}
		}
	}

	return strings.TrimRight(sb.String(), " \t\n")
}
