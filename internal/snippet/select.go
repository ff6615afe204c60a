package snippet

import "sort"

const (
	// MaxMatchesPerSnippet 单个摘要最多保留的匹配数
	MaxMatchesPerSnippet = 3
	// ScoreEpsilon 分数差小于该值时视为相等
	ScoreEpsilon = 0.05
)

// SelectMatches 保留得分最高的 max 个匹配，并按位置升序返回
// 分数落在当前最高分 epsilon 范围内的匹配中，词数更多者优先
func SelectMatches(matches []Match, max int, epsilon float64) []Match {
	selected := make([]Match, len(matches))
	copy(selected, matches)

	if max >= 0 && len(selected) > max {
		selected = pickTop(selected, max, epsilon)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Index < selected[j].Index
	})
	return selected
}

// pickTop 逐个挑选：先取剩余最高分 best，再在 (best-epsilon, best] 内选词数最多者
// 词数相同取分数更高者，再相同取输入中靠前者
func pickTop(remaining []Match, max int, epsilon float64) []Match {
	picked := make([]Match, 0, max)
	for len(picked) < max && len(remaining) > 0 {
		best := remaining[0].Score
		for _, m := range remaining[1:] {
			if m.Score > best {
				best = m.Score
			}
		}

		choice := -1
		for i, m := range remaining {
			if m.Score < best && m.Score <= best-epsilon {
				continue
			}
			if choice < 0 {
				choice = i
				continue
			}
			c := remaining[choice]
			if m.Count > c.Count || (m.Count == c.Count && m.Score > c.Score) {
				choice = i
			}
		}

		picked = append(picked, remaining[choice])
		remaining = append(remaining[:choice], remaining[choice+1:]...)
	}
	return picked
}
