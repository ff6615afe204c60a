package snippet

// Score 返回匹配分数的平均值，没有匹配时为 0
func Score(matches []Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return sum / float64(len(matches))
}
