// Package snippet 从页面正文生成带高亮的相关性摘要
package snippet

// Unusable 页面无法获取或解析时的分数
const Unusable = -1.0

// Meta 单个搜索结果的摘要与相关性分数
type Meta struct {
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// UnusableMeta 无法使用的结果，下游应丢弃
func UnusableMeta() Meta {
	return Meta{Snippet: "", Score: Unusable}
}

// IsUsable 是否可参与排序
func (m Meta) IsUsable() bool {
	return m.Score != Unusable
}

// Options 摘要生成参数
type Options struct {
	ContextWidth int
	MaxMatches   int
	ScoreEpsilon float64
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		ContextWidth: ContextWidth,
		MaxMatches:   MaxMatchesPerSnippet,
		ScoreEpsilon: ScoreEpsilon,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.ContextWidth <= 0 {
		o.ContextWidth = def.ContextWidth
	}
	if o.MaxMatches <= 0 {
		o.MaxMatches = def.MaxMatches
	}
	if o.ScoreEpsilon <= 0 {
		o.ScoreEpsilon = def.ScoreEpsilon
	}
	return o
}

// Generate 根据页面词序列和关键词生成 Meta
// text 无内容时直接返回 UnusableMeta
func Generate(text Text, keywords []string, opts Options) Meta {
	if !text.OK {
		return UnusableMeta()
	}
	opts = opts.normalized()

	matches := FindMatches(text.Words, keywords)
	retained := SelectMatches(matches, opts.MaxMatches, opts.ScoreEpsilon)

	return Meta{
		Snippet: Assemble(text.Words, retained, opts.ContextWidth),
		Score:   Score(retained),
	}
}
