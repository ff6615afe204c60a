package snippet

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// nonTextualTags 不包含可读文本的标签
var nonTextualTags = map[string]bool{
	"script": true,
	"style":  true,
}

// Text 词提取结果；OK 为 false 表示页面无可用内容
type Text struct {
	Words []string
	OK    bool
}

// NoText 无内容标记
var NoText = Text{}

// wordSink 按标签深度收集文本
type wordSink struct {
	words []string
	skip  int
}

func (s *wordSink) tag(name []byte, start bool) {
	if !nonTextualTags[strings.ToLower(string(name))] {
		return
	}
	if start {
		s.skip++
		return
	}
	if s.skip > 0 {
		s.skip--
	}
}

func (s *wordSink) text(raw []byte) {
	if s.skip > 0 {
		return
	}
	s.words = append(s.words, strings.Fields(string(raw))...)
}

// ExtractWords 从 HTML 页面中提取词序列
// contentType 用于确定页面编码，可为空
func ExtractWords(body []byte, contentType string) Text {
	// 空页面可正常解析，只是没有文本
	if len(body) == 0 {
		return Text{Words: []string{}, OK: true}
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return NoText
	}
	decoded, err := io.ReadAll(r)
	if err != nil || !utf8.Valid(decoded) {
		return NoText
	}

	sink := &wordSink{}
	z := html.NewTokenizer(bytes.NewReader(decoded))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return NoText
			}
			return Text{Words: sink.words, OK: true}
		case html.StartTagToken:
			name, _ := z.TagName()
			sink.tag(name, true)
		case html.EndTagToken:
			name, _ := z.TagName()
			sink.tag(name, false)
		case html.TextToken:
			sink.text(z.Text())
		}
	}
}
