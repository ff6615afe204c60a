package snippet_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cliffyan/go-meta-search/internal/snippet"
)

func TestExtractWordsSkipsScriptAndStyle(t *testing.T) {
	body := `<html><head><title>Hi</title>
<script>var x = "hidden";</script><style>p { color: red }</style></head>
<body><p>Hello   World!</p> <SCRIPT>ignored()</SCRIPT>Bye</body></html>`

	text := snippet.ExtractWords([]byte(body), "text/html")
	require.True(t, text.OK)
	require.Equal(t, []string{"Hi", "Hello", "World!", "Bye"}, text.Words)
}

func TestExtractWordsUnescapesEntities(t *testing.T) {
	text := snippet.ExtractWords([]byte(`<p>Fish &amp; Chips</p>`), "")
	require.True(t, text.OK)
	require.Equal(t, []string{"Fish", "&", "Chips"}, text.Words)
}

func TestExtractWordsClampsUnbalancedEndTag(t *testing.T) {
	text := snippet.ExtractWords([]byte(`</script></style><p>still visible</p>`), "")
	require.True(t, text.OK)
	require.Equal(t, []string{"still", "visible"}, text.Words)
}

func TestExtractWordsUnclosedScript(t *testing.T) {
	text := snippet.ExtractWords([]byte(`<p>before</p><script>after`), "")
	require.True(t, text.OK)
	require.Equal(t, []string{"before"}, text.Words)
}

func TestExtractWordsEmptyBody(t *testing.T) {
	for _, body := range [][]byte{nil, {}} {
		text := snippet.ExtractWords(body, "text/html")
		require.True(t, text.OK)
		require.Empty(t, text.Words)
	}

	text := snippet.ExtractWords([]byte{}, "")
	require.True(t, text.OK)
}

func TestGenerateEmptyPageIsUsable(t *testing.T) {
	meta := snippet.Generate(snippet.ExtractWords(nil, ""), []string{"pizza"}, snippet.DefaultOptions())
	require.True(t, meta.IsUsable())
	require.Equal(t, "", meta.Snippet)
	require.Zero(t, meta.Score)
}

func TestExtractWordsDecodesDeclaredCharset(t *testing.T) {
	body := []byte("<p>caf\xe9 cr\xe8me</p>")
	text := snippet.ExtractWords(body, "text/html; charset=iso-8859-1")
	require.True(t, text.OK)
	require.Equal(t, []string{"café", "crème"}, text.Words)
}
