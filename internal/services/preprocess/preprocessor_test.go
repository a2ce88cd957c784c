package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/atlassian-mcp/internal/common"
)

func newTestPreprocessor() *Preprocessor {
	return New("https://example.atlassian.net", common.GetLogger())
}

func TestCleanText(t *testing.T) {
	p := newTestPreprocessor()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"user mention", "Ping [~accountid:5b10a2844c20165700ede21g] please", "Ping @5b10a2844c20165700ede21g please"},
		{"smart link", "See [the docs|https://example.com/docs]", "See [the docs](https://example.com/docs)"},
		{"bare link", "See [https://example.com]", "See https://example.com"},
		{"code block", "{code:java}x = 1{code}", "```x = 1```"},
		{"noformat block", "{noformat}raw{noformat}", "```raw```"},
		{"heading", "h2. Rollout plan", "## Rollout plan"},
		{"plain text untouched", "Nothing special here", "Nothing special here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CleanText(tt.input))
		})
	}
}

func TestProcessHTML(t *testing.T) {
	p := newTestPreprocessor()

	t.Run("empty input", func(t *testing.T) {
		html, markdown := p.ProcessHTML("", "DEV")
		assert.Empty(t, html)
		assert.Empty(t, markdown)
	})

	t.Run("scripts are removed", func(t *testing.T) {
		html, markdown := p.ProcessHTML("<p>Hello</p><script>alert(1)</script>", "DEV")
		assert.NotContains(t, html, "alert")
		assert.NotContains(t, markdown, "alert")
		assert.Contains(t, markdown, "Hello")
	})

	t.Run("relative links become absolute", func(t *testing.T) {
		html, _ := p.ProcessHTML(`<a href="/spaces/DEV/pages/1">link</a>`, "DEV")
		assert.Contains(t, html, "https://example.atlassian.net/wiki/spaces/DEV/pages/1")
	})

	t.Run("absolute links are untouched", func(t *testing.T) {
		html, _ := p.ProcessHTML(`<a href="https://other.example.com/x">link</a>`, "DEV")
		assert.Contains(t, html, `https://other.example.com/x`)
		assert.NotContains(t, html, "wiki/https")
	})
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "Hello world", StripHTMLTags("<p>Hello   <b>world</b></p>"))
	assert.Equal(t, "a < b", StripHTMLTags("a &lt; b"))
}
