package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextStripsMarkup(t *testing.T) {
	assert.Equal(t, "hello", Text("<b>hello</b>"))
	assert.Equal(t, "", Text(`<script>alert("xss")</script>`))
	assert.Equal(t, "click", Text(`<a href="http://evil.example">click</a>`))
}

func TestTextTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "spaced out", Text("  spaced out  "))
	assert.Equal(t, "", Text("   "))
}

func TestTextKeepsPlainContent(t *testing.T) {
	assert.Equal(t, "exam schedule for #sem6 at 9am", Text("exam schedule for #sem6 at 9am"))
}
