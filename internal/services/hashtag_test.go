package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    []string
	}{
		{
			name:    "single tag",
			caption: "great day at #campus",
			want:    []string{"campus"},
		},
		{
			name:    "multiple tags keep first seen order",
			caption: "#fest2026 come join #PPSU #fest2026",
			want:    []string{"fest2026", "ppsu"},
		},
		{
			name:    "lowercased and deduplicated",
			caption: "#GoLang and #golang are the same",
			want:    []string{"golang"},
		},
		{
			name:    "underscores and digits allowed",
			caption: "#tech_talk_2026 tonight",
			want:    []string{"tech_talk_2026"},
		},
		{
			name:    "unicode letters",
			caption: "celebrating #दिवाली on campus",
			want:    []string{"दिवाली"},
		},
		{
			name:    "bare hash ignored",
			caption: "just a # sign and #, nothing else",
			want:    nil,
		},
		{
			name:    "punctuation terminates tag",
			caption: "see you there! #seminar.",
			want:    []string{"seminar"},
		},
		{
			name:    "empty caption",
			caption: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.caption))
		})
	}
}

func TestExtractHashtagsSkipsOverlongTags(t *testing.T) {
	long := "#" + strings.Repeat("a", maxHashtagLength+1)
	assert.Empty(t, ExtractHashtags(long))

	ok := "#" + strings.Repeat("a", maxHashtagLength)
	assert.Len(t, ExtractHashtags(ok), 1)
}
