package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}

func TestTruncateBoundedAndIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"short",
		strings.Repeat("x", 401),
		strings.Repeat("é", 900),
		strings.Repeat("🙂a", 250),
	}
	for _, limit := range []int{200, 400} {
		for _, in := range inputs {
			once := Truncate(in, limit)
			assert.LessOrEqual(t, utf8.RuneCountInString(once), limit)
			assert.True(t, utf8.ValidString(once))
			assert.Equal(t, once, Truncate(once, limit))
		}
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abcd", Clip("abcd", 4, "\n..."))
	assert.Equal(t, "ab\n...", Clip("abcd", 2, "\n..."))
}
