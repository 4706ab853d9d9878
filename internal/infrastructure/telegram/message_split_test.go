package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage_ShortTextIsUntouched(t *testing.T) {
	chunks := SplitMessage("hello", 100)
	assert.Equal(t, []string{"hello"}, chunks)
}

func TestSplitMessage_PrefersParagraphBoundary(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	chunks := SplitMessage(text, 100)

	assert.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("a", 60)+"\n\n", chunks[0])
	assert.Equal(t, strings.Repeat("b", 60), chunks[1])
}

func TestSplitMessage_FallsBackToLineBoundary(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
	chunks := SplitMessage(text, 100)

	assert.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("a", 60)+"\n", chunks[0])
}

func TestSplitMessage_HardCutsAtRuneBoundary(t *testing.T) {
	text := strings.Repeat("я", 250)
	chunks := SplitMessage(text, 100)

	assert.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
		assert.True(t, utf8.ValidString(chunk))
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}
