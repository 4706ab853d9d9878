package telegram

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is Telegram's per-message character limit.
const MaxMessageLength = 4096

// SplitMessage splits a long message into chunks that each fit within the
// given limit, measured in Unicode characters (runes) the way the Telegram
// API counts them. Chunks break at the last paragraph boundary (\n\n) inside
// the window, then at the last line boundary (\n), and hard-cut at the limit
// when a chunk has neither.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		window := string(runes[:limit])
		cut := limit
		if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
			cut = utf8.RuneCountInString(window[:idx]) + 2
		} else if idx := strings.LastIndex(window, "\n"); idx > 0 {
			cut = utf8.RuneCountInString(window[:idx]) + 1
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
