// Package markup tokenizes chat text and decides whether a message mentions
// the viewer.
package markup

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"room-client/internal/models"
)

var tokenPattern = regexp.MustCompile(
	"(`[^`]+`)" +
		`|(https?://[^\s]+)` +
		`|(@[\p{L}\p{N}_.\-]+)` +
		`|(:[a-zA-Z0-9_+\-]+:)` +
		`|(\*[^*\s][^*]*\*)` +
		`|(_[^_\s][^_]*_)`,
)

const (
	groupCode = iota + 1
	groupLink
	groupMention
	groupEmoji
	groupBold
	groupItalic
)

type Options struct {
	// Emoji maps available shortcodes to image URLs. Unknown shortcodes stay
	// plain text.
	Emoji map[string]string
}

// Parse splits text into tokens. Concatenating the Text of all tokens gives
// back the input.
func Parse(text string, opts Options) []models.TextToken {
	var tokens []models.TextToken
	last := 0
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		tok, end, ok := classify(text, m, opts)
		if !ok {
			continue
		}
		if start > last {
			tokens = appendText(tokens, text[last:start])
		}
		tokens = append(tokens, tok)
		last = end
	}
	if last < len(text) {
		tokens = appendText(tokens, text[last:])
	}
	if tokens == nil {
		tokens = []models.TextToken{}
	}
	return tokens
}

func classify(text string, m []int, opts Options) (models.TextToken, int, bool) {
	start, end := m[0], m[1]
	raw := text[start:end]
	switch {
	case m[2*groupCode] >= 0:
		return models.TextToken{Kind: models.TokenCode, Text: raw, Value: raw[1 : len(raw)-1]}, end, true
	case m[2*groupLink] >= 0:
		return models.TextToken{Kind: models.TokenLink, Text: raw, Value: raw}, end, true
	case m[2*groupMention] >= 0:
		if start > 0 && !isBoundary(text[:start]) {
			return models.TextToken{}, end, false
		}
		name := strings.TrimRight(raw[1:], ".-")
		if name == "" {
			return models.TextToken{}, end, false
		}
		end = start + 1 + len(name)
		kind := models.TokenMention
		if IsGroupMention(name) {
			kind = models.TokenGroupMention
			name = strings.ToLower(name)
		}
		return models.TextToken{Kind: kind, Text: text[start:end], Value: name}, end, true
	case m[2*groupEmoji] >= 0:
		code := raw[1 : len(raw)-1]
		if _, ok := opts.Emoji[code]; !ok {
			return models.TextToken{}, end, false
		}
		return models.TextToken{Kind: models.TokenEmoji, Text: raw, Value: code}, end, true
	case m[2*groupBold] >= 0:
		return models.TextToken{Kind: models.TokenBold, Text: raw, Value: raw[1 : len(raw)-1]}, end, true
	case m[2*groupItalic] >= 0:
		if start > 0 && !isBoundary(text[:start]) {
			return models.TextToken{}, end, false
		}
		return models.TextToken{Kind: models.TokenItalic, Text: raw, Value: raw[1 : len(raw)-1]}, end, true
	}
	return models.TextToken{}, end, false
}

func isBoundary(before string) bool {
	r, _ := utf8.DecodeLastRuneInString(before)
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

func appendText(tokens []models.TextToken, s string) []models.TextToken {
	if n := len(tokens); n > 0 && tokens[n-1].Kind == models.TokenText {
		tokens[n-1].Text += s
		return tokens
	}
	return append(tokens, models.TextToken{Kind: models.TokenText, Text: s})
}
