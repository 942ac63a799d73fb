package utils

import "strings"

// RemoveTokens deletes every occurrence of each token from s, in order.
func RemoveTokens(s string, tokens []string) string {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}

		s = strings.ReplaceAll(s, tok, "")
	}

	return s
}

// TruncateString truncates str to maxLength bytes on a rune boundary.
func TruncateString(str string, maxLength int) string {
	if len(str) <= maxLength {
		return str
	}

	cut := maxLength
	for cut > 0 && !isRuneStart(str[cut]) {
		cut--
	}

	return str[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
