package client

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxKeywords      = 10
	MaxKeywordLength = 50
)

// ValidateKeywords trims each keyword, drops empty ones and enforces the
// limits the backend applies, so obviously bad input never leaves the client.
func ValidateKeywords(keywords []string) ([]string, error) {
	out := make([]string, 0, len(keywords))
	for _, raw := range keywords {
		kw := strings.TrimSpace(raw)
		if kw == "" {
			continue
		}
		if strings.ContainsAny(kw, "\n\r\x00") {
			return nil, fmt.Errorf("%w: keywords must not contain control characters", ErrInvalidKeywords)
		}
		if utf8.RuneCountInString(kw) > MaxKeywordLength {
			return nil, fmt.Errorf("%w: keyword too long: %q (max %d chars)", ErrInvalidKeywords, truncateRunes(kw, 20), MaxKeywordLength)
		}
		out = append(out, kw)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one non-empty keyword is required", ErrInvalidKeywords)
	}
	if len(out) > MaxKeywords {
		return nil, fmt.Errorf("%w: at most %d keywords are allowed", ErrInvalidKeywords, MaxKeywords)
	}
	return out, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
