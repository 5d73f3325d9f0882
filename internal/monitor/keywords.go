package monitor

import "strings"

// ParseKeywords splits comma separated input into trimmed, non-empty
// keywords, keeping their order.
func ParseKeywords(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
