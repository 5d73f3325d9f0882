package sanitizer

import "regexp"

// escapePattern is a class of terminal control sequence that must never
// reach the screen from backend-supplied text.
type escapePattern struct {
	name    string
	pattern *regexp.Regexp
}

var (
	csiPattern = &escapePattern{
		name:    "CSI",
		pattern: regexp.MustCompile(`\x1b\[[<>?=]?[0-9;]*[A-Za-z@^` + "`" + `~{|}!]`),
	}
	oscPattern = &escapePattern{
		name:    "OSC",
		pattern: regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`),
	}
	// DCS, SOS, PM and APC strings end with ST like OSC.
	stringPattern = &escapePattern{
		name:    "DCS",
		pattern: regexp.MustCompile(`\x1b[P^_X][^\x1b]*\x1b\\`),
	}
	charsetPattern = &escapePattern{
		name:    "Charset",
		pattern: regexp.MustCompile(`\x1b[()][AB012]`),
	}
	loneEscapePattern = &escapePattern{
		name:    "Escape",
		pattern: regexp.MustCompile(`\x1b.?`),
	}
)

// Order matters: the catch-all lone escape runs last.
var escapePatterns = []*escapePattern{
	csiPattern,
	oscPattern,
	stringPattern,
	charsetPattern,
	loneEscapePattern,
}

// StripEscapes removes terminal escape sequences from input.
func StripEscapes(input string) string {
	for _, p := range escapePatterns {
		input = p.pattern.ReplaceAllString(input, "")
	}
	return input
}
