package sanitizer

import "strings"

type Config struct {
	AllowNewlines      bool
	ReplaceNewlineWith string
	// MaxRunes truncates the result when > 0.
	MaxRunes int
}

// Sanitizer cleans text received from the backend before it is rendered in
// a terminal.
type Sanitizer struct {
	config Config
}

func New(config Config) *Sanitizer {
	return &Sanitizer{config: config}
}

// Block keeps line structure, for markdown and post bodies.
func Block() *Sanitizer {
	return New(Config{AllowNewlines: true})
}

// Line flattens input onto one line, for authors, keywords and table cells.
func Line() *Sanitizer {
	return New(Config{ReplaceNewlineWith: " "})
}

func (s *Sanitizer) Sanitize(input string) string {
	if input == "" {
		return input
	}
	input = StripEscapes(strings.ReplaceAll(input, "\r\n", "\n"))

	var b strings.Builder
	b.Grow(len(input))
	count := 0
	for _, r := range input {
		if s.config.MaxRunes > 0 && count >= s.config.MaxRunes {
			break
		}
		switch {
		case r == '\n':
			if s.config.AllowNewlines {
				b.WriteRune(r)
				count++
			} else if s.config.ReplaceNewlineWith != "" {
				b.WriteString(s.config.ReplaceNewlineWith)
				count++
			}
		case r == '\t':
			b.WriteByte(' ')
			count++
		case r < 32 || r == 127 || (r >= 0x80 && r < 0xa0):
			// C0/C1 controls
		default:
			b.WriteRune(r)
			count++
		}
	}
	return b.String()
}

var (
	blockSanitizer = Block()
	lineSanitizer  = Line()
)

func Text(input string) string {
	return blockSanitizer.Sanitize(input)
}

func SingleLine(input string) string {
	return strings.TrimSpace(lineSanitizer.Sanitize(input))
}
