package sanitizer

import (
	"strings"
	"testing"
)

func TestStripEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "ANSI color code",
			input:    "\x1b[31mred text\x1b[0m",
			expected: "red text",
		},
		{
			name:     "cursor position",
			input:    "\x1b[10;20Hposition",
			expected: "position",
		},
		{
			name:     "private mode set",
			input:    "\x1b[?25hvisible",
			expected: "visible",
		},
		{
			name:     "OSC title with BEL",
			input:    "\x1b]0;pwned\x07title",
			expected: "title",
		},
		{
			name:     "OSC 52 clipboard write",
			input:    "a\x1b]52;c;ZXZpbA==\x1b\\b",
			expected: "ab",
		},
		{
			name:     "OSC 8 hyperlink",
			input:    "\x1b]8;;javascript:alert(1)\x1b\\click\x1b]8;;\x1b\\",
			expected: "click",
		},
		{
			name:     "DCS string",
			input:    "x\x1bPq#0;2;0;0;0\x1b\\y",
			expected: "xy",
		},
		{
			name:     "charset switch",
			input:    "\x1b(0lines\x1b(B",
			expected: "lines",
		},
		{
			name:     "lone escape",
			input:    "tail\x1b",
			expected: "tail",
		},
		{
			name:     "plain text untouched",
			input:    "地震速報 [link](https://example.com)",
			expected: "地震速報 [link](https://example.com)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripEscapes(tt.input); got != tt.expected {
				t.Fatalf("StripEscapes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizerBlock(t *testing.T) {
	got := Text("line one\r\nline\ttwo\x00\x07\x1b[2J\u0085end")
	want := "line one\nline twoend"
	if got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestSanitizerSingleLine(t *testing.T) {
	got := SingleLine("  first\nsecond\r\nthird  ")
	want := "first second third"
	if got != want {
		t.Fatalf("SingleLine() = %q, want %q", got, want)
	}
}

func TestSanitizerMaxRunes(t *testing.T) {
	s := New(Config{AllowNewlines: true, MaxRunes: 3})
	if got := s.Sanitize("日本語テキスト"); got != "日本語" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if got := s.Sanitize(strings.Repeat("a", 2)); got != "aa" {
		t.Fatalf("expected short input untouched, got %q", got)
	}
}

func TestSanitizerDropsNewlinesWithoutReplacement(t *testing.T) {
	s := New(Config{})
	if got := s.Sanitize("a\nb"); got != "ab" {
		t.Fatalf("expected newline dropped, got %q", got)
	}
}
