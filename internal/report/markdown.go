package report

import (
	"regexp"
	"strings"
	"sync"

	"threadwatch/internal/sanitizer"

	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"
)

const defaultWidth = 80

var (
	rendererMu      sync.Mutex
	renderersByKey  = map[rendererKey]*glamour.TermRenderer{}
	inlineLinkRE    = regexp.MustCompile(`(!?)\[([^\]]*)\]\(\s*<?([^)\s>]*)>?(?:\s+"[^"]*")?\s*\)`)
	autoLinkRE      = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9+.\-]*:[^>\s]*)>`)
	referenceLinkRE = regexp.MustCompile(`(?m)^[ ]{0,3}\[([^\]]+)\]:\s*<?(\S+?)>?(?:\s+.*)?$`)
)

type rendererKey struct {
	width int
	dark  bool
}

// RenderMarkdown renders backend-supplied markdown for a terminal of the
// given width. The input is sanitized first and links with any scheme other
// than http or https are reduced to their text.
func RenderMarkdown(input string, width int, dark bool) string {
	input = strings.TrimRight(SafeMarkdown(input), "\n")
	if input == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	r := getRenderer(width, dark)
	if r == nil {
		return input
	}
	out, err := r.Render(input)
	if err != nil {
		return input
	}
	out = strings.TrimRight(out, "\n")
	out = xansi.Hardwrap(out, width, true)
	return strings.TrimRight(out, "\n")
}

// SafeMarkdown strips terminal escapes and neutralizes unsafe links while
// leaving the rest of the markdown intact.
func SafeMarkdown(input string) string {
	input = sanitizer.Text(input)
	input = inlineLinkRE.ReplaceAllStringFunc(input, func(match string) string {
		parts := inlineLinkRE.FindStringSubmatch(match)
		if SafeLink(parts[3]) {
			return match
		}
		return parts[2]
	})
	input = autoLinkRE.ReplaceAllStringFunc(input, func(match string) string {
		target := autoLinkRE.FindStringSubmatch(match)[1]
		if SafeLink(target) {
			return match
		}
		return EscapeMarkdown(target)
	})
	return referenceLinkRE.ReplaceAllStringFunc(input, func(match string) string {
		parts := referenceLinkRE.FindStringSubmatch(match)
		if SafeLink(parts[2]) {
			return match
		}
		return ""
	})
}

func getRenderer(width int, dark bool) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	key := rendererKey{width: width, dark: dark}
	if renderer, ok := renderersByKey[key]; ok && renderer != nil {
		return renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyleConfig(dark)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderersByKey[key] = r
	return r
}

func buildStyleConfig(dark bool) glamouransi.StyleConfig {
	var base glamouransi.StyleConfig
	if dark {
		base = styles.DarkStyleConfig
	} else {
		base = styles.LightStyleConfig
	}
	// Outer spacing comes from lipgloss, not glamour's document margins.
	base.Document.StylePrimitive.BlockPrefix = ""
	base.Document.StylePrimitive.BlockSuffix = ""
	zero := uint(0)
	base.Document.Margin = &zero
	faint := true
	color := "245"
	base.BlockQuote.StylePrimitive.Faint = &faint
	base.BlockQuote.StylePrimitive.Color = &color
	return base
}

// EscapeMarkdown makes backend text render literally inside a generated
// markdown document.
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
		"<", `\<`,
		">", `\>`,
		"|", `\|`,
	)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = replacer.Replace(line)
		trimmed := strings.TrimLeft(line, " \t")
		prefix := line[:len(line)-len(trimmed)]
		switch {
		case strings.HasPrefix(trimmed, "#"),
			strings.HasPrefix(trimmed, "- "),
			strings.HasPrefix(trimmed, "+ "):
			lines[i] = prefix + "\\" + trimmed
		case isNumberedList(trimmed):
			lines[i] = prefix + "\\" + trimmed
		default:
			lines[i] = prefix + trimmed
		}
	}
	return strings.Join(lines, "\n")
}

func isNumberedList(text string) bool {
	dot := strings.IndexByte(text, '.')
	if dot <= 0 {
		return false
	}
	if dot+1 >= len(text) || text[dot+1] != ' ' {
		return false
	}
	for i := 0; i < dot; i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}
