package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes ANSI color codes.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// VisibleLength returns the rune count of s without ANSI codes.
func VisibleLength(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// TruncateText shortens text to maxWidth runes, ending in the ellipsis.
// The bool reports whether anything was cut.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if utf8.RuneCountInString(text) <= maxWidth {
		return text, false
	}

	ellipsis := []rune(cfg.Ellipsis)
	if maxWidth <= len(ellipsis) {
		return string(ellipsis[:maxWidth]), true
	}

	runes := []rune(text)
	return string(runes[:maxWidth-len(ellipsis)]) + cfg.Ellipsis, true
}

// FitCell truncates or pads a plain label so it occupies exactly width
// columns. Grid cells rely on this to stay aligned.
func FitCell(label string, width int, cfg TextConfig) string {
	if width <= 0 {
		return ""
	}
	fitted, _ := TruncateText(label, width, cfg)
	if pad := width - utf8.RuneCountInString(fitted); pad > 0 {
		fitted += strings.Repeat(" ", pad)
	}
	return fitted
}

// TruncateANSIAware truncates highlighted text without splitting escape
// sequences. A reset code is appended when anything was cut.
func TruncateANSIAware(styledText string, maxWidth int, cfg TextConfig) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisibleLength(styledText) <= maxWidth {
		return styledText
	}

	target := maxWidth - utf8.RuneCountInString(cfg.Ellipsis)
	if target < 0 {
		target = 0
	}

	var b strings.Builder
	visible := 0
	for i := 0; i < len(styledText) && visible < target; {
		if loc := ansiRegex.FindStringIndex(styledText[i:]); loc != nil && loc[0] == 0 {
			b.WriteString(styledText[i : i+loc[1]])
			i += loc[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(styledText[i:])
		if r != utf8.RuneError {
			b.WriteString(styledText[i : i+size])
			visible++
		}
		i += size
	}

	b.WriteString(cfg.Ellipsis)
	b.WriteString("\x1b[0m")
	return b.String()
}
