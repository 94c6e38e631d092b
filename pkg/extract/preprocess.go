package extract

import (
	"regexp"
	"strings"
)

var (
	// horizontalSpacePattern matches runs of spaces and tabs.
	horizontalSpacePattern = regexp.MustCompile(`[ \t]+`)

	// metaLinePattern matches lines made only of bracketed metadata such as
	// "[시행 2024. 1. 1.] [대통령령 제34000호, 2023. 12. 12., 일부개정]".
	metaLinePattern = regexp.MustCompile(`^(?:\s*\[[^\]]+\]\s*)+$`)
)

// NormalizeText unifies line endings, replaces non-breaking spaces,
// collapses horizontal whitespace and trims the result.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = horizontalSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SplitTitleAndBody separates a linked-text cell into the linked document's
// title (its first non-empty line) and the body that follows, skipping any
// bracketed metadata lines directly under the title.
func SplitTitleAndBody(cell string) (title string, body string) {
	lines := strings.Split(NormalizeText(cell), "\n")

	lineIndex := 0
	for lineIndex < len(lines) && title == "" {
		title = strings.TrimSpace(lines[lineIndex])
		lineIndex++
	}
	if title == "" {
		return "", ""
	}

	for lineIndex < len(lines) && metaLinePattern.MatchString(strings.TrimSpace(lines[lineIndex])) {
		lineIndex++
	}

	body = strings.TrimSpace(strings.Join(lines[lineIndex:], "\n"))
	return title, body
}
