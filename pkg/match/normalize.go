package match

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// strippedCharacters are removed from labels and segment texts before
// substring search.
const strippedCharacters = "「」[](){}〈〉《》【】'\"“”‘’·ㆍ,.;:"

var (
	stripReplacer = newStripReplacer()

	// numericLocatorPattern matches "2" and spreadsheet floats like "2.0".
	numericLocatorPattern = regexp.MustCompile(`^(\d+)(?:\.0+)?$`)
)

func newStripReplacer() *strings.Replacer {
	pairs := make([]string, 0, 2*len(strippedCharacters))
	for _, r := range strippedCharacters {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}

// Normalize removes brackets, quotes, punctuation and all whitespace.
func Normalize(s string) string {
	s = stripReplacer.Replace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// CanonicalLocator cleans an article locator taken from a table cell.
// Composite ("4의2") and underscore ("4_2") forms are kept as they are and
// numeric values such as " 2.0 " become "2".
func CanonicalLocator(value string) string {
	s := strings.TrimSpace(value)
	if strings.Contains(s, "_") || strings.Contains(s, "의") {
		return s
	}
	if match := numericLocatorPattern.FindStringSubmatch(s); match != nil {
		if number, err := strconv.Atoi(match[1]); err == nil {
			return strconv.Itoa(number)
		}
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
