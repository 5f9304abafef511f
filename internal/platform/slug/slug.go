package slug

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// Make builds a hyphenated file-name slug.
func Make(input string) string {
	return join(input, "-", "untitled")
}

// Key builds an underscore identifier such as a habit lever reference.
// It returns "" when input has no letters or digits.
func Key(input string) string {
	return join(input, "_", "")
}

func join(input, sep, empty string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonAlphaNum.ReplaceAllString(s, sep)
	s = strings.Trim(s, sep)
	if s == "" {
		return empty
	}
	return s
}
