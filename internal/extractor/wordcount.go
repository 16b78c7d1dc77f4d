package extractor

import "strings"

// CountWords counts whitespace-separated tokens. Runs of whitespace count as
// a single separator, so "hello world  foo" is three words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
