package utils

import "strings"

// Tail returns at most n trailing characters of a transcript, for log lines
// and error context where the full capture would be noise.
func Tail(s string, n int) string {
	s = strings.TrimRight(s, "\r\n ")
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
