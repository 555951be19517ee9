// Package textnorm normalizes transcript and answer text so that
// recognition output, chatbot answers, and reference strings compare on
// equal footing.
package textnorm

import "strings"

// Normalize lowercases s, trims surrounding whitespace and collapses every
// internal whitespace run (spaces, tabs, newlines) to a single space.
// An empty or all-whitespace input yields "".
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
