package ui

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const barWidth = 20

var printer = message.NewPrinter(language.English)

// Count formats n with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Votes formats a vote count with its unit.
func Votes(n int) string {
	if n == 1 {
		return "1 vote"
	}
	return Count(n) + " votes"
}

// Bar draws part/total as a fixed width bar.
func Bar(part, total int) string {
	filled := 0
	if total > 0 && part > 0 {
		filled = part * barWidth / total
		if filled > barWidth {
			filled = barWidth
		}
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
