package utils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	digitRunRegex   = regexp.MustCompile(`\d+`)
	lineBreakRegex  = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
)

// CleanText removes extra whitespace and trims a string
func CleanText(text string) string {
	// Replace multiple whitespace with single space
	text = whitespaceRegex.ReplaceAllString(text, " ")
	// Trim leading/trailing whitespace
	return strings.TrimSpace(text)
}

// CleanMultiline trims every line and collapses runs of blank lines to one,
// keeping the paragraph structure of descriptions intact
func CleanMultiline(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\u00a0'
		}), " ")
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// StripMarkup turns <br> into newlines, drops all other tags and trims the result
func StripMarkup(s string) string {
	s = lineBreakRegex.ReplaceAllString(s, "\n")
	s = tagRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseInt safely parses a string to int, returning 0 on error
func ParseInt(s string) int {
	val, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return val
}

// ParseLeadingInt parses the integer prefix of s the way loose number
// parsers do: leading whitespace and an optional sign are accepted, parsing
// stops at the first non-digit. "1500.50" yields 1500, "kr 10" yields 0.
func ParseLeadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	val, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	if neg {
		return -val
	}
	return val
}

// ParsePrice removes all whitespace from a rendered price and returns the
// first run of digits, so "kr 1 500,-" yields 1500. Returns 0 when no digits.
func ParsePrice(text string) int {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return ParseInt(digitRunRegex.FindString(compact))
}

// TruncateString truncates a string to maxLen runes
// If truncated, appends "..." to the end
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// RemoveDuplicates removes duplicate strings from a slice while preserving order
func RemoveDuplicates(slice []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(slice))

	for _, item := range slice {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}

// DefaultString returns the first non-empty string
func DefaultString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ContainsAny reports whether s contains any of the substrings
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
