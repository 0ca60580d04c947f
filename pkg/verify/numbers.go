package verify

import (
	"regexp"
	"strings"
)

// numberPattern matches numeric tokens: optional minus sign, digits,
// optional grouping commas, optional decimal part.
var numberPattern = regexp.MustCompile(`-?\d[\d,]*\.?\d*`)

// ExtractNumbers pulls significant numbers out of text, normalized by
// removing thousands separators. A number is significant when its integer
// part has at least 2 digits; this excludes small counting numbers
// ("top 5 holdings") that would pollute cross-referencing. Values stay
// strings so formatting variants survive for substring comparison.
func ExtractNumbers(text string) map[string]bool {
	numbers := make(map[string]bool)
	for _, raw := range numberPattern.FindAllString(text, -1) {
		clean := strings.ReplaceAll(raw, ",", "")
		intPart := strings.TrimPrefix(clean, "-")
		if i := strings.IndexByte(intPart, '.'); i >= 0 {
			intPart = intPart[:i]
		}
		if len(intPart) >= 2 {
			numbers[clean] = true
		}
	}
	return numbers
}
