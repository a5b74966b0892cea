package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// CleanStay strips every non-digit from a raw length of stay ("120 +" -> 120)
// and parses what is left. Decimal points are stripped too, so "1.5" reads as 15.
func CleanStay(raw string) (float64, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStay, raw)
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidStay, raw, err)
	}
	return v, nil
}

// FormatStay renders a cleaned stay the way it is shown and exported.
func FormatStay(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
