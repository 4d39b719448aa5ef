// Package money parses monetary amounts in the two numeric conventions the
// disclosure sources use: UK style ("£500,000.00", comma thousands, dot
// decimal) and continental style ("1.000,00", dot thousands, comma decimal).
// Applying the wrong convention silently corrupts amounts by a factor of up
// to a thousand, so each jurisdiction adapter picks its parser explicitly.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseUK parses a UK-convention amount: optional leading currency symbol,
// comma thousands separators, dot decimal point.
func ParseUK(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "£")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	return parse(s, cleaned)
}

// ParseContinental parses a continental-convention amount: dot thousands
// separators, comma decimal point. Trailing currency words ("Euro", "EUR")
// and embedded spaces are tolerated, since scraped cells carry them.
func ParseContinental(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	for _, suffix := range []string{"Euro", "EUR", "\u20ac"} {
		cleaned = strings.TrimSuffix(cleaned, suffix)
		cleaned = strings.TrimSpace(cleaned)
	}
	cleaned = strings.TrimPrefix(cleaned, "\u20ac")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return parse(s, cleaned)
}

func parse(original, cleaned string) (float64, error) {
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount %q", original)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", original, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative amount %q", original)
	}
	return value, nil
}
