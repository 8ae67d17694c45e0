package exporter

import (
	"strconv"
)

// formatFraction keeps six decimals, enough to tell apart answers of a
// survey with a hundred thousand respondents.
func formatFraction(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// formatPercent renders a fraction as a percentage with one decimal.
func formatPercent(f float64) string {
	return strconv.FormatFloat(100*f, 'f', 1, 64) + "%"
}
