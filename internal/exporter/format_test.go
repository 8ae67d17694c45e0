package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFraction(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000000"},
		{1, "1.000000"},
		{2.0 / 3, "0.666667"},
		{1.25, "1.250000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFraction(tt.in))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "66.7%", formatPercent(2.0/3))
	assert.Equal(t, "0.0%", formatPercent(0))
	assert.Equal(t, "125.0%", formatPercent(1.25))
}
