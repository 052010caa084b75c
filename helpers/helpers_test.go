package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "2020-08-10 02:26:23 UTC", FormatTimestamp(1597026383085))
	assert.Equal(t, "1970-01-01 00:00:00 UTC", FormatTimestamp(0))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, "0.00"},
		{999.999, "1,000.00"},
		{41006.8, "41,006.80"},
		{1234567.891, "1,234,567.89"},
		{-1234.5, "-1,234.50"},
		{0.5, "0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatPrice(tt.price)
			assert.Equal(t, tt.want, strings.TrimLeft(got, " "))
			assert.Len(t, got, 15)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "     0.60000000", FormatAmount(0.6))
}
