package helpers

import (
	"fmt"
	"strings"
	"time"
)

// FormatTimestamp renders milliseconds since epoch as a UTC date and time.
func FormatTimestamp(ms uint64) string {
	return time.UnixMilli(int64(ms)).UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatPrice renders a price with two decimals and thousands separators,
// right aligned to 15 characters.
func FormatPrice(price float64) string {
	formatted := fmt.Sprintf("%.2f", price)
	sign := ""
	if strings.HasPrefix(formatted, "-") {
		sign, formatted = "-", formatted[1:]
	}
	integer, decimal, _ := strings.Cut(formatted, ".")

	var b strings.Builder
	for i, c := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	return fmt.Sprintf("%12s.%s", sign+b.String(), decimal)
}

func FormatAmount(amount float64) string {
	return fmt.Sprintf("%15.8f", amount)
}
