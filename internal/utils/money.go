package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatPrice renders a fare with thousand separators, e.g. 1250.5 -> "1,250.50".
// Zero renders as "Free".
func FormatPrice(amount float64) string {
	if amount <= 0 {
		return "Free"
	}
	cents := int64(math.Round(amount * 100))
	whole, frac := cents/100, cents%100
	return fmt.Sprintf("%s.%02d", formatThousand(whole), frac)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
