package utils

import (
	"fmt"
	"strings"
)

// PercentOf returns percent% of amountMinor rounded half-up to the smallest
// currency unit.
func PercentOf(amountMinor, percent int64) int64 {
	if amountMinor <= 0 || percent <= 0 {
		return 0
	}
	return (amountMinor*percent + 50) / 100
}

// ProRata returns the cost of minutes at an hourly rate, rounded half-up.
func ProRata(hourlyMinor int64, minutes int) int64 {
	if hourlyMinor <= 0 || minutes <= 0 {
		return 0
	}
	return (hourlyMinor*int64(minutes) + 30) / 60
}

func FormatMinor(amountMinor int64, currency string) string {
	sign := ""
	if amountMinor < 0 {
		sign = "-"
		amountMinor = -amountMinor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amountMinor/100, amountMinor%100, strings.ToUpper(currency))
}
