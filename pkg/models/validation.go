package models

import "math"

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func nonNegative(f float64) bool {
	return finite(f) && f >= 0
}

func positive(f float64) bool {
	return finite(f) && f > 0
}

func validateCurrencyCode(v *ValidationError, field, code string) {
	if code == "" {
		v.Add(field, "field required")
		return
	}
	if _, ok := NormalizeCurrencyCode(code); !ok {
		v.Add(field, "must be an ISO-4217 currency code")
	}
}

func normalizeCode(code string) string {
	c, _ := NormalizeCurrencyCode(code)
	return c
}
