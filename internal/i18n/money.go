package i18n

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Rupiah форматирует сумму как "Rp 35.000" (без дробной части, точка между тысячами)
func Rupiah(v decimal.Decimal) string {
	s := v.Round(0).Abs().StringFixed(0)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if v.Round(0).IsNegative() {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
