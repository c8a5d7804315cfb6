package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// legacyCoupons is the static client-side coupon table. Superseded by server
// promo codes but still honoured.
var legacyCoupons = map[string]int64{
	"SAVE10":   10,
	"SAVE20":   20,
	"WELCOME":  15,
	"SUMMER25": 25,
}

// LookupCoupon returns the percentage for code, ignoring case.
func LookupCoupon(code string) (decimal.Decimal, bool) {
	pct, ok := legacyCoupons[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(pct), true
}
