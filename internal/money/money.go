package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnits is an integer currency amount in the currency's smallest unit
// (cents for USD). All arithmetic on settled amounts happens in minor units.
type MinorUnits int64

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit decimal price to minor units,
// rounding half away from zero. The conversion happens exactly once at the
// cart -> checkout-request boundary; downstream code only sees integers.
func ToMinorUnits(price decimal.Decimal) MinorUnits {
	return MinorUnits(price.Mul(hundred).Round(0).IntPart())
}

// FromMinorUnits converts minor units back to a major-unit decimal,
// for display only.
func FromMinorUnits(amount MinorUnits) decimal.Decimal {
	return decimal.NewFromInt(int64(amount)).Div(hundred)
}

// Format renders a minor-unit amount as a major-unit string, e.g. 1999 -> "19.99".
func Format(amount MinorUnits) string {
	return FromMinorUnits(amount).StringFixed(2)
}

func (m MinorUnits) String() string {
	return fmt.Sprintf("%d", int64(m))
}
