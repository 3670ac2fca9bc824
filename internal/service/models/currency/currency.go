package currency

import (
	"database/sql/driver"
	"errors"
	"math"
	"strings"
)

// Currency is an ISO 4217 currency code in the lowercase form the payment
// processor expects.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyINR Currency = "inr"
)

var ErrInvalidCurrency = errors.New("invalid currency")

func (c Currency) String() string {
	return string(c)
}

func (c Currency) Value() (driver.Value, error) {
	return c.String(), nil
}

func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToLower(s)) {
	case CurrencyUSD:
		return CurrencyUSD, nil
	case CurrencyEUR:
		return CurrencyEUR, nil
	case CurrencyINR:
		return CurrencyINR, nil
	default:
		return "", ErrInvalidCurrency
	}
}

// ToMinorUnits converts a major-unit amount (e.g. dollars) to the
// processor's integer minor units (cents), rounding half up to the
// nearest cent.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}
