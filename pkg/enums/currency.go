package enums

import "fmt"

// Currency represents the monetary denominations orders can be placed in.
type Currency string

const (
	CurrencySAR Currency = "SAR"
	CurrencyAED Currency = "AED"
	CurrencyOMR Currency = "OMR"
	CurrencyBHD Currency = "BHD"
	CurrencyKWD Currency = "KWD"
	CurrencyQAR Currency = "QAR"
	CurrencyUSD Currency = "USD"
)

// CurrencyDefault is applied when a request omits the currency code.
const CurrencyDefault = CurrencySAR

var validCurrencies = []Currency{
	CurrencySAR,
	CurrencyAED,
	CurrencyOMR,
	CurrencyBHD,
	CurrencyKWD,
	CurrencyQAR,
	CurrencyUSD,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
