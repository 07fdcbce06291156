package enums

import "fmt"

// OrderSource distinguishes in-house (dropshipper/operator created) orders
// from public storefront checkouts.
type OrderSource string

const (
	OrderSourceInHouse    OrderSource = "in_house"
	OrderSourceStorefront OrderSource = "storefront"
)

var validOrderSources = []OrderSource{
	OrderSourceInHouse,
	OrderSourceStorefront,
}

// String implements fmt.Stringer.
func (o OrderSource) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderSource.
func (o OrderSource) IsValid() bool {
	for _, candidate := range validOrderSources {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderSource converts raw input into an OrderSource.
func ParseOrderSource(value string) (OrderSource, error) {
	for _, candidate := range validOrderSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order source %q", value)
}
