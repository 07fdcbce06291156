package enums

import "fmt"

// InvestorStatus is the lifecycle state of an investor profile. Completed is
// terminal; active and paused toggle manually.
type InvestorStatus string

const (
	InvestorStatusActive    InvestorStatus = "active"
	InvestorStatusCompleted InvestorStatus = "completed"
	InvestorStatusPaused    InvestorStatus = "paused"
)

var validInvestorStatuses = []InvestorStatus{
	InvestorStatusActive,
	InvestorStatusCompleted,
	InvestorStatusPaused,
}

// String implements fmt.Stringer.
func (i InvestorStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvestorStatus.
func (i InvestorStatus) IsValid() bool {
	for _, candidate := range validInvestorStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInvestorStatus converts raw input into an InvestorStatus.
func ParseInvestorStatus(value string) (InvestorStatus, error) {
	for _, candidate := range validInvestorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid investor status %q", value)
}
