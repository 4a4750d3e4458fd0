package enums

import "fmt"

// LostIDStatus tracks a lost ID report.
type LostIDStatus string

const (
	LostIDStatusPending    LostIDStatus = "pending"
	LostIDStatusProcessing LostIDStatus = "processing"
	LostIDStatusFound      LostIDStatus = "found"
	LostIDStatusClosed     LostIDStatus = "closed"
)

var validLostIDStatuses = []LostIDStatus{
	LostIDStatusPending,
	LostIDStatusProcessing,
	LostIDStatusFound,
	LostIDStatusClosed,
}

// ActiveLostIDStatuses are the states that block a second report for the same ID number.
var ActiveLostIDStatuses = []LostIDStatus{LostIDStatusPending, LostIDStatusProcessing}

// String implements fmt.Stringer.
func (s LostIDStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LostIDStatus.
func (s LostIDStatus) IsValid() bool {
	for _, candidate := range validLostIDStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLostIDStatus converts raw input into a LostIDStatus.
func ParseLostIDStatus(value string) (LostIDStatus, error) {
	for _, candidate := range validLostIDStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lost id status %q", value)
}
