package enums

import "fmt"

// BursaryStatus tracks a bursary application decision.
type BursaryStatus string

const (
	BursaryStatusPending  BursaryStatus = "pending"
	BursaryStatusApproved BursaryStatus = "approved"
	BursaryStatusDenied   BursaryStatus = "denied"
)

var validBursaryStatuses = []BursaryStatus{
	BursaryStatusPending,
	BursaryStatusApproved,
	BursaryStatusDenied,
}

// String implements fmt.Stringer.
func (s BursaryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BursaryStatus.
func (s BursaryStatus) IsValid() bool {
	for _, candidate := range validBursaryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBursaryStatus converts raw input into a BursaryStatus.
func ParseBursaryStatus(value string) (BursaryStatus, error) {
	for _, candidate := range validBursaryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bursary status %q", value)
}
