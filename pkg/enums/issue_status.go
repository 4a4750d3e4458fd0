package enums

import "fmt"

// IssueStatus tracks where an issue sits in the triage lifecycle.
type IssueStatus string

const (
	IssueStatusNew        IssueStatus = "new"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusRejected   IssueStatus = "rejected"
)

var validIssueStatuses = []IssueStatus{
	IssueStatusNew,
	IssueStatusInProgress,
	IssueStatusResolved,
	IssueStatusRejected,
}

// IssueStatuses returns every known status in lifecycle order.
func IssueStatuses() []IssueStatus {
	out := make([]IssueStatus, len(validIssueStatuses))
	copy(out, validIssueStatuses)
	return out
}

// String implements fmt.Stringer.
func (s IssueStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known IssueStatus.
func (s IssueStatus) IsValid() bool {
	for _, candidate := range validIssueStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseIssueStatus converts raw input into an IssueStatus.
func ParseIssueStatus(value string) (IssueStatus, error) {
	for _, candidate := range validIssueStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issue status %q", value)
}
