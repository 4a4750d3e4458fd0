package enums

import "fmt"

// AnnouncementPriority orders ward announcements.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "low"
	AnnouncementPriorityNormal AnnouncementPriority = "normal"
	AnnouncementPriorityHigh   AnnouncementPriority = "high"
	AnnouncementPriorityUrgent AnnouncementPriority = "urgent"
)

var validAnnouncementPriorities = []AnnouncementPriority{
	AnnouncementPriorityLow,
	AnnouncementPriorityNormal,
	AnnouncementPriorityHigh,
	AnnouncementPriorityUrgent,
}

// String implements fmt.Stringer.
func (p AnnouncementPriority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known AnnouncementPriority.
func (p AnnouncementPriority) IsValid() bool {
	for _, candidate := range validAnnouncementPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Rank returns the sort weight, higher first.
func (p AnnouncementPriority) Rank() int {
	for i, candidate := range validAnnouncementPriorities {
		if candidate == p {
			return i
		}
	}
	return 1
}

// ParseAnnouncementPriority converts raw input into an AnnouncementPriority.
func ParseAnnouncementPriority(value string) (AnnouncementPriority, error) {
	for _, candidate := range validAnnouncementPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid announcement priority %q", value)
}
