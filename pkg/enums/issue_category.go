package enums

import (
	"fmt"
	"strings"
)

// IssueCategory is one of the fixed civic issue buckets.
type IssueCategory string

const (
	IssueCategoryDamagedRoads         IssueCategory = "Damaged Roads"
	IssueCategoryBrokenStreetlights   IssueCategory = "Broken Streetlights"
	IssueCategoryWaterSanitation      IssueCategory = "Water/Sanitation"
	IssueCategorySchoolInfrastructure IssueCategory = "School Infrastructure"
	IssueCategoryHealthcare           IssueCategory = "Healthcare Facilities"
	IssueCategorySecurity             IssueCategory = "Security Concerns"
	IssueCategoryOther                IssueCategory = "Other"
)

var validIssueCategories = []IssueCategory{
	IssueCategoryDamagedRoads,
	IssueCategoryBrokenStreetlights,
	IssueCategoryWaterSanitation,
	IssueCategorySchoolInfrastructure,
	IssueCategoryHealthcare,
	IssueCategorySecurity,
	IssueCategoryOther,
}

// IssueCategories returns the categories in display order.
func IssueCategories() []IssueCategory {
	out := make([]IssueCategory, len(validIssueCategories))
	copy(out, validIssueCategories)
	return out
}

// String implements fmt.Stringer.
func (c IssueCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known IssueCategory.
func (c IssueCategory) IsValid() bool {
	for _, candidate := range validIssueCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseIssueCategory converts raw input into an IssueCategory. Matching is
// case-insensitive because model output is not reliably cased.
func ParseIssueCategory(value string) (IssueCategory, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validIssueCategories {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issue category %q", value)
}
