package notifications

import (
	"fmt"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

const (
	dataTypeStatusUpdate    = "status_update"
	dataTypeBursaryApproved = "bursary_approved"
	dataTypeLostIDFound     = "lost_id_found"
)

type template struct {
	title string
	body  string
}

var issueStatusTemplates = map[enums.IssueStatus]template{
	enums.IssueStatusInProgress: {title: "🔄 Issue Being Addressed", body: "Your issue \"%s\" is now being worked on!"},
	enums.IssueStatusResolved:   {title: "✅ Issue Resolved!", body: "Great news! \"%s\" has been resolved."},
	enums.IssueStatusRejected:   {title: "❌ Issue Update", body: "Your issue \"%s\" requires more information."},
}

var genericIssueTemplate = template{title: "📋 Issue Update", body: "Status update for \"%s\""}

// IssueStatusContent renders the push title and body for a status change.
// Statuses without a dedicated template use the generic one.
func IssueStatusContent(status enums.IssueStatus, issueTitle string) (string, string) {
	tpl, ok := issueStatusTemplates[status]
	if !ok {
		tpl = genericIssueTemplate
	}
	return tpl.title, fmt.Sprintf(tpl.body, issueTitle)
}

// BursaryApprovedContent renders the approval push.
func BursaryApprovedContent(applicationNumber string) (string, string) {
	return "🎓 Bursary Approved", fmt.Sprintf("Your bursary application %s has been approved.", applicationNumber)
}

// BursaryApprovedSMS renders the approval text message.
func BursaryApprovedSMS(applicationNumber string) string {
	return fmt.Sprintf("VOO Citizen: Your bursary application %s has been APPROVED! Amount to be communicated. Visit ward office for details.", applicationNumber)
}

// LostIDFoundContent renders the found-ID push.
func LostIDFoundContent(collectionLocation string) (string, string) {
	if collectionLocation == "" {
		collectionLocation = "the ward office"
	}
	return "🪪 ID Found", fmt.Sprintf("Your lost ID has been found! Collect from: %s.", collectionLocation)
}
