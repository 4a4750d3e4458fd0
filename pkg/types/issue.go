package types

// IssueImage is a hosted photo attached to an issue.
type IssueImage struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// IssueImages is stored as a JSON array on the issue row.
type IssueImages []IssueImage

// URLs returns the full-size image URLs in upload order.
func (i IssueImages) URLs() []string {
	out := make([]string, 0, len(i))
	for _, img := range i {
		out = append(out, img.URL)
	}
	return out
}

// AIAnalysis is the snapshot of the model's read of the first issue photo.
type AIAnalysis struct {
	Category                string  `json:"category"`
	Title                   string  `json:"title,omitempty"`
	Description             string  `json:"description,omitempty"`
	Urgency                 string  `json:"urgency"`
	Confidence              float64 `json:"confidence"`
	EstimatedResolutionTime string  `json:"estimatedResolutionTime,omitempty"`
}

// Location is the reporter-supplied position of an issue.
type Location struct {
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
	Address   string   `json:"address,omitempty"`
}
