package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	"github.com/voo-ward/voo-citizen-backend/pkg/types"
)

// Issue is a civic problem reported by a citizen.
type Issue struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey"`
	IssueNumber         string              `gorm:"column:issue_number;not null;uniqueIndex:issues_issue_number_key"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Title               string              `gorm:"column:title;not null"`
	Description         string              `gorm:"column:description;not null"`
	EnhancedDescription *string             `gorm:"column:enhanced_description"`
	Category            enums.IssueCategory `gorm:"column:category;type:text;not null"`
	Urgency             enums.Urgency       `gorm:"column:urgency;type:text;not null"`
	Status              enums.IssueStatus   `gorm:"column:status;type:text;not null;index"`
	Latitude            *float64            `gorm:"column:latitude"`
	Longitude           *float64            `gorm:"column:longitude"`
	Address             string              `gorm:"column:address"`
	Images              types.IssueImages   `gorm:"column:images;type:jsonb;serializer:json"`
	AIAnalysis          *types.AIAnalysis   `gorm:"column:ai_analysis;type:jsonb;serializer:json"`
	Upvotes             int                 `gorm:"column:upvotes;not null"`
	ResolvedAt          *time.Time          `gorm:"column:resolved_at"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Timeline []IssueTimelineEntry `gorm:"foreignKey:IssueID"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (i *Issue) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IssueTimelineEntry is one append-only status event on an issue.
type IssueTimelineEntry struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	IssueID   uuid.UUID         `gorm:"column:issue_id;type:uuid;not null;uniqueIndex:idx_issue_timeline_issue_seq,priority:1"`
	Seq       int               `gorm:"column:seq;not null;uniqueIndex:idx_issue_timeline_issue_seq,priority:2"`
	Status    enums.IssueStatus `gorm:"column:status;type:text;not null"`
	Comment   string            `gorm:"column:comment;not null"`
	ActorID   *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	CreatedAt time.Time         `gorm:"column:created_at"`
}

// TableName pins the timeline table name.
func (IssueTimelineEntry) TableName() string {
	return "issue_timeline"
}

// BeforeCreate assigns the primary key when the caller has not.
func (e *IssueTimelineEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
