package models

import "time"

// SequenceCounter holds the last number handed out for a prefix in a year.
type SequenceCounter struct {
	Prefix    string    `gorm:"column:prefix;primaryKey"`
	Year      int       `gorm:"column:year;primaryKey;autoIncrement:false"`
	Value     int64     `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}
