// Package sequence hands out the human-readable ISS/BUR/LID record numbers.
package sequence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

const nextValueSQL = `
INSERT INTO sequence_counters (prefix, year, value, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (prefix, year) DO UPDATE
SET value = sequence_counters.value + 1, updated_at = excluded.updated_at
RETURNING value`

// Allocator increments a per-(prefix, year) counter inside the caller's
// transaction, so a rolled back insert also gives its number back.
type Allocator interface {
	Next(ctx context.Context, tx *gorm.DB, prefix enums.SequencePrefix, at time.Time) (string, error)
}

type allocator struct {
	loc *time.Location
}

// NewAllocator returns the counter-row allocator. The year segment follows
// loc; nil means UTC.
func NewAllocator(loc *time.Location) Allocator {
	if loc == nil {
		loc = time.UTC
	}
	return allocator{loc: loc}
}

func (a allocator) Next(ctx context.Context, tx *gorm.DB, prefix enums.SequencePrefix, at time.Time) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("sequence allocation requires a transaction")
	}
	year := at.In(a.loc).Year()
	var value int64
	if err := tx.WithContext(ctx).Raw(nextValueSQL, prefix.String(), year, at.UTC()).Scan(&value).Error; err != nil {
		return "", fmt.Errorf("allocate %s sequence: %w", prefix, err)
	}
	if value <= 0 {
		return "", fmt.Errorf("allocate %s sequence: counter returned %d", prefix, value)
	}
	return Format(prefix, year, value), nil
}

// Format renders <PREFIX>-<YYYY>-<NNNNN>.
func Format(prefix enums.SequencePrefix, year int, value int64) string {
	return fmt.Sprintf("%s-%04d-%05d", prefix, year, value)
}
