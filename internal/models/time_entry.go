package models

import (
	"fmt"
	"time"
)

type EntryKind string

const (
	KindClockIn    EntryKind = "clock_in"   // work session, end filled on clock out
	KindOccurrence EntryKind = "occurrence" // zero-length incident note
)

func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(s) {
	case KindClockIn, KindOccurrence:
		return EntryKind(s), nil
	}
	return "", fmt.Errorf("%w: unknown entry kind %q", ErrValidation, s)
}

// Scan rejects unknown kinds coming back from the database.
func (k *EntryKind) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseEntryKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type TimeEntry struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	UserID         uint       `gorm:"not null;index:idx_time_entries_user_kind_start,priority:1" json:"user_id"`
	Kind           EntryKind  `gorm:"type:varchar(20);not null;default:'clock_in';index:idx_time_entries_user_kind_start,priority:2" json:"entry_type"`
	StartTime      time.Time  `gorm:"not null;index:idx_time_entries_user_kind_start,priority:3" json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Description    string     `gorm:"type:text" json:"description,omitempty"`
	RegisteredByID *uint      `gorm:"index" json:"registered_by_id,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User         User  `gorm:"foreignKey:UserID" json:"-"`
	RegisteredBy *User `gorm:"foreignKey:RegisteredByID" json:"-"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

// DurationMinutes returns whole minutes between start and end, 0 while the
// entry is open. Negative spans (clock skew) count as 0.
func (e *TimeEntry) DurationMinutes() int {
	if e.EndTime == nil || e.EndTime.IsZero() || e.StartTime.IsZero() {
		return 0
	}
	d := e.EndTime.Sub(e.StartTime)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// IsOpen reports whether the entry is a clock-in still waiting for clock out.
func (e *TimeEntry) IsOpen() bool {
	return e.Kind == KindClockIn && e.EndTime == nil
}

// FormatDuration renders the duration as "Hh Mm".
func (e *TimeEntry) FormatDuration() string {
	return FormatMinutes(e.DurationMinutes())
}

func (e *TimeEntry) IsValid() bool {
	if e.UserID == 0 {
		return false
	}
	if e.StartTime.IsZero() {
		return false
	}
	if e.Kind != KindClockIn && e.Kind != KindOccurrence {
		return false
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return false
	}
	return true
}
