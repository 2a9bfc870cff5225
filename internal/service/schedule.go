package service

import (
	"time"

	"team-portal/internal/models"
)

// IsWithinWorkHours reports whether t falls inside the user's schedule for
// that weekday. Management is always inside. A missing or malformed day does
// not count as outside, so no warning is raised for it.
func IsWithinWorkHours(user *models.User, t time.Time) bool {
	if user.IsManagement() {
		return true
	}

	day, ok := user.WorkSchedule.On(t)
	if !ok {
		return true
	}

	within, parsed := day.Contains(t)
	if !parsed {
		return true
	}
	return within
}

// ExpectedMinutesOn returns the scheduled minutes for the weekday of t.
// ok is false when the day is unset or malformed.
func ExpectedMinutesOn(schedule models.WeekSchedule, t time.Time) (int, bool) {
	day, ok := schedule.On(t)
	if !ok {
		return 0, false
	}
	return day.ExpectedMinutes()
}
