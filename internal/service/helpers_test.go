package service

import (
	"context"
	"testing"
	"time"

	"team-portal/internal/models"
	"team-portal/internal/repository"
	"team-portal/internal/testdb"
	"team-portal/pkg/logger"
)

// monday is 2024-03-04, a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func newLedger(t *testing.T) (*TimeEntryService, *repository.Store) {
	t.Helper()
	store := testdb.Store(t)
	return NewTimeEntryService(store, time.UTC, logger.Discard()), store
}

func seedUser(t *testing.T, store *repository.Store, username string, role models.Role, sector models.Sector, schedule models.WeekSchedule) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Sector:       sector,
		Active:       role != models.RolePending,
		WorkSchedule: schedule,
	}
	if err := store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func reload(t *testing.T, store *repository.Store, id uint) *models.User {
	t.Helper()
	user, err := store.Users.GetByID(context.Background(), id)
	if err != nil || user == nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return user
}

func officeHours() models.WeekSchedule {
	return models.WeekSchedule{
		models.Monday:  {Start: "08:00", End: "17:00"},
		models.Tuesday: {Start: "08:00", End: "12:00"},
	}
}
