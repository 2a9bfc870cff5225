package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"team-portal/internal/metrics"
	"team-portal/internal/models"
	"team-portal/internal/repository"
)

const (
	DefaultRecentEntries = 10
	DefaultOccurrences   = 50
)

type ClockInResult struct {
	Entry            *models.TimeEntry `json:"entry"`
	OutsideWorkHours bool              `json:"outside_work_hours"`
}

type ClockOutResult struct {
	Entry           *models.TimeEntry `json:"entry"`
	DurationMinutes int               `json:"duration_minutes"`
	Reconciliation  Reconciliation    `json:"reconciliation"`
}

// TimeEntryService is the time clock ledger. Every state change runs in a
// single transaction together with the user totals it affects.
type TimeEntryService struct {
	store  *repository.Store
	loc    *time.Location
	logger *logrus.Logger
}

func NewTimeEntryService(store *repository.Store, loc *time.Location, logger *logrus.Logger) *TimeEntryService {
	if loc == nil {
		loc = time.Local
	}

	return &TimeEntryService{
		store:  store,
		loc:    loc,
		logger: logger,
	}
}

// ClockIn opens a work session at the given time. Being outside the schedule
// is reported in the result and does not block the clock-in.
func (s *TimeEntryService) ClockIn(ctx context.Context, actor models.Identity, at time.Time) (*ClockInResult, error) {
	at = at.In(s.loc)
	s.logger.WithFields(logrus.Fields{
		"user_id": actor.UserID,
		"at":      at.Format("2006-01-02 15:04"),
	}).Info("User clocking in")

	var result ClockInResult
	err := s.store.WithinTransaction(ctx, func(tx *repository.Store) error {
		user, err := s.activeUser(ctx, tx, actor.UserID)
		if err != nil {
			return err
		}

		open, err := tx.Entries.GetOpenClockIn(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("check open entry: %w", err)
		}
		if open != nil {
			return models.ErrAlreadyClockedIn
		}

		entry := &models.TimeEntry{
			UserID:    user.ID,
			Kind:      models.KindClockIn,
			StartTime: at,
		}
		if err := tx.Entries.Create(ctx, entry); err != nil {
			return err
		}

		result = ClockInResult{
			Entry:            entry,
			OutsideWorkHours: !IsWithinWorkHours(user, at),
		}
		return nil
	})

	metrics.ClockEventsTotal.WithLabelValues("clock_in", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actor.UserID).Warn("Clock in rejected")
		return nil, err
	}

	if result.OutsideWorkHours {
		metrics.OutsideWorkHoursTotal.Inc()
		s.logger.WithField("user_id", actor.UserID).Warn("Clock in outside work hours")
	}

	s.logger.WithFields(logrus.Fields{
		"id":      result.Entry.ID,
		"user_id": actor.UserID,
	}).Info("User clocked in successfully")

	return &result, nil
}

// ClockOut closes the most recent open session and reconciles the user's
// totals in the same transaction.
func (s *TimeEntryService) ClockOut(ctx context.Context, actor models.Identity, at time.Time) (*ClockOutResult, error) {
	at = at.In(s.loc)
	s.logger.WithFields(logrus.Fields{
		"user_id": actor.UserID,
		"at":      at.Format("2006-01-02 15:04"),
	}).Info("User clocking out")

	var result ClockOutResult
	err := s.store.WithinTransaction(ctx, func(tx *repository.Store) error {
		user, err := s.activeUser(ctx, tx, actor.UserID)
		if err != nil {
			return err
		}

		open, err := tx.Entries.GetOpenClockIn(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("find open entry: %w", err)
		}
		if open == nil {
			return models.ErrNotClockedIn
		}

		if err := tx.Entries.Close(ctx, open.ID, at); err != nil {
			return err
		}
		open.EndTime = &at

		duration := open.DurationMinutes()
		rec := Reconcile(user, duration, at)
		if err := tx.Users.ApplyReconciliation(ctx, user.ID, duration, rec.bank()); err != nil {
			return err
		}

		result = ClockOutResult{
			Entry:           open,
			DurationMinutes: duration,
			Reconciliation:  rec,
		}
		return nil
	})

	metrics.ClockEventsTotal.WithLabelValues("clock_out", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actor.UserID).Warn("Clock out rejected")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":             result.Entry.ID,
		"user_id":        actor.UserID,
		"worked_minutes": result.DurationMinutes,
		"bank_minutes":   result.Reconciliation.BankMinutes,
		"bank_updated":   result.Reconciliation.BankUpdated,
	}).Info("User clocked out successfully")

	return &result, nil
}

// RegisterOccurrence appends a zero-length note for subjectID, or for the
// actor when subjectID is 0. Registering for someone else needs an
// administrative role.
func (s *TimeEntryService) RegisterOccurrence(ctx context.Context, actor models.Identity, subjectID uint, description string, at time.Time) (*models.TimeEntry, error) {
	at = at.In(s.loc)
	description = strings.TrimSpace(description)
	if subjectID == 0 {
		subjectID = actor.UserID
	}

	entry, err := s.registerOccurrence(ctx, actor, subjectID, description, at)
	metrics.ClockEventsTotal.WithLabelValues("occurrence", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"actor_id":   actor.UserID,
			"subject_id": subjectID,
		}).Warn("Occurrence rejected")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":         entry.ID,
		"actor_id":   actor.UserID,
		"subject_id": subjectID,
	}).Info("Occurrence registered")

	return entry, nil
}

func (s *TimeEntryService) registerOccurrence(ctx context.Context, actor models.Identity, subjectID uint, description string, at time.Time) (*models.TimeEntry, error) {
	if description == "" {
		return nil, models.ErrDescriptionRequired
	}
	if subjectID != actor.UserID && !actor.CanManage() {
		return nil, models.ErrForbidden
	}

	var entry *models.TimeEntry
	err := s.store.WithinTransaction(ctx, func(tx *repository.Store) error {
		subject, err := tx.Users.GetByID(ctx, subjectID)
		if err != nil {
			return err
		}
		if subject == nil {
			return models.ErrUserNotFound
		}

		registrar := actor.UserID
		end := at
		entry = &models.TimeEntry{
			UserID:         subject.ID,
			Kind:           models.KindOccurrence,
			StartTime:      at,
			EndTime:        &end,
			Description:    description,
			RegisteredByID: &registrar,
		}
		return tx.Entries.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// RecentEntries returns the user's latest entries, newest first.
func (s *TimeEntryService) RecentEntries(ctx context.Context, userID uint, limit int) ([]*models.TimeEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentEntries
	}
	return s.store.Entries.ListByUser(ctx, userID, limit)
}

// EntriesOn returns the user's entries started on the calendar day of day.
func (s *TimeEntryService) EntriesOn(ctx context.Context, userID uint, day time.Time) ([]*models.TimeEntry, error) {
	day = day.In(s.loc)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	return s.store.Entries.ListByUserBetween(ctx, userID, from, from.AddDate(0, 0, 1))
}

// Occurrences returns the latest occurrences of every user with the subject
// and registrar loaded.
func (s *TimeEntryService) Occurrences(ctx context.Context, limit int) ([]*models.TimeEntry, error) {
	if limit <= 0 {
		limit = DefaultOccurrences
	}
	return s.store.Entries.ListOccurrences(ctx, limit)
}

func (s *TimeEntryService) OpenEntry(ctx context.Context, userID uint) (*models.TimeEntry, error) {
	return s.store.Entries.GetOpenClockIn(ctx, userID)
}

func (s *TimeEntryService) IsClockedIn(ctx context.Context, userID uint) (bool, error) {
	open, err := s.store.Entries.GetOpenClockIn(ctx, userID)
	if err != nil {
		return false, err
	}
	return open != nil, nil
}

func (s *TimeEntryService) activeUser(ctx context.Context, tx *repository.Store, id uint) (*models.User, error) {
	user, err := tx.Users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	if !user.Active {
		return nil, models.ErrAccountInactive
	}
	return user, nil
}
