package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"team-portal/internal/models"
)

// openClockInIndex allows at most one open clock-in per user.
const openClockInIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_time_entries_one_open_clock_in
ON time_entries (user_id) WHERE kind = 'clock_in' AND end_time IS NULL`

type TimeEntryRepository interface {
	Create(ctx context.Context, entry *models.TimeEntry) error
	GetByID(ctx context.Context, id uint) (*models.TimeEntry, error)
	GetOpenClockIn(ctx context.Context, userID uint) (*models.TimeEntry, error)
	Close(ctx context.Context, id uint, end time.Time) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]*models.TimeEntry, error)
	ListByUserBetween(ctx context.Context, userID uint, from, to time.Time) ([]*models.TimeEntry, error)
	ListOccurrences(ctx context.Context, limit int) ([]*models.TimeEntry, error)
	OpenUserIDs(ctx context.Context) (map[uint]bool, error)
}

type GormTimeEntryRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormTimeEntryRepository(db *gorm.DB, logger *logrus.Logger) (*GormTimeEntryRepository, error) {
	if err := db.AutoMigrate(&models.TimeEntry{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate time_entries table")
		return nil, err
	}

	if err := db.Exec(openClockInIndex).Error; err != nil {
		logger.WithError(err).Error("Failed to create open clock-in index")
		return nil, err
	}

	logger.Debug("Time entry repository initialized")

	return &GormTimeEntryRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Create inserts the entry. A second open clock-in for the same user violates
// the partial unique index and is reported as ErrAlreadyClockedIn.
func (r *GormTimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	r.logger.WithFields(logrus.Fields{
		"user_id": entry.UserID,
		"kind":    entry.Kind,
		"start":   entry.StartTime.Format("2006-01-02 15:04"),
	}).Info("Creating time entry")

	if !entry.IsValid() {
		r.logger.WithField("user_id", entry.UserID).Warn("Invalid time entry data")
		return fmt.Errorf("%w: invalid time entry", models.ErrValidation)
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicate(err) && entry.Kind == models.KindClockIn {
			return models.ErrAlreadyClockedIn
		}
		r.logger.WithError(err).Error("Failed to create time entry")
		return fmt.Errorf("create time entry: %w", err)
	}

	return nil
}

func (r *GormTimeEntryRepository) GetByID(ctx context.Context, id uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	result := r.db.WithContext(ctx).First(&entry, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get time entry by ID")
		return nil, result.Error
	}

	return &entry, nil
}

func (r *GormTimeEntryRepository) GetOpenClockIn(ctx context.Context, userID uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND end_time IS NULL", userID, models.KindClockIn).
		Order("start_time DESC").
		First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get open clock-in")
		return nil, result.Error
	}

	return &entry, nil
}

// Close sets the end of an open entry. The update is conditional on the entry
// still being open; when nothing matched, ErrNotClockedIn is returned.
func (r *GormTimeEntryRepository) Close(ctx context.Context, id uint, end time.Time) error {
	r.logger.WithFields(logrus.Fields{
		"id":  id,
		"end": end.Format("2006-01-02 15:04"),
	}).Info("Closing time entry")

	result := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Where("id = ? AND end_time IS NULL", id).
		Update("end_time", end)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to close time entry")
		return fmt.Errorf("close time entry: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.WithField("id", id).Warn("Time entry already closed")
		return models.ErrNotClockedIn
	}

	return nil
}

func (r *GormTimeEntryRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]*models.TimeEntry, error) {
	var entries []*models.TimeEntry
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&entries).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list time entries")
		return nil, err
	}

	return entries, nil
}

// ListByUserBetween returns entries started in [from, to), oldest first.
func (r *GormTimeEntryRepository) ListByUserBetween(ctx context.Context, userID uint, from, to time.Time) ([]*models.TimeEntry, error) {
	var entries []*models.TimeEntry
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, from, to).
		Order("start_time ASC").
		Find(&entries)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list time entries in range")
		return nil, result.Error
	}

	return entries, nil
}

// ListOccurrences returns occurrences newest first with the subject and the
// registrar loaded.
func (r *GormTimeEntryRepository) ListOccurrences(ctx context.Context, limit int) ([]*models.TimeEntry, error) {
	var entries []*models.TimeEntry
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("RegisteredBy").
		Where("kind = ?", models.KindOccurrence).
		Order("start_time DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&entries).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list occurrences")
		return nil, err
	}

	return entries, nil
}

// OpenUserIDs returns the set of users with an open clock-in.
func (r *GormTimeEntryRepository) OpenUserIDs(ctx context.Context) (map[uint]bool, error) {
	var ids []uint
	result := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Where("kind = ? AND end_time IS NULL", models.KindClockIn).
		Distinct().
		Pluck("user_id", &ids)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list open clock-ins")
		return nil, result.Error
	}

	open := make(map[uint]bool, len(ids))
	for _, id := range ids {
		open[id] = true
	}
	return open, nil
}
