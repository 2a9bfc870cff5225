package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"team-portal/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListActive(ctx context.Context) ([]*models.User, error)
	ListPending(ctx context.Context) ([]*models.User, error)
	CountPending(ctx context.Context) (int64, error)
	UpdateSchedule(ctx context.Context, id uint, schedule models.WeekSchedule) error
	SetTelegramChatID(ctx context.Context, id uint, chatID *int64) error
	ApplyReconciliation(ctx context.Context, id uint, addedMinutes int, bankMinutes *int) error
}

type GormUserRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormUserRepository(db *gorm.DB, logger *logrus.Logger) (*GormUserRepository, error) {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate users table")
		return nil, err
	}

	logger.Debug("User repository initialized")

	return &GormUserRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	r.logger.WithFields(logrus.Fields{
		"username": user.Username,
		"role":     user.Role,
	}).Info("Creating user")

	if user.WorkSchedule == nil {
		user.WorkSchedule = models.WeekSchedule{}
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return models.ErrUserExists
		}
		r.logger.WithError(err).Error("Failed to create user")
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	r.logger.WithFields(logrus.Fields{
		"id":     user.ID,
		"role":   user.Role,
		"sector": user.Sector,
		"active": user.Active,
	}).Info("Updating user")

	result := r.db.WithContext(ctx).Model(user).Select("role", "sector", "active", "email").Updates(user)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return models.ErrUserExists
		}
		r.logger.WithError(result.Error).Error("Failed to update user")
		return fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormUserRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	return r.first(ctx, "telegram_chat_id = ?", chatID)
}

// first returns nil, nil when no row matches.
func (r *GormUserRepository) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where(query, args...).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("query", query).Error("Failed to get user")
		return nil, result.Error
	}

	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	result := r.db.WithContext(ctx).Order("username ASC").Find(&users)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list users")
		return nil, result.Error
	}

	return users, nil
}

func (r *GormUserRepository) ListActive(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	result := r.db.WithContext(ctx).Where("active = ?", true).Order("username ASC").Find(&users)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list active users")
		return nil, result.Error
	}

	return users, nil
}

func (r *GormUserRepository) ListPending(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	result := r.db.WithContext(ctx).Where("role = ?", models.RolePending).Order("created_at ASC").Find(&users)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list pending users")
		return nil, result.Error
	}

	return users, nil
}

func (r *GormUserRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RolePending).Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (r *GormUserRepository) UpdateSchedule(ctx context.Context, id uint, schedule models.WeekSchedule) error {
	r.logger.WithFields(logrus.Fields{
		"id":   id,
		"days": len(schedule),
	}).Info("Updating work schedule")

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("work_schedule", schedule)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update work schedule")
		return fmt.Errorf("update schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// SetTelegramChatID links (or with nil unlinks) a Telegram chat.
func (r *GormUserRepository) SetTelegramChatID(ctx context.Context, id uint, chatID *int64) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("telegram_chat_id", chatID)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return models.ErrChatAlreadyLinked
		}
		r.logger.WithError(result.Error).Error("Failed to link telegram chat")
		return fmt.Errorf("link telegram chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// ApplyReconciliation adds to the worked total with an SQL expression and,
// when bankMinutes is set, overwrites the hour bank.
func (r *GormUserRepository) ApplyReconciliation(ctx context.Context, id uint, addedMinutes int, bankMinutes *int) error {
	fields := logrus.Fields{
		"id":    id,
		"added": addedMinutes,
	}
	updates := map[string]any{
		"total_hours_worked": gorm.Expr("total_hours_worked + ?", addedMinutes),
	}
	if bankMinutes != nil {
		updates["bank_of_hours"] = *bankMinutes
		fields["bank"] = *bankMinutes
	}
	r.logger.WithFields(fields).Info("Applying hour bank reconciliation")

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to apply reconciliation")
		return fmt.Errorf("apply reconciliation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}
