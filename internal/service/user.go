package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"team-portal/internal/models"
	"team-portal/internal/repository"
)

type UserService struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register creates a pending, inactive account without a sector.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", models.ErrValidation, email)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RolePending,
		Sector:       models.SectorNone,
		Active:       false,
		WorkSchedule: models.WeekSchedule{},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":       user.ID,
		"username": user.Username,
	}).Info("User registered, awaiting approval")

	return user, nil
}

// Authenticate checks the credentials of an approved account.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("username", username).Warn("Invalid password")
		return nil, models.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, models.ErrAccountInactive
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := s.repo.GetByTelegramChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, actor models.Identity) ([]*models.User, error) {
	if !actor.IsManagement() {
		return nil, models.ErrForbidden
	}
	return s.repo.List(ctx)
}

func (s *UserService) ListPending(ctx context.Context, actor models.Identity) ([]*models.User, error) {
	if !actor.IsManagement() {
		return nil, models.ErrForbidden
	}
	return s.repo.ListPending(ctx)
}

func (s *UserService) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.CountPending(ctx)
}

// Approve activates a pending user with the default member role. Approving an
// account that is no longer pending changes nothing and returns
// ErrAlreadyApproved.
func (s *UserService) Approve(ctx context.Context, actor models.Identity, id uint) (*models.User, error) {
	if !actor.IsManagement() {
		return nil, models.ErrForbidden
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Role != models.RolePending {
		s.logger.WithField("id", id).Info("User already approved")
		return user, models.ErrAlreadyApproved
	}

	user.Activate()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":       user.ID,
		"username": user.Username,
		"by":       actor.UserID,
	}).Info("User approved")

	return user, nil
}

// UpdateRoleSector assigns role and sector. Any role other than pending also
// activates the account.
func (s *UserService) UpdateRoleSector(ctx context.Context, actor models.Identity, id uint, role, sector string) (*models.User, error) {
	if !actor.IsManagement() {
		return nil, models.ErrForbidden
	}

	newRole, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	newSector, err := models.ParseSector(sector)
	if err != nil {
		return nil, err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = newRole
	user.Sector = newSector
	if newRole != models.RolePending {
		user.Active = true
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":     user.ID,
		"role":   user.Role,
		"sector": user.Sector,
	}).Info("User role and sector updated")

	return user, nil
}

// ToggleActive flips the active flag. Administrators cannot deactivate
// themselves.
func (s *UserService) ToggleActive(ctx context.Context, actor models.Identity, id uint) (*models.User, error) {
	if !actor.IsManagement() {
		return nil, models.ErrForbidden
	}
	if actor.UserID == id {
		return nil, fmt.Errorf("%w: cannot change your own account status", models.ErrForbidden)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Active = !user.Active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":     user.ID,
		"active": user.Active,
	}).Info("User active flag toggled")

	return user, nil
}

// SetSchedule replaces the actor's weekly schedule after validating it.
func (s *UserService) SetSchedule(ctx context.Context, actor models.Identity, schedule models.WeekSchedule) (*models.User, error) {
	if schedule == nil {
		schedule = models.WeekSchedule{}
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSchedule(ctx, actor.UserID, schedule); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, actor.UserID)
}

// LinkTelegram ties a chat to an approved account after checking its
// credentials.
func (s *UserService) LinkTelegram(ctx context.Context, username, password string, chatID int64) (*models.User, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetTelegramChatID(ctx, user.ID, &chatID); err != nil {
		return nil, err
	}
	user.TelegramChatID = &chatID

	s.logger.WithFields(logrus.Fields{
		"id":      user.ID,
		"chat_id": chatID,
	}).Info("Telegram chat linked")

	return user, nil
}

// InitializeAdmin creates the configured administrator when missing and makes
// sure an existing one keeps full access.
func (s *UserService) InitializeAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, nil
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.IsManagement() && existing.Active {
			return existing, nil
		}
		existing.Role = models.RoleManagement
		existing.Sector = models.SectorManagement
		existing.Active = true
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.WithField("username", username).Info("Existing user promoted to administrator")
		return existing, nil
	}

	if email == "" {
		email = username + "@localhost"
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleManagement,
		Sector:       models.SectorManagement,
		Active:       true,
		WorkSchedule: models.WeekSchedule{},
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.WithField("username", username).Info("Administrator created")
	return admin, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password too long", models.ErrValidation)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
