package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"team-portal/internal/models"
)

type ServiceOrderRepository interface {
	Create(ctx context.Context, order *models.ServiceOrder) error
	GetByID(ctx context.Context, id uint) (*models.ServiceOrder, error)
	List(ctx context.Context, sector *models.Sector) ([]*models.ServiceOrder, error)
	ListOpen(ctx context.Context, sector *models.Sector, limit int) ([]*models.ServiceOrder, error)
	UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) error
}

type GormServiceOrderRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormServiceOrderRepository(db *gorm.DB, logger *logrus.Logger) (*GormServiceOrderRepository, error) {
	if err := db.AutoMigrate(&models.ServiceOrder{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate service_orders table")
		return nil, err
	}

	logger.Debug("Service order repository initialized")

	return &GormServiceOrderRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormServiceOrderRepository) Create(ctx context.Context, order *models.ServiceOrder) error {
	r.logger.WithFields(logrus.Fields{
		"title":      order.Title,
		"sector":     order.Sector,
		"creator_id": order.CreatorID,
	}).Info("Creating service order")

	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create service order")
		return fmt.Errorf("create service order: %w", err)
	}

	return nil
}

func (r *GormServiceOrderRepository) GetByID(ctx context.Context, id uint) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	result := r.db.WithContext(ctx).First(&order, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get service order")
		return nil, result.Error
	}

	return &order, nil
}

// List returns orders newest first, restricted to sector when it is set.
func (r *GormServiceOrderRepository) List(ctx context.Context, sector *models.Sector) ([]*models.ServiceOrder, error) {
	var orders []*models.ServiceOrder
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if sector != nil {
		query = query.Where("sector = ?", *sector)
	}

	if err := query.Find(&orders).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list service orders")
		return nil, err
	}

	return orders, nil
}

// ListOpen returns orders that are not in a terminal status.
func (r *GormServiceOrderRepository) ListOpen(ctx context.Context, sector *models.Sector, limit int) ([]*models.ServiceOrder, error) {
	var orders []*models.ServiceOrder
	query := r.db.WithContext(ctx).
		Where("status IN ?", []models.OrderStatus{models.OrderOpen, models.OrderInProgress}).
		Order("created_at DESC").
		Order("id DESC")
	if sector != nil {
		query = query.Where("sector = ?", *sector)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&orders).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list open service orders")
		return nil, err
	}

	return orders, nil
}

// UpdateStatus moves the order only if it is still in status from.
func (r *GormServiceOrderRepository) UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) error {
	r.logger.WithFields(logrus.Fields{
		"id":   id,
		"from": from,
		"to":   to,
	}).Info("Changing service order status")

	result := r.db.WithContext(ctx).
		Model(&models.ServiceOrder{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to change service order status")
		return fmt.Errorf("update order status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrInvalidTransition
	}

	return nil
}
