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

const DefaultOpenOrders = 5

// OrderInput carries the fields of a new service order.
type OrderInput struct {
	Title             string `json:"title" binding:"required,max=200"`
	Summary           string `json:"summary" binding:"max=500"`
	Details           string `json:"details"`
	Sector            string `json:"sector" binding:"required"`
	DueDate           string `json:"due_date"` // YYYY-MM-DD, optional
	Materials         string `json:"materials"`
	IndirectMaterials string `json:"indirect_materials"`
	Tools             string `json:"tools"`
	PPE               string `json:"ppe"`
	AttachmentsLink   string `json:"attachments_link" binding:"omitempty,url,max=500"`
	Notes             string `json:"notes"`
}

type ServiceOrderService struct {
	repo   repository.ServiceOrderRepository
	logger *logrus.Logger
}

func NewServiceOrderService(repo repository.ServiceOrderRepository, logger *logrus.Logger) *ServiceOrderService {
	return &ServiceOrderService{repo: repo, logger: logger}
}

// Create opens a new order for a working sector.
func (s *ServiceOrderService) Create(ctx context.Context, actor models.Identity, in OrderInput) (*models.ServiceOrder, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.ErrTitleRequired
	}

	sector, err := models.ParseSector(in.Sector)
	if err != nil {
		return nil, err
	}
	if !sector.OrderSector() {
		return nil, fmt.Errorf("%w: orders cannot be assigned to sector %q", models.ErrValidation, sector)
	}

	var due *time.Time
	if in.DueDate != "" {
		d, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: due date must be YYYY-MM-DD", models.ErrValidation)
		}
		due = &d
	}

	order := &models.ServiceOrder{
		Title:             title,
		Summary:           in.Summary,
		Details:           in.Details,
		Sector:            sector,
		CreatorID:         actor.UserID,
		DueDate:           due,
		Status:            models.OrderOpen,
		Materials:         in.Materials,
		IndirectMaterials: in.IndirectMaterials,
		Tools:             in.Tools,
		PPE:               in.PPE,
		AttachmentsLink:   in.AttachmentsLink,
		Notes:             in.Notes,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrderTransitionsTotal.WithLabelValues(string(models.OrderOpen)).Inc()
	return order, nil
}

// List returns every order for management and only the own sector for others.
func (s *ServiceOrderService) List(ctx context.Context, actor models.Identity) ([]*models.ServiceOrder, error) {
	return s.repo.List(ctx, visibleSector(actor))
}

func (s *ServiceOrderService) ListOpen(ctx context.Context, actor models.Identity, limit int) ([]*models.ServiceOrder, error) {
	if limit <= 0 {
		limit = DefaultOpenOrders
	}
	return s.repo.ListOpen(ctx, visibleSector(actor), limit)
}

func (s *ServiceOrderService) Get(ctx context.Context, actor models.Identity, id uint) (*models.ServiceOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, models.ErrOrderNotFound
	}
	if !order.VisibleTo(actor) {
		return nil, models.ErrForbidden
	}
	return order, nil
}

// ChangeStatus moves an order along open -> in_progress -> completed|cancelled.
func (s *ServiceOrderService) ChangeStatus(ctx context.Context, actor models.Identity, id uint, status string) (*models.ServiceOrder, error) {
	if !actor.CanManage() {
		return nil, models.ErrForbidden
	}

	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		s.logger.WithFields(logrus.Fields{
			"id":   id,
			"from": order.Status,
			"to":   next,
		}).Warn("Invalid service order transition")
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, order.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, order.Status, next); err != nil {
		return nil, err
	}
	order.Status = next

	metrics.OrderTransitionsTotal.WithLabelValues(string(next)).Inc()
	return order, nil
}

func visibleSector(actor models.Identity) *models.Sector {
	if actor.IsManagement() {
		return nil
	}
	sector := actor.Sector
	return &sector
}
