package models

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderOpen       OrderStatus = "open"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the allowed status graph; completed and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderOpen:       {OrderInProgress},
	OrderInProgress: {OrderCompleted, OrderCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderOpen, OrderInProgress, OrderCompleted, OrderCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
}

// Scan rejects unknown statuses coming back from the database.
func (s *OrderStatus) Scan(src any) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

type ServiceOrder struct {
	ID                uint        `gorm:"primarykey" json:"id"`
	Title             string      `gorm:"size:200;not null" json:"title"`
	Summary           string      `gorm:"size:500" json:"summary,omitempty"`
	Details           string      `gorm:"type:text" json:"details,omitempty"`
	Sector            Sector      `gorm:"type:varchar(30);not null;index" json:"sector"`
	CreatorID         uint        `gorm:"not null;index" json:"creator_id"`
	DueDate           *time.Time  `gorm:"type:date" json:"due_date,omitempty"`
	Status            OrderStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Materials         string      `gorm:"type:text" json:"materials,omitempty"`
	IndirectMaterials string      `gorm:"type:text" json:"indirect_materials,omitempty"`
	Tools             string      `gorm:"type:text" json:"tools,omitempty"`
	PPE               string      `gorm:"type:text" json:"ppe,omitempty"`
	AttachmentsLink   string      `gorm:"size:500" json:"attachments_link,omitempty"`
	Notes             string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (ServiceOrder) TableName() string {
	return "service_orders"
}

// VisibleTo reports whether the identity may see the order.
func (o *ServiceOrder) VisibleTo(actor Identity) bool {
	return actor.IsManagement() || actor.Sector == o.Sector
}
