package models

import "time"

type Document struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Content      string    `gorm:"type:text" json:"content,omitempty"` // raw markup, rendered by clients
	CreatorID    uint      `gorm:"not null;index" json:"creator_id"`
	LastEditorID *uint     `gorm:"index" json:"last_editor_id,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`

	Creator    User  `gorm:"foreignKey:CreatorID" json:"-"`
	LastEditor *User `gorm:"foreignKey:LastEditorID" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// EditableBy reports whether the identity may change the document.
func (d *Document) EditableBy(actor Identity) bool {
	return actor.IsManagement() || actor.UserID == d.CreatorID
}
