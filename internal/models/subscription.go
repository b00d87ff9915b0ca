package models

import (
	"time"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subscription struct {
	ID        uuid.UUID                 `gorm:"type:uuid;primaryKey"          json:"_id"`
	Email     string                    `gorm:"uniqueIndex;not null"          json:"email"`
	IsActive  bool                      `gorm:"not null"                      json:"isActive"`
	Source    domain.SubscriptionSource `gorm:"not null;default:newsletter"   json:"source"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ContactMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	Name      string    `gorm:"not null"             json:"name"`
	Email     string    `gorm:"not null"             json:"email"`
	Subject   string    `gorm:"not null"             json:"subject"`
	Message   string    `gorm:"type:text;not null"   json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
