package models

import (
	"time"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartItem struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"                            json:"_id"`
	UserID    uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_cart_line;not null"    json:"-"`
	ProductID uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_cart_line;not null"    json:"product"`
	Size      domain.Size `gorm:"uniqueIndex:idx_cart_line;not null"              json:"size"`
	Quantity  int         `gorm:"not null;default:1;check:quantity > 0"           json:"quantity"`
	Position  int         `gorm:"not null;default:0"                              json:"-"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}
