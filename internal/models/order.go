package models

import (
	"time"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is a snapshot of the product at purchase time. ProductID is kept
// for reference only and carries no foreign key.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"_id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"      json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"            json:"product"`
	Name      string          `gorm:"not null"                      json:"name"`
	Quantity  int             `gorm:"not null;check:quantity > 0"   json:"quantity"`
	Size      domain.Size     `gorm:"not null"                      json:"size"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime"`
	EmailAddress string `json:"emailAddress"`
}

type Order struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey"                          json:"_id"`
	UserID          uuid.UUID          `gorm:"type:uuid;index;not null"                      json:"user"`
	OrderItems      []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems"`
	ShippingAddress domain.Address     `gorm:"embedded;embeddedPrefix:shipping_"             json:"shippingAddress"`
	PaymentMethod   string             `gorm:"not null"                                      json:"paymentMethod"`
	PaymentResult   PaymentResult      `gorm:"embedded;embeddedPrefix:payment_"              json:"paymentResult"`
	ItemsPrice      decimal.Decimal    `gorm:"type:numeric(12,2);not null"                   json:"itemsPrice"`
	ShippingPrice   decimal.Decimal    `gorm:"type:numeric(12,2);not null"                   json:"shippingPrice"`
	TaxPrice        decimal.Decimal    `gorm:"type:numeric(12,2);not null"                   json:"taxPrice"`
	TotalPrice      decimal.Decimal    `gorm:"type:numeric(12,2);not null"                   json:"totalPrice"`
	IsPaid          bool               `gorm:"default:false"                                 json:"isPaid"`
	PaidAt          *time.Time         `json:"paidAt,omitempty"`
	IsDelivered     bool               `gorm:"default:false"                                 json:"isDelivered"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty"`
	Status          domain.OrderStatus `gorm:"index;not null;default:Pending"                json:"status"`
	TrackingNumber  string             `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time          `gorm:"index"                                         json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
