package models

import (
	"time"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"                  json:"_id"`
	Slug         string          `gorm:"uniqueIndex;not null"                  json:"slug"`
	Name         string          `gorm:"not null"                              json:"name"`
	Description  string          `gorm:"type:text;not null"                    json:"description"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null"           json:"price"`
	Category     domain.Category `gorm:"index;not null"                        json:"category"`
	SizeOptions  []domain.Size   `gorm:"type:text;serializer:json"             json:"sizeOptions"`
	Images       []Image         `gorm:"type:text;serializer:json"             json:"images"`
	Stock        int             `gorm:"not null;default:0;check:stock >= 0"   json:"stock"`
	IsFeatured   bool            `gorm:"index;default:false"                   json:"isFeatured"`
	Material     string          `json:"material"`
	Colors       []string        `gorm:"type:text;serializer:json"             json:"colors"`
	Rating       float64         `gorm:"default:0"                             json:"rating"`
	NumReviews   int             `gorm:"default:0"                             json:"numReviews"`
	MetaTitle    string          `gorm:"size:60"                               json:"metaTitle"`
	MetaKeywords string          `json:"metaKeywords"`
	CreatedAt    time.Time       `gorm:"index"                                 json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PrimaryImage is the URL copied into order items.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
