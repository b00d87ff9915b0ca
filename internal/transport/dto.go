package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/models"
)

type ImageDTO struct {
	URL      string `json:"url"      validate:"required,url"`
	PublicID string `json:"publicId" validate:"omitempty,max=200"`
}

func (i ImageDTO) Model() models.Image {
	return models.Image{URL: i.URL, PublicID: i.PublicID}
}

func ImagesFromDTO(in []ImageDTO) []models.Image {
	out := make([]models.Image, len(in))
	for i, img := range in {
		out[i] = img.Model()
	}
	return out
}

type CreateProductRequest struct {
	Name         string           `json:"name"         validate:"required,max=200"`
	Description  string           `json:"description"  validate:"required"`
	Price        *decimal.Decimal `json:"price"        validate:"required"`
	Category     domain.Category  `json:"category"     validate:"required,oneof=Casual Formal Ethnic Bridal Summer Winter"`
	SizeOptions  []domain.Size    `json:"sizeOptions"  validate:"omitempty,dive,oneof=XS S M L XL XXL"`
	Images       []ImageDTO       `json:"images"       validate:"omitempty,dive"`
	Stock        *int             `json:"stock"        validate:"omitempty,min=0"`
	IsFeatured   bool             `json:"isFeatured"`
	Material     string           `json:"material"     validate:"max=100"`
	Colors       []string         `json:"colors"       validate:"omitempty,dive,required,max=40"`
	Rating       *float64         `json:"rating"       validate:"omitempty,min=0,max=5"`
	NumReviews   *int             `json:"numReviews"   validate:"omitempty,min=0"`
	MetaTitle    string           `json:"metaTitle"    validate:"max=60"`
	MetaKeywords string           `json:"metaKeywords" validate:"max=300"`
}

// PatchProductRequest updates only the fields that are present.
type PatchProductRequest struct {
	Name         *string          `json:"name"         validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"  validate:"omitempty,min=1"`
	Price        *decimal.Decimal `json:"price"`
	Category     *domain.Category `json:"category"     validate:"omitempty,oneof=Casual Formal Ethnic Bridal Summer Winter"`
	SizeOptions  []domain.Size    `json:"sizeOptions"  validate:"omitempty,min=1,dive,oneof=XS S M L XL XXL"`
	Images       []ImageDTO       `json:"images"       validate:"omitempty,dive"`
	Stock        *int             `json:"stock"        validate:"omitempty,min=0"`
	IsFeatured   *bool            `json:"isFeatured"`
	Material     *string          `json:"material"     validate:"omitempty,max=100"`
	Colors       []string         `json:"colors"       validate:"omitempty,dive,required,max=40"`
	Rating       *float64         `json:"rating"       validate:"omitempty,min=0,max=5"`
	NumReviews   *int             `json:"numReviews"   validate:"omitempty,min=0"`
	MetaTitle    *string          `json:"metaTitle"    validate:"omitempty,max=60"`
	MetaKeywords *string          `json:"metaKeywords" validate:"omitempty,max=300"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID   `json:"productId" validate:"required"`
	Size      domain.Size `json:"size"      validate:"required,oneof=XS S M L XL XXL"`
	Quantity  int         `json:"quantity"  validate:"min=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartLineView struct {
	ID        uuid.UUID        `json:"_id"`
	ProductID uuid.UUID        `json:"product"`
	Name      string           `json:"name,omitempty"`
	Slug      string           `json:"slug,omitempty"`
	Image     string           `json:"image,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Size      domain.Size      `json:"size"`
	Quantity  int              `json:"quantity"`
	Stock     int              `json:"stock"`
	Available bool             `json:"available"`
}

type CartView struct {
	Items     []CartLineView  `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID   `json:"product"  validate:"required"`
	Size      domain.Size `json:"size"     validate:"required,oneof=XS S M L XL XXL"`
	Quantity  int         `json:"quantity" validate:"required,min=1"`
	// Echoed back by clients that build the order from their own cart state.
	// Catalog values always win.
	Name  string           `json:"name,omitempty"`
	Image string           `json:"image,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

type AddressDTO struct {
	FullName   string `json:"fullName"   validate:"required,max=120"`
	Address    string `json:"address"    validate:"required,max=300"`
	City       string `json:"city"       validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country"    validate:"required,max=100"`
	Phone      string `json:"phone"      validate:"required,max=40"`
}

func (a AddressDTO) Domain() domain.Address {
	return domain.Address{
		FullName:   a.FullName,
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// CreateOrderRequest builds an order from OrderItems, or from the caller's
// saved cart when OrderItems is empty. Totals sent by the client are
// compared and logged, never stored.
type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest `json:"orderItems"      validate:"omitempty,dive"`
	ShippingAddress AddressDTO         `json:"shippingAddress" validate:"required"`
	PaymentMethod   string             `json:"paymentMethod"   validate:"required,max=50"`
	ItemsPrice      *decimal.Decimal   `json:"itemsPrice,omitempty"`
	ShippingPrice   *decimal.Decimal   `json:"shippingPrice,omitempty"`
	TaxPrice        *decimal.Decimal   `json:"taxPrice,omitempty"`
	TotalPrice      *decimal.Decimal   `json:"totalPrice,omitempty"`
}

type PayOrderRequest struct {
	ID           string `json:"id"           validate:"max=200"`
	Status       string `json:"status"       validate:"max=50"`
	UpdateTime   string `json:"updateTime"   validate:"max=50"`
	EmailAddress string `json:"emailAddress" validate:"omitempty,email"`
}

type UpdateOrderStatusRequest struct {
	Status         domain.OrderStatus `json:"status"         validate:"required,oneof=Pending Processing Shipped Delivered Cancelled"`
	TrackingNumber string             `json:"trackingNumber" validate:"max=100"`
}

type SubscribeRequest struct {
	Email  string                    `json:"email"  validate:"required,max=254"`
	Source domain.SubscriptionSource `json:"source" validate:"omitempty,oneof=newsletter outfit-box footer popup"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

type ContactRequest struct {
	Name    string `json:"name"    validate:"required,max=120"`
	Email   string `json:"email"   validate:"required,max=254"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserView struct {
	ID      uuid.UUID `json:"_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
}
