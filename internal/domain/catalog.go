package domain

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryCasual Category = "Casual"
	CategoryFormal Category = "Formal"
	CategoryEthnic Category = "Ethnic"
	CategoryBridal Category = "Bridal"
	CategorySummer Category = "Summer"
	CategoryWinter Category = "Winter"
)

var Categories = []Category{
	CategoryCasual, CategoryFormal, CategoryEthnic,
	CategoryBridal, CategorySummer, CategoryWinter,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// DefaultSizeOptions applies when a product is created without explicit sizes.
var DefaultSizeOptions = []Size{SizeS, SizeM, SizeL, SizeXL}

func (s Size) Valid() bool {
	for _, v := range Sizes {
		if v == s {
			return true
		}
	}
	return false
}

// ValidateSizes checks that every size belongs to the size enumeration and
// that none repeats.
func ValidateSizes(sizes []Size) error {
	seen := make(map[Size]struct{}, len(sizes))
	for _, s := range sizes {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown size %q", ErrValidation, s)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: duplicate size %q", ErrValidation, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

func HasSize(options []Size, s Size) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

type SubscriptionSource string

const (
	SourceNewsletter SubscriptionSource = "newsletter"
	SourceOutfitBox  SubscriptionSource = "outfit-box"
	SourceFooter     SubscriptionSource = "footer"
	SourcePopup      SubscriptionSource = "popup"
)

func (s SubscriptionSource) Valid() bool {
	switch s {
	case SourceNewsletter, SourceOutfitBox, SourceFooter, SourcePopup:
		return true
	}
	return false
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const MetaTitleMaxLen = 60

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
