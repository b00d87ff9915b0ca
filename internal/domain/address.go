package domain

import (
	"fmt"
	"strings"
)

type Address struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

func (a Address) Validate() error {
	fields := []struct{ name, value string }{
		{"fullName", a.FullName},
		{"address", a.Address},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
		{"phone", a.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: shippingAddress.%s is required", ErrValidation, f.name)
		}
	}
	return nil
}
