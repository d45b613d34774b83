package checkout

import (
	"strings"

	"github.com/kenyaconnect/storefront/models"
)

// Payment methods offered at checkout.
const (
	MethodMpesa = "mpesa"
	MethodCard  = "card"
)

// Form is the submitted checkout form.
type Form struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	County        string `json:"county"`
	PaymentMethod string `json:"payment_method"`
}

// Validate checks the required contact fields, the phone number and the
// payment method. It returns the normalised phone on success.
func (f Form) Validate() (string, error) {
	if blank(f.FirstName) || blank(f.LastName) || blank(f.Email) || blank(f.Phone) {
		return "", newValidationError("form", "Please fill in all required fields")
	}
	phone := models.NormalizePhone(f.Phone)
	if len(phone) != models.PhoneDigits {
		return "", newValidationError("phone", "Please enter a valid Kenyan phone number")
	}
	switch f.method() {
	case MethodMpesa:
	case MethodCard:
		return "", newValidationError("payment_method", "Card payments are not available yet")
	default:
		return "", newValidationError("payment_method", "Unknown payment method")
	}
	return phone, nil
}

func (f Form) method() string {
	if f.PaymentMethod == "" {
		return MethodMpesa
	}
	return strings.ToLower(f.PaymentMethod)
}

func (f Form) customer(phone string) models.Customer {
	return models.Customer{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     phone,
		Address:   strings.TrimSpace(f.Address),
		City:      strings.TrimSpace(f.City),
		County:    strings.TrimSpace(f.County),
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
