package models

import "strings"

const DefaultCountry = "United States"

type ShippingInfo struct {
	FirstName string `bson:"firstName" json:"firstName" validate:"required"`
	LastName  string `bson:"lastName" json:"lastName" validate:"required"`
	Email     string `bson:"email" json:"email" validate:"required,contact_email"`
	Phone     string `bson:"phone" json:"phone" validate:"required"`
	Address   string `bson:"address" json:"address" validate:"required"`
	City      string `bson:"city" json:"city" validate:"required"`
	State     string `bson:"state" json:"state" validate:"required"`
	ZipCode   string `bson:"zipCode" json:"zipCode" validate:"required"`
	Country   string `bson:"country" json:"country"`
}

// PaymentInfo holds the method tag and the method specific fields.
// Only Method ever leaves the checkout.
type PaymentInfo struct {
	Method             PaymentMethod `json:"method"`
	CardNumber         string        `json:"cardNumber,omitempty"`
	ExpiryDate         string        `json:"expiryDate,omitempty"`
	CVV                string        `json:"cvv,omitempty"`
	CardName           string        `json:"cardName,omitempty"`
	PaypalEmail        string        `json:"paypalEmail,omitempty"`
	VodafoneCashNumber string        `json:"vodafoneCashNumber,omitempty"`
}

type CheckoutForm struct {
	Shipping ShippingInfo `json:"shipping"`
	Payment  PaymentInfo  `json:"payment"`
	Notes    string       `json:"notes"`
}

// NewCheckoutForm returns the blank form with its defaults.
func NewCheckoutForm() CheckoutForm {
	return CheckoutForm{
		Shipping: ShippingInfo{Country: DefaultCountry},
		Payment:  PaymentInfo{Method: PaymentCreditCard},
	}
}

type ProfileAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// UserProfile is what the checkout knows about a signed in user.
type UserProfile struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Address *ProfileAddress `json:"address,omitempty"`
}

// ShippingFromProfile splits the display name and copies contact and address fields.
func ShippingFromProfile(base ShippingInfo, p UserProfile) ShippingInfo {
	parts := strings.Fields(p.Name)
	if len(parts) > 0 {
		base.FirstName = parts[0]
		base.LastName = strings.Join(parts[1:], " ")
	}
	if p.Email != "" {
		base.Email = p.Email
	}
	if p.Phone != "" {
		base.Phone = p.Phone
	}
	if p.Address != nil {
		base.Address = p.Address.Street
		base.City = p.Address.City
		base.State = p.Address.State
		base.ZipCode = p.Address.ZipCode
		if p.Address.Country != "" {
			base.Country = p.Address.Country
		}
	}
	if base.Country == "" {
		base.Country = DefaultCountry
	}
	return base
}
