package checkout

import (
	"strings"
	"unicode"

	"citystore-api-io/api/pkg/models"

	creditcard "github.com/durango/go-credit-card"
)

const (
	MsgInvalidCard  = "Please enter a valid card number"
	MsgInvalidCVV   = "Please enter a valid CVV"
	MsgPaypalEmail  = "PayPal email is required"
	MsgVodafoneCash = "Vodafone Cash number is required"
	MsgPaymentType  = "Please choose a payment method"
)

const (
	minCardDigits = 16
	minCVVLength  = 3
)

// ValidateShipping returns per field messages keyed "shipping.<field>".
func ValidateShipping(s models.ShippingInfo) map[string]string {
	err := models.ValidateStruct(s, "shipping")
	if verr, ok := models.IsValidationError(err); ok {
		return verr.Fields
	}
	return map[string]string{}
}

// ValidatePayment checks the fields the chosen method needs. strict adds a
// Luhn check on card numbers.
func ValidatePayment(p models.PaymentInfo, strict bool) map[string]string {
	errs := map[string]string{}

	switch p.Method {
	case models.PaymentCreditCard:
		number := stripSpaces(p.CardNumber)
		switch {
		case number == "":
			errs["payment.cardNumber"] = models.MsgRequired
		case len(number) < minCardDigits:
			errs["payment.cardNumber"] = MsgInvalidCard
		case strict && !luhn(number):
			errs["payment.cardNumber"] = MsgInvalidCard
		}

		if strings.TrimSpace(p.ExpiryDate) == "" {
			errs["payment.expiryDate"] = models.MsgRequired
		}

		switch {
		case p.CVV == "":
			errs["payment.cvv"] = models.MsgRequired
		case len(p.CVV) < minCVVLength:
			errs["payment.cvv"] = MsgInvalidCVV
		}

		if strings.TrimSpace(p.CardName) == "" {
			errs["payment.cardName"] = models.MsgRequired
		}

	case models.PaymentPaypal:
		if strings.TrimSpace(p.PaypalEmail) == "" {
			errs["payment.paypalEmail"] = MsgPaypalEmail
		}

	case models.PaymentVodafoneCash:
		if strings.TrimSpace(p.VodafoneCashNumber) == "" {
			errs["payment.vodafoneCashNumber"] = MsgVodafoneCash
		}

	default:
		errs["payment.method"] = MsgPaymentType
	}

	return errs
}

func luhn(number string) bool {
	card := creditcard.Card{Number: number}
	return card.ValidateNumber()
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// FormatCardNumber keeps the first sixteen digits and groups them by four.
// Input with fewer than four digits is returned unchanged.
func FormatCardNumber(value string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)

	if len(digits) < 4 {
		return value
	}
	if len(digits) > minCardDigits {
		digits = digits[:minCardDigits]
	}

	parts := make([]string, 0, 4)
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		parts = append(parts, digits[i:end])
	}
	return strings.Join(parts, " ")
}
