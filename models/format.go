package models

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyCode is the ISO code all catalog prices are expressed in.
const CurrencyCode = "KES"

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a whole-shilling amount with digit grouping, e.g. "KES 3,500".
func FormatPrice(amount int64) string {
	return pricePrinter.Sprintf("%s %d", CurrencyCode, amount)
}

const (
	CountryCode = "254"
	PhoneDigits = 12
)

// NormalizePhone converts a Kenyan mobile number to the 254XXXXXXXXX form
// expected by M-Pesa. Non-digits are stripped first. Input that matches none
// of the known shapes is returned stripped but otherwise unchanged.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case strings.HasPrefix(cleaned, CountryCode):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		return CountryCode + cleaned[1:]
	case strings.HasPrefix(cleaned, "7"), strings.HasPrefix(cleaned, "1"):
		return CountryCode + cleaned
	}
	return cleaned
}

// ValidPhone reports whether raw normalises to a full-length number.
func ValidPhone(raw string) bool {
	return len(NormalizePhone(raw)) == PhoneDigits
}
