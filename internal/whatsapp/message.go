// Package whatsapp hands a checked-out cart to the retailer as a pre-filled WhatsApp message.
// The hand-off is fire-and-forget; no order is recorded until the retailer records one.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CheckoutForm is the contact and shipping form filled in by the shopper
type CheckoutForm struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Phone   string `json:"phone" form:"phone" validate:"required"`
	Email   string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Address string `json:"address" form:"address" validate:"required"`
	City    string `json:"city,omitempty" form:"city"`
	Region  string `json:"region,omitempty" form:"region" validate:"omitempty,region"`
	Notes   string `json:"notes,omitempty" form:"notes"`
}

var printer = message.NewPrinter(language.English)

// FormatTZS renders an amount as "TZS " plus a thousands-separated integer
func FormatTZS(amount int64) string {
	return printer.Sprintf("TZS %d", amount)
}

// ItemLine renders one cart line as "name xQ = TZS n,nnn"
func ItemLine(it domain.CartItem) string {
	name := it.Name
	if it.Size != "" {
		name += " (" + it.Size + ")"
	}
	return fmt.Sprintf("%s x%d = %s", name, it.Quantity, FormatTZS(it.Subtotal()))
}

// BuildOrderMessage serializes the form and cart into the bilingual order text
func BuildOrderMessage(form CheckoutForm, items []domain.CartItem, ref string) string {
	var b strings.Builder
	b.WriteString("*New Order / Oda Mpya*\n")
	if ref != "" {
		b.WriteString("Ref / Kumbukumbu: " + ref + "\n")
	}
	b.WriteString("\n")
	field(&b, "Name / Jina", form.Name)
	field(&b, "Phone / Simu", form.Phone)
	field(&b, "Email / Barua pepe", form.Email)
	field(&b, "Address / Anwani", form.Address)
	field(&b, "City / Mji", form.City)
	field(&b, "Region / Mkoa", form.Region)

	b.WriteString("\n*Items / Bidhaa:*\n")
	var total int64
	for _, it := range items {
		b.WriteString(ItemLine(it))
		b.WriteString("\n")
		total += it.Subtotal()
	}
	b.WriteString("\n*Total / Jumla: " + FormatTZS(total) + "*\n")
	if form.Notes != "" {
		b.WriteString("\nNotes / Maelezo: " + form.Notes + "\n")
	}
	return b.String()
}

func field(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label + ": " + value + "\n")
}

// Link builds "<endpoint>?text=<url-encoded text>"
func Link(endpoint, text string) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "text=" + url.QueryEscape(text)
}

// Endpoint returns the wa.me click-to-chat endpoint for a phone number.
// Local Tanzanian numbers starting with 0 are rewritten to the 255 country code.
func Endpoint(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if strings.HasPrefix(digits, "0") {
		digits = "255" + digits[1:]
	}
	return "https://wa.me/" + digits
}
