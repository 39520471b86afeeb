package whatsapp

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/cart"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTZS(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "TZS 0"},
		{950, "TZS 950"},
		{20000, "TZS 20,000"},
		{1250000, "TZS 1,250,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTZS(tt.amount))
		})
	}
}

func TestBuildOrderMessage(t *testing.T) {
	form := CheckoutForm{Name: "Neema Mushi", Phone: "0712 345 678", Address: "Sinza, Block C", Region: "Dar es Salaam"}
	items := []domain.CartItem{
		{ID: 1, Name: "Yammy Baby Diapers", Size: "M", Price: 20000, Quantity: 2},
		{ID: 6, Name: "Baby Wipes", Price: 3500, Quantity: 1},
	}
	text := BuildOrderMessage(form, items, "42")

	lines := strings.Split(text, "\n")
	assert.Contains(t, lines, "Yammy Baby Diapers (M) x2 = TZS 40,000")
	assert.Contains(t, lines, "Baby Wipes x1 = TZS 3,500")
	assert.Contains(t, lines, "*Total / Jumla: TZS 43,500*")
	assert.Contains(t, lines, "Name / Jina: Neema Mushi")
	assert.Contains(t, lines, "Region / Mkoa: Dar es Salaam")
	assert.Contains(t, lines, "Ref / Kumbukumbu: 42")
	assert.NotContains(t, text, "Email")
	assert.NotContains(t, text, "Notes")
}

func TestLinkEscapesText(t *testing.T) {
	text := "Oda Mpya & *Total*: TZS 1,000\nline 2"
	link := Link("https://wa.me/255712345678", text)
	require.True(t, strings.HasPrefix(link, "https://wa.me/255712345678?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, text, u.Query().Get("text"))

	assert.Equal(t, "https://api.example.com/send?phone=1&text=a+b", Link("https://api.example.com/send?phone=1", "a b"))
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://wa.me/255712345678", Endpoint("0712 345 678"))
	assert.Equal(t, "https://wa.me/255712345678", Endpoint("+255 712-345-678"))
}

func TestCheckoutClearsCart(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	c := cart.New(cache, domain.SessionCartKey("s1"), nil)
	require.NoError(t, c.AddItem(ctx, domain.CartItem{ID: 5, Name: "Adult Diapers", Price: 20000, Quantity: 2}))

	co, err := NewCheckout("https://wa.me/255700000000", 1)
	require.NoError(t, err)
	h, err := co.Submit(ctx, c, CheckoutForm{Name: "Juma", Phone: "0700000000", Address: "Arusha"})
	require.NoError(t, err)

	assert.NotEmpty(t, h.Ref)
	assert.Equal(t, int64(40000), h.Total)
	assert.Contains(t, h.Message, "Adult Diapers x2 = TZS 40,000")
	assert.Equal(t, Link(co.Endpoint(), h.Message), h.URL)

	assert.Empty(t, c.Items())
	_, found, err := cache.Get(ctx, c.Key())
	require.NoError(t, err)
	assert.False(t, found)

	_, err = co.Submit(ctx, c, CheckoutForm{Name: "Juma"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutRefsAreUnique(t *testing.T) {
	co, err := NewCheckout("https://wa.me/1", 3)
	require.NoError(t, err)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref := co.node.Generate().String()
		assert.False(t, seen[ref])
		seen[ref] = true
	}
}
