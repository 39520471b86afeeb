package whatsapp

import (
	"context"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

// Cart is the part of cart.Cart the hand-off needs
type Cart interface {
	Load(ctx context.Context) ([]domain.CartItem, error)
	Clear(ctx context.Context) error
}

// Handoff is the result of a checkout: the text and the URL the shopper is sent to
type Handoff struct {
	Ref     string `json:"ref"`
	Message string `json:"message"`
	URL     string `json:"url"`
	Total   int64  `json:"total"`
}

// Checkout builds order hand-offs against one messaging endpoint
type Checkout struct {
	endpoint string
	node     *snowflake.Node
}

func NewCheckout(endpoint string, nodeID int64) (*Checkout, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout ref generator")
	}
	return &Checkout{endpoint: endpoint, node: node}, nil
}

func (c *Checkout) Endpoint() string {
	return c.endpoint
}

// Submit serializes the cart and clears it before the shopper reaches the endpoint.
// A failure to clear is logged and does not fail the hand-off.
func (c *Checkout) Submit(ctx context.Context, cart Cart, form CheckoutForm) (Handoff, error) {
	items, err := cart.Load(ctx)
	if err != nil {
		return Handoff{}, err
	}
	if len(items) == 0 {
		return Handoff{}, ErrEmptyCart
	}

	ref := c.node.Generate().String()
	text := BuildOrderMessage(form, items, ref)
	h := Handoff{Ref: ref, Message: text, URL: Link(c.endpoint, text)}
	for _, it := range items {
		h.Total += it.Subtotal()
	}

	if err := cart.Clear(ctx); err != nil {
		zap.L().Warn("cart not cleared after checkout",
			zap.String("namespace", "whatsapp"), zap.String("ref", ref), zap.Error(err))
	}
	zap.L().Info("checkout handed off",
		zap.String("namespace", "whatsapp"),
		zap.String("ref", ref),
		zap.Int("items", len(items)),
		zap.Int64("total", h.Total))
	return h, nil
}
