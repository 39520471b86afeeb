package domain

// CartItem is a product snapshot captured at add time, not a live link
type CartItem struct {
	ID         int64  `json:"id" validate:"gt=0"`
	Name       string `json:"name" validate:"required"`
	Price      int64  `json:"price" validate:"gte=0"`
	Image      string `json:"image,omitempty"`
	Quantity   int    `json:"quantity" validate:"gte=1"`
	Size       string `json:"size,omitempty"`
	BundleSize string `json:"bundleSize,omitempty"`
}

func (c CartItem) Subtotal() int64 {
	return c.Price * int64(c.Quantity)
}
