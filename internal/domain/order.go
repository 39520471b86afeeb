package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the statuses reachable from each status
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderCompleted},
}

// CanTransition reports whether an order may move from s to next.
// Staying in the same status is always allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, v := range orderTransitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidTransitionError when s cannot move to next.
// An empty next leaves the status unchanged.
func (s OrderStatus) CheckTransition(next OrderStatus) error {
	if next == "" || s.CanTransition(next) {
		return nil
	}
	return NewInvalidTransition(CollectionOrders, string(s), string(next))
}

// Revise prepares o to replace old: a blank status keeps old's status, and any
// other status must be reachable from it
func (o *Order) Revise(old Order) error {
	if o.Status == "" {
		o.Status = old.Status
	}
	return old.Status.CheckTransition(o.Status)
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// OrderItem is a product snapshot taken when the order was placed
type OrderItem struct {
	ProductID int64  `json:"productId" yaml:"productId"`
	Name      string `json:"name" yaml:"name"`
	Quantity  int    `json:"quantity" yaml:"quantity" validate:"gte=1"`
	Price     int64  `json:"price" yaml:"price" validate:"gte=0"`
}

func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

type Order struct {
	ID              string      `gorm:"primaryKey;size:32" json:"id" yaml:"id"`
	CustomerName    string      `gorm:"size:200" json:"customerName" yaml:"customerName" validate:"required"`
	CustomerEmail   string      `gorm:"size:200" json:"customerEmail,omitempty" yaml:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   string      `gorm:"size:32" json:"customerPhone" yaml:"customerPhone"`
	Date            string      `gorm:"size:32;index" json:"date" yaml:"date"`
	Total           int64       `json:"total" yaml:"total"`
	Status          OrderStatus `gorm:"size:20;index" json:"status" yaml:"status" validate:"required,oneof=pending processing shipped completed cancelled"`
	Items           []OrderItem `gorm:"serializer:json" json:"items" yaml:"items" validate:"dive"`
	PaymentMethod   string      `gorm:"size:64" json:"paymentMethod" yaml:"paymentMethod"`
	ShippingAddress string      `gorm:"size:512" json:"shippingAddress" yaml:"shippingAddress"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "shop_order"
}

// ItemsTotal sums the line item subtotals
func (o Order) ItemsTotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Subtotal()
	}
	return total
}

// Normalize recomputes Total from the line items when any are present
func (o *Order) Normalize() {
	if len(o.Items) > 0 {
		o.Total = o.ItemsTotal()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
}

const orderIDPrefix = "ORD-"

// OrderID formats the sequence number n as an order token
func OrderID(n int64) string {
	return fmt.Sprintf("%s%03d", orderIDPrefix, n)
}

// OrderSeq extracts the numeric part of an order token. Unparseable tokens yield 0.
func OrderSeq(id string) int64 {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, orderIDPrefix), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
