package domain

import "strings"

// Collection names one entity collection. Each collection is stored under a single cache key.
type Collection string

const (
	CollectionProducts      Collection = "products"
	CollectionOrders        Collection = "orders"
	CollectionBlogPosts     Collection = "blogPosts"
	CollectionAgents        Collection = "agents"
	CollectionRegistrations Collection = "registrations"
)

var Collections = []Collection{
	CollectionProducts,
	CollectionOrders,
	CollectionBlogPosts,
	CollectionAgents,
	CollectionRegistrations,
}

// Key returns the cache key holding the serialized collection
func (c Collection) Key() string {
	return string(c)
}

// CollectionForKey maps a cache key back to its collection
func CollectionForKey(key string) (Collection, bool) {
	for _, c := range Collections {
		if c.Key() == key {
			return c, true
		}
	}
	return "", false
}

const (
	CartKey        = "cart"
	SettingsPrefix = "settings:"
)

// SessionCartKey returns the cart key for one shopper session
func SessionCartKey(sessionID string) string {
	if sessionID == "" {
		return CartKey
	}
	return CartKey + ":" + sessionID
}

// IsCartKey reports whether key holds a shopping cart
func IsCartKey(key string) bool {
	return key == CartKey || strings.HasPrefix(key, CartKey+":")
}

type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ChangeEvent tells listeners that a collection changed.
// It is a hint to reload, never a diff to apply.
type ChangeEvent struct {
	Type   Collection `json:"type"`
	Action Action     `json:"action"`
	ID     int64      `json:"id"`
	Ref    string     `json:"ref,omitempty"`
}
