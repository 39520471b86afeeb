// Package seed holds the static datasets used to populate an empty cache.
package seed

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type datasets struct {
	products      []domain.Product
	orders        []domain.Order
	blogPosts     []domain.BlogPost
	agents        []domain.Agent
	registrations []domain.Registration
}

var (
	loaded   datasets
	loadOnce sync.Once
)

func load() *datasets {
	loadOnce.Do(func() {
		decode("products.yaml", &loaded.products)
		decode("orders.yaml", &loaded.orders)
		decode("blog_posts.yaml", &loaded.blogPosts)
		decode("agents.yaml", &loaded.agents)
		decode("registrations.yaml", &loaded.registrations)
	})
	return &loaded
}

func decode(name string, out interface{}) {
	raw, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		zap.L().Error("seed file missing", zap.String("file", name), zap.Error(err))
		return
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		zap.L().Error("failed to parse seed file", zap.String("file", name), zap.Error(err))
	}
}

// Products returns a fresh copy of the seed products
func Products() []domain.Product {
	src := load().products
	out := make([]domain.Product, len(src))
	for i, p := range src {
		p.Tags = append([]string(nil), p.Tags...)
		out[i] = p
	}
	return out
}

// Orders returns a fresh copy of the seed orders
func Orders() []domain.Order {
	src := load().orders
	out := make([]domain.Order, len(src))
	for i, o := range src {
		o.Items = append([]domain.OrderItem(nil), o.Items...)
		out[i] = o
	}
	return out
}

// BlogPosts returns a fresh copy of the seed posts
func BlogPosts() []domain.BlogPost {
	src := load().blogPosts
	out := make([]domain.BlogPost, len(src))
	for i, b := range src {
		b.Tags = append([]string(nil), b.Tags...)
		out[i] = b
	}
	return out
}

func Agents() []domain.Agent {
	return append([]domain.Agent(nil), load().agents...)
}

func Registrations() []domain.Registration {
	return append([]domain.Registration(nil), load().registrations...)
}

// CacheBust appends a v=<stamp> token to an image URL so clients refetch it
func CacheBust(url string, stamp int64) string {
	if url == "" {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sv=%d", url, sep, stamp)
}

// BustImages returns products with cache-busted image URLs
func BustImages(products []domain.Product, stamp int64) []domain.Product {
	for i := range products {
		products[i].Image = CacheBust(products[i].Image, stamp)
	}
	return products
}

// BustPostImages returns blog posts with cache-busted image URLs
func BustPostImages(posts []domain.BlogPost, stamp int64) []domain.BlogPost {
	for i := range posts {
		posts[i].Image = CacheBust(posts[i].Image, stamp)
	}
	return posts
}
