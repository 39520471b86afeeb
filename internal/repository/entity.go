package repository

import (
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/araddon/dateparse"
)

// sortField maps a sort parameter to a column and an in-memory key
type sortField[T any] struct {
	column string
	key    func(T) interface{}
}

// entity describes one collection to every backend
type entity[T any, K comparable] struct {
	name domain.Collection
	// envelope keys used by the admin API
	one, many string

	id    func(T) K
	setID func(*T, K)
	next  func(ids []K) K
	// prepare runs before every create and update, onCreate only before create
	prepare  func(*T, time.Time)
	onCreate func(*T)
	guard    func(old T, updated *T) error

	text     func(T) []string
	status   func(T) string
	category func(T) string
	region   func(T) string
	featured func(T) bool
	date     func(T) string

	sorts      map[string]sortField[T]
	searchCols []string
	statusCol  string
	catCol     string
	regionCol  string
	featureCol string
	dateCol    string
}

func (e entity[T, K]) match(item T, f Filter) bool {
	if q := f.query(); q != "" {
		hit := false
		for _, s := range e.text(item) {
			if strings.Contains(strings.ToLower(s), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.Status != "" && e.status != nil && !strings.EqualFold(e.status(item), f.Status) {
		return false
	}
	if f.Category != "" && e.category != nil && e.category(item) != f.Category {
		return false
	}
	if f.Region != "" && e.region != nil && e.region(item) != f.Region {
		return false
	}
	if f.Featured != nil && e.featured != nil && e.featured(item) != *f.Featured {
		return false
	}
	if (!f.From.IsZero() || !f.To.IsZero()) && e.date != nil {
		d, err := dateparse.ParseAny(e.date(item))
		if err != nil {
			return false
		}
		if !f.From.IsZero() && d.Before(dayStart(f.From)) {
			return false
		}
		if !f.To.IsZero() && !d.Before(dayStart(f.To).AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (e entity[T, K]) sortBy(name string) sortField[T] {
	if sf, ok := e.sorts[name]; ok {
		return sf
	}
	return e.sorts["id"]
}

func less(a, b interface{}) bool {
	switch x := a.(type) {
	case int64:
		return x < b.(int64)
	case int:
		return x < b.(int)
	case bool:
		return !x && b.(bool)
	case string:
		return strings.ToLower(x) < strings.ToLower(b.(string))
	}
	return false
}

func nextInt64(ids []int64) int64 {
	var top int64
	for _, id := range ids {
		if id > top {
			top = id
		}
	}
	return top + 1
}

func nextOrderID(ids []string) string {
	var top int64
	for _, id := range ids {
		if n := domain.OrderSeq(id); n > top {
			top = n
		}
	}
	return domain.OrderID(top + 1)
}

func today(now time.Time) string {
	return now.Format("2006-01-02")
}

var productEntity = entity[domain.Product, int64]{
	name:  domain.CollectionProducts,
	one:   "product",
	many:  "products",
	id:    func(p domain.Product) int64 { return p.ID },
	setID: func(p *domain.Product, id int64) { p.ID = id },
	next:  nextInt64,
	prepare: func(p *domain.Product, _ time.Time) {
		if p.Tags == nil {
			p.Tags = []string{}
		}
	},
	text: func(p domain.Product) []string {
		return append([]string{p.Name.En, p.Name.Sw, p.Description.En, p.Description.Sw}, p.Tags...)
	},
	status:   func(p domain.Product) string { return string(p.Status) },
	category: func(p domain.Product) string { return string(p.Category) },
	featured: func(p domain.Product) bool { return p.Featured },
	sorts: map[string]sortField[domain.Product]{
		"id":       {"id", func(p domain.Product) interface{} { return p.ID }},
		"name":     {"name_en", func(p domain.Product) interface{} { return p.Name.En }},
		"price":    {"price", func(p domain.Product) interface{} { return p.Price }},
		"stock":    {"stock", func(p domain.Product) interface{} { return p.Stock }},
		"category": {"category", func(p domain.Product) interface{} { return string(p.Category) }},
	},
	searchCols: []string{"name_en", "name_sw", "description_en"},
	statusCol:  "status",
	catCol:     "category",
	featureCol: "featured",
}

var orderEntity = entity[domain.Order, string]{
	name:  domain.CollectionOrders,
	one:   "order",
	many:  "orders",
	id:    func(o domain.Order) string { return o.ID },
	setID: func(o *domain.Order, id string) { o.ID = id },
	next:  nextOrderID,
	prepare: func(o *domain.Order, now time.Time) {
		o.Normalize()
		if o.Date == "" {
			o.Date = today(now)
		}
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}
	},
	guard: func(old domain.Order, updated *domain.Order) error {
		return updated.Revise(old)
	},
	text: func(o domain.Order) []string {
		return []string{o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone}
	},
	status: func(o domain.Order) string { return string(o.Status) },
	date:   func(o domain.Order) string { return o.Date },
	sorts: map[string]sortField[domain.Order]{
		"id":           {"id", func(o domain.Order) interface{} { return domain.OrderSeq(o.ID) }},
		"date":         {"date", func(o domain.Order) interface{} { return o.Date }},
		"total":        {"total", func(o domain.Order) interface{} { return o.Total }},
		"customerName": {"customer_name", func(o domain.Order) interface{} { return o.CustomerName }},
		"status":       {"status", func(o domain.Order) interface{} { return string(o.Status) }},
	},
	searchCols: []string{"id", "customer_name", "customer_email", "customer_phone"},
	statusCol:  "status",
	dateCol:    "date",
}

var blogPostEntity = entity[domain.BlogPost, int64]{
	name:  domain.CollectionBlogPosts,
	one:   "blogPost",
	many:  "blogPosts",
	id:    func(b domain.BlogPost) int64 { return b.ID },
	setID: func(b *domain.BlogPost, id int64) { b.ID = id },
	next:  nextInt64,
	prepare: func(b *domain.BlogPost, now time.Time) {
		if b.Date == "" {
			b.Date = today(now)
		}
		if b.Status == "" {
			b.Status = domain.BlogDraft
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}
	},
	text: func(b domain.BlogPost) []string {
		return append([]string{b.Title.En, b.Title.Sw, b.Excerpt.En, b.Author}, b.Tags...)
	},
	status:   func(b domain.BlogPost) string { return string(b.Status) },
	category: func(b domain.BlogPost) string { return b.Category },
	featured: func(b domain.BlogPost) bool { return b.Featured },
	date:     func(b domain.BlogPost) string { return b.Date },
	sorts: map[string]sortField[domain.BlogPost]{
		"id":       {"id", func(b domain.BlogPost) interface{} { return b.ID }},
		"date":     {"date", func(b domain.BlogPost) interface{} { return b.Date }},
		"title":    {"title_en", func(b domain.BlogPost) interface{} { return b.Title.En }},
		"readTime": {"read_time", func(b domain.BlogPost) interface{} { return b.ReadTime }},
	},
	searchCols: []string{"title_en", "title_sw", "excerpt_en", "author"},
	statusCol:  "status",
	catCol:     "category",
	featureCol: "featured",
	dateCol:    "date",
}

var agentEntity = entity[domain.Agent, int64]{
	name:  domain.CollectionAgents,
	one:   "agent",
	many:  "agents",
	id:    func(a domain.Agent) int64 { return a.ID },
	setID: func(a *domain.Agent, id int64) { a.ID = id },
	next:  nextInt64,
	prepare: func(a *domain.Agent, now time.Time) {
		if a.RegistrationDate == "" {
			a.RegistrationDate = today(now)
		}
	},
	text: func(a domain.Agent) []string {
		return []string{a.Name, a.Location, a.Phone}
	},
	status: func(a domain.Agent) string { return a.Status },
	region: func(a domain.Agent) string { return a.Region },
	sorts: map[string]sortField[domain.Agent]{
		"id":               {"id", func(a domain.Agent) interface{} { return a.ID }},
		"name":             {"name", func(a domain.Agent) interface{} { return a.Name }},
		"region":           {"region", func(a domain.Agent) interface{} { return a.Region }},
		"salesVolume":      {"sales_volume", func(a domain.Agent) interface{} { return a.SalesVolume }},
		"registrationDate": {"registration_date", func(a domain.Agent) interface{} { return a.RegistrationDate }},
	},
	searchCols: []string{"name", "location", "phone"},
	statusCol:  "status",
	regionCol:  "region",
}

var registrationEntity = entity[domain.Registration, int64]{
	name:  domain.CollectionRegistrations,
	one:   "registration",
	many:  "registrations",
	id:    func(r domain.Registration) int64 { return r.ID },
	setID: func(r *domain.Registration, id int64) { r.ID = id },
	next:  nextInt64,
	prepare: func(r *domain.Registration, now time.Time) {
		if r.Status == "" {
			r.Status = domain.RegistrationPending
		}
		if r.Date == "" {
			r.Date = today(now)
		}
	},
	onCreate: func(r *domain.Registration) {
		r.Status = domain.RegistrationPending
		r.ReviewedBy, r.ReviewDate = "", ""
	},
	// status changes go through the reviewer
	guard: func(old domain.Registration, updated *domain.Registration) error {
		return updated.Revise(old)
	},
	text: func(r domain.Registration) []string {
		return []string{r.Name, r.Email, r.Phone, r.PaymentReference}
	},
	status: func(r domain.Registration) string { return string(r.Status) },
	region: func(r domain.Registration) string { return r.Region },
	date:   func(r domain.Registration) string { return r.Date },
	sorts: map[string]sortField[domain.Registration]{
		"id":     {"id", func(r domain.Registration) interface{} { return r.ID }},
		"date":   {"date", func(r domain.Registration) interface{} { return r.Date }},
		"name":   {"name", func(r domain.Registration) interface{} { return r.Name }},
		"status": {"status", func(r domain.Registration) interface{} { return string(r.Status) }},
	},
	searchCols: []string{"name", "email", "phone", "payment_reference"},
	statusCol:  "status",
	regionCol:  "region",
	dateCol:    "date",
}

// EnvelopeKeys returns the singular and plural JSON keys for a collection
func EnvelopeKeys(c domain.Collection) (one, many string) {
	switch c {
	case domain.CollectionProducts:
		return productEntity.one, productEntity.many
	case domain.CollectionOrders:
		return orderEntity.one, orderEntity.many
	case domain.CollectionBlogPosts:
		return blogPostEntity.one, blogPostEntity.many
	case domain.CollectionAgents:
		return agentEntity.one, agentEntity.many
	case domain.CollectionRegistrations:
		return registrationEntity.one, registrationEntity.many
	}
	return "item", "items"
}
