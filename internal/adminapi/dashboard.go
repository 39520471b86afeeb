package adminapi

import (
	"context"
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
)

const defaultLowStockThreshold = 20

// SeriesSummary describes one numeric series
type SeriesSummary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

type LowStockItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type Dashboard struct {
	Products             int                        `json:"products"`
	Orders               int                        `json:"orders"`
	BlogPosts            int                        `json:"blogPosts"`
	Agents               int                        `json:"agents"`
	PendingRegistrations int                        `json:"pendingRegistrations"`
	Revenue              int64                      `json:"revenue"`
	OrdersByStatus       map[domain.OrderStatus]int `json:"ordersByStatus"`
	OrderValue           SeriesSummary              `json:"orderValue"`
	AgentSales           SeriesSummary              `json:"agentSales"`
	AgentsByTier         map[domain.AgentTier]int   `json:"agentsByTier"`
	LowStock             []LowStockItem             `json:"lowStock"`
	LowStockThreshold    int                        `json:"lowStockThreshold"`
}

func registerDashboardRoutes() {
	webserver.ApiGET("/dashboard", getDashboard)
}

func getDashboard(c echo.Context) error {
	threshold := defaultLowStockThreshold
	if ns, err := GetAppContext(c).SettingsStore().NotificationSettings(c.Request().Context()); err == nil && ns.LowStockThreshold > 0 {
		threshold = ns.LowStockThreshold
	}
	d, err := BuildDashboard(c.Request().Context(), GetRepos(c), threshold)
	if err != nil {
		return failErr(c, err, "Failed to build dashboard")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "dashboard": d})
}

// Summarize computes the series statistics; an empty series is all zeros
func Summarize(values []float64) SeriesSummary {
	s := SeriesSummary{Count: len(values)}
	if len(values) == 0 {
		return s
	}
	data := stats.Float64Data(values)
	s.Sum, _ = stats.Sum(data)
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	s.P90, _ = stats.Percentile(data, 90)
	s.Max, _ = stats.Max(data)
	return s
}

// BuildDashboard aggregates every collection of one backend
func BuildDashboard(ctx context.Context, repos *repository.Set, lowStock int) (Dashboard, error) {
	d := Dashboard{
		OrdersByStatus:    map[domain.OrderStatus]int{},
		AgentsByTier:      map[domain.AgentTier]int{},
		LowStock:          []LowStockItem{},
		LowStockThreshold: lowStock,
	}

	products, _, err := repos.Products.List(ctx, repository.Filter{Sort: "stock"})
	if err != nil {
		return d, err
	}
	d.Products = len(products)
	for _, p := range products {
		if p.Status != domain.ProductDraft && p.Stock <= lowStock {
			d.LowStock = append(d.LowStock, LowStockItem{ID: p.ID, Name: p.Name.String(), Stock: p.Stock})
		}
	}

	orders, _, err := repos.Orders.List(ctx, repository.Filter{})
	if err != nil {
		return d, err
	}
	d.Orders = len(orders)
	values := make([]float64, 0, len(orders))
	for _, o := range orders {
		d.OrdersByStatus[o.Status]++
		if o.Status == domain.OrderCancelled {
			continue
		}
		d.Revenue += o.Total
		values = append(values, float64(o.Total))
	}
	d.OrderValue = Summarize(values)

	_, posts, err := repos.BlogPosts.List(ctx, repository.Filter{})
	if err != nil {
		return d, err
	}
	d.BlogPosts = int(posts)

	agents, _, err := repos.Agents.List(ctx, repository.Filter{})
	if err != nil {
		return d, err
	}
	d.Agents = len(agents)
	sales := make([]float64, 0, len(agents))
	for _, a := range agents {
		d.AgentsByTier[a.Tier]++
		sales = append(sales, float64(a.SalesVolume))
	}
	d.AgentSales = Summarize(sales)

	_, pending, err := repos.Registrations.List(ctx, repository.Filter{Status: string(domain.RegistrationPending)})
	if err != nil {
		return d, err
	}
	d.PendingRegistrations = int(pending)
	return d, nil
}
