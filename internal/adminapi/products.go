package adminapi

import (
	"strings"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
)

var productResource = resource[domain.Product, int64]{
	collection: domain.CollectionProducts,
	repo:       func(s *repository.Set) repository.Repository[domain.Product, int64] { return s.Products },
	parseID:    parseInt64ID,
	setID:      func(p *domain.Product, id int64) { p.ID = id },
	defaults: func(p *domain.Product) {
		p.Name.En = strings.TrimSpace(p.Name.En)
		p.Name.Sw = strings.TrimSpace(p.Name.Sw)
		p.Image = strings.TrimSpace(p.Image)
		if p.Status == "" {
			p.Status = domain.ProductActive
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
	},
}

// registerProductRoutes registers product CRUD endpoints
func registerProductRoutes() {
	productResource.register()
}
