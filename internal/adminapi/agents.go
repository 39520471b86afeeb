package adminapi

import (
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
)

var agentResource = resource[domain.Agent, int64]{
	collection: domain.CollectionAgents,
	repo:       func(s *repository.Set) repository.Repository[domain.Agent, int64] { return s.Agents },
	parseID:    parseInt64ID,
	setID:      func(a *domain.Agent, id int64) { a.ID = id },
	defaults: func(a *domain.Agent) {
		if a.Status == "" {
			a.Status = "active"
		}
		if a.Tier == "" {
			a.Tier = domain.TierBronze
		}
	},
}

func registerAgentRoutes() {
	agentResource.register()
}
