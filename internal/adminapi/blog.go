package adminapi

import (
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
)

var blogPostResource = resource[domain.BlogPost, int64]{
	collection: domain.CollectionBlogPosts,
	repo:       func(s *repository.Set) repository.Repository[domain.BlogPost, int64] { return s.BlogPosts },
	parseID:    parseInt64ID,
	setID:      func(b *domain.BlogPost, id int64) { b.ID = id },
	defaults: func(b *domain.BlogPost) {
		if b.Status == "" {
			b.Status = domain.BlogDraft
		}
		if b.ReadTime == 0 {
			b.ReadTime = 1
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}
	},
}

func registerBlogRoutes() {
	blogPostResource.register()
}
