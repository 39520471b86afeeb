package store

import (
	"context"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
)

func (s *Store) LoadBlogPosts(ctx context.Context) ([]domain.BlogPost, error) {
	return s.blogPosts.load(ctx)
}

func (s *Store) BlogPosts() []domain.BlogPost {
	return s.blogPosts.snapshot()
}

// PublishedPosts returns posts visible on the storefront
func (s *Store) PublishedPosts() []domain.BlogPost {
	var out []domain.BlogPost
	for _, b := range s.blogPosts.snapshot() {
		if b.Status == domain.BlogPublished {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) GetBlogPost(ctx context.Context, id int64) (domain.BlogPost, error) {
	return s.blogPosts.get(ctx, id)
}

func (s *Store) AddBlogPost(ctx context.Context, b domain.BlogPost) (domain.BlogPost, error) {
	return s.blogPosts.add(ctx, b)
}

func (s *Store) UpdateBlogPost(ctx context.Context, b domain.BlogPost) (domain.BlogPost, error) {
	return s.blogPosts.update(ctx, b)
}

func (s *Store) DeleteBlogPost(ctx context.Context, id int64) error {
	return s.blogPosts.remove(ctx, id)
}

func (s *Store) LoadAgents(ctx context.Context) ([]domain.Agent, error) {
	return s.agents.load(ctx)
}

func (s *Store) Agents() []domain.Agent {
	return s.agents.snapshot()
}

func (s *Store) GetAgent(ctx context.Context, id int64) (domain.Agent, error) {
	return s.agents.get(ctx, id)
}

func (s *Store) AddAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	return s.agents.add(ctx, a)
}

func (s *Store) UpdateAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	return s.agents.update(ctx, a)
}

func (s *Store) DeleteAgent(ctx context.Context, id int64) error {
	return s.agents.remove(ctx, id)
}
