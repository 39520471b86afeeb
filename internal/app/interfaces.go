package app

import (
	"context"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/adminapi"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/shopapi"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/store"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DBProvider provides database access; nil unless the database backend is selected
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// StoreProvider provides the cache and the two stores built on it
type StoreProvider interface {
	Cache() kvcache.Cache
	AdminStore() *store.Store
	StorefrontStore() *store.Store
}

// RepositoryProvider provides the repositories of the selected backend
type RepositoryProvider interface {
	Backend() repository.Backend
	Repos() *repository.Set
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	StoreProvider
	RepositoryProvider

	MigrateDB(track bool) error
	DropAll()
	// Reseed rewrites collections from the seed data; without force only absent ones
	Reseed(ctx context.Context, force bool) error
	StartBackgroundJobs(ctx context.Context)
	Release()
}

// Ensure Application implements all interfaces
var (
	_ DBProvider          = (*Application)(nil)
	_ ConfigProvider      = (*Application)(nil)
	_ SchedulerProvider   = (*Application)(nil)
	_ StoreProvider       = (*Application)(nil)
	_ RepositoryProvider  = (*Application)(nil)
	_ AppContext          = (*Application)(nil)
	_ adminapi.AppContext = (*Application)(nil)
	_ shopapi.AppContext  = (*Application)(nil)
)
