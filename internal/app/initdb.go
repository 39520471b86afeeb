package app

import (
	"context"
	"strings"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkAdmin makes sure the back-office account has a bcrypt hash to log in with
func (a *Application) checkAdmin() {
	adm := &a.appConfig.Admin
	if strings.TrimSpace(adm.Username) == "" {
		adm.Username = config.Default().Admin.Username
	}
	if adm.PasswordHash != "" {
		return
	}
	if adm.Password == "" {
		adm.Password = config.Default().Admin.Password
	}
	if adm.Password == config.Default().Admin.Password {
		zap.L().Warn("admin account uses the default password",
			zap.String("namespace", "app"), zap.String("username", adm.Username))
	}
	hash, err := webserver.HashPassword(adm.Password)
	if err != nil {
		zap.L().Error("failed to hash admin password", zap.String("namespace", "app"), zap.Error(err))
		return
	}
	adm.PasswordHash = hash
	adm.Password = ""
}

// checkDatabase copies the cache collections into empty tables, once per table
func (a *Application) checkDatabase(ctx context.Context) {
	a.checkProducts(ctx)
	a.checkOrders(ctx)
	a.checkBlogPosts(ctx)
	a.checkAgents(ctx)
	a.checkRegistrations(ctx)
}

func (a *Application) checkProducts(ctx context.Context) {
	seedTable(ctx, a.gormDB, "products", a.admin.Products())
}

func (a *Application) checkOrders(ctx context.Context) {
	seedTable(ctx, a.gormDB, "orders", a.admin.Orders())
}

func (a *Application) checkBlogPosts(ctx context.Context) {
	seedTable(ctx, a.gormDB, "blogPosts", a.admin.BlogPosts())
}

func (a *Application) checkAgents(ctx context.Context) {
	seedTable(ctx, a.gormDB, "agents", a.admin.Agents())
}

func (a *Application) checkRegistrations(ctx context.Context) {
	seedTable(ctx, a.gormDB, "registrations", a.admin.Registrations())
}

func seedTable[T any](ctx context.Context, db *gorm.DB, name string, rows []T) {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		zap.L().Error("failed to count table", zap.String("namespace", "app"), zap.String("collection", name), zap.Error(err))
		return
	}
	if count > 0 || len(rows) == 0 {
		return
	}
	if err := db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		zap.L().Error("failed to seed table", zap.String("namespace", "app"), zap.String("collection", name), zap.Error(err))
		return
	}
	zap.L().Info("initialized table from cache",
		zap.String("namespace", "app"),
		zap.String("collection", name),
		zap.Int("count", len(rows)))
}

// Reseed rewrites collections from the seed data. Without force only absent
// collections are seeded; with force every collection key is dropped first.
// For the database backend, empty tables are then filled from the cache.
func (a *Application) Reseed(ctx context.Context, force bool) error {
	if force {
		for _, c := range domain.Collections {
			if err := a.cache.Remove(ctx, c.Key()); err != nil {
				return errors.Wrapf(err, "drop %s", c)
			}
		}
	}
	if err := a.admin.RefreshData(ctx); err != nil {
		return errors.Wrap(err, "seed cache")
	}
	if a.gormDB != nil {
		a.checkDatabase(ctx)
	}
	zap.L().Info("seed complete", zap.String("namespace", "app"), zap.Bool("force", force))
	return nil
}
