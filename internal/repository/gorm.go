package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormRepository serves one collection from a relational database
type GormRepository[T any, K comparable] struct {
	db  *gorm.DB
	e   entity[T, K]
	now func() time.Time
}

var _ Orders = (*GormRepository[domain.Order, string])(nil)

func newGorm[T any, K comparable](db *gorm.DB, e entity[T, K], now func() time.Time) *GormRepository[T, K] {
	return &GormRepository[T, K]{db: db, e: e, now: now}
}

func (r *GormRepository[T, K]) scoped(db *gorm.DB, f Filter) *gorm.DB {
	if q := f.query(); q != "" && len(r.e.searchCols) > 0 {
		conds := make([]string, 0, len(r.e.searchCols))
		args := make([]interface{}, 0, len(r.e.searchCols))
		for _, col := range r.e.searchCols {
			if strings.EqualFold(db.Name(), "postgres") {
				conds = append(conds, col+" ILIKE ?")
			} else {
				conds = append(conds, "LOWER("+col+") LIKE ?")
			}
			args = append(args, "%"+q+"%")
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if f.Status != "" && r.e.statusCol != "" {
		db = db.Where(r.e.statusCol+" = ?", strings.ToLower(f.Status))
	}
	if f.Category != "" && r.e.catCol != "" {
		db = db.Where(r.e.catCol+" = ?", f.Category)
	}
	if f.Region != "" && r.e.regionCol != "" {
		db = db.Where(r.e.regionCol+" = ?", f.Region)
	}
	if f.Featured != nil && r.e.featureCol != "" {
		db = db.Where(r.e.featureCol+" = ?", *f.Featured)
	}
	if r.e.dateCol != "" {
		if !f.From.IsZero() {
			db = db.Where(r.e.dateCol+" >= ?", today(f.From))
		}
		if !f.To.IsZero() {
			db = db.Where(r.e.dateCol+" < ?", today(dayStart(f.To).AddDate(0, 0, 1)))
		}
	}
	return db
}

func (r *GormRepository[T, K]) List(ctx context.Context, f Filter) ([]T, int64, error) {
	db := r.scoped(r.db.WithContext(ctx).Model(new(T)), f)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "count %s", r.e.name)
	}

	order := "ASC"
	if f.Desc {
		order = "DESC"
	}
	db = db.Order(r.e.sortBy(f.Sort).column + " " + order)
	if f.PageSize > 0 {
		db = db.Offset(f.Offset()).Limit(f.PageSize)
	}
	rows := make([]T, 0)
	if err := db.Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "query %s", r.e.name)
	}
	return rows, total, nil
}

func (r *GormRepository[T, K]) first(tx *gorm.DB, id K) (T, error) {
	var item T
	err := tx.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, domain.NewNotFound(r.e.name, id)
	}
	if err != nil {
		return item, errors.Wrapf(err, "get %s %v", r.e.name, id)
	}
	return item, nil
}

func (r *GormRepository[T, K]) Get(ctx context.Context, id K) (T, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// Create assigns max(id)+1 inside a transaction
func (r *GormRepository[T, K]) Create(ctx context.Context, item T) (T, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []K
		if err := tx.Model(new(T)).Pluck("id", &ids).Error; err != nil {
			return errors.Wrapf(err, "scan %s ids", r.e.name)
		}
		r.e.setID(&item, r.e.next(ids))
		if r.e.onCreate != nil {
			r.e.onCreate(&item)
		}
		if r.e.prepare != nil {
			r.e.prepare(&item, r.now())
		}
		return errors.Wrapf(tx.Create(&item).Error, "create %s", r.e.name)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

func (r *GormRepository[T, K]) Update(ctx context.Context, item T) (T, error) {
	id := r.e.id(item)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := r.first(tx, id)
		if err != nil {
			return err
		}
		if r.e.guard != nil {
			if err := r.e.guard(old, &item); err != nil {
				return err
			}
		}
		if r.e.prepare != nil {
			r.e.prepare(&item, r.now())
		}
		return errors.Wrapf(tx.Save(&item).Error, "update %s %v", r.e.name, id)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Delete of an absent id is logged and not an error
func (r *GormRepository[T, K]) Delete(ctx context.Context, id K) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete %s %v", r.e.name, id)
	}
	if res.RowsAffected == 0 {
		zap.L().Warn("delete of missing entity",
			zap.String("namespace", "repository"),
			zap.String("collection", string(r.e.name)),
			zap.Any("id", id))
	}
	return nil
}

type gormReviewer struct {
	repo *GormRepository[domain.Registration, int64]
}

func (g gormReviewer) Approve(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error) {
	return g.review(ctx, id, domain.RegistrationApproved, reviewedBy, notes)
}

func (g gormReviewer) Reject(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error) {
	return g.review(ctx, id, domain.RegistrationRejected, reviewedBy, notes)
}

func (g gormReviewer) review(ctx context.Context, id int64, status domain.RegistrationStatus, reviewedBy, notes string) (domain.Registration, error) {
	var out domain.Registration
	err := g.repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := g.repo.first(tx, id)
		if err != nil {
			return err
		}
		if reg.Status.Terminal() {
			return domain.NewInvalidTransition(domain.CollectionRegistrations, string(reg.Status), string(status))
		}
		reg.Status = status
		reg.ReviewedBy = reviewedBy
		reg.ReviewDate = g.repo.now().UTC().Format(time.RFC3339)
		reg.Notes = notes
		out = reg
		return errors.Wrapf(tx.Save(&reg).Error, "review registration %d", id)
	})
	return out, err
}

type gormOrderStatus struct {
	repo *GormRepository[domain.Order, string]
}

func (g gormOrderStatus) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	var out domain.Order
	err := g.repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := g.repo.first(tx, id)
		if err != nil {
			return err
		}
		if err := o.Status.CheckTransition(status); err != nil {
			return err
		}
		o.Status = status
		out = o
		return errors.Wrapf(tx.Model(&domain.Order{}).Where("id = ?", id).Update("status", status).Error, "update order %s status", id)
	})
	return out, err
}

// NewDatabase builds the repository set over a migrated gorm connection
func NewDatabase(db *gorm.DB, now func() time.Time) *Set {
	if now == nil {
		now = time.Now
	}
	orders := newGorm(db, orderEntity, now)
	regs := newGorm(db, registrationEntity, now)
	return &Set{
		Backend:       BackendDatabase,
		Products:      newGorm(db, productEntity, now),
		Orders:        orders,
		BlogPosts:     newGorm(db, blogPostEntity, now),
		Agents:        newGorm(db, agentEntity, now),
		Registrations: regs,
		Reviewer:      gormReviewer{regs},
		OrderStatus:   gormOrderStatus{orders},
	}
}
