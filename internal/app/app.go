package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/adminapi"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/notify"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/shopapi"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/store"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/whatsapp"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

const storeName = "Yammi Yami Diapers"

type Application struct {
	appConfig *config.AppConfig
	backend   repository.Backend
	gormDB    *gorm.DB
	sched     *cron.Cron

	bolt       *kvcache.Bolt
	cache      kvcache.Cache
	bus        *notify.Bus
	admin      *store.Store
	storefront *store.Store
	watcher    *notify.Watcher
	stream     *notify.Stream
	poller     *notify.Poller

	repos    *repository.Set
	catalog  shopapi.Catalog
	checkout *whatsapp.Checkout
	mailer   *notify.Mailer

	lowStock map[int64]bool
}

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig, lowStock: make(map[int64]bool)}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

// Init sets up logging, metrics, the cache, both stores, the change plumbing,
// the selected repository backend and the cron jobs
func (a *Application) Init(ctx context.Context) error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	// Initialize metrics with workdir convention
	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	a.checkAdmin()

	if a.backend, err = repository.ParseBackend(cfg.Store.Backend); err != nil {
		return err
	}

	if err := a.initStores(ctx); err != nil {
		return err
	}

	if a.backend == repository.BackendDatabase {
		if cfg.Database.Type == "" {
			cfg.Database.Type = "postgres"
		}
		if a.gormDB == nil {
			if a.gormDB, err = getDatabase(cfg.Database, cfg.System.Workdir); err != nil {
				return err
			}
		}
		zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
		if err := a.MigrateDB(cfg.Database.Debug); err != nil {
			zap.S().Errorf("database migration failed: %v", err)
		}
		a.checkDatabase(ctx)
	}

	a.repos, err = repository.New(a.backend, repository.Deps{
		Store:         a.admin,
		DB:            a.gormDB,
		RemoteURL:     cfg.Store.RemoteURL,
		RemoteToken:   cfg.Store.RemoteToken,
		RemoteTimeout: cfg.Store.RemoteTimeout,
	})
	if err != nil {
		return err
	}
	if a.backend == repository.BackendLocal {
		a.catalog = shopapi.StoreCatalog{Store: a.storefront}
	} else {
		a.catalog = shopapi.RepoCatalog{Repos: a.repos}
	}

	if a.checkout, err = whatsapp.NewCheckout(cfg.Checkout.WhatsAppEndpoint, cfg.Checkout.NodeID); err != nil {
		return err
	}
	if cfg.Mail.Enabled {
		a.mailer = notify.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, storeName)
	}

	zap.L().Info("application initialized",
		zap.String("namespace", "app"),
		zap.String("backend", string(a.backend)),
		zap.String("cache", cfg.CachePath()))
	return a.initJob()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.Logger.Level != "" {
		if lvl, err := zapcore.ParseLevel(cfg.Logger.Level); err == nil {
			zapConfig.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
	zapConfig.OutputPaths = []string{"stderr"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stderr),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// initStores opens the cache and builds the admin store and the storefront view.
// Admin writes reach the storefront through the bus; external writers are caught by the poller.
func (a *Application) initStores(ctx context.Context) error {
	cfg := a.appConfig
	if a.cache == nil {
		b, err := kvcache.OpenBolt(cfg.CachePath())
		if err != nil {
			return err
		}
		a.bolt = b
		a.cache = b
	}

	a.bus = notify.NewBus()
	observed := kvcache.Observe(a.cache, a.bus.StorageChanged)

	opts := []store.Option{store.WithNotifier(a.bus), store.WithName("admin")}
	if cfg.Store.Optimistic {
		opts = append(opts, store.WithOptimistic())
	}
	a.admin = store.New(observed, opts...)
	a.storefront = store.New(a.cache, store.WithName("storefront"))

	// seeding happens once, through the admin store
	if err := a.admin.RefreshData(ctx); err != nil {
		return errors.Wrap(err, "load admin store")
	}
	if err := a.storefront.RefreshData(ctx); err != nil {
		return errors.Wrap(err, "load storefront")
	}

	var err error
	if a.watcher, err = notify.NewWatcher(a.storefront, cfg.Store.Workers); err != nil {
		return err
	}
	a.watcher.OnReload = func(c domain.Collection, err error) {
		if err == nil {
			zap.L().Debug("storefront reloaded", zap.String("namespace", "app"), zap.String("collection", string(c)))
		}
	}
	if err := a.watcher.Attach(a.bus); err != nil {
		return errors.Wrap(err, "attach watcher")
	}
	a.stream = notify.NewStream()
	if err := a.stream.Attach(a.bus); err != nil {
		return errors.Wrap(err, "attach event stream")
	}
	a.poller = notify.NewPoller(a.cache, a.storefront, a.bus.PollChanged)
	return nil
}

// OverrideCache makes Init use c instead of opening the bbolt file (used in tests).
func (a *Application) OverrideCache(c kvcache.Cache) {
	a.cache = c
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
			return err
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
			return err
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Backend() repository.Backend {
	return a.backend
}

func (a *Application) Repos() *repository.Set {
	return a.repos
}

func (a *Application) AdminStore() *store.Store {
	return a.admin
}

func (a *Application) StorefrontStore() *store.Store {
	return a.storefront
}

func (a *Application) Cache() kvcache.Cache {
	return a.cache
}

func (a *Application) Bus() *notify.Bus {
	return a.bus
}

// SettingsStore serves settings from the admin store regardless of backend
func (a *Application) SettingsStore() adminapi.SettingsStore {
	return a.admin
}

// Mailer is nil when mail is disabled
func (a *Application) Mailer() *notify.Mailer {
	return a.mailer
}

func (a *Application) Catalog() shopapi.Catalog {
	return a.catalog
}

func (a *Application) Checkout() *whatsapp.Checkout {
	return a.checkout
}

func (a *Application) Stream() *notify.Stream {
	return a.stream
}

func (a *Application) Site() shopapi.SiteInfo {
	return a.admin
}

// Start scheduler job runner
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.StartSchedulerService(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.bolt != nil {
		_ = a.bolt.Close()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	_ = metrics.Close()
	_ = zap.L().Sync()
}
