package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/showroom/internal/db/migrations"
	"github.com/dmitrymomot/showroom/modules/marketplace"
	"github.com/dmitrymomot/showroom/pkg/config"
	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/file"
	"github.com/dmitrymomot/showroom/pkg/gallery"
	"github.com/dmitrymomot/showroom/pkg/httpserver"
	"github.com/dmitrymomot/showroom/pkg/listing"
	"github.com/dmitrymomot/showroom/pkg/logger"
	"github.com/dmitrymomot/showroom/pkg/metrics"
	"github.com/dmitrymomot/showroom/pkg/pg"
	"github.com/dmitrymomot/showroom/pkg/redis"
	"github.com/dmitrymomot/showroom/pkg/requestid"
	"github.com/dmitrymomot/showroom/pkg/showroom"
	"github.com/dmitrymomot/showroom/pkg/subscription"
)

type appConfig struct {
	Env      string     `env:"APP_ENV" envDefault:"development"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// CatalogPath points at a YAML tier table; empty uses the built-in one.
	CatalogPath   string `env:"CATALOG_PATH"`
	EnforceExpiry bool   `env:"ENFORCE_SUBSCRIPTION_EXPIRY" envDefault:"false"`
	LockEnabled   bool   `env:"QUOTA_LOCK_ENABLED" envDefault:"true"`
	MaxImageSize  int64  `env:"MAX_IMAGE_SIZE" envDefault:"10485760"`

	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`

	PG      pg.Config
	Redis   redis.Config
	HTTP    httpserver.Config
	Storage file.Config
}

func main() {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "showroom"),
		logger.WithLevel(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("showroom stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := pg.OpenDB(pool)
	defer db.Close()

	if cfg.PG.AutoMigrate {
		if err := pg.Migrate(ctx, db, migrations.FS, cfg.PG, log); err != nil {
			return err
		}
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	storage, err := file.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)

	resolver := entitlement.NewResolver(catalog,
		entitlement.WithResolverLogger(log),
		entitlement.WithResolverObserver(collector),
		entitlement.WithExpiryEnforcement(cfg.EnforceExpiry),
	)

	subscriptions := subscription.NewService(subscription.NewPostgresStore(db), subscription.WithLogger(log))
	listingStore := listing.NewPostgresStore(db)

	gateway := entitlement.NewGateway(subscriptions, listingStore, resolver,
		entitlement.WithLogger(log),
		entitlement.WithObserver(collector),
	)

	listingOpts := []listing.ServiceOption{listing.WithLogger(log)}
	galleryOpts := []gallery.ServiceOption{gallery.WithLogger(log), gallery.WithMaxImageSize(cfg.MaxImageSize)}
	if cfg.LockEnabled {
		locker := redis.NewLocker(rdb, cfg.Redis)
		listingOpts = append(listingOpts, listing.WithLocker(locker))
		galleryOpts = append(galleryOpts, gallery.WithLocker(locker))
	}
	listings := listing.NewService(listingStore, gateway, listingOpts...)

	api := marketplace.Router(marketplace.Options{
		Gateway:       gateway,
		Subscriptions: subscriptions,
		Listings:      listings,
		Gallery:       gallery.NewService(gallery.NewPostgresStore(db), listings, gateway, storage, galleryOpts...),
		Showrooms:     showroom.NewService(showroom.NewPostgresStore(db), gateway, showroom.WithLogger(log)),
		Logger:        log,
		MaxUploadSize: cfg.MaxImageSize + 1<<20,
	})

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(collector.Middleware)
	r.Handle("/metrics", collector.Handler())
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, cfg.ReadinessTimeout,
		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
		httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
	))
	if _, ok := storage.(*file.LocalStorage); ok && strings.HasPrefix(cfg.Storage.LocalBaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.Storage.LocalBaseURL, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.LocalDir))))
	}
	r.Mount("/", api)

	log.InfoContext(ctx, "showroom starting",
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("quota_lock", cfg.LockEnabled),
	)

	server := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err := server.Run(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func loadCatalog(path string) (*entitlement.Catalog, error) {
	if path == "" {
		return entitlement.DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(entitlement.ErrFailedToLoadCatalog, err)
	}
	defer f.Close()
	return entitlement.LoadCatalog(f)
}
