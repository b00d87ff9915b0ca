package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_shop/internal/config"
	"github.com/Skotchmaster/fashion_shop/internal/db"
	"github.com/Skotchmaster/fashion_shop/internal/events"
	"github.com/Skotchmaster/fashion_shop/internal/httpserver"
	"github.com/Skotchmaster/fashion_shop/internal/logging"
	"github.com/Skotchmaster/fashion_shop/internal/middleware"
	"github.com/Skotchmaster/fashion_shop/internal/middleware/csrf"
	"github.com/Skotchmaster/fashion_shop/internal/notify"
	"github.com/Skotchmaster/fashion_shop/internal/pricing"
	"github.com/Skotchmaster/fashion_shop/internal/repo"
	"github.com/Skotchmaster/fashion_shop/internal/search"
	"github.com/Skotchmaster/fashion_shop/internal/service"
	"github.com/Skotchmaster/fashion_shop/internal/stock"
)

func main() {
	cfg := config.Load()
	cfg.Validate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	r := repo.New(gdb)

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	var mailer notify.Mailer = notify.Noop{}
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		logger.Info("smtp_enabled", "host", cfg.SMTPHost)
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		es, err := search.New(search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := es.Ping(pingCtx); err != nil {
			logger.Warn("elasticsearch_unreachable", "reason", "search falls back to database", "error", err)
		}
		pingCancel()
		index = es
	}
	catalogSvc := &service.CatalogService{Repo: r, Index: index, Events: publisher}

	authSvc := &service.AuthService{
		Repo:          r,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("admin_seed_error", "error", err)
	}
	seedCancel()

	rates := pricing.Rates{Shipping: cfg.ShippingFlat, TaxRate: cfg.TaxRate}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewValidator()
	e.Use(middleware.Common(logger, cfg.CORSOrigins)...)
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.SkipPrefixes = append(c.SkipPrefixes, "/api/auth/")
		e.Use(csrf.Middleware(c))
	}

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		CartHandler: &httpserver.CartHTTP{Svc: &service.CartService{
			Repo:   r,
			Stock:  &stock.Gatekeeper{Products: r},
			Events: publisher,
		}},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:   r,
			Rates:  rates,
			Mailer: mailer,
			Events: publisher,
			Index:  index,
		}},
		SubscriptionHandler: &httpserver.SubscriptionHTTP{
			Svc:     &service.SubscriptionService{Repo: r, Mailer: mailer, Events: publisher},
			Contact: &service.ContactService{Repo: r, Mailer: mailer, Inbox: cfg.MailAdmin},
		},
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc},
		JWTSecret:   cfg.JWTAccessSecret,
		Refresher:   authSvc,
		Ready: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka_close_error", "error", err)
	}
	_ = db.Close(gdb)

	logger.Info("server_stopped")
}
