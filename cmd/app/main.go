package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Domenick1991/travelbooking/api"
	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/bootstrap"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/account"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/catalog"
	"github.com/Domenick1991/travelbooking/internal/service/payment"
	"github.com/Domenick1991/travelbooking/internal/service/reports"
	"github.com/Domenick1991/travelbooking/internal/service/settings"
	"github.com/Domenick1991/travelbooking/internal/service/users"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.Database.DSN(), cfg.Database.SlowQuery)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient, time.Duration(cfg.Booking.TripsCacheTTL)*time.Second)

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	events := kafka.NewEmitter(producer, cfg.Kafka.BookingEventsTopic, cfg.Kafka.NotificationsTopic)

	tx := repository.NewLoggedTxManager(repository.NewTxManager(pool))
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewRefreshTokenRepository(pool)
	tripRepo := repository.NewTripRepository(pool)
	departureRepo := repository.NewDepartureRepository(pool)
	destinationRepo := repository.NewDestinationRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	issuer := auth.NewTokenIssuer(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	services := api.Services{
		Account:  account.NewAccountService(userRepo, tokenRepo, tx, issuer),
		Catalog:  catalog.NewCatalogService(tripRepo, departureRepo, destinationRepo, tx, redisCache),
		Bookings: booking.NewBookingService(bookingRepo, departureRepo, tripRepo, tx, events, booking.WithTripCache(redisCache)),
		Payments: payment.NewPaymentService(paymentRepo, bookingRepo, tx, events),
		Users:    users.NewUsersService(userRepo, bookingRepo),
		Reports:  reports.NewReportsService(repository.NewReportRepository(pool), bookingRepo),
		Settings: settings.NewSettingsService(repository.NewSettingsRepository(pool), tx),
	}

	var openAPI string
	if cfg.HTTP.SwaggerDir != "" {
		openAPI = filepath.Join(cfg.HTTP.SwaggerDir, "openapi.json")
	}
	router := api.NewRouter(api.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Debug:          cfg.IsDevelopment(),
		LoginLimit:     cfg.RateLimit.MaxRequests,
		LoginWindow:    cfg.RateLimit.Window,
		OpenAPIFile:    openAPI,
		Ping:           api.PingAll(
			api.Check{Name: "postgres", Check: pool.Ping},
			api.Check{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
			api.Check{Name: "kafka", Check: producer.CheckConnection},
		),
	}, services, redisCache)

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
