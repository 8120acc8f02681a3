package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/tripbooking/api"
	"github.com/Domenick1991/tripbooking/config"
	"github.com/Domenick1991/tripbooking/internal/auth"
	"github.com/Domenick1991/tripbooking/internal/bootstrap"
	"github.com/Domenick1991/tripbooking/internal/cache"
	"github.com/Domenick1991/tripbooking/internal/kafka"
	"github.com/Domenick1991/tripbooking/internal/logger"
	"github.com/Domenick1991/tripbooking/internal/notify"
	"github.com/Domenick1991/tripbooking/internal/payment"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/Domenick1991/tripbooking/internal/service/reconciler"
	"github.com/Domenick1991/tripbooking/internal/service/trips"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid config", zap.Error(err))
	}
	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.InitialiseSchema(ctx, pool); err != nil {
		zl.Fatal("initialise schema", zap.Error(err))
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.TripsCacheTTL)*time.Second)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		zl.Fatal("connect redis", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zl)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		// booking events are best effort; keep serving without them
		zl.Warn("kafka unavailable", zap.Error(err))
	}

	tripRepo := repository.NewTripRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	tripService := trips.NewTripService(tripRepo, redisCache, zl)
	bookingService := booking.NewBookingService(
		bookingRepo,
		tripService,
		payment.NewStripeGateway(cfg.Stripe.SecretKey, zl),
		zl,
		booking.WithLocker(redisCache, time.Duration(cfg.Booking.LockTTLSeconds)*time.Second),
		booking.WithEvents(producer, cfg.Kafka.BookingTopic),
		booking.WithCheckout(cfg.Booking.Currency, cfg.HTTP.ClientOrigin),
	)

	paymentReconciler := reconciler.NewReconciler(
		payment.NewStripeWebhookVerifier(cfg.Stripe.WebhookSecret, time.Duration(cfg.Stripe.WebhookToleranceSeconds)*time.Second),
		bookingService,
		notify.NewPublisher(producer, cfg.Kafka.NotificationsTopic),
		zl,
	)

	router := api.NewRouter(api.RouterConfig{
		Trips:          tripService,
		Bookings:       bookingService,
		Reconciler:     paymentReconciler,
		Tokens:         auth.NewTokenService(cfg.Auth.JWTSecret, tokenTTL),
		Logger:         zl,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		CookieName:     cfg.Auth.CookieName,
		SwaggerDir:     cfg.HTTP.SwaggerDir,
	})

	if err := bootstrap.NewServer(cfg.HTTP, router, zl).Run(ctx); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
	zl.Info("server stopped")
}
