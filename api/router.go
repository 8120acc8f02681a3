package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/Domenick1991/tripbooking/internal/service/trips"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Trips      trips.TripUseCase
	Bookings   booking.BookingUseCase
	Reconciler WebhookReconciler
	Tokens     TokenValidator
	Logger     *zap.Logger

	AllowedOrigins []string
	CookieName     string
	SwaggerDir     string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(cfg.Logger), RequestLogger(cfg.Logger))

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// provider callback: no auth, no body binding
	NewWebhookHandler(cfg.Reconciler).Register(router.Group("/api/stripe/webhook"))

	NewTripHandler(cfg.Trips).Register(router.Group("/api/trips"))

	bookings := router.Group("/api/booking", AuthMiddleware(cfg.Tokens, cfg.CookieName, cfg.Logger))
	NewBookingHandler(cfg.Bookings).Register(bookings)

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/bookings.swagger.json"))))
	}

	return router
}
