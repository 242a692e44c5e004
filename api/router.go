package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/account"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/catalog"
	"github.com/Domenick1991/travelbooking/internal/service/payment"
	"github.com/Domenick1991/travelbooking/internal/service/reports"
	"github.com/Domenick1991/travelbooking/internal/service/settings"
	"github.com/Domenick1991/travelbooking/internal/service/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Services struct {
	Account  account.AccountUseCase
	Catalog  catalog.CatalogUseCase
	Bookings booking.BookingUseCase
	Payments payment.PaymentUseCase
	Users    users.UsersUseCase
	Reports  reports.ReportsUseCase
	Settings settings.SettingsUseCase
}

type RouterConfig struct {
	AllowedOrigins []string
	Debug          bool
	LoginLimit     int64
	LoginWindow    time.Duration
	// OpenAPIFile is served at /openapi.json and rendered under /docs/.
	OpenAPIFile string
	// Ping reports whether the backing stores are reachable.
	Ping func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig, svc Services, limiter RateLimiter) *gin.Engine {
	registerValidators()
	errs := ErrorResponder{Debug: cfg.Debug}
	mw := NewMiddleware(svc.Account, limiter, errs)

	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery(errs))
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins, corsCfg.AllowAllOrigins, corsCfg.AllowCredentials = nil, true, false
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", health(cfg.Ping))
	if cfg.OpenAPIFile != "" {
		r.StaticFile("/openapi.json", cfg.OpenAPIFile)
		r.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))
	}

	api := r.Group("/api")
	NewAuthHandler(svc.Account, errs).Register(api.Group("/auth"), mw, cfg.LoginLimit, cfg.LoginWindow)
	NewTripHandler(svc.Catalog, errs).Register(api.Group("/trips"), mw)
	NewBookingHandler(svc.Bookings, errs).Register(api.Group("/bookings"), mw)
	NewPaymentHandler(svc.Payments, errs).Register(api.Group("/payments"), mw)
	NewAdminHandler(svc.Catalog, svc.Bookings, svc.Users, svc.Settings, errs).Register(api.Group("/admin"), mw)
	NewCustomerHandler(svc.Users, errs).Register(api.Group("/customers"), mw)
	NewReportHandler(svc.Reports, errs).Register(api.Group("/reports"), mw)

	r.NoRoute(func(c *gin.Context) {
		errs.Respond(c, domain.NotFound("route"))
	})
	return r
}

// Check is one named dependency probe for the health endpoint.
type Check struct {
	Name  string
	Check func(ctx context.Context) error
}

// PingAll runs every check in order and reports the first failure.
func PingAll(checks ...Check) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
		}
		return nil
	}
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok", "timestamp": time.Now().UTC()}
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				body["status"] = "degraded"
				body["error"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
