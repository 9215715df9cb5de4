package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	pkgredis "github.com/angelmondragon/storefront/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on. A nil
// RedisClient disables throttling and idempotency replay instead of failing
// requests.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        controllers.Pinger
	RedisClient     *pkgredis.Client
	Metrics         *metrics.HTTPMetrics
	MetricsRegistry *prometheus.Registry
	AuthService     auth.Service
	RegisterService auth.RegisterService
	ProductService  products.Service
	CartService     cart.Service
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(params.Metrics),
		middleware.CORS(),
	)

	loginLimiter := passthrough
	registerLimiter := passthrough
	idempotency := passthrough
	if params.RedisClient != nil {
		loginPolicy := middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginIdentityLimit,
		)
		registerPolicy := middleware.NewAuthRateLimitPolicy(
			"register",
			cfg.AuthRateLimit.RegisterWindow,
			cfg.AuthRateLimit.RegisterIPLimit,
			cfg.AuthRateLimit.RegisterIdentityLimit,
		)
		loginLimiter = middleware.AuthRateLimit(loginPolicy, params.RedisClient, logg)
		registerLimiter = middleware.AuthRateLimit(registerPolicy, params.RedisClient, logg)
		idempotency = middleware.Idempotency(params.RedisClient, logg)
	}

	var redisPinger controllers.Pinger
	if params.RedisClient != nil {
		redisPinger = params.RedisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DBPinger, redisPinger))
	})

	if params.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Get("/api/ping", controllers.PublicPing())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(params.AuthService, logg))
		r.With(registerLimiter, idempotency).Post("/register", controllers.AuthRegister(params.RegisterService, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(params.ProductService, logg))
		r.Get("/categories/list", controllers.ProductCategories(params.ProductService, logg))
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(idempotency)

		r.Get("/", controllers.CartGet(params.CartService, logg))
		r.Post("/add", controllers.CartAdd(params.CartService, logg))
		r.Put("/update", controllers.CartUpdate(params.CartService, logg))
		r.Delete("/remove/{productId}", controllers.CartRemove(params.CartService, logg))
		r.Delete("/clear", controllers.CartClear(params.CartService, logg))
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
