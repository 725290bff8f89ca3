// Package server assembles the pricing API router.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/staggered-pricing/internal/cache"
	"github.com/noah-isme/staggered-pricing/internal/config"
	"github.com/noah-isme/staggered-pricing/internal/health"
	"github.com/noah-isme/staggered-pricing/internal/obs"
	"github.com/noah-isme/staggered-pricing/internal/quote"
	"github.com/noah-isme/staggered-pricing/internal/ratelimit"
	"github.com/noah-isme/staggered-pricing/internal/report"
	"github.com/noah-isme/staggered-pricing/internal/security"
)

// Deps are the collaborators the router is built from. Redis is optional:
// without it quotes are not cached and rate limits are per process.
type Deps struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Redis    redis.UniversalClient
	Registry *prometheus.Registry
}

// NewRouter wires middleware, health probes, metrics and the quote routes.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, registerer)
		httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), registerer)
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
	r.Use(security.CORS(cfg.CORSAllowedOrigins))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	healthHandler := health.Handler{}
	if d.Redis != nil {
		client := d.Redis
		healthHandler.Redis = health.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	service := quote.NewService(quote.ServiceConfig{
		Cache:  quoteCache(d.Redis, cfg),
		Logger: d.Logger,
		Money:  report.Money{Prefix: cfg.CurrencyPrefix, Decimals: cfg.CurrencyDecimals},
	})
	quoteHandler := quote.NewHandler(quote.HandlerConfig{Service: service, Defaults: cfg.PricingDefaults})
	limit := ratelimit.Handler{
		Limiter: newLimiter(d.Redis),
		Config:  ratelimit.Config{Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: func(err error) {
			d.Logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}

	r.Route("/api/v1/pricing", func(p chi.Router) {
		p.Get("/defaults", quoteHandler.Defaults)
		p.Group(func(g chi.Router) {
			g.Use(limit.Middleware)
			g.Post("/quote", quoteHandler.Create)
			g.Get("/quote", quoteHandler.Get)
		})
	})
	return r
}

func quoteCache(client redis.UniversalClient, cfg *config.Config) *cache.JSON {
	if client == nil {
		return nil
	}
	return cache.New(client, "pricing:quote:", cfg.QuoteCacheTTL)
}

func newLimiter(client redis.UniversalClient) ratelimit.Limiter {
	if client == nil {
		return ratelimit.NewMemory("pricing-ratelimit")
	}
	return ratelimit.SlidingRedis{Client: client, Prefix: "pricing:ratelimit:"}
}
