// Package quote serves pricing quotes: validated, solved, reported and
// optionally cached configurations.
package quote

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/staggered-pricing/internal/cache"
	"github.com/noah-isme/staggered-pricing/internal/common"
	"github.com/noah-isme/staggered-pricing/internal/obs"
	"github.com/noah-isme/staggered-pricing/internal/pricing"
	"github.com/noah-isme/staggered-pricing/internal/report"
)

// Quote is the response payload of a pricing run.
type Quote struct {
	Config  pricing.Config `json:"config" yaml:"config"`
	Result  pricing.Result `json:"result" yaml:"result"`
	Report  report.Report  `json:"report" yaml:"report"`
	Display Display        `json:"display" yaml:"display"`
	Cached  bool           `json:"cached" yaml:"cached"`
}

// Display carries the headline figures already formatted as currency.
type Display struct {
	TierPrices            []string `json:"tierPrices" yaml:"tierPrices"`
	TotalRevenue          string   `json:"totalRevenue" yaml:"totalRevenue"`
	EffectiveAveragePrice string   `json:"effectiveAveragePrice" yaml:"effectiveAveragePrice"`
	TargetAveragePrice    string   `json:"targetAveragePrice" yaml:"targetAveragePrice"`
	MonthlyRevenue        string   `json:"monthlyRevenue" yaml:"monthlyRevenue"`
	AchievedDiscount      string   `json:"achievedDiscount" yaml:"achievedDiscount"`
}

// Quoter produces quotes. *Service solves in process; the API client
// implements it against a remote server.
type Quoter interface {
	Quote(ctx context.Context, cfg pricing.Config) (Quote, error)
}

// Service orchestrates solving, reporting and caching of quotes.
type Service struct {
	cache  *cache.JSON
	logger zerolog.Logger
	money  report.Money
	now    func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Cache  *cache.JSON
	Logger zerolog.Logger
	Money  report.Money
}

// NewService constructs a Service. A zero Money falls back to the default
// currency format.
func NewService(cfg ServiceConfig) *Service {
	money := cfg.Money
	if money == (report.Money{}) {
		money = report.DefaultMoney()
	}
	return &Service{cache: cfg.Cache, logger: cfg.Logger, money: money, now: time.Now}
}

// Quote validates and solves cfg. Invalid input is returned as a 422
// *common.AppError wrapping the *pricing.ConfigurationError.
func (s *Service) Quote(ctx context.Context, cfg pricing.Config) (Quote, error) {
	ctx, span := otel.Tracer("quote.service").Start(ctx, "quote.Solve")
	defer span.End()

	if err := pricing.Validate(cfg); err != nil {
		obs.ObserveSolve(obs.SolveInvalid, 0, 0)
		span.SetStatus(codes.Error, err.Error())
		return Quote{}, invalidConfig(err)
	}

	key, err := s.cacheKey(cfg)
	if err != nil {
		return Quote{}, common.NewAppError(common.CodeInternal, "fingerprint config", http.StatusInternalServerError, err)
	}
	var cached Quote
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		obs.ObserveCacheError("get")
		s.logger.Warn().Err(err).Str("key", key).Msg("quote cache read failed")
	} else if found {
		obs.ObserveSolve(obs.SolveCached, 0, 0)
		span.SetAttributes(attribute.Bool("quote.cached", true))
		cached.Cached = true
		return cached, nil
	}

	start := s.now()
	res, err := pricing.Solve(cfg)
	if err != nil {
		obs.ObserveSolve(obs.SolveInvalid, 0, 0)
		return Quote{}, invalidConfig(err)
	}
	outcome := obs.SolveExact
	if !res.IsExact {
		outcome = obs.SolveInfeasible
	}
	obs.ObserveSolve(outcome, res.Passes, obs.DurationMillis(s.now().Sub(start)))
	span.SetAttributes(
		attribute.Bool("quote.exact", res.IsExact),
		attribute.Int("quote.levels", cfg.NumLevels),
		attribute.Int("quote.clamped_levels", res.ClampedLevels),
	)

	q := s.build(cfg, res)
	if err := s.cache.Set(ctx, key, q); err != nil {
		obs.ObserveCacheError("set")
		s.logger.Warn().Err(err).Str("key", key).Msg("quote cache write failed")
	}

	evt := s.logger.Debug()
	if !res.IsExact {
		evt = s.logger.Info()
	}
	evt.
		Float64("base_price", cfg.BasePrice).
		Int("total_subjects", cfg.TotalSubjects).
		Float64("min_price_floor", cfg.MinPriceFloor).
		Float64("target_discount_pct", cfg.TargetDiscountPct).
		Float64("achieved_discount_pct", res.AchievedDiscountPct).
		Bool("exact", res.IsExact).
		Int("passes", res.Passes).
		Msg("quote solved")
	return q, nil
}

func (s *Service) build(cfg pricing.Config, res pricing.Result) Quote {
	rep := report.Build(cfg, res)
	display := Display{
		TierPrices:            make([]string, 0, len(res.Tiers)),
		TotalRevenue:          s.money.Format(rep.Summary.TotalRevenue),
		EffectiveAveragePrice: s.money.Format(rep.Summary.EffectiveAveragePrice),
		TargetAveragePrice:    s.money.Format(rep.Summary.TargetAveragePrice),
		MonthlyRevenue:        s.money.Format(rep.Summary.MonthlyRevenue),
		AchievedDiscount:      report.Percent(res.AchievedDiscountPct, 2),
	}
	for _, t := range res.Tiers {
		display.TierPrices = append(display.TierPrices, s.money.Format(t.Price))
	}
	return Quote{Config: cfg, Result: res, Report: rep, Display: display}
}

// cacheKey fingerprints cfg together with the currency format, since the
// cached payload embeds formatted strings.
func (s *Service) cacheKey(cfg pricing.Config) (string, error) {
	return common.FingerprintJSON(struct {
		Config   pricing.Config `json:"config"`
		Prefix   string         `json:"prefix"`
		Decimals int32          `json:"decimals"`
	}{cfg, s.money.Prefix, s.money.Decimals})
}

func invalidConfig(err error) error {
	var cfgErr *pricing.ConfigurationError
	if !errors.As(err, &cfgErr) {
		return common.NewAppError(common.CodeInternal, "solve failed", http.StatusInternalServerError, err)
	}
	appErr := common.NewAppError(common.CodeInvalidConfig, cfgErr.Error(), http.StatusUnprocessableEntity, cfgErr)
	appErr.Details = map[string]any{"field": cfgErr.Field, "constraint": cfgErr.Constraint}
	return appErr
}
