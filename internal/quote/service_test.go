package quote_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staggered-pricing/internal/cache"
	"github.com/noah-isme/staggered-pricing/internal/common"
	"github.com/noah-isme/staggered-pricing/internal/pricing"
	"github.com/noah-isme/staggered-pricing/internal/quote"
	"github.com/noah-isme/staggered-pricing/internal/report"
)

func scenario() pricing.Config {
	return pricing.Config{
		BasePrice:                1000,
		TotalSubjects:            100,
		InitialFullPriceSubjects: 20,
		TargetDiscountPct:        10,
		MinPriceFloor:            500,
		NumLevels:                5,
		EngagementMonths:         12,
	}
}

func TestServiceQuoteFormatsDisplay(t *testing.T) {
	svc := quote.NewService(quote.ServiceConfig{Logger: zerolog.Nop()})
	q, err := svc.Quote(context.Background(), scenario())
	require.NoError(t, err)
	require.True(t, q.Result.IsExact)
	require.False(t, q.Cached)
	require.Equal(t, []string{"Rs.1,000.00", "Rs.937.50", "Rs.875.00", "Rs.812.50", "Rs.750.00"}, q.Display.TierPrices)
	require.Equal(t, "Rs.90,000.00", q.Display.TotalRevenue)
	require.Equal(t, "Rs.900.00", q.Display.EffectiveAveragePrice)
	require.Equal(t, "Rs.7,500.00", q.Display.MonthlyRevenue)
	require.Equal(t, "10.00%", q.Display.AchievedDiscount)
	require.Len(t, q.Report.Rows, 5)
}

func TestServiceQuoteCustomMoney(t *testing.T) {
	svc := quote.NewService(quote.ServiceConfig{Logger: zerolog.Nop(), Money: report.Money{Prefix: "USD ", Decimals: 0}})
	q, err := svc.Quote(context.Background(), scenario())
	require.NoError(t, err)
	require.Equal(t, "USD 90,000", q.Display.TotalRevenue)
	require.Equal(t, "USD 938", q.Display.TierPrices[1])
}

func TestServiceQuoteInvalidConfig(t *testing.T) {
	svc := quote.NewService(quote.ServiceConfig{Logger: zerolog.Nop()})
	cfg := scenario()
	cfg.NumLevels = 0
	_, err := svc.Quote(context.Background(), cfg)
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.Equal(t, common.CodeInvalidConfig, appErr.Code)
	require.True(t, pricing.IsConfigurationError(err))
	require.Equal(t, map[string]any{"field": "numLevels", "constraint": "must be >= 1"}, appErr.Details)
}

func TestServiceQuoteUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := quote.NewService(quote.ServiceConfig{
		Cache:  cache.New(client, "pricing:quote:", time.Minute),
		Logger: zerolog.Nop(),
	})
	ctx := context.Background()

	first, err := svc.Quote(ctx, scenario())
	require.NoError(t, err)
	require.False(t, first.Cached)
	require.Len(t, mr.Keys(), 1)

	second, err := svc.Quote(ctx, scenario())
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Result.Tiers, second.Result.Tiers)
	require.Equal(t, first.Display, second.Display)

	other := scenario()
	other.TargetDiscountPct = 20
	third, err := svc.Quote(ctx, other)
	require.NoError(t, err)
	require.False(t, third.Cached)
	require.Len(t, mr.Keys(), 2)
}

func TestServiceQuoteSurvivesCacheOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	svc := quote.NewService(quote.ServiceConfig{
		Cache:  cache.New(client, "pricing:quote:", time.Minute),
		Logger: zerolog.Nop(),
	})
	q, err := svc.Quote(context.Background(), scenario())
	require.NoError(t, err)
	require.True(t, q.Result.IsExact)
}
