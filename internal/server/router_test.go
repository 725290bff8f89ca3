package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staggered-pricing/internal/config"
	"github.com/noah-isme/staggered-pricing/internal/pricing"
	"github.com/noah-isme/staggered-pricing/internal/server"
)

const quoteBody = `{"basePrice":1000,"totalSubjects":100,"initialFullPriceSubjects":20,"targetDiscountPct":10,"minPriceFloor":500,"numLevels":5,"engagementMonths":12}`

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:           "test",
		QuoteCacheTTL:    time.Minute,
		RateLimitWindow:  time.Minute,
		RateLimitMax:     2,
		BodyLimitBytes:   1 << 10,
		SecurityHeaders:  true,
		CurrencyPrefix:   "Rs.",
		CurrencyDecimals: 2,
		MetricsNamespace: "pricing",
		MetricsEnabled:   true,
		PricingDefaults: pricing.Config{
			BasePrice:                2500,
			TotalSubjects:            700,
			InitialFullPriceSubjects: 50,
			TargetDiscountPct:        50,
			MinPriceFloor:            750,
			NumLevels:                5,
			EngagementMonths:         12,
		},
	}
}

func post(h http.Handler, client, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", client)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterWithoutRedis(t *testing.T) {
	h := server.NewRouter(server.Deps{Config: testConfig(), Logger: zerolog.Nop(), Registry: prometheus.NewRegistry()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"redis":"disabled"`)

	rec = post(h, "a", quoteBody)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	require.Contains(t, rec.Body.String(), `"isExact":true`)

	require.Equal(t, http.StatusOK, post(h, "a", quoteBody).Code)
	require.Equal(t, http.StatusTooManyRequests, post(h, "a", quoteBody).Code)
	require.Equal(t, http.StatusOK, post(h, "b", quoteBody).Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/defaults", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"basePrice":2500`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "pricing_http_requests_total")
}

func TestRouterRejectsOversizedBody(t *testing.T) {
	h := server.NewRouter(server.Deps{Config: testConfig(), Logger: zerolog.Nop(), Registry: prometheus.NewRegistry()})
	rec := post(h, "big", `{"basePrice":`+strings.Repeat("1", 2<<10)+`}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouterWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := server.NewRouter(server.Deps{Config: testConfig(), Logger: zerolog.Nop(), Redis: client, Registry: prometheus.NewRegistry()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"redis":"ok"`)

	require.Equal(t, http.StatusOK, post(h, "a", quoteBody).Code)
	rec = post(h, "a", quoteBody)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"cached":true`)
	require.Equal(t, http.StatusTooManyRequests, post(h, "a", quoteBody).Code)

	mr.Close()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterRejectsOversizedLevelCount(t *testing.T) {
	h := server.NewRouter(server.Deps{Config: testConfig(), Logger: zerolog.Nop(), Registry: prometheus.NewRegistry()})

	for _, levels := range []string{"1001", "1099511627776", "4611686018427387904"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/quote?numLevels="+levels, nil)
		req.Header.Set("X-Client-ID", "levels-"+levels)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, levels)
		require.Contains(t, rec.Body.String(), `"field":"numLevels"`)
		require.Contains(t, rec.Body.String(), `"constraint":"must be \u003c= 1000"`)
	}

	rec := post(h, "levels-post", strings.Replace(quoteBody, `"numLevels":5`, `"numLevels":1099511627776`, 1))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), `"field":"numLevels"`)
}
