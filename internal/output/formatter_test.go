package output_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/staggered-pricing/internal/output"
	"github.com/noah-isme/staggered-pricing/internal/pricing"
	"github.com/noah-isme/staggered-pricing/internal/quote"
	"github.com/noah-isme/staggered-pricing/internal/report"
)

func solve(t *testing.T, floor float64) quote.Quote {
	t.Helper()
	svc := quote.NewService(quote.ServiceConfig{Logger: zerolog.Nop()})
	q, err := svc.Quote(context.Background(), pricing.Config{
		BasePrice:                1000,
		TotalSubjects:            100,
		InitialFullPriceSubjects: 20,
		TargetDiscountPct:        10,
		MinPriceFloor:            floor,
		NumLevels:                5,
		EngagementMonths:         12,
	})
	require.NoError(t, err)
	return q
}

func TestTableQuote(t *testing.T) {
	out := output.NewFormatter("table", report.DefaultMoney()).Format(solve(t, 500))
	require.Contains(t, out, "Initial full-price cohort: 20 subjects at Rs.1,000.00 = Rs.20,000.00")
	require.Contains(t, out, "Rs.937.50")
	require.Contains(t, out, "Total revenue:")
	require.Contains(t, out, "Rs.90,000.00")
	require.Contains(t, out, "Monthly revenue (12 months):")
	require.NotContains(t, out, "NOT EXACT")
	for _, r := range out {
		require.Less(t, r, rune(128), "table output must stay ASCII")
	}
}

func TestTableQuoteWarnsWhenInfeasible(t *testing.T) {
	q := solve(t, 950)
	out := output.NewFormatter("", report.DefaultMoney()).Format(&q)
	require.Contains(t, out, "NOT EXACT: target discount 10.00% is unreachable, achieved 4.00%")
	require.Equal(t, 5, strings.Count(out, "floor"))
}

func TestJSONAndYAML(t *testing.T) {
	q := solve(t, 500)

	var decoded quote.Quote
	require.NoError(t, json.Unmarshal([]byte(output.NewFormatter("json", report.Money{}).Format(q)), &decoded))
	require.Equal(t, q.Result.Tiers, decoded.Result.Tiers)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(output.NewFormatter("YAML", report.Money{}).Format(q)), &doc))
	require.Contains(t, doc, "report")
}

func TestValidFormat(t *testing.T) {
	require.True(t, output.ValidFormat("json"))
	require.True(t, output.ValidFormat(""))
	require.False(t, output.ValidFormat("xml"))
}

func TestTableFallbackStruct(t *testing.T) {
	out := output.NewFormatter("table", report.Money{}).Format(struct{ Version string }{"1.0.0"})
	require.Contains(t, out, "Version:")
	require.Contains(t, out, "1.0.0")
}
