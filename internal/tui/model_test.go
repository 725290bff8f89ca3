package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staggered-pricing/internal/pricing"
	"github.com/noah-isme/staggered-pricing/internal/quote"
	"github.com/noah-isme/staggered-pricing/internal/report"
)

func baseConfig() pricing.Config {
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

func newModel() Model {
	svc := quote.NewService(quote.ServiceConfig{Logger: zerolog.Nop()})
	return New(baseConfig(), svc, report.DefaultMoney())
}

// step applies msg and runs the returned command synchronously.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialSolve(t *testing.T) {
	m := newModel()
	next, _ := m.Update(m.Init()())
	m = next.(Model)
	require.NotNil(t, m.Quote())
	require.True(t, m.Quote().Result.IsExact)
	require.Contains(t, m.View(), "Rs.937.50")
}

func TestTableShowsEffectiveDiscount(t *testing.T) {
	m := newModel()
	next, _ := m.Update(m.Init()())
	m = next.(Model)

	view := m.View()
	require.Contains(t, view, "EFF DISC")
	for _, r := range m.Quote().Report.Rows {
		require.Contains(t, view, report.Percent(r.EffectiveDiscountPct, 2))
	}
	require.Contains(t, view, "10.00%")
}

func TestKeysResolveWithNewConfig(t *testing.T) {
	m := newModel()
	original := m.Config()

	m = step(t, m, tea.KeyMsg{Type: tea.KeyUp})
	require.Equal(t, 11.0, m.Config().TargetDiscountPct)
	require.Equal(t, 11.0, m.Quote().Config.TargetDiscountPct)
	require.Equal(t, 10.0, original.TargetDiscountPct)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 6, m.Config().NumLevels)
	require.Len(t, m.Quote().Result.Tiers, 6)

	m = step(t, m, runes("f"))
	require.Equal(t, 510.0, m.Config().MinPriceFloor)

	m = step(t, m, runes("r"))
	require.Equal(t, baseConfig(), m.Config())
}

func TestInfeasibleShowsWarning(t *testing.T) {
	m := newModel()
	for i := 0; i < 45; i++ {
		m = step(t, m, runes("f"))
	}
	require.Equal(t, 950.0, m.Config().MinPriceFloor)
	require.False(t, m.Quote().Result.IsExact)
	require.Contains(t, m.View(), "NOT EXACT")
}

func TestInvalidChangeIsRejected(t *testing.T) {
	m := newModel()
	for i := 0; i < 4; i++ {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	require.Equal(t, 1, m.Config().NumLevels)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, 1, m.Config().NumLevels)
	require.True(t, pricing.IsConfigurationError(m.Err()))
	require.Contains(t, m.View(), "numLevels")
}

func TestStaleResultsAreDropped(t *testing.T) {
	m := newModel()
	m.seq = 3
	next, _ := m.Update(errMsg{seq: 2, err: errors.New("late")})
	require.NoError(t, next.(Model).Err())
}

type failingQuoter struct{}

func (failingQuoter) Quote(context.Context, pricing.Config) (quote.Quote, error) {
	return quote.Quote{}, errors.New("server unreachable")
}

func TestQuoterErrorIsShown(t *testing.T) {
	m := New(baseConfig(), failingQuoter{}, report.DefaultMoney())
	next, _ := m.Update(m.Init()())
	m = next.(Model)
	require.EqualError(t, m.Err(), "server unreachable")
	require.Contains(t, m.View(), "server unreachable")
}

func TestQuitKey(t *testing.T) {
	_, cmd := newModel().Update(runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
