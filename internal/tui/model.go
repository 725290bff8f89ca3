// Package tui provides the interactive pricing dashboard. Every key press
// builds a new config and asks the quoter for a fresh quote.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/staggered-pricing/internal/pricing"
	"github.com/noah-isme/staggered-pricing/internal/quote"
	"github.com/noah-isme/staggered-pricing/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			PaddingRight(2)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingRight(2)

	clampedRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			PaddingRight(2)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const solveTimeout = 5 * time.Second

type quoteMsg struct {
	seq   int
	quote quote.Quote
}

type errMsg struct {
	seq int
	err error
}

// Model is the bubbletea model for the pricing dashboard.
type Model struct {
	quoter  quote.Quoter
	money   report.Money
	initial pricing.Config
	cfg     pricing.Config
	quote   *quote.Quote
	err     error
	seq     int
	loading bool
	width   int
}

// New returns a Model starting from cfg.
func New(cfg pricing.Config, quoter quote.Quoter, money report.Money) Model {
	return Model{quoter: quoter, money: money, initial: cfg, cfg: cfg, loading: true}
}

// Config returns the configuration currently displayed.
func (m Model) Config() pricing.Config { return m.cfg }

// Quote returns the latest quote, nil before the first solve completes.
func (m Model) Quote() *quote.Quote { return m.quote }

// Err returns the last solve or input error.
func (m Model) Err() error { return m.err }

// Init issues the first solve.
func (m Model) Init() tea.Cmd {
	return m.solve()
}

func (m Model) solve() tea.Cmd {
	cfg, seq, quoter := m.cfg, m.seq, m.quoter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), solveTimeout)
		defer cancel()
		q, err := quoter.Quote(ctx, cfg)
		if err != nil {
			return errMsg{seq: seq, err: err}
		}
		return quoteMsg{seq: seq, quote: q}
	}
}

// Update processes messages and returns an updated model plus any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		next, ok := adjust(m.cfg, m.initial, msg.String())
		if !ok {
			return m, nil
		}
		if err := pricing.Validate(next); err != nil {
			m.err = err
			return m, nil
		}
		m.cfg = next
		m.seq++
		m.err = nil
		m.loading = true
		return m, m.solve()

	case quoteMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		q := msg.quote
		m.quote = &q
		m.loading = false
		m.err = nil
		return m, nil

	case errMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

// adjust derives the config a key press asks for. It reports false for keys
// that do not change the config.
func adjust(cfg, initial pricing.Config, key string) (pricing.Config, bool) {
	floorStep := cfg.BasePrice / 100
	switch key {
	case "up", "k":
		cfg.TargetDiscountPct++
	case "down", "j":
		cfg.TargetDiscountPct--
	case "right", "l", "+":
		cfg.NumLevels++
	case "left", "h", "-":
		cfg.NumLevels--
	case "f":
		cfg.MinPriceFloor += floorStep
	case "F":
		cfg.MinPriceFloor -= floorStep
	case "c":
		cfg.InitialFullPriceSubjects++
	case "C":
		cfg.InitialFullPriceSubjects--
	case "r":
		return initial, true
	default:
		return cfg, false
	}
	return cfg, true
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Staggered Pricing"))
	b.WriteString("\n\n")

	c := m.cfg
	fmt.Fprintf(&b, "%s %s   %s %d (%d at full price)   %s %d\n",
		labelStyle.Render("Base price:"), m.money.Format(c.BasePrice),
		labelStyle.Render("Subjects:"), c.TotalSubjects, c.InitialFullPriceSubjects,
		labelStyle.Render("Months:"), c.EngagementMonths)
	fmt.Fprintf(&b, "%s %s   %s %d   %s %s\n\n",
		labelStyle.Render("Target discount:"), report.Percent(c.TargetDiscountPct, 2),
		labelStyle.Render("Levels:"), c.NumLevels,
		labelStyle.Render("Floor:"), m.money.Format(c.MinPriceFloor))

	if m.quote != nil {
		b.WriteString(m.renderTable(m.quote.Report))
		s := m.quote.Report.Summary
		fmt.Fprintf(&b, "\n%s %s   %s %s   %s %s\n",
			labelStyle.Render("Revenue:"), m.money.Format(s.TotalRevenue),
			labelStyle.Render("Avg price:"), m.money.Format(s.EffectiveAveragePrice),
			labelStyle.Render("Achieved:"), report.Percent(s.AchievedDiscountPct, 2))
		if !s.IsExact {
			b.WriteString(warningStyle.Render("NOT EXACT: the floor keeps the target discount out of reach"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(warningStyle.Render("Error: " + m.err.Error()))
	case m.loading:
		b.WriteString(statusBarStyle.Render("Solving..."))
	}
	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render("up/down discount  left/right levels  f/F floor  c/C full-price cohort  r reset  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTable(rep report.Report) string {
	if len(rep.Rows) == 0 {
		return statusBarStyle.Render("No discounted levels.") + "\n"
	}
	headers := []string{"LEVEL", "PRICE", "SUBJECTS", "REVENUE", "CUM REVENUE", "EFF AVG", "EFF DISC"}
	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Level),
			m.money.Format(r.Price),
			fmt.Sprintf("%d", r.Subjects),
			m.money.Format(r.Revenue),
			m.money.Format(r.CumulativeRevenue),
			m.money.Format(r.EffectiveAveragePrice),
			report.Percent(r.EffectiveDiscountPct, 2),
		})
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(headerCellStyle.Render(fmt.Sprintf("%-*s", widths[i], h)))
	}
	b.WriteString("\n")
	for k, row := range rows {
		style := rowStyle
		if rep.Rows[k].Clamped {
			style = clampedRowStyle
		}
		for i, cell := range row {
			b.WriteString(style.Render(fmt.Sprintf("%*s", widths[i], cell)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
