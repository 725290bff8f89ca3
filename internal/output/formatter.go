// Package output renders command results as tables, JSON or YAML.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/staggered-pricing/internal/quote"
	"github.com/noah-isme/staggered-pricing/internal/report"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	Format(data any) string
}

// NewFormatter returns a Formatter for the given format string.
// Supported formats: "table" (default), "json", "yaml". Tables print money
// with m.
func NewFormatter(format string, m report.Money) Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return &JSONFormatter{}
	case "yaml", "yml":
		return &YAMLFormatter{}
	default:
		return &TableFormatter{Money: m}
	}
}

// ValidFormat reports whether format names a supported formatter.
func ValidFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table", "json", "yaml", "yml":
		return true
	}
	return false
}

var warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))

// TableFormatter formats data as aligned text tables using tabwriter.
type TableFormatter struct {
	Money report.Money
}

func (f *TableFormatter) Format(data any) string {
	switch v := data.(type) {
	case quote.Quote:
		return f.quote(v)
	case *quote.Quote:
		return f.quote(*v)
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			fmt.Fprintf(w, "%s:\t%v\n", t.Field(i).Name, v.Field(i).Interface())
		}
	} else {
		fmt.Fprintln(w, data)
	}
	w.Flush()
	return buf.String()
}

func (f *TableFormatter) quote(q quote.Quote) string {
	m := f.Money
	if m == (report.Money{}) {
		m = report.DefaultMoney()
	}
	rep := q.Report

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Initial full-price cohort: %d subjects at %s = %s\n\n",
		rep.Initial.Subjects, m.Format(rep.Initial.Price), m.Format(rep.Initial.Revenue))

	if len(rep.Rows) == 0 {
		buf.WriteString("No discounted levels: every subject pays the base price.\n")
	} else {
		w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "LEVEL\tPRICE\tSUBJECTS\tREVENUE\tCUM SUBJECTS\tCUM REVENUE\tEFF AVG PRICE\tEFF DISCOUNT\tCLAMPED\t")
		for _, r := range rep.Rows {
			clamped := "-"
			if r.Clamped {
				clamped = "floor"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
				r.Level, m.Format(r.Price), r.Subjects, m.Format(r.Revenue),
				r.CumulativeSubjects, m.Format(r.CumulativeRevenue),
				m.Format(r.EffectiveAveragePrice), report.Percent(r.EffectiveDiscountPct, 2), clamped)
		}
		w.Flush()
	}

	s := rep.Summary
	buf.WriteString("\n")
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total revenue:\t%s\n", m.Format(s.TotalRevenue))
	fmt.Fprintf(w, "Effective average price:\t%s\n", m.Format(s.EffectiveAveragePrice))
	fmt.Fprintf(w, "Target average price:\t%s\n", m.Format(s.TargetAveragePrice))
	fmt.Fprintf(w, "Target discount:\t%s\n", report.Percent(s.TargetDiscountPct, 2))
	fmt.Fprintf(w, "Achieved discount:\t%s\n", report.Percent(s.AchievedDiscountPct, 2))
	fmt.Fprintf(w, "Monthly revenue (%d months):\t%s\n", s.EngagementMonths, m.Format(s.MonthlyRevenue))
	fmt.Fprintf(w, "Projected revenue:\t%s\n", m.Format(s.ProjectedRevenue))
	w.Flush()

	if !s.IsExact {
		buf.WriteString("\n")
		buf.WriteString(warningStyle.Render(notExactWarning(s)))
		buf.WriteString("\n")
	}
	return buf.String()
}

// notExactWarning explains why a run missed its target discount.
func notExactWarning(s report.Summary) string {
	return fmt.Sprintf("NOT EXACT: target discount %s is unreachable, achieved %s",
		report.Percent(s.TargetDiscountPct, 2), report.Percent(s.AchievedDiscountPct, 2))
}

// JSONFormatter formats data as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("error formatting JSON: %v\n", err)
	}
	return string(b) + "\n"
}

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any) string {
	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error formatting YAML: %v\n", err)
	}
	return string(b)
}
