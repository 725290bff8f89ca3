// Package report turns a solved pricing schedule into the table and summary
// shown by the API, the CLI and the dashboard.
package report

import "github.com/noah-isme/staggered-pricing/internal/pricing"

// Row is one tier line of the pricing table including running totals that
// start from the full-price cohort.
type Row struct {
	Level                 int     `json:"level" yaml:"level"`
	Price                 float64 `json:"price" yaml:"price"`
	Subjects              int     `json:"subjects" yaml:"subjects"`
	Revenue               float64 `json:"revenue" yaml:"revenue"`
	CumulativeSubjects    int     `json:"cumulativeSubjects" yaml:"cumulativeSubjects"`
	CumulativeRevenue     float64 `json:"cumulativeRevenue" yaml:"cumulativeRevenue"`
	EffectiveAveragePrice float64 `json:"effectiveAveragePrice" yaml:"effectiveAveragePrice"`
	EffectiveDiscountPct  float64 `json:"effectiveDiscountPct" yaml:"effectiveDiscountPct"`
	Clamped               bool    `json:"clamped" yaml:"clamped"`
}

// Cohort describes the subjects that pay the undiscounted price.
type Cohort struct {
	Subjects int     `json:"subjects" yaml:"subjects"`
	Price    float64 `json:"price" yaml:"price"`
	Revenue  float64 `json:"revenue" yaml:"revenue"`
}

// Summary holds the headline metrics of a run.
type Summary struct {
	TotalRevenue          float64 `json:"totalRevenue" yaml:"totalRevenue"`
	EffectiveAveragePrice float64 `json:"effectiveAveragePrice" yaml:"effectiveAveragePrice"`
	TargetAveragePrice    float64 `json:"targetAveragePrice" yaml:"targetAveragePrice"`
	TargetDiscountPct     float64 `json:"targetDiscountPct" yaml:"targetDiscountPct"`
	AchievedDiscountPct   float64 `json:"achievedDiscountPct" yaml:"achievedDiscountPct"`
	IsExact               bool    `json:"isExact" yaml:"isExact"`
	EngagementMonths      int     `json:"engagementMonths" yaml:"engagementMonths"`
	MonthlyRevenue        float64 `json:"monthlyRevenue" yaml:"monthlyRevenue"`
	ProjectedRevenue      float64 `json:"projectedRevenue" yaml:"projectedRevenue"`
}

// Report is the display model of a pricing run.
type Report struct {
	Initial Cohort  `json:"initial" yaml:"initial"`
	Rows    []Row   `json:"rows" yaml:"rows"`
	Summary Summary `json:"summary" yaml:"summary"`
}

// Build derives the table rows and summary for res, which must have been
// solved from cfg.
func Build(cfg pricing.Config, res pricing.Result) Report {
	rep := Report{
		Initial: Cohort{
			Subjects: cfg.InitialFullPriceSubjects,
			Price:    cfg.BasePrice,
			Revenue:  res.FullPriceRevenue,
		},
		Rows: make([]Row, 0, len(res.Tiers)),
	}

	subjects := cfg.InitialFullPriceSubjects
	revenue := res.FullPriceRevenue
	effective := cfg.BasePrice
	for _, t := range res.Tiers {
		subjects += t.Subjects
		revenue += t.Revenue
		if subjects > 0 {
			effective = revenue / float64(subjects)
		}
		rep.Rows = append(rep.Rows, Row{
			Level:                 t.Level,
			Price:                 t.Price,
			Subjects:              t.Subjects,
			Revenue:               t.Revenue,
			CumulativeSubjects:    subjects,
			CumulativeRevenue:     revenue,
			EffectiveAveragePrice: effective,
			EffectiveDiscountPct:  discountPct(cfg.BasePrice, effective),
			Clamped:               t.Clamped,
		})
	}

	months := cfg.EngagementMonths
	monthly := 0.0
	if months > 0 {
		monthly = res.TotalRevenue / float64(months)
	}
	rep.Summary = Summary{
		TotalRevenue:          res.TotalRevenue,
		EffectiveAveragePrice: effective,
		TargetAveragePrice:    res.TargetAveragePrice,
		TargetDiscountPct:     cfg.TargetDiscountPct,
		AchievedDiscountPct:   res.AchievedDiscountPct,
		IsExact:               res.IsExact,
		EngagementMonths:      months,
		MonthlyRevenue:        monthly,
		ProjectedRevenue:      res.TotalRevenue,
	}
	return rep
}

func discountPct(base, price float64) float64 {
	if base <= 0 {
		return 0
	}
	return 100 * (1 - price/base)
}
