package pricing

import "math"

// MaxLevels is the largest NumLevels a Config may carry. Keep it in sync
// with the validate tag on Config.NumLevels.
const MaxLevels = 1000

// exactTolerance bounds the relative slack used when deciding whether the
// required tiered average sits on or above the floor.
const exactTolerance = 1e-12

// Config describes a single staggered pricing calculation. A Config is never
// mutated by the solver; callers build a new one for every change.
type Config struct {
	BasePrice                float64 `json:"basePrice" yaml:"basePrice" validate:"gt=0"`
	TotalSubjects            int     `json:"totalSubjects" yaml:"totalSubjects" validate:"min=1"`
	InitialFullPriceSubjects int     `json:"initialFullPriceSubjects" yaml:"initialFullPriceSubjects" validate:"min=0,ltefield=TotalSubjects"`
	TargetDiscountPct        float64 `json:"targetDiscountPct" yaml:"targetDiscountPct" validate:"min=0,lt=100"`
	MinPriceFloor            float64 `json:"minPriceFloor" yaml:"minPriceFloor" validate:"min=0,ltefield=BasePrice"`
	NumLevels                int     `json:"numLevels" yaml:"numLevels" validate:"min=1,max=1000"`
	EngagementMonths         int     `json:"engagementMonths" yaml:"engagementMonths" validate:"min=1"`
}

// DefaultConfig is the configuration used when a caller supplies none.
func DefaultConfig() Config {
	return Config{
		BasePrice:                2500,
		TotalSubjects:            700,
		InitialFullPriceSubjects: 50,
		TargetDiscountPct:        50,
		MinPriceFloor:            750,
		NumLevels:                5,
		EngagementMonths:         12,
	}
}

// RemainingSubjects returns the number of subjects spread across the tiers.
func (c Config) RemainingSubjects() int {
	return c.TotalSubjects - c.InitialFullPriceSubjects
}

// TargetAveragePrice is the blended price every subject should pay on average.
func (c Config) TargetAveragePrice() float64 {
	return c.BasePrice * (1 - c.TargetDiscountPct/100)
}

// Tier is one staggered pricing level.
type Tier struct {
	Level    int     `json:"level" yaml:"level"`
	Price    float64 `json:"price" yaml:"price"`
	Subjects int     `json:"subjects" yaml:"subjects"`
	Revenue  float64 `json:"revenue" yaml:"revenue"`
	Clamped  bool    `json:"clamped" yaml:"clamped"`
}

// Result aggregates the solved tiers and the revenue breakdown.
type Result struct {
	Tiers                 []Tier  `json:"tiers" yaml:"tiers"`
	AchievedDiscountPct   float64 `json:"achievedDiscountPct" yaml:"achievedDiscountPct"`
	IsExact               bool    `json:"isExact" yaml:"isExact"`
	TotalRevenue          float64 `json:"totalRevenue" yaml:"totalRevenue"`
	FullPriceRevenue      float64 `json:"fullPriceRevenue" yaml:"fullPriceRevenue"`
	TieredRevenue         float64 `json:"tieredRevenue" yaml:"tieredRevenue"`
	RequiredTotalRevenue  float64 `json:"requiredTotalRevenue" yaml:"requiredTotalRevenue"`
	RequiredTieredRevenue float64 `json:"requiredTieredRevenue" yaml:"requiredTieredRevenue"`
	TargetAveragePrice    float64 `json:"targetAveragePrice" yaml:"targetAveragePrice"`
	EffectiveAveragePrice float64 `json:"effectiveAveragePrice" yaml:"effectiveAveragePrice"`
	ClampedLevels         int     `json:"clampedLevels" yaml:"clampedLevels"`
	Passes                int     `json:"passes" yaml:"passes"`
}

// Solve derives the tier prices for cfg. Invalid input yields a
// *ConfigurationError; an unreachable target is reported through
// Result.IsExact rather than as an error.
func Solve(cfg Config) (Result, error) {
	if err := Validate(cfg); err != nil {
		return Result{}, err
	}

	base := cfg.BasePrice
	remaining := cfg.RemainingSubjects()
	res := Result{
		FullPriceRevenue:     float64(cfg.InitialFullPriceSubjects) * base,
		RequiredTotalRevenue: base * (1 - cfg.TargetDiscountPct/100) * float64(cfg.TotalSubjects),
		TargetAveragePrice:   cfg.TargetAveragePrice(),
		Tiers:                []Tier{},
	}
	res.RequiredTieredRevenue = res.RequiredTotalRevenue - res.FullPriceRevenue

	if remaining == 0 {
		res.TotalRevenue = res.FullPriceRevenue
		res.EffectiveAveragePrice = base
		res.AchievedDiscountPct = 0
		res.IsExact = cfg.TargetDiscountPct == 0
		return res, nil
	}

	counts := SplitSubjects(remaining, cfg.NumLevels)

	// Computed as a share of base so a zero discount yields base exactly.
	share := ((1-cfg.TargetDiscountPct/100)*float64(cfg.TotalSubjects) - float64(cfg.InitialFullPriceSubjects)) / float64(remaining)
	avg := math.Min(base*share, base)

	floor := cfg.MinPriceFloor
	var prices []float64
	var clamped []bool
	if avg < floor-exactTolerance*base {
		prices, clamped = flat(floor, len(counts)), fill(len(counts), true)
		res.Passes = 1
	} else {
		prices, clamped, res.Passes = clampAndRedistribute(base, floor, avg*float64(remaining), counts)
		res.IsExact = true
	}

	res.Tiers = make([]Tier, len(counts))
	for i, n := range counts {
		p := prices[i]
		res.Tiers[i] = Tier{
			Level:    i + 1,
			Price:    p,
			Subjects: n,
			Revenue:  p * float64(n),
			Clamped:  clamped[i],
		}
		res.TieredRevenue += res.Tiers[i].Revenue
		if clamped[i] {
			res.ClampedLevels++
		}
	}

	res.TotalRevenue = res.FullPriceRevenue + res.TieredRevenue
	res.EffectiveAveragePrice = res.TotalRevenue / float64(cfg.TotalSubjects)
	res.AchievedDiscountPct = 100 * (1 - res.TotalRevenue/(base*float64(cfg.TotalSubjects)))
	return res, nil
}

// SplitSubjects spreads subjects across levels as evenly as possible. The
// first subjects%levels levels receive one extra subject.
func SplitSubjects(subjects, levels int) []int {
	if levels <= 0 {
		return nil
	}
	if subjects < 0 {
		subjects = 0
	}
	size, extra := subjects/levels, subjects%levels
	out := make([]int, levels)
	for i := range out {
		out[i] = size
		if i < extra {
			out[i]++
		}
	}
	return out
}

func flat(price float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func fill(n int, v bool) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}
