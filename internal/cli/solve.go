package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noah-isme/staggered-pricing/internal/pricing"
)

// configFlags binds one flag per pricing config field.
type configFlags struct {
	basePrice float64
	total     int
	fullPrice int
	discount  float64
	floor     float64
	levels    int
	months    int
}

func (f *configFlags) register(fs *pflag.FlagSet) {
	d := pricing.DefaultConfig()
	fs.Float64Var(&f.basePrice, "base-price", d.BasePrice, "undiscounted price per subject")
	fs.IntVar(&f.total, "total-subjects", d.TotalSubjects, "total number of subjects")
	fs.IntVar(&f.fullPrice, "full-price-subjects", d.InitialFullPriceSubjects, "subjects that pay the base price")
	fs.Float64Var(&f.discount, "discount", d.TargetDiscountPct, "target average discount in percent")
	fs.Float64Var(&f.floor, "floor", d.MinPriceFloor, "minimum tier price")
	fs.IntVar(&f.levels, "levels", d.NumLevels, "number of discounted levels")
	fs.IntVar(&f.months, "months", d.EngagementMonths, "engagement length in months")
}

// apply overrides the fields of cfg whose flags were set explicitly.
func (f *configFlags) apply(fs *pflag.FlagSet, cfg pricing.Config) pricing.Config {
	if fs.Changed("base-price") {
		cfg.BasePrice = f.basePrice
	}
	if fs.Changed("total-subjects") {
		cfg.TotalSubjects = f.total
	}
	if fs.Changed("full-price-subjects") {
		cfg.InitialFullPriceSubjects = f.fullPrice
	}
	if fs.Changed("discount") {
		cfg.TargetDiscountPct = f.discount
	}
	if fs.Changed("floor") {
		cfg.MinPriceFloor = f.floor
	}
	if fs.Changed("levels") {
		cfg.NumLevels = f.levels
	}
	if fs.Changed("months") {
		cfg.EngagementMonths = f.months
	}
	return cfg
}

func (o *options) resolveConfig(cmd *cobra.Command, f *configFlags) (pricing.Config, error) {
	cfg, err := o.baseConfig()
	if err != nil {
		return cfg, err
	}
	return f.apply(cmd.Flags(), cfg), nil
}

func newSolveCmd(o *options) *cobra.Command {
	flags := &configFlags{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a pricing schedule and print the tier table",
		Example: `  pricingctl solve --base-price 1000 --total-subjects 100 --full-price-subjects 20 \
    --discount 10 --floor 500 --levels 5
  pricingctl solve --config pricing.yaml -o json
  pricingctl solve --server http://localhost:8080 --discount 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			q, err := o.quoterFor(cmd).Quote(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), o.formatter().Format(q))
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
