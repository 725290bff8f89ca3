// Package cli implements the pricingctl command tree.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/staggered-pricing/internal/client"
	"github.com/noah-isme/staggered-pricing/internal/obs"
	"github.com/noah-isme/staggered-pricing/internal/output"
	"github.com/noah-isme/staggered-pricing/internal/pricing"
	"github.com/noah-isme/staggered-pricing/internal/quote"
	"github.com/noah-isme/staggered-pricing/internal/report"
)

// version is set at build time via -ldflags "-X github.com/noah-isme/staggered-pricing/internal/cli.version=x.y.z"
var version = "0.1.0"

// options holds the persistent flags and the collaborators commands share.
type options struct {
	cfgFile      string
	outputFormat string
	serverURL    string
	timeout      time.Duration
	currency     string
	decimals     int32
	logLevel     string

	// quoter overrides the local/remote choice; tests inject it.
	quoter quote.Quoter
}

// Option customises the command tree.
type Option func(*options)

// WithQuoter makes every command quote through q.
func WithQuoter(q quote.Quoter) Option {
	return func(o *options) { o.quoter = q }
}

// NewRootCmd builds the pricingctl command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	root := &cobra.Command{
		Use:   "pricingctl",
		Short: "Solve staggered pricing schedules",
		Long: `pricingctl derives a descending ladder of tier prices that hits a target
average discount while respecting a minimum price floor. Quotes are solved
locally unless --server points at a pricing API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !output.ValidFormat(o.outputFormat) {
				return fmt.Errorf("unsupported output format %q", o.outputFormat)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "YAML file with a pricing configuration")
	flags.StringVarP(&o.outputFormat, "output", "o", "table", "output format: table, json, yaml")
	flags.StringVar(&o.serverURL, "server", "", "pricing API URL; solve locally when empty")
	flags.DurationVar(&o.timeout, "timeout", 10*time.Second, "timeout for API requests")
	flags.StringVar(&o.currency, "currency", report.DefaultPrefix, "currency prefix for table output")
	flags.Int32Var(&o.decimals, "decimals", 2, "decimals shown for money amounts")
	flags.StringVar(&o.logLevel, "log-level", "warn", "log level for local solves, written to stderr")

	root.AddCommand(newSolveCmd(o), newDashboardCmd(o), newVersionCmd(o))
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *options) money() report.Money {
	return report.Money{Prefix: o.currency, Decimals: o.decimals}
}

func (o *options) formatter() output.Formatter {
	return output.NewFormatter(o.outputFormat, o.money())
}

func (o *options) quoterFor(cmd *cobra.Command) quote.Quoter {
	if o.quoter != nil {
		return o.quoter
	}
	if o.serverURL != "" {
		return client.New(o.serverURL, o.timeout)
	}
	logger := obs.NewLoggerTo(cmd.ErrOrStderr(), "console", o.logLevel)
	return quote.NewService(quote.ServiceConfig{Logger: logger, Money: o.money()})
}

// baseConfig returns the configuration flags are applied on top of: the
// --config file when given, the built-in defaults otherwise.
func (o *options) baseConfig() (pricing.Config, error) {
	cfg := pricing.DefaultConfig()
	if o.cfgFile == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(o.cfgFile)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", o.cfgFile, err)
	}
	return cfg, nil
}
