package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/zephyrtronium/implicit/internal/config"
	"github.com/zephyrtronium/implicit/internal/logging"
	"github.com/zephyrtronium/implicit/plot"
)

// app is the state shared by all commands.
type app struct {
	cfgPath string
	verbose bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := new(app)
	root := &cobra.Command{
		Use:   "implicit",
		Short: "Plot implicit curves F(x, y, t) = 0",
		Long: `implicit parses relations among x, y, and a parameter t, and draws the
curves where they hold. Equations may be written as F(x, y, t), meaning
F(x, y, t) = 0, or as left = right.

Run "implicit guide" for the syntax and examples.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			level, dev := cfg.Logging.Level, cfg.Logging.Development
			if a.verbose {
				level, dev = "debug", true
			}
			a.log, err = logging.New(level, dev)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "implicit.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(
		a.validateCmd(),
		a.plotCmd(),
		a.animateCmd(),
		a.serveCmd(),
		a.guideCmd(),
		a.configCmd(),
	)
	return root
}

// gridFlags are the flags that choose a sampling grid. Unset flags take their
// values from the configuration.
type gridFlags struct {
	d          plot.Domain
	resolution int
}

func (g *gridFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	fs.Float64Var(&g.d.XMin, "x-min", def.Domain.XMin, "least x")
	fs.Float64Var(&g.d.XMax, "x-max", def.Domain.XMax, "greatest x")
	fs.Float64Var(&g.d.YMin, "y-min", def.Domain.YMin, "least y")
	fs.Float64Var(&g.d.YMax, "y-max", def.Domain.YMax, "greatest y")
	fs.IntVarP(&g.resolution, "resolution", "r", def.Resolution, fmt.Sprintf("grid columns, one of %v", def.Resolutions))
}

func (g *gridFlags) grid(fs *pflag.FlagSet, cfg *config.Config) (*plot.Grid, error) {
	d := cfg.Domain
	pick(fs, "x-min", &d.XMin, g.d.XMin)
	pick(fs, "x-max", &d.XMax, g.d.XMax)
	pick(fs, "y-min", &d.YMin, g.d.YMin)
	pick(fs, "y-max", &d.YMax, g.d.YMax)
	res := cfg.Resolution
	pick(fs, "resolution", &res, g.resolution)
	if !cfg.AllowedResolution(res) {
		return nil, &plot.DomainError{Field: "resolution", Msg: fmt.Sprintf("must be one of %v", cfg.Resolutions)}
	}
	return plot.NewGrid(d, res)
}

// pick sets *dst to v if the named flag was given.
func pick[T any](fs *pflag.FlagSet, name string, dst *T, v T) {
	if fs.Changed(name) {
		*dst = v
	}
}
