package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/implicit/internal/config"
	"github.com/zephyrtronium/implicit/internal/render"
	"github.com/zephyrtronium/implicit/internal/session"
	"github.com/zephyrtronium/implicit/plot"
)

func (a *app) animateCmd() *cobra.Command {
	var (
		gf        gridFlags
		r         plot.ParameterRange
		delayMS   int
		noContext bool
	)
	cmd := &cobra.Command{
		Use:   "animate EQUATION",
		Short: "Sweep t across a range and draw each frame",
		Long: `animate draws the curve at each step of t from --t-min to --t-max. Frames
that cannot be evaluated are reported and skipped. Interrupt to stop early.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			g, err := gf.grid(fs, a.cfg)
			if err != nil {
				return err
			}
			pr := a.cfg.Parameter
			pick(fs, "t-min", &pr.Min, r.Min)
			pick(fs, "t-max", &pr.Max, r.Max)
			pick(fs, "t-step", &pr.Step, r.Step)
			delay := a.cfg.Animation.DelayMS
			pick(fs, "delay", &delay, delayMS)
			return a.sweep(cmd, args[0], g, pr, delay, noContext)
		},
	}
	def := config.Default()
	gf.register(cmd.Flags())
	cmd.Flags().Float64Var(&r.Min, "t-min", def.Parameter.Min, "first value of t")
	cmd.Flags().Float64Var(&r.Max, "t-max", def.Parameter.Max, "last value of t")
	cmd.Flags().Float64Var(&r.Step, "t-step", def.Parameter.Step, "step between values of t")
	cmd.Flags().IntVar(&delayMS, "delay", def.Animation.DelayMS, fmt.Sprintf("pause between frames in ms, %d to %d", config.MinDelayMS, config.MaxDelayMS))
	cmd.Flags().BoolVar(&noContext, "no-context", false, "omit context contours")
	return cmd
}

// sweep draws eq at each value of pr in turn, pausing delay milliseconds
// between frames.
func (a *app) sweep(cmd *cobra.Command, eq string, g *plot.Grid, pr plot.ParameterRange, delay int, noContext bool) error {
	if delay < config.MinDelayMS || delay > config.MaxDelayMS {
		return fmt.Errorf("delay %dms outside [%d, %d]", delay, config.MinDelayMS, config.MaxDelayMS)
	}
	s := session.New(a.log)
	if _, err := s.Validate(eq); err != nil {
		return err
	}
	prog, err := s.Program()
	if err != nil {
		return err
	}
	var levels []float64
	if !noContext {
		levels = a.cfg.Levels.Animation
	}

	ctx, stop := signal.NotifyContext(background(cmd.Context()), os.Interrupt)
	defer stop()
	out := cmd.OutOrStdout()
	c := newCanvas(out, a.cfg, g.Domain)
	c.Context = !noContext
	var wipe func()
	if f, ok := out.(*os.File); ok && c.Profile != termenv.Ascii {
		o := termenv.NewOutput(f)
		wipe = func() { o.ClearScreen() }
	}
	opts := plot.AnimateOptions{Delay: time.Duration(delay) * time.Millisecond, Levels: levels}
	var shown, failed int
	err = plot.Animate(prog, g, pr, opts, func(f *plot.Frame) bool {
		if ctx.Err() != nil {
			return false
		}
		if f.Err != nil {
			failed++
			a.log.Debug("frame failed", zap.Int("index", f.Index), zap.Float64("t", f.T), zap.Error(f.Err))
			fmt.Fprintf(out, "t = %.2f: %v\n", f.T, f.Err)
			return true
		}
		shown++
		if wipe != nil {
			wipe()
		}
		fmt.Fprint(out, c.Draw(f.Plot))
		fmt.Fprintln(out, render.Status(f.Plot, c.Profile))
		return ctx.Err() == nil
	})
	if err != nil {
		return err
	}
	a.log.Info("sweep finished",
		zap.Int("shown", shown),
		zap.Int("failed", failed),
		zap.Bool("interrupted", ctx.Err() != nil),
	)
	if shown == 0 && failed > 0 {
		return fmt.Errorf("no frame of %d could be evaluated", failed)
	}
	return nil
}

// background returns ctx, or a background context if ctx is nil.
func background(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
