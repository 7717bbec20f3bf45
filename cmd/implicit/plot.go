package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/implicit/internal/config"
	"github.com/zephyrtronium/implicit/internal/render"
	"github.com/zephyrtronium/implicit/internal/session"
	"github.com/zephyrtronium/implicit/plot"
)

func (a *app) plotCmd() *cobra.Command {
	var (
		gf        gridFlags
		t         float64
		exportDir string
		noContext bool
		animate   bool
	)
	cmd := &cobra.Command{
		Use:   "plot EQUATION",
		Short: "Draw the curve of an equation at one value of t",
		Long: `plot draws the curve of an equation at one value of t, which must lie in
the configured parameter range. With --animate, or animation.enabled in the
configuration, it sweeps the whole range instead, as the animate command does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			g, err := gf.grid(fs, a.cfg)
			if err != nil {
				return err
			}
			anim := a.cfg.Animation.Enabled
			pick(fs, "animate", &anim, animate)
			if anim {
				if fs.Changed("t") || exportDir != "" {
					return errors.New("--t and --export apply only to static plots")
				}
				return a.sweep(cmd, args[0], g, a.cfg.Parameter, a.cfg.Animation.DelayMS, noContext)
			}
			r := a.cfg.Parameter
			if !fs.Changed("t") {
				t = r.Initial()
			}
			if !r.Contains(t) {
				return &plot.DomainError{Field: "t", Msg: fmt.Sprintf("must be within [%g, %g]", r.Min, r.Max)}
			}
			s := session.New(a.log)
			if _, err := s.Validate(args[0]); err != nil {
				return err
			}
			var levels []float64
			if !noContext {
				levels = a.cfg.Levels.Static
			}
			p, err := s.Plot(g.Domain, g.Cols, t, levels)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			c := newCanvas(out, a.cfg, g.Domain)
			c.Context = !noContext
			fmt.Fprint(out, c.Draw(p))
			fmt.Fprintln(out, render.Status(p, c.Profile))
			if p.NoCurve() {
				fmt.Fprintln(out, plot.NoCurveHint)
			}
			if exportDir != "" {
				name, err := export(s, exportDir)
				if err != nil {
					return err
				}
				a.log.Info("exported curve", zap.String("file", name))
				fmt.Fprintln(out, "wrote", name)
			}
			return nil
		},
	}
	gf.register(cmd.Flags())
	cmd.Flags().Float64VarP(&t, "t", "t", 0, "parameter value (default midpoint of the configured range)")
	cmd.Flags().StringVar(&exportDir, "export", "", "write the curve as CSV into this directory")
	cmd.Flags().BoolVar(&noContext, "no-context", false, "omit context contours")
	cmd.Flags().BoolVar(&animate, "animate", false, "sweep the configured range of t (default from configuration)")
	return cmd
}

// newCanvas sizes a canvas for w. Terminals get their own size and colour
// support; anything else gets the configured size in plain text.
func newCanvas(w io.Writer, cfg *config.Config, d plot.Domain) *render.Canvas {
	mw, mh := cfg.Render.Width, cfg.Render.Height
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok {
		mw, mh = render.Size(f, mw, mh)
		profile = render.Profile(f, cfg.Render.Color)
	}
	cw, ch := render.Fit(d, mw, mh)
	return render.NewCanvas(cw, ch, profile)
}

// export writes the session's last curve into dir and returns the file path.
func export(s *session.Session, dir string) (string, error) {
	var b bytes.Buffer
	name, err := s.Export(&b)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
