package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zephyrtronium/implicit/internal/render"
)

func (a *app) guideCmd() *cobra.Command {
	var (
		style string
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Show equation syntax and examples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if raw {
				_, err := fmt.Fprint(out, render.GuideMarkdown())
				return err
			}
			width := a.cfg.Render.Width
			f, ok := out.(*os.File)
			switch {
			case ok && term.IsTerminal(int(f.Fd())):
				if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
					width = w
				}
			case !cmd.Flags().Changed("style"):
				style = "notty"
			}
			s, err := render.Guide(style, width)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, s)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", `glamour style: "auto", "dark", "light", "notty", ...`)
	cmd.Flags().BoolVar(&raw, "markdown", false, "print the guide as Markdown source")
	return cmd
}
