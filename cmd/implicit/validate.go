package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/implicit"
)

func (a *app) validateCmd() *cobra.Command {
	var (
		inname string
		latex  bool
	)
	cmd := &cobra.Command{
		Use:   "validate [EQUATION...]",
		Short: "Check equations and print how they are understood",
		Long: `validate parses each equation and prints the relation F(x, y, t) = 0 it
describes. With no arguments, equations are read one per line from --in or
standard input. Blank lines are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eqs := args
			if len(args) == 0 || inname != "" {
				lines, err := readLines(cmd, inname)
				if err != nil {
					return err
				}
				eqs = append(eqs, lines...)
			}
			out := cmd.OutOrStdout()
			bad := 0
			for _, eq := range eqs {
				ex, err := implicit.ParseEquation(eq)
				if err != nil {
					bad++
					a.log.Debug("invalid equation", zap.String("equation", eq), zap.Error(err))
					fmt.Fprintf(out, "%s\n\t%v\n", eq, err)
					continue
				}
				text := ex.String()
				if latex {
					text = ex.LaTeX()
				}
				fmt.Fprintf(out, "%s\n\tF(x, y, t) = %s = 0\n", eq, text)
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d equations invalid", bad, len(eqs))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inname, "in", "", `input file, "-" for stdin (default stdin if no args given)`)
	cmd.Flags().BoolVar(&latex, "latex", false, "print LaTeX instead of bracketed text")
	return cmd
}

// readLines reads non-blank lines from the named file, or from the command's
// input for "" or "-".
func readLines(cmd *cobra.Command, inname string) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if inname != "" && inname != "-" {
		f, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			lines = append(lines, s)
		}
	}
	return lines, sc.Err()
}
