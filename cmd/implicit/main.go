// Command implicit validates, plots, and animates implicit curves
// F(x, y, t) = 0 in the terminal, or serves the same over HTTP.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
