package render

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// reservedLines is the room left below the canvas for status output.
const reservedLines = 4

// Size returns the canvas size for output to f: the terminal size less room
// for status lines, or the fallback when f is not a terminal.
func Size(f *os.File, fallbackW, fallbackH int) (w, h int) {
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		if tw, th, err := term.GetSize(fd); err == nil && tw > 0 && th > reservedLines {
			return tw, th - reservedLines
		}
	}
	return fallbackW, fallbackH
}

// Profile chooses the colour profile for output to f from a setting of
// "always", "never", or "auto".
func Profile(f *os.File, color string) termenv.Profile {
	switch color {
	case "never":
		return termenv.Ascii
	case "always":
		if p := termenv.NewOutput(f).EnvColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	}
	if !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}
