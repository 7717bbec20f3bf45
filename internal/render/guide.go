package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Example is a sample relation for the guide.
type Example struct {
	Name     string
	Equation string
}

// Examples are relations that show off the parameter t over the default
// domain and sweep.
var Examples = []Example{
	{"Circle", "x^2 + y^2 = t^2"},
	{"Ellipse", "(x/t)^2 + (y/2)^2 - 1"},
	{"Lemniscate", "(x^2 + y^2)^2 - t^2 (x^2 - y^2)"},
	{"Waves", "sin(x) + cos(y) - t/2"},
	{"Hyperbola", "xy - t"},
}

const guideText = `# Implicit curves

Type a relation among **x**, **y**, and an optional parameter **t**. The curve
is every point where it holds.

## Forms

- Implicit: ` + "`F(x, y, t)`" + ` means F(x, y, t) = 0.
- Equation: ` + "`left = right`" + ` means left - right = 0.

## Syntax

- Powers use ` + "`^`" + ` or ` + "`**`" + `.
- Products may be written without ` + "`*`" + `: ` + "`2x`" + `, ` + "`xy`" + `, and ` + "`t(x + 1)`" + ` all work.
- Functions: sqrt, abs, exp, ln, log, log(x, b), sin, cos, tan, sec, csc,
  cot, asin, acos, atan, atan2, sinh, cosh, tanh, asinh, acosh, atanh.
  Parentheses are optional for a single factor: ` + "`sin x`" + `.
- Constants: pi (or π) and e.
- Any other name is an error.

## Examples

%s
## Tips

- Raise the resolution if the curve looks jagged or is missing.
- If no curve appears, try widening the x and y ranges or another t.
- Outside a function's real domain, such as ` + "`sqrt`" + ` of a negative number, the
  relation is undefined and nothing is drawn there.
- Where a value is complex, only its real part is plotted.
`

// GuideMarkdown returns the usage guide as Markdown.
func GuideMarkdown() string {
	var b strings.Builder
	for _, e := range Examples {
		fmt.Fprintf(&b, "- **%s**: `%s`\n", e.Name, e.Equation)
	}
	return fmt.Sprintf(guideText, b.String())
}

// Guide renders the usage guide for a terminal of the given width. Style is a
// glamour style name such as "dark", "light", or "notty"; "auto" detects the
// terminal background.
func Guide(style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	return r.Render(GuideMarkdown())
}
