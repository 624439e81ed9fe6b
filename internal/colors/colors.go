package colors

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color is a presentation category. Segments carry one of these and the
// Painter decides whether it turns into escape codes.
type Color int

const (
	None Color = iota
	Purple
	Cyan
	Blue
	Green
	Yellow
	Red
	Grey
)

// ANSI palette indexes for each category.
var palette = map[Color]lipgloss.Color{
	Purple: lipgloss.Color("5"),
	Cyan:   lipgloss.Color("6"),
	Blue:   lipgloss.Color("4"),
	Green:  lipgloss.Color("2"),
	Yellow: lipgloss.Color("3"),
	Red:    lipgloss.Color("1"),
	Grey:   lipgloss.Color("8"),
}

func (c Color) String() string {
	switch c {
	case Purple:
		return "purple"
	case Cyan:
		return "cyan"
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	case Grey:
		return "grey"
	default:
		return "none"
	}
}

// Painter applies colors when enabled and is a no-op otherwise.
type Painter struct {
	enabled  bool
	renderer *lipgloss.Renderer
}

// NewPainter returns a Painter. The renderer is pinned to the plain ANSI
// profile because hosts read our stdout through a pipe, where lipgloss
// would otherwise detect no color support.
func NewPainter(enabled bool) *Painter {
	p := &Painter{enabled: enabled}
	if enabled {
		p.renderer = lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI))
		p.renderer.SetColorProfile(termenv.ANSI)
	}
	return p
}

// Paint wraps text in c. Empty text and None stay unstyled.
func (p *Painter) Paint(c Color, bold bool, text string) string {
	if !p.enabled || text == "" {
		return text
	}
	fg, hasColor := palette[c]
	if !hasColor && !bold {
		return text
	}
	style := p.renderer.NewStyle()
	if hasColor {
		style = style.Foreground(fg)
	}
	if bold {
		style = style.Bold(true)
	}
	return style.Render(text)
}

// Separator returns the glyph between segments.
func (p *Painter) Separator() string {
	return " " + p.Paint(Grey, false, "│") + " "
}
