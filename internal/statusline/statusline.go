package statusline

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/Seraphli/ccline/internal/colors"
	"github.com/Seraphli/ccline/internal/metrics"
	"github.com/Seraphli/ccline/internal/optional"
	"github.com/Seraphli/ccline/internal/session"
)

const ellipsis = "…"

// Span is a run of text with one color.
type Span struct {
	Text  string
	Color colors.Color
	Bold  bool
}

// Segment is one named, independently omittable piece of the line. A
// segment with no spans is absent.
type Segment struct {
	Name  string
	Spans []Span
}

func (s Segment) Present() bool {
	return len(s.Spans) > 0
}

// Text is the segment content without any styling.
func (s Segment) Text() string {
	var b strings.Builder
	for _, sp := range s.Spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// Input is everything Build needs. FallbackDir is shown when the session
// carried no directory.
type Input struct {
	Info        session.Info
	Branch      optional.Value[string]
	Metrics     metrics.Metrics
	FallbackDir string
}

// Build returns the seven segments in display order; absent ones have no
// spans.
func Build(in Input) []Segment {
	return []Segment{
		modelSegment(in.Info.Model),
		dirSegment(in.Info.Cwd.Or(in.FallbackDir)),
		single("branch", in.Branch, colors.Blue),
		contextSegment(in.Metrics),
		single("tokens", optional.Map(in.Metrics.Tokens, func(s string) string { return "in:" + s }), colors.Grey),
		single("cost", in.Metrics.Cost, colors.Yellow),
		diffSegment(in.Metrics.Diff),
	}
}

// modelSegment is always present; an unknown model renders as "[]".
func modelSegment(name string) Segment {
	return Segment{Name: "model", Spans: []Span{{Text: "[" + printable(name) + "]", Color: colors.Purple, Bold: true}}}
}

func dirSegment(dir string) Segment {
	base := printable(baseName(dir))
	if base == "" {
		return Segment{Name: "dir"}
	}
	return Segment{Name: "dir", Spans: []Span{{Text: base, Color: colors.Cyan}}}
}

// baseName takes the last path component, accepting both separators so a
// Windows path reported to a Unix build still shortens.
func baseName(p string) string {
	if p == "" {
		return ""
	}
	trimmed := strings.TrimRight(p, `/\`)
	if trimmed == "" {
		return p[:1]
	}
	return trimmed[strings.LastIndexAny(trimmed, `/\`)+1:]
}

// printable replaces control characters with spaces so host-supplied text
// cannot break the line.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func contextSegment(m metrics.Metrics) Segment {
	pct, ok := m.ContextPercent.Get()
	if !ok {
		return Segment{Name: "context"}
	}
	sev := m.Severity.Or(metrics.SeverityFor(pct))
	return Segment{Name: "context", Spans: []Span{{Text: fmt.Sprintf("ctx:%d%%", pct), Color: sev.Color()}}}
}

func diffSegment(d optional.Value[metrics.Diff]) Segment {
	diff, ok := d.Get()
	if !ok {
		return Segment{Name: "diff"}
	}
	return Segment{Name: "diff", Spans: []Span{
		{Text: fmt.Sprintf("+%d", diff.Added), Color: colors.Green},
		{Text: "/", Color: colors.Grey},
		{Text: fmt.Sprintf("-%d", diff.Removed), Color: colors.Red},
	}}
}

func single(name string, v optional.Value[string], c colors.Color) Segment {
	text, ok := v.Get()
	if !ok || text == "" {
		return Segment{Name: name}
	}
	return Segment{Name: name, Spans: []Span{{Text: text, Color: c}}}
}

// Options control presentation only.
type Options struct {
	Painter  *colors.Painter
	MaxWidth int // visible cells, 0 = unlimited
}

// Render joins present segments with the separator and applies MaxWidth.
func Render(segs []Segment, opts Options) string {
	p := opts.Painter
	if p == nil {
		p = colors.NewPainter(false)
	}

	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		if !seg.Present() {
			continue
		}
		var b strings.Builder
		for _, sp := range seg.Spans {
			b.WriteString(p.Paint(sp.Color, sp.Bold, sp.Text))
		}
		parts = append(parts, b.String())
	}
	line := strings.Join(parts, p.Separator())
	return truncate(line, opts.MaxWidth, p)
}

// truncate cuts line to width visible cells, ending with an ellipsis.
// Escape sequences do not count toward the width.
func truncate(line string, width int, p *colors.Painter) string {
	if width <= 0 || lipgloss.Width(line) <= width {
		return line
	}
	tail := p.Paint(colors.Grey, false, ellipsis)
	if width == 1 {
		return tail
	}
	return lipgloss.NewStyle().MaxWidth(width-1).Render(line) + tail
}
