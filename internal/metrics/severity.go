package metrics

import "github.com/Seraphli/ccline/internal/colors"

// Severity buckets context usage. Thresholds are fixed.
type Severity int

const (
	Normal Severity = iota
	Warning
	Critical
)

const (
	warningAt  = 60
	criticalAt = 80
)

// SeverityFor maps a percentage to its bucket; boundaries belong to the
// higher bucket.
func SeverityFor(pct int) Severity {
	switch {
	case pct >= criticalAt:
		return Critical
	case pct >= warningAt:
		return Warning
	default:
		return Normal
	}
}

func (s Severity) Color() colors.Color {
	switch s {
	case Critical:
		return colors.Red
	case Warning:
		return colors.Yellow
	default:
		return colors.Green
	}
}

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	default:
		return "normal"
	}
}
