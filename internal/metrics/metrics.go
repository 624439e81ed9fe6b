// Package metrics derives display values from a session.Info. Everything
// here is pure: the same Info always yields the same Metrics.
package metrics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Seraphli/ccline/internal/optional"
	"github.com/Seraphli/ccline/internal/session"
)

// Diff is the lines added/removed pair. At least one side is present
// whenever a Diff is.
type Diff struct {
	Added   int64
	Removed int64
}

func (d Diff) String() string {
	return fmt.Sprintf("+%d/-%d", d.Added, d.Removed)
}

// Metrics is the derived set consumed by the renderer.
type Metrics struct {
	ContextPercent optional.Value[int]
	Severity       optional.Value[Severity]
	Tokens         optional.Value[string]
	Cost           optional.Value[string]
	Diff           optional.Value[Diff]
}

// Derive computes Metrics from info.
func Derive(info session.Info) Metrics {
	pct := ContextPercent(info.TokensUsed, info.Capacity)
	return Metrics{
		ContextPercent: pct,
		Severity:       optional.Map(pct, SeverityFor),
		Tokens:         FormatTokens(info.TokensUsed),
		Cost:           FormatCost(info.CostUSD),
		Diff:           DiffOf(info.LinesAdded, info.LinesRemoved),
	}
}

// ContextPercent is round(100*used/capacity) clamped to [0,100]. It is
// absent when either side is missing, capacity is not positive, or used is
// negative.
func ContextPercent(used, capacity optional.Value[int64]) optional.Value[int] {
	u, ok := used.Get()
	if !ok || u < 0 {
		return optional.None[int]()
	}
	c, ok := capacity.Get()
	if !ok || c <= 0 {
		return optional.None[int]()
	}
	pct := math.Round(100 * float64(u) / float64(c))
	return optional.Some(int(math.Min(100, math.Max(0, pct))))
}

// FormatTokens renders counts below 1000 verbatim and larger ones in
// thousands with one decimal, rounding half up: 1049 -> 1.0k, 1050 -> 1.1k.
func FormatTokens(tokens optional.Value[int64]) optional.Value[string] {
	n, ok := tokens.Get()
	if !ok || n < 0 {
		return optional.None[string]()
	}
	if n < 1000 {
		return optional.Some(strconv.FormatInt(n, 10))
	}
	tenths := n / 100
	if n%100 >= 50 {
		tenths++
	}
	return optional.Some(fmt.Sprintf("%d.%dk", tenths/10, tenths%10))
}

// FormatCost renders USD with two decimals. Only an absent or nonsensical
// cost is omitted; an explicit zero is "$0.00".
func FormatCost(cost optional.Value[float64]) optional.Value[string] {
	c, ok := cost.Get()
	if !ok || c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return optional.None[string]()
	}
	return optional.Some(fmt.Sprintf("$%.2f", c))
}

// DiffOf is absent only when both counts are. A missing side counts as 0.
func DiffOf(added, removed optional.Value[int64]) optional.Value[Diff] {
	if !added.IsSet() && !removed.IsSet() {
		return optional.None[Diff]()
	}
	return optional.Some(Diff{Added: added.Or(0), Removed: removed.Or(0)})
}
