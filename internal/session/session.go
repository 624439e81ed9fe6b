// Package session turns the JSON document a host pipes to the status line
// into an Info value. Every field is looked up by one or more documented
// paths, so both the flat test payload and the nested Claude Code payload
// decode to the same Info.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Seraphli/ccline/internal/optional"
)

// ErrEmptyInput is returned when stdin carried nothing but whitespace.
var ErrEmptyInput = errors.New("empty input")

// Info is the per-invocation session snapshot. Model defaults to "" and the
// rest are absent unless the document carried a well-typed value.
type Info struct {
	Model        string
	Cwd          optional.Value[string]
	TokensUsed   optional.Value[int64]
	Capacity     optional.Value[int64]
	CostUSD      optional.Value[float64]
	LinesAdded   optional.Value[int64]
	LinesRemoved optional.Value[int64]
}

// WithDefaultCapacity fills Capacity with n when the document carried
// none. A non-positive n changes nothing.
func (i Info) WithDefaultCapacity(n int64) Info {
	if n > 0 && !i.Capacity.IsSet() {
		i.Capacity = optional.Some(n)
	}
	return i
}

var (
	cwdPaths          = []string{"cwd", "workspace.current_dir", "workspace.project_dir"}
	capacityPaths     = []string{"context_capacity", "context_window.context_window_size"}
	costPaths         = []string{"cost_usd", "cost.total_cost_usd"}
	linesAddedPaths   = []string{"lines_added", "cost.total_lines_added"}
	linesRemovedPaths = []string{"lines_removed", "cost.total_lines_removed"}
	currentUsageKeys  = []string{"input_tokens", "cache_creation_input_tokens", "cache_read_input_tokens"}
)

// Read consumes r and extracts Info. On empty or malformed input it returns
// the zero Info together with the error; callers render it anyway.
func Read(r io.Reader) (Info, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("read input: %w", err)
	}
	return Parse(raw)
}

// Parse is Read for an in-memory document.
func Parse(raw []byte) (Info, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Info{}, ErrEmptyInput
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return Info{}, fmt.Errorf("parse session json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Info{}, fmt.Errorf("parse session json: trailing data after object")
	}
	return fromDocument(doc), nil
}

func fromDocument(doc map[string]interface{}) Info {
	return Info{
		Model:        modelName(doc),
		Cwd:          firstString(doc, cwdPaths),
		TokensUsed:   tokensUsed(doc),
		Capacity:     firstInt(doc, capacityPaths),
		CostUSD:      firstFloat(doc, costPaths),
		LinesAdded:   firstInt(doc, linesAddedPaths),
		LinesRemoved: firstInt(doc, linesRemovedPaths),
	}
}

// modelName accepts "model" as a plain string or as an object carrying
// display_name or id.
func modelName(doc map[string]interface{}) string {
	switch m := doc["model"].(type) {
	case string:
		return m
	case map[string]interface{}:
		if name, ok := m["display_name"].(string); ok && name != "" {
			return name
		}
		if id, ok := m["id"].(string); ok {
			return id
		}
	}
	return ""
}

func tokensUsed(doc map[string]interface{}) optional.Value[int64] {
	if v := firstInt(doc, []string{"tokens_used"}); v.IsSet() {
		return v
	}
	if usage, ok := lookup(doc, "context_window.current_usage").(map[string]interface{}); ok {
		var sum int64
		found := false
		for _, key := range currentUsageKeys {
			if n, ok := toInt(usage[key]); ok {
				sum += n
				found = true
			}
		}
		if found {
			return optional.Some(sum)
		}
	}
	// context_window.total_input_tokens is a session total, not the
	// current context size, so it is never used here.
	return optional.None[int64]()
}

// lookup walks a dotted path through nested objects. Missing keys and
// non-object intermediates yield nil.
func lookup(doc map[string]interface{}, path string) interface{} {
	var cur interface{} = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func firstString(doc map[string]interface{}, paths []string) optional.Value[string] {
	for _, p := range paths {
		if s, ok := lookup(doc, p).(string); ok && s != "" {
			return optional.Some(s)
		}
	}
	return optional.None[string]()
}

func firstInt(doc map[string]interface{}, paths []string) optional.Value[int64] {
	for _, p := range paths {
		if n, ok := toInt(lookup(doc, p)); ok {
			return optional.Some(n)
		}
	}
	return optional.None[int64]()
}

func firstFloat(doc map[string]interface{}, paths []string) optional.Value[float64] {
	for _, p := range paths {
		if f, ok := toFloat(lookup(doc, p)); ok {
			return optional.Some(f)
		}
	}
	return optional.None[float64]()
}

// toInt accepts JSON numbers and numeric strings. Fractional values are
// rejected rather than truncated.
func toInt(v interface{}) (int64, bool) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, ok := parseFinite(s)
	if !ok || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		return parseFinite(x.String())
	case string:
		return parseFinite(strings.TrimSpace(x))
	}
	return 0, false
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
