// Package settings edits the host's settings.json. Only the statusLine key
// is touched; every other key survives a round trip.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const statusLineKey = "statusLine"

// StatusLine is the registration the host reads to invoke us.
type StatusLine struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Padding int    `json:"padding"`
}

// CommandFor quotes path when the host shell would split it.
func CommandFor(path string) string {
	if strings.ContainsAny(path, " \t") {
		return `"` + path + `"`
	}
	return path
}

// NewStatusLine builds a command registration for the binary at path.
func NewStatusLine(path string, padding int) StatusLine {
	return StatusLine{Type: "command", Command: CommandFor(path), Padding: padding}
}

func decode(existing []byte) (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(existing)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(existing, &doc); err != nil {
		return nil, fmt.Errorf("settings is not a JSON object: %w", err)
	}
	if doc == nil {
		// the literal null
		doc = make(map[string]json.RawMessage)
	}
	return doc, nil
}

func encode(doc map[string]json.RawMessage) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return append(data, '\n'), nil
}

// Merge sets statusLine in existing, which may be empty. A document that
// is not a JSON object is an error so a hand-edited file is never clobbered.
func Merge(existing []byte, sl StatusLine) ([]byte, error) {
	doc, err := decode(existing)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(sl)
	if err != nil {
		return nil, fmt.Errorf("marshal statusLine: %w", err)
	}
	doc[statusLineKey] = raw
	return encode(doc)
}

// Current returns the registered statusLine, if any.
func Current(existing []byte) (StatusLine, bool, error) {
	doc, err := decode(existing)
	if err != nil {
		return StatusLine{}, false, err
	}
	raw, ok := doc[statusLineKey]
	if !ok {
		return StatusLine{}, false, nil
	}
	var sl StatusLine
	if err := json.Unmarshal(raw, &sl); err != nil {
		return StatusLine{}, false, nil
	}
	return sl, true, nil
}

// Remove drops statusLine when its command is one of commands. It reports
// whether anything changed; a registration owned by another tool is left
// alone.
func Remove(existing []byte, commands ...string) ([]byte, bool, error) {
	sl, ok, err := Current(existing)
	if err != nil || !ok {
		return existing, false, err
	}
	owned := false
	for _, c := range commands {
		if sl.Command == c || sl.Command == CommandFor(c) {
			owned = true
			break
		}
	}
	if !owned {
		return existing, false, nil
	}
	doc, err := decode(existing)
	if err != nil {
		return nil, false, err
	}
	delete(doc, statusLineKey)
	data, err := encode(doc)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
