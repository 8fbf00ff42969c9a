// Package parse extracts a plain commit message from claude's raw output.
//
// The output shape varies by claude version and failure mode: a JSON
// envelope with a result field, markdown-fenced text, explanatory prose
// around the message, or the bare message itself. Extraction tries the
// structured shape first and falls back to plain-text heuristics.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrResponse is returned when the envelope itself signals a failure.
	ErrResponse = errors.New("claude reported an error in its response")
	// ErrUnrecognized is returned when the envelope parsed but matched no
	// known field. The raw object is never surfaced to the caller.
	ErrUnrecognized = errors.New("unrecognized response format from claude")
)

// errorSubtype is the envelope subtype claude emits for in-band failures.
const errorSubtype = "error_during_execution"

// commitLineRe matches a conventional-commit subject line.
var commitLineRe = regexp.MustCompile(`(?i)^(feat|fix|docs|style|refactor|test|chore|build|ci|perf)(\([^)]+\))?:`)

// fencedBlockRe matches a triple-backtick block with optional language tag.
var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\n(.*?)\\n?```")

// leadIns are explanatory openers claude sometimes prefixes despite being
// told not to.
var leadIns = []string{"based on", "here's", "here is", "commit message"}

// Extract returns the commit message contained in raw. Empty input yields
// an empty message and no error.
func Extract(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return fromText(raw), nil
	}
	return fromEnvelope(decoded)
}

// fromEnvelope handles output that parsed as JSON.
func fromEnvelope(decoded any) (string, error) {
	switch v := decoded.(type) {
	case map[string]any:
		if result, ok := v["result"]; ok && result != nil {
			if isErr, _ := v["is_error"].(bool); isErr {
				return "", fmt.Errorf("%w: %s", ErrResponse, stringify(result))
			}
			if subtype, _ := v["subtype"].(string); subtype == errorSubtype {
				return "", fmt.Errorf("%w: %s", ErrResponse, stringify(result))
			}
			return cleanup(strings.TrimSpace(stringify(result))), nil
		}
		for _, key := range []string{"text", "message", "content"} {
			if field, ok := v[key]; ok && field != nil {
				return strings.TrimSpace(stringify(field)), nil
			}
		}
		return "", fmt.Errorf("%w: no result, text, message, or content field — enable debug logging to inspect the raw output", ErrUnrecognized)
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: expected an object or string — enable debug logging to inspect the raw output", ErrUnrecognized)
	}
}

// fromText handles output that is not valid JSON: strip one surrounding
// fence pair, then prefer the first conventional-commit line over the
// whole text.
func fromText(raw string) string {
	s := stripOuterFences(strings.TrimSpace(raw))
	for _, line := range strings.Split(s, "\n") {
		if commitLineRe.MatchString(line) {
			return line
		}
	}
	return s
}

// cleanup normalizes an envelope result: prefer the contents of a fenced
// block, otherwise drop leading explanatory lines.
func cleanup(s string) string {
	if m := fencedBlockRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || hasLeadIn(trimmed) {
			continue
		}
		return strings.TrimSpace(strings.Join(lines[i:], "\n"))
	}
	return s
}

func hasLeadIn(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range leadIns {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// stripOuterFences removes a single leading fence marker (language tag
// allowed) and a single trailing fence marker.
func stripOuterFences(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stringify coerces an envelope field to a string. Non-string values are
// re-encoded as compact JSON.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
