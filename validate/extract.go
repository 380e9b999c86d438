package validate

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseError signals that the recovery ladder failed to obtain structured
// content from a response.
type ParseError struct {
	Sample string // truncated raw response, for diagnostics
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable service response: %q", e.Sample)
}

const sampleLen = 120

func newParseError(raw string) *ParseError {
	sample := strings.TrimSpace(raw)
	if len(sample) > sampleLen {
		sample = sample[:sampleLen] + "..."
	}
	return &ParseError{Sample: sample}
}

// extract applies the recovery ladder and returns a well-formed JSON document,
// or a *ParseError if every rung fails.
func extract(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	// (a) parse as-is.
	if gjson.Valid(trimmed) && looksStructural(trimmed) {
		return trimmed, nil
	}

	// (b) strip markdown fences and retry.
	if inner, ok := stripFences(trimmed); ok {
		if gjson.Valid(inner) && looksStructural(inner) {
			return inner, nil
		}
		// A fenced block that still fails falls through to the scan.
		trimmed = inner
	}

	// (c) extract the first balanced structural block.
	if block, ok := balancedBlock(trimmed); ok && gjson.Valid(block) {
		return block, nil
	}
	if block, ok := balancedBlock(raw); ok && gjson.Valid(block) {
		return block, nil
	}

	return "", newParseError(raw)
}

func looksStructural(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// stripFences returns the content of the first ``` fenced block, tolerating a
// language tag after the opening fence.
func stripFences(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		tag := strings.TrimSpace(rest[:nl])
		if tag == "" || len(tag) <= 8 && !strings.ContainsAny(tag, "{}[]") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// balancedBlock scans for the first '{' or '[' and returns the substring up
// to its matching close delimiter, honoring JSON string and escape rules.
func balancedBlock(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if len(stack) == 0 {
				return "", false
			}
			open := stack[len(stack)-1]
			if (ch == '}' && open != '{') || (ch == ']' && open != '[') {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
