package chatparse

import (
	"strings"

	"github.com/tidwall/gjson"
)

// RepairOutcome classifies what happened to a possibly-truncated payload.
type RepairOutcome int

const (
	// PayloadComplete means the input parsed as-is.
	PayloadComplete RepairOutcome = iota
	// PayloadRepaired means closers were appended and the result parses.
	PayloadRepaired
	// PayloadUnrecoverable means no amount of closing made the input parse.
	PayloadUnrecoverable
)

// RepairJSON attempts best-effort recovery of a truncated JSON payload by
// counting unmatched opening braces and brackets and appending the matching
// closers in nesting order. Quoted strings are skipped during counting so
// braces inside text fields do not distort the balance.
func RepairJSON(partial string) (string, RepairOutcome) {
	s := strings.TrimSpace(partial)
	if gjson.Valid(s) {
		return s, PayloadComplete
	}

	if fixed, ok := closeOpenStructures(s); ok {
		return fixed, PayloadRepaired
	}

	// Second attempt: drop a trailing partial token (e.g. a half-written
	// string or number) by cutting back to the last structural boundary.
	if idx := strings.LastIndexAny(s, "}],\""); idx >= 0 {
		trimmed := strings.TrimRight(s[:idx+1], ", \n\t")
		if fixed, ok := closeOpenStructures(trimmed); ok {
			return fixed, PayloadRepaired
		}
	}

	return s, PayloadUnrecoverable
}

// closeOpenStructures appends the closers for every unmatched opener, in
// reverse nesting order, and reports whether the result parses.
func closeOpenStructures(s string) (string, bool) {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			stack = append(stack, c)
		case c == '}' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	fixed := s
	if inString {
		fixed += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			fixed += "}"
		} else {
			fixed += "]"
		}
	}

	if gjson.Valid(fixed) {
		return fixed, true
	}
	return s, false
}
