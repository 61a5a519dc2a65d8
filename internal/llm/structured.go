package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// SchemaValidator validates a parsed struct after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractJSON extracts a JSON value of type T from raw LLM text output.
// It tolerates markdown code fences, surrounding prose, comments and trailing
// commas. Candidate spans are tried in order and the first one that decodes
// into T wins. If validator is non-nil, that value is validated before return.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	candidates := candidateBlocks(stripCodeFences(raw))
	if len(candidates) == 0 {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	var firstErr error
	for _, block := range candidates {
		var result T
		if err := json.Unmarshal([]byte(block), &result); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if validator != nil {
			if err := validator(result); err != nil {
				return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
			}
		}
		return result, nil
	}

	return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, firstErr)
}

// ExtractJSONBlock returns the first balanced top-level {...} or [...] span in
// raw that is valid JSON once cleaned of comments and trailing commas.
// Returns "" when none exists.
func ExtractJSONBlock(raw string) string {
	for _, block := range candidateBlocks(stripCodeFences(raw)) {
		if json.Valid([]byte(block)) {
			return block
		}
	}
	return ""
}

// candidateBlocks returns every balanced span starting at a '{' or '[' that
// is not nested inside an earlier span, cleaned of comments and trailing
// commas. An opener whose span never balances is skipped.
func candidateBlocks(s string) []string {
	var blocks []string
	for i := 0; i < len(s); {
		off := strings.IndexAny(s[i:], "{[")
		if off == -1 {
			break
		}
		start := i + off
		end := balancedEnd(s, start)
		if end == -1 {
			i = start + 1
			continue
		}
		blocks = append(blocks, stripTrailingCommas(stripJSONComments(s[start:end])))
		i = end
	}
	return blocks
}

// fenceMarker matches an opening (```json) or closing (```) markdown fence
// anywhere in a line.
var fenceMarker = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// stripCodeFences removes markdown fence markers, keeping their content.
func stripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	return fenceMarker.ReplaceAllString(s, "\n")
}

// balancedEnd returns the index just past the closer matching the opener at
// start, ignoring brackets inside string literals. Returns -1 when the span is
// unterminated or its closers do not match.
func balancedEnd(s string, start int) int {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1
			}
		}
	}

	return -1
}

// stripJSONComments removes // and /* */ comments outside string values.
// Models sometimes annotate their JSON despite instructions not to.
func stripJSONComments(s string) string {
	if !strings.Contains(s, "/") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// stripTrailingCommas removes a comma that directly precedes a closing
// bracket or brace, outside string values.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
		}

		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}
