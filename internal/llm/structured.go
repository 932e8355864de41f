package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// SchemaValidator validates a parsed struct after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractJSON decodes the first JSON object in raw LLM output into T.
// Markdown fences, surrounding prose, comments and bare decimals are
// tolerated. Anything that still fails to decode, including an object cut
// off by the token limit, goes through jsonrepair once before giving up.
// If validator is non-nil, the decoded value is validated before return.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	body, ok := objectText(unfence(raw))
	if !ok {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	result, err := decodeObject[T](body)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

func decodeObject[T any](body string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(body), &v)
	if err == nil {
		return v, nil
	}
	repaired, rerr := jsonrepair.JSONRepair(body)
	if rerr != nil {
		return v, err
	}
	var fixed T
	if err := json.Unmarshal([]byte(repaired), &fixed); err != nil {
		return fixed, err
	}
	return fixed, nil
}

// unfence drops markdown fence lines and keeps everything between them.
func unfence(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "```") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// objectText returns the first top-level JSON object in s with comments
// removed and bare decimals such as ".8" written as "0.8". An object left
// open by a truncated reply runs to the end of s. ok is false when s holds
// no '{' at all.
func objectText(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(s) - start + 8)

	depth := 0
	inString, escaped := false, false
	var prev byte // last non-space byte outside strings

	for i := start; i < len(s); i++ {
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
				prev = c
			}
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				i = len(s)
			} else {
				i += end + 3
			}
			continue
		case c == '"':
			inString = true
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(prev):
			b.WriteByte('0')
		case c == '{':
			depth++
		case c == '}':
			depth--
		}

		b.WriteByte(c)
		if !isSpace(c) {
			prev = c
		}
		if depth == 0 {
			break
		}
	}
	return b.String(), true
}

// startsNumber reports whether a value may begin right after c.
func startsNumber(c byte) bool {
	switch c {
	case ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
