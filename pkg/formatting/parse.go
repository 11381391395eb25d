package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailed is returned when no JSON candidate in model output decodes.
var ErrParseFailed = errors.New("failed to parse response")

const excerptLen = 120

// Parse decodes JSON from model output into T. It tries the trimmed content,
// then the body of a markdown code fence, then the outermost object or array
// embedded in surrounding prose.
func Parse[T any](content string) (T, error) {
	var result T

	content = strings.TrimSpace(content)
	if content == "" {
		return result, fmt.Errorf("%w: empty content", ErrParseFailed)
	}

	for _, candidate := range candidates(content) {
		var v T
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return v, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, excerpt(content))
}

func candidates(content string) []string {
	out := []string{content}
	for _, c := range []string{unfence(content), embedded(content)} {
		if c != "" && !contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// unfence returns the body of a leading ``` or ```json fence.
func unfence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return ""
	}

	_, body, ok := strings.Cut(content, "\n")
	if !ok {
		return ""
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

// embedded returns the span from the first opening brace or bracket to the
// last matching closer.
func embedded(content string) string {
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return ""
	}

	closer := "}"
	if content[start] == '[' {
		closer = "]"
	}

	end := strings.LastIndex(content, closer)
	if end < start {
		return ""
	}
	return content[start : end+1]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func excerpt(s string) string {
	if len(s) <= excerptLen {
		return s
	}
	return s[:excerptLen] + "..."
}
