package fast

import (
	"strconv"
	"strings"
)

// statusTokens are the OpenAPI patterned response keys that always allow
// a body.
var statusTokens = map[string]bool{
	"default": true,
	"1XX":     true,
	"2XX":     true,
	"3XX":     true,
	"4XX":     true,
	"5XX":     true,
}

// bodyAllowedForStatus reports whether a response body is permitted for the
// given status token. The empty token means "unspecified" and allows a body.
// Informational responses, 204 and 304 never carry a body.
func bodyAllowedForStatus(token string) bool {
	if token == "" {
		return true
	}
	if statusTokens[token] {
		return true
	}
	code, err := strconv.Atoi(token)
	if err != nil {
		return false
	}
	return bodyAllowedForStatusCode(code)
}

// bodyAllowedForStatusCode is the numeric form of bodyAllowedForStatus.
func bodyAllowedForStatusCode(code int) bool {
	if code < 200 {
		return false
	}
	return code != 204 && code != 304
}

// pathParamNames returns the set of distinct {name} placeholders in a route
// pattern. Wildcard suffixes ({path...}) count under their base name.
func pathParamNames(pattern string) map[string]struct{} {
	names := make(map[string]struct{})
	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names
		}
		rest = rest[open+1:]
		closing := strings.IndexByte(rest, '}')
		if closing < 0 {
			return names
		}
		name := strings.TrimSuffix(rest[:closing], "...")
		if name != "" {
			names[name] = struct{}{}
		}
		rest = rest[closing+1:]
	}
}

// deepMerge recursively merges src into dst: same-key maps merge, same-key
// slices concatenate, anything else overwrites.
func deepMerge(dst, src map[string]any) {
	for key, val := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = val
			continue
		}

		if em, ok := existing.(map[string]any); ok {
			if vm, ok := val.(map[string]any); ok {
				deepMerge(em, vm)
				continue
			}
		}

		if es, ok := existing.([]any); ok {
			if vs, ok := val.([]any); ok {
				dst[key] = append(es, vs...)
				continue
			}
		}

		dst[key] = val
	}
}

// generateOperationID derives a camelCase operationId from the HTTP method
// and route pattern: GET /users/{id} → getUsersById.
func generateOperationID(method, pattern string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))

	for seg := range strings.SplitSeq(pattern, "/") {
		if seg == "" {
			continue
		}

		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			b.WriteString("By")
			seg = strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
			seg = strings.TrimSuffix(seg, "...")
		}

		for word := range splitWordsSeq(seg) {
			b.WriteString(capitalize(word))
		}
	}

	return b.String()
}

// splitWordsSeq yields the alphanumeric runs of a path segment.
func splitWordsSeq(seg string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		start := -1
		for i := 0; i <= len(seg); i++ {
			isWord := i < len(seg) && isWordByte(seg[i])
			switch {
			case isWord && start < 0:
				start = i
			case !isWord && start >= 0:
				if !yield(seg[start:i]) {
					return
				}
				start = -1
			}
		}
	}
}

func isWordByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; 'a' <= c && c <= 'z' {
		return string(c-('a'-'A')) + s[1:]
	}
	return s
}

// DefaultPlaceholder wraps a fallback value so that override chains can tell
// "explicitly set" apart from "inherited default".
type DefaultPlaceholder[T any] struct {
	value T
	set   bool
}

// DefaultOf wraps a fallback value that has not been explicitly set.
func DefaultOf[T any](v T) DefaultPlaceholder[T] {
	return DefaultPlaceholder[T]{value: v}
}

// Explicit wraps an explicitly chosen value.
func Explicit[T any](v T) DefaultPlaceholder[T] {
	return DefaultPlaceholder[T]{value: v, set: true}
}

// Value returns the wrapped value.
func (d DefaultPlaceholder[T]) Value() T { return d.value }

// IsSet reports whether the value was explicitly set.
func (d DefaultPlaceholder[T]) IsSet() bool { return d.set }

// ValueOrDefault walks items in descending priority and returns the first
// explicitly set one. When none is set, the first item is returned.
func ValueOrDefault[T any](first DefaultPlaceholder[T], rest ...DefaultPlaceholder[T]) DefaultPlaceholder[T] {
	if first.IsSet() {
		return first
	}
	for _, item := range rest {
		if item.IsSet() {
			return item
		}
	}
	return first
}
