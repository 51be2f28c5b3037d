// Package chunk splits oversized parameterized URLs into multiple smaller
// ones. Given a URL template whose tokens are bound to semicolon-delimited
// value lists, it recursively subdivides the lists so that every generated
// concrete URL stays under the caller's length ceiling, trying variables in
// caller-specified priority order.
package chunk

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var wbURLChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wb_url_chunks_total",
	Help: "Total concrete URLs produced by the chunker",
})

// ErrURLTooLong is returned when no chunkable variable can bring a URL under
// the length ceiling.
var ErrURLTooLong = errors.New("no chunkable variable can bring the URL under the length ceiling")

// Expand substitutes every {token} in template with its binding. It fails if
// a token is left without a binding.
func Expand(template string, bindings map[string]string) (string, error) {
	out := template
	for name, value := range bindings {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	if start := strings.IndexByte(out, '{'); start >= 0 {
		if end := strings.IndexByte(out[start:], '}'); end > 0 {
			return "", fmt.Errorf("template %q: no binding for token %s",
				template, out[start:start+end+1])
		}
	}
	return out, nil
}

// URLs expands a templated query into one or more concrete URLs, each under
// maxLen characters. vars lists the bindings eligible for subdivision, in
// the order they should be tried; their values must be semicolon-delimited
// strings. The sequence is lazy: each URL is computed only when demanded.
//
// When even full subdivision of every chunkable variable cannot satisfy the
// ceiling, the sequence yields an error wrapping ErrURLTooLong and stops.
func URLs(template string, vars []string, bindings map[string]string, maxLen int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, v := range vars {
			if _, ok := bindings[v]; !ok {
				yield("", fmt.Errorf("template %q: chunkable variable %q has no binding", template, v))
				return
			}
		}
		if len(vars) == 0 {
			u, err := Expand(template, bindings)
			if err != nil {
				yield("", err)
				return
			}
			yield(u, nil)
			return
		}
		chunkVar(template, vars[0], vars[1:], bindings, maxLen, yield)
	}
}

// chunkVar chunks one variable, recursing into the remaining ones when this
// variable alone cannot satisfy the ceiling. It reports false when the
// consumer stopped or an error ended the sequence.
func chunkVar(template, cur string, rest []string, bindings map[string]string, maxLen int, yield func(string, error) bool) bool {
	kw := maps.Clone(bindings)

	// Start with the full value as one chunk and subdivide until the
	// longest chunk fits; other variables stay at their full values while
	// testing, so acceptance here guarantees every emitted URL fits.
	parts := []string{bindings[cur]}
	for {
		kw[cur] = longest(parts)
		test, err := Expand(template, kw)
		if err != nil {
			yield("", err)
			return false
		}
		if len(test) < maxLen {
			for _, part := range parts {
				kw[cur] = part
				u, err := Expand(template, kw)
				if err != nil {
					yield("", err)
					return false
				}
				wbURLChunksTotal.Inc()
				if !yield(u, nil) {
					return false
				}
			}
			return true
		}

		next := subdivide(parts)
		if len(next) == len(parts) {
			// No chunk could be split further.
			break
		}
		parts = next
	}

	// This variable is exhausted. Fall back to the next chunkable variable
	// with each current piece bound in turn.
	if len(rest) == 0 {
		yield("", ErrURLTooLong)
		return false
	}
	for _, part := range parts {
		kw[cur] = part
		if !chunkVar(template, rest[0], rest[1:], kw, maxLen, yield) {
			return false
		}
	}
	return true
}

// subdivide splits every splittable chunk in two at the semicolon nearest
// after its midpoint. Chunks with no semicolon past the midpoint are carried
// over unchanged.
func subdivide(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for _, s := range parts {
		mid := len(s) / 2
		off := strings.Index(s[mid:], ";")
		if off < 0 {
			out = append(out, s)
			continue
		}
		out = append(out, s[:mid+off], s[mid+off+1:])
	}
	return out
}

func longest(parts []string) string {
	best := parts[0]
	for _, s := range parts[1:] {
		if len(s) > len(best) {
			best = s
		}
	}
	return best
}
