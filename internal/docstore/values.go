package docstore

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Lookup walks a dotted path through nested maps.
func Lookup(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Matches reports whether data satisfies every predicate.
func Matches(data map[string]any, where []Predicate) bool {
	for _, p := range where {
		v, ok := Lookup(data, p.Field)
		if !ok || !equalValues(v, p.Value) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// Normalize round-trips data through JSON so every backend hands back the
// same shapes: nested map[string]any, []any, float64 numbers.
func Normalize(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// addAt adds delta to the number at path, creating intermediate maps and
// treating a missing or non-numeric leaf as zero.
func addAt(data map[string]any, path string, delta int) {
	segs := strings.Split(path, ".")
	cur := data
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	leaf := segs[len(segs)-1]
	n, _ := number(cur[leaf])
	cur[leaf] = n + float64(delta)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int converts whatever numeric type a backend produced into an int.
// Non-numeric values yield 0.
func Int(v any) int {
	switch n := v.(type) {
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	}
	f, ok := number(v)
	if !ok || math.IsNaN(f) {
		return 0
	}
	return int(f)
}

func String(v any) string {
	s, _ := v.(string)
	return s
}

func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// Strings accepts []string or []any holding strings.
func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return []string{}
}

// Time accepts a native time (Firestore timestamps) or an RFC 3339 string.
func Time(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// FormatTime is the canonical stored form of a timestamp.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
