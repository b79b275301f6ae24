// Package literal parses and renders the literal value syntax used between
// stubs and text-completion backends: quoted strings, numbers, True, False,
// None, lists, tuples, sets, and dicts.
//
// Parsing is strictly syntactic. Names other than True, False, None, and the
// empty set() call are rejected, and nothing is ever evaluated.
package literal

import "math"

// Tuple is a fixed-arity sequence literal, e.g. ('a', 'b').
type Tuple []any

// Set is an unordered collection of hashable scalars, e.g. {1, 2}.
type Set map[any]struct{}

// Dict is a mapping literal with hashable scalar keys, e.g. {'a': 1}.
type Dict map[any]any

// NewSet builds a set from members. It panics on unhashable members.
func NewSet(members ...any) Set {
	s := make(Set, len(members))
	for _, m := range members {
		if !hashable(m) {
			panic("literal: unhashable set member")
		}
		s.Add(m)
	}
	return s
}

// Add inserts m unless an equal member is present. Numbers compare by
// value across bool, int and float, so 1, True and 1.0 are one member and
// the first one added is kept.
func (s Set) Add(m any) {
	if !s.Has(m) {
		s[m] = struct{}{}
	}
}

// Has reports whether a member equal to m is in the set.
func (s Set) Has(m any) bool {
	if !hashable(m) {
		return false
	}
	for _, k := range equivalents(m) {
		if _, ok := s[k]; ok {
			return true
		}
	}
	return false
}

// Put stores v under k, reusing an existing equal key the way Set.Add does.
func (d Dict) Put(k, v any) {
	for _, e := range equivalents(k) {
		if _, ok := d[e]; ok {
			d[e] = v
			return
		}
	}
	d[k] = v
}

// equivalents lists the keys that compare equal to v, v first.
func equivalents(v any) []any {
	switch x := v.(type) {
	case bool:
		n := 0
		if x {
			n = 1
		}
		return []any{x, n, float64(n)}
	case int:
		out := []any{x, float64(x)}
		if x == 0 || x == 1 {
			out = append(out, x == 1)
		}
		return out
	case float64:
		out := []any{x}
		if x == math.Trunc(x) && x >= math.MinInt && x < math.MaxInt {
			n := int(x)
			out = append(out, n)
			if n == 0 || n == 1 {
				out = append(out, n == 1)
			}
		}
		return out
	}
	return []any{v}
}

// hashable reports whether v can be a dict key or set member.
func hashable(v any) bool {
	switch v.(type) {
	case nil, bool, int, float64, string:
		return true
	}
	return false
}
