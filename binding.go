package cartula

import (
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Feature lists the admissible values of one axis. A Feature with a single
// element is concrete.
type Feature []string

// One returns a concrete Feature.
func One(value string) Feature {
	return Feature{value}
}

// Any returns a Feature admitting every given value.
func Any(values ...string) Feature {
	return unique(values)
}

// Concrete reports whether f holds exactly one value.
func (f Feature) Concrete() bool {
	return len(f) == 1
}

// Admits reports whether v is one of the admissible values.
func (f Feature) Admits(v string) bool {
	return slices.Contains(f, v)
}

func (f Feature) String() string {
	if len(f) == 1 {
		return f[0]
	}
	return "[" + strings.Join(f, "|") + "]"
}

// Binding maps axis names to admissible values. It is the open record used
// for queries, annotation output and population input; storage uses
// TupleKey instead.
type Binding map[string]Feature

// Bind builds a concrete binding from axis/value pairs.
// Bind("case", "nominative", "number", "singular").
func Bind(pairs ...string) Binding {
	b := make(Binding, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		b[pairs[i]] = One(pairs[i+1])
	}
	return b
}

// With returns a copy of b with axis bound to values.
func (b Binding) With(axis string, values ...string) Binding {
	out := b.Clone()
	out[axis] = Any(values...)
	return out
}

// Value returns the concrete value of axis, if it has exactly one.
func (b Binding) Value(axis string) (string, bool) {
	f, ok := b[axis]
	if !ok || !f.Concrete() {
		return "", false
	}
	return f[0], true
}

// Clone returns a copy whose features can be changed independently.
func (b Binding) Clone() Binding {
	out := make(Binding, len(b))
	for axis, f := range b {
		out[axis] = slices.Clone(f)
	}
	return out
}

// Merge returns a new binding holding b overlaid by each of others in turn.
// Later bindings win on shared axes.
func (b Binding) Merge(others ...Binding) Binding {
	out := b.Clone()
	for _, o := range others {
		for axis, f := range o {
			out[axis] = slices.Clone(f)
		}
	}
	return out
}

// Concrete reports whether every axis in b holds exactly one value.
func (b Binding) Concrete() bool {
	for _, f := range b {
		if !f.Concrete() {
			return false
		}
	}
	return true
}

// Matches reports whether every axis of query admits the value b holds on it.
// Axes absent from b never match a constrained query axis.
func (b Binding) Matches(query Binding) bool {
	for axis, want := range query {
		got, ok := b[axis]
		if !ok {
			return false
		}
		found := false
		for _, v := range got {
			if want.Admits(v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Axes returns the bound axis names in sorted order.
func (b Binding) Axes() []string {
	axes := maps.Keys(b)
	slices.Sort(axes)
	return axes
}

// Equal reports whether b and o bind the same axes to the same values.
func (b Binding) Equal(o Binding) bool {
	if len(b) != len(o) {
		return false
	}
	for axis, f := range b {
		g, ok := o[axis]
		if !ok || !slices.Equal(f, g) {
			return false
		}
	}
	return true
}

// String renders b with sorted axes, e.g. {case:genitive, number:[singular|plural]}.
func (b Binding) String() string {
	axes := b.Axes()
	parts := make([]string, len(axes))
	for i, axis := range axes {
		parts[i] = axis + ":" + b[axis].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TupleKey is a fully concrete, ordered tuple of axis values, ordered by the
// axis list of the indexing scheme that produced it. It is comparable and
// used as the only key form of a Store's content.
//
// Each value is stored as its byte length, a colon and the value itself, so
// any text, separators included, encodes and decodes unchanged.
type TupleKey struct {
	encoded string
	arity   int
}

// MakeTupleKey builds the key holding values in order.
func MakeTupleKey(values ...string) TupleKey {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return TupleKey{encoded: b.String(), arity: len(values)}
}

// Values returns the components of k in order.
func (k TupleKey) Values() []string {
	if k.arity == 0 {
		return nil
	}
	values := make([]string, 0, k.arity)
	rest := k.encoded
	for rest != "" {
		n, v, _ := strings.Cut(rest, ":")
		size, _ := strconv.Atoi(n)
		values = append(values, v[:size])
		rest = v[size:]
	}
	return values
}

// Arity is the number of components of k.
func (k TupleKey) Arity() int {
	return k.arity
}

func (k TupleKey) String() string {
	return "(" + strings.Join(k.Values(), ", ") + ")"
}

// unique returns a deduplicated slice preserving order.
func unique(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
