package cartula

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Indexing translates between open bindings and the tuple keys a Store
// holds. TupleKeys may return several keys for one binding when the
// binding admits several values on an axis.
type Indexing interface {
	// Axes lists the axes the scheme binds, in key order.
	Axes() []string
	// DictKey decodes k into a concrete binding.
	DictKey(k TupleKey) (Binding, error)
	// TupleKeys expands b into every concrete key it admits.
	TupleKeys(b Binding) ([]TupleKey, error)
}

// SingleAxis indexes by one axis.
type SingleAxis struct {
	Axis string
}

func (s SingleAxis) Axes() []string {
	return []string{s.Axis}
}

func (s SingleAxis) DictKey(k TupleKey) (Binding, error) {
	values := k.Values()
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: key %s has arity %d, scheme binds %q", ErrMissingAxis, k, len(values), s.Axis)
	}
	return Binding{s.Axis: One(values[0])}, nil
}

func (s SingleAxis) TupleKeys(b Binding) ([]TupleKey, error) {
	f, ok := b[s.Axis]
	if !ok || len(f) == 0 {
		return nil, &MissingAxisError{Axis: s.Axis, Binding: b}
	}
	values := unique(f)
	keys := make([]TupleKey, len(values))
	for i, v := range values {
		keys[i] = MakeTupleKey(v)
	}
	return keys, nil
}

// MultiAxis indexes by an ordered list of axes.
type MultiAxis struct {
	axes []string
}

// NewMultiAxis returns a scheme keyed by axes in the given order.
func NewMultiAxis(axes ...string) MultiAxis {
	return MultiAxis{axes: slices.Clone(axes)}
}

func (m MultiAxis) Axes() []string {
	return slices.Clone(m.axes)
}

func (m MultiAxis) DictKey(k TupleKey) (Binding, error) {
	values := k.Values()
	if len(values) != len(m.axes) {
		return nil, fmt.Errorf("%w: key %s has arity %d, scheme binds %v", ErrMissingAxis, k, len(values), m.axes)
	}
	b := make(Binding, len(m.axes))
	for i, v := range values {
		b[m.axes[i]] = One(v)
	}
	return b, nil
}

// TupleKeys computes the Cartesian product of the admissible values of each
// axis. Axes are walked last to first, each step prepending one value to
// every partial tuple, so the first axis varies slowest in the result.
func (m MultiAxis) TupleKeys(b Binding) ([]TupleKey, error) {
	partials := [][]string{{}}
	for i := len(m.axes) - 1; i >= 0; i-- {
		axis := m.axes[i]
		f, ok := b[axis]
		if !ok || len(f) == 0 {
			return nil, &MissingAxisError{Axis: axis, Binding: b}
		}
		values := unique(f)
		next := make([][]string, 0, len(values)*len(partials))
		for _, v := range values {
			for _, p := range partials {
				t := make([]string, 0, len(p)+1)
				t = append(t, v)
				next = append(next, append(t, p...))
			}
		}
		partials = next
	}
	keys := make([]TupleKey, len(partials))
	for i, p := range partials {
		keys[i] = MakeTupleKey(p...)
	}
	return keys, nil
}
