package cartula

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Evaluator turns an annotated cell into the value to store.
type Evaluator[V any] func(c Cell) (V, error)

// Text stores the cell text unchanged.
func Text(c Cell) (string, error) {
	return c.Text, nil
}

// Split stores the cell text cut at sep, each part trimmed and blanks
// dropped. Use it with list stores for cells holding several forms.
func Split(sep string) Evaluator[[]string] {
	return func(c Cell) ([]string, error) {
		var parts []string
		for _, p := range strings.Split(c.Text, sep) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return parts, nil
	}
}

// PopulateFlat writes the evaluated value of each cell at every key its
// binding expands to. Writing a different value to an occupied key fails
// with a *ConflictingEntryError; writing the same value again is a no-op.
// On failure the store is left as it was.
func PopulateFlat[V comparable](s *Store[V], cells []Cell, eval Evaluator[V]) error {
	staged := maps.Clone(s.content)
	for _, c := range cells {
		v, err := eval(c)
		if err != nil {
			return err
		}
		keys, err := s.indexing.TupleKeys(c.Binding)
		if err != nil {
			return err
		}
		for _, k := range keys {
			old, ok := staged[k]
			if !ok {
				staged[k] = v
				continue
			}
			if old != v {
				decoded, _ := s.indexing.DictKey(k)
				return &ConflictingEntryError{
					Store:    s.name,
					Key:      decoded,
					Existing: old,
					Incoming: v,
					Row:      c.Row,
					Column:   c.Column,
				}
			}
		}
	}
	s.content = staged
	return nil
}

// PopulateList appends the evaluated value of each cell at every key its
// binding expands to. Stored slices are never appended to in place.
func PopulateList[V any](s *Store[[]V], cells []Cell, eval Evaluator[V]) error {
	staged := maps.Clone(s.content)
	for _, c := range cells {
		v, err := eval(c)
		if err != nil {
			return err
		}
		keys, err := s.indexing.TupleKeys(c.Binding)
		if err != nil {
			return err
		}
		for _, k := range keys {
			staged[k] = append(slices.Clip(staged[k]), v)
		}
	}
	s.content = staged
	return nil
}

// PopulateSet records membership of every key each cell's binding expands
// to. Cell text is ignored.
func PopulateSet(s *Store[struct{}], cells []Cell) error {
	staged := maps.Clone(s.content)
	for _, c := range cells {
		keys, err := s.indexing.TupleKeys(c.Binding)
		if err != nil {
			return err
		}
		for _, k := range keys {
			staged[k] = struct{}{}
		}
	}
	s.content = staged
	return nil
}
