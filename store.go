package cartula

import (
	"sort"

	"golang.org/x/exp/maps"
)

// Store is a feature-indexed table of values. It owns its content; stores
// are populated once and read-only afterwards.
type Store[V any] struct {
	name     string
	indexing Indexing
	content  map[TupleKey]V
}

// NewStore returns an empty store keyed by indexing.
func NewStore[V any](name string, indexing Indexing) *Store[V] {
	return &Store[V]{
		name:     name,
		indexing: indexing,
		content:  make(map[TupleKey]V),
	}
}

// Name identifies the store in diagnostics.
func (s *Store[V]) Name() string {
	return s.name
}

// Indexing returns the store's scheme.
func (s *Store[V]) Indexing() Indexing {
	return s.indexing
}

// Len is the number of stored keys.
func (s *Store[V]) Len() int {
	return len(s.content)
}

// Clone returns a store with the same name and scheme and its own copy of
// the content map. Values are copied shallowly; population never mutates a
// stored value in place, so clones do not alias.
func (s *Store[V]) Clone() *Store[V] {
	return s.cloneAs(s.name)
}

// CloneAs is Clone under a different name.
func (s *Store[V]) CloneAs(name string) *Store[V] {
	return s.cloneAs(name)
}

func (s *Store[V]) cloneAs(name string) *Store[V] {
	return &Store[V]{
		name:     name,
		indexing: s.indexing,
		content:  maps.Clone(s.content),
	}
}

// At returns the value stored under a concrete key, bypassing indexing.
func (s *Store[V]) At(k TupleKey) (V, bool) {
	v, ok := s.content[k]
	return v, ok
}

// Lookup resolves a query to the single value it names. The query may
// admit several values per axis; exactly one of its expansions must be
// stored.
func (s *Store[V]) Lookup(query Binding) (V, error) {
	var zero V
	keys, err := s.matches(query)
	if err != nil {
		return zero, err
	}
	switch len(keys) {
	case 0:
		return zero, &KeyNotFoundError{Store: s.name, Query: query.Clone()}
	case 1:
		return s.content[keys[0]], nil
	default:
		candidates := make([]Binding, 0, len(keys))
		for _, k := range keys {
			b, err := s.indexing.DictKey(k)
			if err != nil {
				return zero, err
			}
			candidates = append(candidates, b)
		}
		sortBindings(candidates)
		return zero, &AmbiguousKeyError{Store: s.name, Query: query.Clone(), Candidates: candidates}
	}
}

// Contains reports whether any expansion of query is stored.
func (s *Store[V]) Contains(query Binding) bool {
	keys, err := s.matches(query)
	return err == nil && len(keys) > 0
}

// matches expands query and keeps the keys present in content.
func (s *Store[V]) matches(query Binding) ([]TupleKey, error) {
	keys, err := s.indexing.TupleKeys(query)
	if err != nil {
		return nil, err
	}
	var found []TupleKey
	for _, k := range keys {
		if _, ok := s.content[k]; ok {
			found = append(found, k)
		}
	}
	return found, nil
}

// Entry is one stored key, decoded, with its value.
type Entry[V any] struct {
	Binding Binding
	Value   V
}

// Entries returns every stored entry consistent with a partial query, in
// sorted binding order. Axes the query leaves out are unconstrained; a nil
// query returns everything.
func (s *Store[V]) Entries(query Binding) []Entry[V] {
	var out []Entry[V]
	for k, v := range s.content {
		b, err := s.indexing.DictKey(k)
		if err != nil {
			continue
		}
		if b.Matches(query) {
			out = append(out, Entry[V]{Binding: b, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Binding.String() < out[j].Binding.String()
	})
	return out
}

// sortBindings orders bindings by their rendering for stable diagnostics.
func sortBindings(bs []Binding) {
	sort.Slice(bs, func(i, j int) bool {
		return bs[i].String() < bs[j].String()
	})
}

// Lookuper resolves a query to one text value. *Store[string] satisfies it.
type Lookuper interface {
	Lookup(query Binding) (string, error)
}
