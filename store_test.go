package cartula

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cell(text string, pairs ...string) Cell {
	return Cell{Binding: Bind(pairs...), Text: text}
}

func nounStore(t *testing.T) *Store[string] {
	t.Helper()
	s := NewStore[string]("nouns", NewMultiAxis("case", "number"))
	err := PopulateFlat(s, []Cell{
		cell("cat", "case", "nominative", "number", "singular"),
		cell("cats", "case", "nominative", "number", "plural"),
		cell("cat's", "case", "genitive", "number", "singular"),
	}, Text)
	require.NoError(t, err)
	return s
}

func TestFlatConflict(t *testing.T) {
	s := NewStore[string]("nouns", NewMultiAxis("case", "number"))
	require.NoError(t, PopulateFlat(s, []Cell{cell("X", "case", "nominative", "number", "singular")}, Text))

	err := PopulateFlat(s, []Cell{cell("X", "case", "nominative", "number", "singular")}, Text)
	assert.NoError(t, err, "rewriting the same value must be a no-op")

	err = PopulateFlat(s, []Cell{cell("Y", "case", "nominative", "number", "singular")}, Text)
	require.ErrorIs(t, err, ErrConflictingEntry)
	var conflict *ConflictingEntryError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "X", conflict.Existing)
	assert.Equal(t, "Y", conflict.Incoming)
	assert.Equal(t, "nouns", conflict.Store)
}

func TestFlatConflictIsAllOrNothing(t *testing.T) {
	s := NewStore[string]("nouns", NewMultiAxis("case", "number"))
	err := PopulateFlat(s, []Cell{
		cell("cat", "case", "nominative", "number", "singular"),
		cell("cats", "case", "nominative", "number", "plural"),
		cell("kitty", "case", "nominative", "number", "singular"),
	}, Text)
	require.ErrorIs(t, err, ErrConflictingEntry)
	assert.Equal(t, 0, s.Len(), "a failed pass must not leave partial content")
}

func TestFlatMultiValuedCell(t *testing.T) {
	s := NewStore[string]("articles", NewMultiAxis("gender", "number"))
	err := PopulateFlat(s, []Cell{{
		Binding: Binding{"gender": Any("masculine", "feminine", "neuter"), "number": One("plural")},
		Text:    "the",
	}}, Text)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	v, err := s.Lookup(Bind("gender", "neuter", "number", "plural"))
	require.NoError(t, err)
	assert.Equal(t, "the", v)
}

func TestLookup(t *testing.T) {
	s := nounStore(t)

	v, err := s.Lookup(Bind("case", "genitive", "number", "singular"))
	require.NoError(t, err)
	assert.Equal(t, "cat's", v)

	// Only one of the two expansions is stored.
	v, err = s.Lookup(Binding{"case": One("genitive"), "number": Any("singular", "plural")})
	require.NoError(t, err)
	assert.Equal(t, "cat's", v)

	_, err = s.Lookup(Bind("case", "genitive", "number", "plural"))
	require.ErrorIs(t, err, ErrKeyNotFound)
	var notFound *KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nouns", notFound.Store)
	assert.Contains(t, err.Error(), "{case:genitive, number:plural}")

	_, err = s.Lookup(Bind("case", "genitive"))
	assert.ErrorIs(t, err, ErrMissingAxis)
}

func TestLookupAmbiguous(t *testing.T) {
	s := nounStore(t)
	_, err := s.Lookup(Binding{"case": One("nominative"), "number": Any("singular", "plural")})
	require.ErrorIs(t, err, ErrAmbiguousKey)
	assert.NotErrorIs(t, err, ErrKeyNotFound)

	var ambiguous *AmbiguousKeyError
	require.ErrorAs(t, err, &ambiguous)
	want := []Binding{
		Bind("case", "nominative", "number", "plural"),
		Bind("case", "nominative", "number", "singular"),
	}
	if diff := cmp.Diff(want, ambiguous.Candidates); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestAtBypassesIndexing(t *testing.T) {
	s := nounStore(t)
	v, ok := s.At(MakeTupleKey("nominative", "plural"))
	assert.True(t, ok)
	assert.Equal(t, "cats", v)
	_, ok = s.At(MakeTupleKey("plural", "nominative"))
	assert.False(t, ok)
}

func TestContainsAndEntries(t *testing.T) {
	s := nounStore(t)
	assert.True(t, s.Contains(Binding{"case": One("nominative"), "number": Any("singular", "plural")}))
	assert.False(t, s.Contains(Bind("case", "genitive", "number", "plural")))
	assert.False(t, s.Contains(Bind("case", "genitive")), "an unencodable query is never contained")

	entries := s.Entries(Bind("case", "nominative"))
	require.Len(t, entries, 2)
	assert.Equal(t, "cats", entries[0].Value)
	assert.Equal(t, "cat", entries[1].Value)

	assert.Len(t, s.Entries(nil), 3)
	assert.Empty(t, s.Entries(Bind("gender", "feminine")))
}

func TestListStore(t *testing.T) {
	s := NewStore[[]string]("variants", SingleAxis{Axis: "lemma"})
	err := PopulateList(s, []Cell{
		cell("dreamed", "lemma", "dream"),
		cell("dreamt", "lemma", "dream"),
		cell("went", "lemma", "go"),
	}, Text)
	require.NoError(t, err)

	v, err := s.Lookup(Bind("lemma", "dream"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dreamed", "dreamt"}, v)
}

func TestSetStore(t *testing.T) {
	s := NewStore[struct{}]("transitive", SingleAxis{Axis: "verb"})
	require.NoError(t, PopulateSet(s, []Cell{cell("", "verb", "eat"), cell("", "verb", "see")}))
	assert.True(t, s.Contains(Bind("verb", "eat")))
	assert.False(t, s.Contains(Bind("verb", "sleep")))
	assert.Equal(t, 2, s.Len())
}

func TestCloneDoesNotAlias(t *testing.T) {
	template := NewStore[[]string]("forms", SingleAxis{Axis: "lemma"})
	require.NoError(t, PopulateList(template, []Cell{cell("a", "lemma", "x")}, Text))

	left := template.CloneAs("left")
	right := template.CloneAs("right")
	require.NoError(t, PopulateList(left, []Cell{cell("b", "lemma", "x")}, Text))
	require.NoError(t, PopulateList(right, []Cell{cell("c", "lemma", "x"), cell("d", "lemma", "y")}, Text))

	l, _ := left.Lookup(Bind("lemma", "x"))
	r, _ := right.Lookup(Bind("lemma", "x"))
	orig, _ := template.Lookup(Bind("lemma", "x"))
	assert.Equal(t, []string{"a", "b"}, l)
	assert.Equal(t, []string{"a", "c"}, r)
	assert.Equal(t, []string{"a"}, orig)
	assert.False(t, left.Contains(Bind("lemma", "y")))
	assert.Equal(t, "right", right.Name())
}

func TestSplitEvaluator(t *testing.T) {
	got, err := Split("/")(Cell{Text: "dreamed / dreamt/ "})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if diff := cmp.Diff([]string{"dreamed", "dreamt"}, got); diff != "" {
		t.Errorf("Split mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluatorErrorAborts(t *testing.T) {
	s := NewStore[string]("nouns", SingleAxis{Axis: "noun"})
	boom := errors.New("boom")
	err := PopulateFlat(s, []Cell{cell("a", "noun", "x")}, func(Cell) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())
}

func TestEntriesWithControlCharactersInHeaders(t *testing.T) {
	table, err := ReadTable(strings.NewReader("*\tsg\nfoo\x1fbar\tx\n"), DefaultSourceOptions())
	require.NoError(t, err)
	ann := CantonAnnotation{Headers: Headers{
		Keywords:         Keywords{"sg": {Axis: "number", Value: "singular"}},
		HeaderColumnAxes: map[int]string{0: "noun"},
	}}
	cells, err := ann.Annotate(table)
	require.NoError(t, err)

	s := NewStore[string]("nouns", NewMultiAxis("noun", "number"))
	require.NoError(t, PopulateFlat(s, cells, Text))

	entries := s.Entries(nil)
	require.Len(t, entries, 1)
	assert.Equal(t, Bind("noun", "foo\x1fbar", "number", "singular"), entries[0].Binding)
	assert.Equal(t, "x", entries[0].Value)

	err = PopulateFlat(s, []Cell{cell("y", "noun", "foo\x1fbar", "number", "singular")}, Text)
	var conflict *ConflictingEntryError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, Bind("noun", "foo\x1fbar", "number", "singular"), conflict.Key)
}
