package cartula

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every typed error below unwraps to one of these, so callers
// can test with errors.Is.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrConflictingEntry   = errors.New("conflicting entry")
	ErrKeyNotFound        = errors.New("key not found")
	ErrAmbiguousKey       = errors.New("ambiguous key")
	ErrInflectionNotFound = errors.New("inflection not found")
	ErrMissingAxis        = errors.New("missing axis")
	ErrUnfilledSlot       = errors.New("unfilled slot")
	ErrUnorderable        = errors.New("unorderable clause")
)

// ConfigurationError reports a malformed table or header.
// Row and Column are 0-based; -1 means the coordinate does not apply.
type ConfigurationError struct {
	Row, Column int
	Text        string
	Reason      string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConfiguration.Error())
	if e.Row >= 0 || e.Column >= 0 {
		fmt.Fprintf(&b, " at row %d, column %d", e.Row, e.Column)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " (%q)", e.Text)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ConflictingEntryError is raised by flat population when a second,
// different value is written to an occupied key.
type ConflictingEntryError struct {
	Store    string
	Key      Binding
	Existing any
	Incoming any
	Row      int
	Column   int
}

func (e *ConflictingEntryError) Error() string {
	return fmt.Sprintf("%s: store %q already holds %v at %s, refusing %v (row %d, column %d)",
		ErrConflictingEntry, e.Store, e.Existing, e.Key, e.Incoming, e.Row, e.Column)
}

func (e *ConflictingEntryError) Unwrap() error { return ErrConflictingEntry }

// KeyNotFoundError reports a query that matched no stored key.
type KeyNotFoundError struct {
	Store string
	Query Binding
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s: store %q has no entry for %s", ErrKeyNotFound, e.Store, e.Query)
}

func (e *KeyNotFoundError) Unwrap() error { return ErrKeyNotFound }

// AmbiguousKeyError reports a query that matched several stored keys.
// Candidates holds each match decoded back to a binding.
type AmbiguousKeyError struct {
	Store      string
	Query      Binding
	Candidates []Binding
}

func (e *AmbiguousKeyError) Error() string {
	parts := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s: store %q matches %d entries for %s: %s",
		ErrAmbiguousKey, e.Store, len(e.Candidates), e.Query, strings.Join(parts, ", "))
}

func (e *AmbiguousKeyError) Unwrap() error { return ErrAmbiguousKey }

// MissingAxisError reports a binding that cannot be encoded because the
// indexing scheme needs an axis the binding does not supply.
type MissingAxisError struct {
	Axis    string
	Binding Binding
}

func (e *MissingAxisError) Error() string {
	return fmt.Sprintf("%s: %q is not bound in %s", ErrMissingAxis, e.Axis, e.Binding)
}

func (e *MissingAxisError) Unwrap() error { return ErrMissingAxis }

// InflectionNotFoundError reports a leaf the grammar could not inflect.
// Cause is the underlying lookup failure.
type InflectionNotFoundError struct {
	Tag   string
	Token string
	Query Binding
	Cause error
}

func (e *InflectionNotFoundError) Error() string {
	return fmt.Sprintf("%s: [%s %s] under %s: %v", ErrInflectionNotFound, e.Tag, e.Token, e.Query, e.Cause)
}

// Unwrap exposes both the kind and the lookup cause.
func (e *InflectionNotFoundError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInflectionNotFound}
	}
	return []error{ErrInflectionNotFound, e.Cause}
}

// UnfilledSlotError reports an empty rule that no substitution filled.
type UnfilledSlotError struct {
	Tag string
}

func (e *UnfilledSlotError) Error() string {
	return fmt.Sprintf("%s: nothing fills [%s]", ErrUnfilledSlot, e.Tag)
}

func (e *UnfilledSlotError) Unwrap() error { return ErrUnfilledSlot }
