package cartula

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Syntax linearizes the children of unordered rules.
type Syntax interface {
	// Order returns the children of clause in surface order. context is the
	// binding in force at clause, its own features included.
	Order(clause *Rule, context Binding) ([]Node, error)
}

// Semantic roles children of a clause are bucketed by.
const (
	RoleSubject        = "subject"
	RoleVerb           = "verb"
	RoleDirectObject   = "direct-object"
	RoleIndirectObject = "indirect-object"
	RoleAdverbial      = "adverbial"
	RoleInterrogative  = "interrogative"
)

// Moods selecting an ordering template.
const (
	MoodDeclarative     = "declarative"
	MoodContentQuestion = "content-question"
)

// PersonalForm is the noun-form value that sends an object role to its
// clitic bucket.
const PersonalForm = "personal"

// DuplicateRoles says what a RoleSyntax does with two children in one bucket.
type DuplicateRoles int

const (
	// RejectDuplicateRoles fails the clause.
	RejectDuplicateRoles DuplicateRoles = iota
	// KeepDuplicateRoles places them side by side in the order written.
	KeepDuplicateRoles
)

// RoleSyntax orders clause children by semantic role. Each child names its
// role on RoleAxis; roles listed in CliticRoles are split further by
// FormAxis, so a personal-pronoun direct object lands in the
// "direct-object/personal" bucket. The template used depends on the
// clause mood.
type RoleSyntax struct {
	RoleAxis    string
	FormAxis    string
	MoodAxis    string
	CliticRoles []string
	// Templates maps mood to bucket order. The "" entry is used for moods
	// without their own template.
	Templates  map[string][]string
	Duplicates DuplicateRoles
}

func (s *RoleSyntax) roleAxis() string { return orDefault(s.RoleAxis, "role") }
func (s *RoleSyntax) formAxis() string { return orDefault(s.FormAxis, "noun-form") }
func (s *RoleSyntax) moodAxis() string { return orDefault(s.MoodAxis, "mood") }

func orDefault(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// Bucket classifies one clause child.
func (s *RoleSyntax) Bucket(child Node) (string, error) {
	r, ok := child.(*Rule)
	if !ok {
		return "", fmt.Errorf("%w: bare token %s has no role", ErrUnorderable, child)
	}
	role, ok := r.Features.Value(s.roleAxis())
	if !ok {
		return "", fmt.Errorf("%w: [%s] does not name one %s", ErrUnorderable, r.Tag, s.roleAxis())
	}
	if slices.Contains(s.CliticRoles, role) {
		if form, _ := r.Features.Value(s.formAxis()); form == PersonalForm {
			return role + "/" + PersonalForm, nil
		}
	}
	return role, nil
}

// Template returns the bucket order for the mood in context.
func (s *RoleSyntax) Template(context Binding) ([]string, error) {
	mood, _ := context.Value(s.moodAxis())
	if t, ok := s.Templates[mood]; ok {
		return t, nil
	}
	if t, ok := s.Templates[""]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: no ordering template for mood %q", ErrUnorderable, mood)
}

func (s *RoleSyntax) Order(clause *Rule, context Binding) ([]Node, error) {
	template, err := s.Template(context)
	if err != nil {
		return nil, err
	}
	buckets := make(map[string][]Node, len(clause.Children))
	for _, child := range clause.Children {
		b, err := s.Bucket(child)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(template, b) {
			return nil, fmt.Errorf("%w: the template for [%s] has no place for %s", ErrUnorderable, clause.Tag, b)
		}
		if len(buckets[b]) > 0 && s.Duplicates == RejectDuplicateRoles {
			return nil, fmt.Errorf("%w: [%s] has more than one %s", ErrUnorderable, clause.Tag, b)
		}
		buckets[b] = append(buckets[b], child)
	}
	ordered := make([]Node, 0, len(clause.Children))
	for _, b := range template {
		ordered = append(ordered, buckets[b]...)
	}
	return ordered, nil
}

// EnglishSyntax orders subject, verb, indirect object, direct object,
// adverbials. Content questions front the interrogative phrase. Stacked
// adverbials keep their written order.
func EnglishSyntax() *RoleSyntax {
	return &RoleSyntax{
		Templates: map[string][]string{
			"": {RoleSubject, RoleVerb, RoleIndirectObject, RoleDirectObject, RoleAdverbial},
			MoodContentQuestion: {RoleInterrogative, RoleSubject, RoleVerb,
				RoleIndirectObject, RoleDirectObject, RoleAdverbial},
		},
		Duplicates: KeepDuplicateRoles,
	}
}

// LatinSyntax is verb final. Two phrases in one role are rejected, since
// the order of, say, two ablatives carries meaning the template cannot
// know.
func LatinSyntax() *RoleSyntax {
	return &RoleSyntax{
		Templates: map[string][]string{
			"": {RoleSubject, RoleIndirectObject, RoleDirectObject, RoleAdverbial, RoleVerb},
			MoodContentQuestion: {RoleInterrogative, RoleSubject, RoleIndirectObject,
				RoleDirectObject, RoleAdverbial, RoleVerb},
		},
		Duplicates: RejectDuplicateRoles,
	}
}

// SpanishSyntax places personal-pronoun objects before the verb as
// clitics, indirect before direct ("me lo da"). Content questions invert
// the subject after the verb.
func SpanishSyntax() *RoleSyntax {
	ioClitic := RoleIndirectObject + "/" + PersonalForm
	doClitic := RoleDirectObject + "/" + PersonalForm
	return &RoleSyntax{
		CliticRoles: []string{RoleDirectObject, RoleIndirectObject},
		Templates: map[string][]string{
			"": {RoleSubject, ioClitic, doClitic, RoleVerb,
				RoleDirectObject, RoleIndirectObject, RoleAdverbial},
			MoodContentQuestion: {RoleInterrogative, ioClitic, doClitic, RoleVerb,
				RoleSubject, RoleDirectObject, RoleIndirectObject, RoleAdverbial},
		},
		Duplicates: RejectDuplicateRoles,
	}
}

// SyntaxByName returns a fresh preset: "english", "latin" or "spanish".
func SyntaxByName(name string) (Syntax, error) {
	switch name {
	case "english":
		return EnglishSyntax(), nil
	case "latin":
		return LatinSyntax(), nil
	case "spanish":
		return SpanishSyntax(), nil
	default:
		return nil, fmt.Errorf("%w: unknown syntax %q", ErrConfiguration, name)
	}
}
