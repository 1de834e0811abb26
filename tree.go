package cartula

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/exp/slices"
)

// Node is a syntax tree node: a Token or a *Rule. Trees are immutable once
// built; rewriting produces new nodes.
type Node interface {
	node()
	String() string
}

// Token is leaf text: a lemma for the grammar to inflect, or a literal.
type Token string

func (Token) node() {}

// String quotes the token when it would not read back as one bare word.
func (t Token) String() string {
	if t == "" || strings.ContainsAny(string(t), "[]{}\"=+@") || strings.IndexFunc(string(t), unicode.IsSpace) >= 0 {
		return strconv.Quote(string(t))
	}
	return string(t)
}

// Rule is a tagged node.
type Rule struct {
	// Tag names the node: a part of speech for leaves ("n", "v"), a phrase
	// or clause label otherwise.
	Tag string
	// Features are node-local grammatical attributes, merged over the
	// inherited context.
	Features Binding
	// Marks are presentation flags read by the Formatting strategy.
	Marks []string
	// Seme names the feature binding attached at this node, if any.
	Seme string
	// Children in order. When Unordered is set the order carries no meaning
	// and the Syntax strategy decides it.
	Children  []Node
	Unordered bool
}

func (*Rule) node() {}

// NewRule builds an ordered rule.
func NewRule(tag string, children ...Node) *Rule {
	return &Rule{Tag: tag, Children: children}
}

// NewClause builds an unordered rule.
func NewClause(tag string, children ...Node) *Rule {
	return &Rule{Tag: tag, Children: children, Unordered: true}
}

// Leaf builds the rule [tag token].
func Leaf(tag, token string) *Rule {
	return &Rule{Tag: tag, Children: []Node{Token(token)}}
}

// With returns a copy of r with extra features merged over its own.
func (r *Rule) With(features Binding) *Rule {
	c := r.clone()
	c.Features = c.Features.Merge(features)
	return c
}

// Marked returns a copy of r carrying extra presentation marks.
func (r *Rule) Marked(marks ...string) *Rule {
	c := r.clone()
	c.Marks = append(c.Marks, marks...)
	return c
}

// Attached returns a copy of r attached to the named seme.
func (r *Rule) Attached(seme string) *Rule {
	c := r.clone()
	c.Seme = seme
	return c
}

// HasMark reports whether r carries mark.
func (r *Rule) HasMark(mark string) bool {
	return slices.Contains(r.Marks, mark)
}

// Token returns the text of a leaf rule: one whose only child is a Token.
func (r *Rule) Token() (string, bool) {
	if len(r.Children) != 1 {
		return "", false
	}
	t, ok := r.Children[0].(Token)
	return string(t), ok
}

// clone copies r one level deep; children are shared since they are never
// modified.
func (r *Rule) clone() *Rule {
	return &Rule{
		Tag:       r.Tag,
		Features:  r.Features.Clone(),
		Marks:     slices.Clone(r.Marks),
		Seme:      r.Seme,
		Children:  slices.Clone(r.Children),
		Unordered: r.Unordered,
	}
}

// String renders r in the syntax ParseTree reads.
func (r *Rule) String() string {
	var b strings.Builder
	opener, closer := "[", "]"
	if r.Unordered {
		opener, closer = "{", "}"
	}
	b.WriteString(opener)
	b.WriteString(r.Tag)
	for _, axis := range r.Features.Axes() {
		b.WriteString(" ")
		b.WriteString(axis)
		b.WriteString("=")
		b.WriteString(strings.Join(r.Features[axis], "|"))
	}
	for _, m := range r.Marks {
		b.WriteString(" +")
		b.WriteString(m)
	}
	if r.Seme != "" {
		b.WriteString(" @")
		b.WriteString(r.Seme)
	}
	for _, c := range r.Children {
		b.WriteString(" ")
		b.WriteString(c.String())
	}
	b.WriteString(closer)
	return b.String()
}

// Semes maps attachment names to the bindings they supply.
type Semes map[string]Binding
