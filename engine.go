package cartula

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultSentinel replaces any part of a rendering that could not be
// resolved. Consumers drop cards containing it.
const DefaultSentinel = "∅"

// Substitution grafts a replacement into every rule tagged Tag. Replace
// receives the rule and the context in force at it and returns the node to
// render instead.
type Substitution struct {
	Tag     string
	Replace func(r *Rule, context Binding) Node
}

// Rendering is the result of one Map call.
type Rendering struct {
	Text string
	// Errors lists every resolution failure; each left a sentinel in Text.
	Errors []error
}

// Complete reports whether everything resolved.
func (r Rendering) Complete() bool {
	return len(r.Errors) == 0
}

// Engine renders syntax trees for one target language.
type Engine struct {
	grammar  Grammar
	syntax   Syntax
	format   Formatting
	sentinel string
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSentinel replaces DefaultSentinel.
func WithSentinel(s string) EngineOption {
	return func(e *Engine) { e.sentinel = s }
}

// WithEngineLogger logs every resolution failure at debug level.
func WithEngineLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine composes the three strategies. A nil syntax leaves unordered
// children in written order; a nil format applies no markup.
func NewEngine(grammar Grammar, syntax Syntax, format Formatting, opts ...EngineOption) *Engine {
	e := &Engine{
		grammar:  grammar,
		syntax:   syntax,
		format:   format,
		sentinel: DefaultSentinel,
		logger:   zap.NewNop(),
	}
	if e.format == nil {
		e.format = PlainFormatting{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sentinel is the placeholder this engine writes for unresolved parts.
func (e *Engine) Sentinel() string {
	return e.sentinel
}

// Map renders tree. Feature bindings flow downward: each rule sees the
// binding of its parent, overlaid by the seme it is attached to, overlaid by
// its own features. Substitutions are tried at every rule before default
// handling. The inputs are never modified and equal inputs give equal
// output.
func (e *Engine) Map(tree Node, semes Semes, subs []Substitution) Rendering {
	m := &mapping{engine: e, semes: semes}
	text := m.render(tree, Binding{}, subs)
	return Rendering{Text: text, Errors: m.errs}
}

// mapping holds the state of one Map call.
type mapping struct {
	engine *Engine
	semes  Semes
	errs   []error
}

func (m *mapping) fail(err error) string {
	m.errs = append(m.errs, err)
	m.engine.logger.Debug("unresolved node", zap.Error(err))
	return m.engine.sentinel
}

func (m *mapping) render(n Node, context Binding, subs []Substitution) string {
	switch n := n.(type) {
	case Token:
		return string(n)
	case *Rule:
		return m.renderRule(n, context, subs)
	default:
		return ""
	}
}

func (m *mapping) renderRule(r *Rule, context Binding, subs []Substitution) string {
	if r.Seme != "" {
		context = context.Merge(m.semes[r.Seme])
	}
	context = context.Merge(r.Features)

	for i, sub := range subs {
		if sub.Tag != r.Tag {
			continue
		}
		// The replacement is rendered without this substitution at its
		// root, so a replacement carrying the same tag does not recurse.
		rest := make([]Substitution, 0, len(subs)-1)
		rest = append(rest, subs[:i]...)
		rest = append(rest, subs[i+1:]...)
		replacement := sub.Replace(r, context.Clone())
		if replacement == nil {
			return m.fail(&UnfilledSlotError{Tag: r.Tag})
		}
		return m.engine.format.Format(r, m.render(replacement, context, rest))
	}

	var text string
	if token, ok := r.Token(); ok {
		text = m.leaf(r.Tag, token, context)
	} else if len(r.Children) == 0 {
		text = m.fail(&UnfilledSlotError{Tag: r.Tag})
	} else {
		text = m.branch(r, context, subs)
	}
	return m.engine.format.Format(r, text)
}

func (m *mapping) leaf(tag, token string, context Binding) string {
	g := m.engine.grammar
	if g == nil || !g.Inflects(tag) {
		return token
	}
	form, err := g.Inflect(tag, token, context)
	if err != nil {
		return m.fail(err)
	}
	return form
}

func (m *mapping) branch(r *Rule, context Binding, subs []Substitution) string {
	children := r.Children
	if r.Unordered && m.engine.syntax != nil {
		ordered, err := m.engine.syntax.Order(r, context)
		if err != nil {
			return m.fail(err)
		}
		children = ordered
	}
	parts := make([]string, 0, len(children))
	for _, c := range children {
		if s := m.render(c, context, subs); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
