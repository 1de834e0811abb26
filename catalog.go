// Package cartula generates inflected flashcard text from declension and
// conjugation charts. Charts are read as tables, annotated with the
// grammatical features their headers name, and loaded into feature-indexed
// stores; an engine then renders syntax trees through those stores.
package cartula

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
)

// Catalog holds every store and engine a configuration describes. It is
// built once and read-only afterwards.
type Catalog struct {
	flat map[string]*Store[string]
	list map[string]*Store[[]string]
	set  map[string]*Store[struct{}]

	engines map[string]*Engine

	logger *zap.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLogger sets the logger used while loading and by the engines.
func WithLogger(l *zap.Logger) CatalogOption {
	return func(c *Catalog) { c.logger = l }
}

// Load reads every table of cfg, in order, and builds the language engines.
// Any failure aborts the whole load.
func Load(cfg *Config, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		flat:    make(map[string]*Store[string]),
		list:    make(map[string]*Store[[]string]),
		set:     make(map[string]*Store[struct{}]),
		engines: make(map[string]*Engine),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, t := range cfg.Tables {
		path := cfg.TablePath(t)
		table, err := ReadTableFile(path, cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", t.Name, err)
		}
		if err := c.AddTable(cfg, t, table); err != nil {
			return nil, fmt.Errorf("table %q (%s): %w", t.Name, path, err)
		}
	}
	for _, l := range cfg.Languages {
		e, err := c.buildEngine(l)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", l.Name, err)
		}
		c.engines[l.Name] = e
	}
	return c, nil
}

// AddTable annotates an already-read table and populates its store.
func (c *Catalog) AddTable(cfg *Config, t TableConfig, table Table) error {
	ann, err := cfg.Annotation(t)
	if err != nil {
		return err
	}
	cells, err := ann.Annotate(table)
	if err != nil {
		return err
	}

	switch t.discipline() {
	case DisciplineFlat:
		s, err := seed(c.flat, t)
		if err != nil {
			return err
		}
		if err := PopulateFlat(s, cells, Text); err != nil {
			return err
		}
		c.flat[t.Name] = s
	case DisciplineList:
		s, err := seed(c.list, t)
		if err != nil {
			return err
		}
		if t.Separator != "" {
			cells = splitCells(cells, t.Separator)
		}
		if err := PopulateList(s, cells, Text); err != nil {
			return err
		}
		c.list[t.Name] = s
	case DisciplineSet:
		s, err := seed(c.set, t)
		if err != nil {
			return err
		}
		if err := PopulateSet(s, cells); err != nil {
			return err
		}
		c.set[t.Name] = s
	}

	c.logger.Info("table loaded",
		zap.String("table", t.Name),
		zap.String("discipline", t.discipline()),
		zap.Int("cells", len(cells)),
		zap.Strings("axes", t.Axes))
	return nil
}

// splitCells turns a cell holding several separated forms into one cell
// per form.
func splitCells(cells []Cell, sep string) []Cell {
	split := Split(sep)
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		parts, _ := split(c)
		for _, p := range parts {
			one := c
			one.Text = p
			out = append(out, one)
		}
	}
	return out
}

// seed returns a fresh store for t, cloned from its template if it has one.
func seed[V any](stores map[string]*Store[V], t TableConfig) (*Store[V], error) {
	if t.Template == "" {
		return NewStore[V](t.Name, t.Indexing()), nil
	}
	tmpl, ok := stores[t.Template]
	if !ok {
		return nil, fmt.Errorf("%w: template %q is not loaded", ErrConfiguration, t.Template)
	}
	if !slices.Equal(tmpl.Indexing().Axes(), t.Axes) {
		return nil, fmt.Errorf("%w: template %q is keyed by %v, not %v", ErrConfiguration, t.Template, tmpl.Indexing().Axes(), t.Axes)
	}
	return tmpl.CloneAs(t.Name), nil
}

func (c *Catalog) buildEngine(l LanguageConfig) (*Engine, error) {
	grammar := LookupGrammar{}
	for tag, inf := range l.Inflections {
		s, ok := c.flat[inf.Table]
		if !ok {
			return nil, fmt.Errorf("%w: table %q is not loaded", ErrConfiguration, inf.Table)
		}
		grammar[tag] = Inflection{Table: s, TokenAxis: inf.TokenAxis, Defaults: inf.Defaults}
	}

	var syntax Syntax
	if l.Syntax != "" {
		var err error
		if syntax, err = SyntaxByName(l.Syntax); err != nil {
			return nil, err
		}
	}

	tag := language.Und
	if l.Locale != "" {
		var err error
		if tag, err = language.Parse(l.Locale); err != nil {
			return nil, fmt.Errorf("%w: locale %q: %v", ErrConfiguration, l.Locale, err)
		}
	}

	opts := []EngineOption{WithEngineLogger(c.logger.With(zap.String("language", l.Name)))}
	if l.Sentinel != "" {
		opts = append(opts, WithSentinel(l.Sentinel))
	}
	return NewEngine(grammar, syntax, MarkupFormatting{Cloze: l.Cloze, Language: tag}, opts...), nil
}

// Flat returns the named single-value store.
func (c *Catalog) Flat(name string) (*Store[string], bool) {
	s, ok := c.flat[name]
	return s, ok
}

// List returns the named list store.
func (c *Catalog) List(name string) (*Store[[]string], bool) {
	s, ok := c.list[name]
	return s, ok
}

// Set returns the named membership store.
func (c *Catalog) Set(name string) (*Store[struct{}], bool) {
	s, ok := c.set[name]
	return s, ok
}

// Engine returns the engine of the named language.
func (c *Catalog) Engine(name string) (*Engine, bool) {
	e, ok := c.engines[name]
	return e, ok
}

// Tables lists the loaded store names in sorted order.
func (c *Catalog) Tables() []string {
	names := maps.Keys(c.flat)
	names = append(names, maps.Keys(c.list)...)
	names = append(names, maps.Keys(c.set)...)
	slices.Sort(names)
	return names
}

// Languages lists the configured languages in sorted order.
func (c *Catalog) Languages() []string {
	names := maps.Keys(c.engines)
	slices.Sort(names)
	return names
}
