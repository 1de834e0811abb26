package cartula

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config describes every table to load and every language to render.
//
//	source: {delimiter: "\t", comment: "#"}
//	keywords:
//	  number: {singular: {axis: number, value: singular}}
//	tables:
//	  - name: english-nouns
//	    path: english/nouns.tsv
//	    axes: [noun, number, case]
//	    annotation: {kind: canton, families: [number], header_row_axes: {0: noun}}
//	languages:
//	  - name: english
//	    syntax: english
//	    inflections: {n: {table: english-nouns, token_axis: noun}}
type Config struct {
	Source SourceOptions `yaml:"source"`
	// Keywords holds the header vocabularies shared by table families.
	Keywords  map[string]Keywords `yaml:"keywords"`
	Tables    []TableConfig       `yaml:"tables"`
	Languages []LanguageConfig    `yaml:"languages"`

	// dir resolves relative table paths.
	dir string
}

// Disciplines a table can be stored under.
const (
	DisciplineFlat = "flat"
	DisciplineList = "list"
	DisciplineSet  = "set"
)

// TableConfig describes one source table and the store built from it.
type TableConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Discipline is flat (default), list or set.
	Discipline string   `yaml:"discipline"`
	Axes       []string `yaml:"axes"`
	// Template names an earlier table of the same discipline whose store
	// is cloned to seed this one.
	Template string `yaml:"template"`
	// Separator splits list cells into several values.
	Separator  string           `yaml:"separator"`
	Annotation AnnotationConfig `yaml:"annotation"`
}

// AnnotationConfig selects and parameterizes an Annotation.
type AnnotationConfig struct {
	// Kind is row, cell or canton (default).
	Kind          string   `yaml:"kind"`
	Axes          []string `yaml:"axes"`
	HeaderRows    int      `yaml:"header_rows"`
	HeaderColumns int      `yaml:"header_columns"`
	Canton        string   `yaml:"canton"`
	// Families name entries of Config.Keywords; Keywords adds table-local
	// entries over them.
	Families         []string       `yaml:"families"`
	Keywords         Keywords       `yaml:"keywords"`
	HeaderRowAxes    map[int]string `yaml:"header_row_axes"`
	HeaderColumnAxes map[int]string `yaml:"header_column_axes"`
	// RowBindings and ColumnBindings are keyed by index lists such as
	// "1", "2-4" or "1,3".
	RowBindings    map[string]Binding `yaml:"row_bindings"`
	ColumnBindings map[string]Binding `yaml:"column_bindings"`
	Defaults       Binding            `yaml:"defaults"`
}

// LanguageConfig describes the engine for one target language.
type LanguageConfig struct {
	Name string `yaml:"name"`
	// Syntax names a preset accepted by SyntaxByName.
	Syntax string `yaml:"syntax"`
	// Locale is a BCP 47 tag used for casing marks.
	Locale      string                      `yaml:"locale"`
	Cloze       int                         `yaml:"cloze"`
	Sentinel    string                      `yaml:"sentinel"`
	Inflections map[string]InflectionConfig `yaml:"inflections"`
}

// InflectionConfig binds a leaf tag to a flat table.
type InflectionConfig struct {
	Table     string  `yaml:"table"`
	TokenAxis string  `yaml:"token_axis"`
	Defaults  Binding `yaml:"defaults"`
}

// UnmarshalYAML accepts either one scalar or a sequence of them.
func (f *Feature) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*f = Feature{n.Value}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := n.Decode(&values); err != nil {
			return err
		}
		*f = Any(values...)
		return nil
	default:
		return fmt.Errorf("line %d: a feature is a value or a list of values", n.Line)
	}
}

// LoadConfig reads and validates a YAML configuration file. Relative table
// paths resolve against the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes and validates YAML configuration text.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cfg.Source = cfg.Source.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks names, references and disciplines.
func (c *Config) Validate() error {
	tables := make(map[string]TableConfig, len(c.Tables))
	for i, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("%w: table %d has no name", ErrConfiguration, i)
		}
		if _, dup := tables[t.Name]; dup {
			return fmt.Errorf("%w: table %q is defined twice", ErrConfiguration, t.Name)
		}
		if t.Path == "" {
			return fmt.Errorf("%w: table %q has no path", ErrConfiguration, t.Name)
		}
		if len(t.Axes) == 0 {
			return fmt.Errorf("%w: table %q has no axes", ErrConfiguration, t.Name)
		}
		switch t.discipline() {
		case DisciplineFlat, DisciplineList, DisciplineSet:
		default:
			return fmt.Errorf("%w: table %q has unknown discipline %q", ErrConfiguration, t.Name, t.Discipline)
		}
		if t.Template != "" {
			tmpl, ok := tables[t.Template]
			if !ok {
				return fmt.Errorf("%w: table %q uses template %q, which is not defined before it", ErrConfiguration, t.Name, t.Template)
			}
			if tmpl.discipline() != t.discipline() {
				return fmt.Errorf("%w: table %q and its template %q differ in discipline", ErrConfiguration, t.Name, t.Template)
			}
		}
		for _, fam := range t.Annotation.Families {
			if _, ok := c.Keywords[fam]; !ok {
				return fmt.Errorf("%w: table %q uses unknown keyword family %q", ErrConfiguration, t.Name, fam)
			}
		}
		tables[t.Name] = t
	}
	for _, l := range c.Languages {
		if l.Name == "" {
			return fmt.Errorf("%w: language without a name", ErrConfiguration)
		}
		if l.Syntax != "" {
			if _, err := SyntaxByName(l.Syntax); err != nil {
				return fmt.Errorf("language %q: %w", l.Name, err)
			}
		}
		if l.Locale != "" {
			if _, err := language.Parse(l.Locale); err != nil {
				return fmt.Errorf("%w: language %q: locale %q: %v", ErrConfiguration, l.Name, l.Locale, err)
			}
		}
		for tag, inf := range l.Inflections {
			t, ok := tables[inf.Table]
			if !ok {
				return fmt.Errorf("%w: language %q inflects %q through unknown table %q", ErrConfiguration, l.Name, tag, inf.Table)
			}
			if t.discipline() != DisciplineFlat {
				return fmt.Errorf("%w: language %q inflects %q through %s table %q", ErrConfiguration, l.Name, tag, t.discipline(), inf.Table)
			}
			if inf.TokenAxis == "" {
				return fmt.Errorf("%w: language %q: inflection %q has no token_axis", ErrConfiguration, l.Name, tag)
			}
		}
	}
	return nil
}

// TablePath resolves the path of t.
func (c *Config) TablePath(t TableConfig) string {
	if filepath.IsAbs(t.Path) || c.dir == "" {
		return t.Path
	}
	return filepath.Join(c.dir, t.Path)
}

// Table returns the configuration of the named table.
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableConfig{}, false
}

func (t TableConfig) discipline() string {
	if t.Discipline == "" {
		return DisciplineFlat
	}
	return t.Discipline
}

// Indexing builds the table's scheme.
func (t TableConfig) Indexing() Indexing {
	if len(t.Axes) == 1 {
		return SingleAxis{Axis: t.Axes[0]}
	}
	return NewMultiAxis(t.Axes...)
}

// Annotation builds the annotation variant the table asks for.
func (c *Config) Annotation(t TableConfig) (Annotation, error) {
	a := t.Annotation
	if a.Kind == "row" {
		axes := a.Axes
		if len(axes) == 0 {
			axes = t.Axes
		}
		return RowAnnotation{Axes: axes, HeaderRows: a.HeaderRows, Defaults: a.Defaults}, nil
	}

	h := Headers{
		Keywords:         Keywords{},
		HeaderRowAxes:    a.HeaderRowAxes,
		HeaderColumnAxes: a.HeaderColumnAxes,
		Defaults:         a.Defaults,
	}
	for _, fam := range a.Families {
		for text, kw := range c.Keywords[fam] {
			h.Keywords[text] = kw
		}
	}
	for text, kw := range a.Keywords {
		h.Keywords[text] = kw
	}
	var err error
	if h.RowBindings, err = expandIndexed(a.RowBindings); err != nil {
		return nil, fmt.Errorf("table %q row_bindings: %w", t.Name, err)
	}
	if h.ColumnBindings, err = expandIndexed(a.ColumnBindings); err != nil {
		return nil, fmt.Errorf("table %q column_bindings: %w", t.Name, err)
	}

	switch a.Kind {
	case "", "canton":
		return CantonAnnotation{Headers: h, Marker: a.Canton}, nil
	case "cell":
		return CellAnnotation{Headers: h, HeaderRows: a.HeaderRows, HeaderColumns: a.HeaderColumns}, nil
	default:
		return nil, fmt.Errorf("%w: table %q has unknown annotation kind %q", ErrConfiguration, t.Name, a.Kind)
	}
}

// expandIndexed turns index-list keys into one entry per index.
func expandIndexed(m map[string]Binding) (map[int]Binding, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[int]Binding)
	for key, b := range m {
		indices, err := ListI(key)
		if err != nil {
			return nil, err
		}
		for _, i := range indices {
			if _, dup := out[i]; dup {
				return nil, fmt.Errorf("%w: index %d is bound twice", ErrConfiguration, i)
			}
			out[i] = b
		}
	}
	return out, nil
}

// ListI parses an index list into a slice of ints.
// Format: comma-separated items, each either a single int or a range "a-b".
func ListI(s string) ([]int, error) {
	var result []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if idx := strings.Index(part, "-"); idx > 0 {
			start, err1 := strconv.Atoi(part[:idx])
			end, err2 := strconv.Atoi(part[idx+1:])
			if err1 != nil || err2 != nil || end < start {
				return nil, fmt.Errorf("%w: bad index range %q", ErrConfiguration, part)
			}
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: bad index %q", ErrConfiguration, part)
			}
			result = append(result, n)
		}
	}
	return result, nil
}
