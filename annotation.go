package cartula

import "fmt"

// DefaultCanton marks the header corner of a table whose header extent is
// inferred.
const DefaultCanton = "*"

// Cell is one annotated table cell.
type Cell struct {
	Binding Binding
	Text    string
	// Row and Column locate the cell in its source table, 0-based.
	Row, Column int
}

func (c Cell) String() string {
	return fmt.Sprintf("%s %q", c.Binding, c.Text)
}

// Keyword binds a literal header text to one axis value.
type Keyword struct {
	Axis  string `yaml:"axis"`
	Value string `yaml:"value"`
}

// Keywords maps literal header text to the feature it stands for.
type Keywords map[string]Keyword

// Headers describes how header cells turn into bindings.
type Headers struct {
	Keywords Keywords
	// HeaderRowAxes names, per header row index, the axis whose value is the
	// literal header text (used for lemma rows and other open vocabularies).
	HeaderRowAxes map[int]string
	// HeaderColumnAxes is the same for header columns.
	HeaderColumnAxes map[int]string
	// RowBindings replaces the header lookup for a whole data row.
	RowBindings map[int]Binding
	// ColumnBindings replaces the header lookup for a whole data column.
	ColumnBindings map[int]Binding
	// Defaults applies to every emitted cell.
	Defaults Binding
}

// Annotation turns a Table into annotated cells. The set of implementations
// is closed: RowAnnotation, CellAnnotation and CantonAnnotation.
type Annotation interface {
	Annotate(t Table) ([]Cell, error)
	annotation()
}

// RowAnnotation treats each data row as one entry: the leading cells bind
// Axes in order and the cell after them is the entry text.
type RowAnnotation struct {
	Axes []string
	// HeaderRows are skipped.
	HeaderRows int
	Defaults   Binding
}

func (RowAnnotation) annotation() {}

func (a RowAnnotation) Annotate(t Table) ([]Cell, error) {
	if len(a.Axes) == 0 {
		return nil, &ConfigurationError{Row: -1, Column: -1, Reason: "row annotation binds no axes"}
	}
	var cells []Cell
	for r := a.HeaderRows; r < len(t); r++ {
		text := t.At(r, len(a.Axes))
		if IsBlank(text) {
			continue
		}
		b := Binding{}
		for c, axis := range a.Axes {
			if v := t.At(r, c); !IsBlank(v) {
				b[axis] = One(v)
			}
		}
		if len(b) == 0 {
			continue
		}
		cells = append(cells, Cell{
			Binding: a.Defaults.Merge(b),
			Text:    text,
			Row:     r,
			Column:  len(a.Axes),
		})
	}
	return cells, nil
}

// CellAnnotation annotates a grid with a fixed number of header rows and
// header columns.
type CellAnnotation struct {
	Headers
	HeaderRows    int
	HeaderColumns int
}

func (CellAnnotation) annotation() {}

func (a CellAnnotation) Annotate(t Table) ([]Cell, error) {
	if a.HeaderRows < 0 || a.HeaderColumns < 0 {
		return nil, &ConfigurationError{Row: -1, Column: -1,
			Reason: fmt.Sprintf("negative header extent %dx%d", a.HeaderRows, a.HeaderColumns)}
	}
	return a.Headers.annotate(t, a.HeaderRows, a.HeaderColumns)
}

// CantonAnnotation infers the header extent from the canton marker: the
// header rows are the leading rows whose first cell is the marker and the
// header columns are the leading cells of the first row equal to it.
type CantonAnnotation struct {
	Headers
	// Marker defaults to DefaultCanton.
	Marker string
}

func (CantonAnnotation) annotation() {}

func (a CantonAnnotation) Annotate(t Table) ([]Cell, error) {
	rows, cols, err := a.extent(t)
	if err != nil {
		return nil, err
	}
	return a.Headers.annotate(t, rows, cols)
}

func (a CantonAnnotation) extent(t Table) (rows, cols int, err error) {
	marker := a.Marker
	if marker == "" {
		marker = DefaultCanton
	}
	if t.At(0, 0) != marker {
		return 0, 0, &ConfigurationError{Row: 0, Column: 0, Text: t.At(0, 0),
			Reason: fmt.Sprintf("no canton marker %q in the corner cell", marker)}
	}
	for rows < len(t) && t.At(rows, 0) == marker {
		rows++
	}
	for cols < len(t[0]) && t.At(0, cols) == marker {
		cols++
	}
	return rows, cols, nil
}

// annotate emits every data cell outside the header extent that carries
// text and at least one header binding. Column bindings win over row
// bindings on shared axes.
func (h Headers) annotate(t Table, headerRows, headerCols int) ([]Cell, error) {
	width := t.Width()

	colBindings := make([]Binding, width)
	for c := headerCols; c < width; c++ {
		b, err := h.columnBinding(t, c, headerRows)
		if err != nil {
			return nil, err
		}
		colBindings[c] = b
	}

	var cells []Cell
	for r := headerRows; r < len(t); r++ {
		rowB, err := h.rowBinding(t, r, headerCols)
		if err != nil {
			return nil, err
		}
		for c := headerCols; c < len(t[r]); c++ {
			text := t[r][c]
			if IsBlank(text) {
				continue
			}
			colB := colBindings[c]
			if len(rowB) == 0 && len(colB) == 0 {
				continue
			}
			cells = append(cells, Cell{
				Binding: h.Defaults.Merge(rowB, colB),
				Text:    text,
				Row:     r,
				Column:  c,
			})
		}
	}
	return cells, nil
}

// columnBinding reads the header rows above column c.
func (h Headers) columnBinding(t Table, c, headerRows int) (Binding, error) {
	if b, ok := h.ColumnBindings[c]; ok {
		return b.Clone(), nil
	}
	b := Binding{}
	for r := 0; r < headerRows; r++ {
		if err := h.bindHeader(b, t.At(r, c), h.HeaderRowAxes[r], r, c); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// rowBinding reads the header columns left of row r.
func (h Headers) rowBinding(t Table, r, headerCols int) (Binding, error) {
	if b, ok := h.RowBindings[r]; ok {
		return b.Clone(), nil
	}
	b := Binding{}
	for c := 0; c < headerCols; c++ {
		if err := h.bindHeader(b, t.At(r, c), h.HeaderColumnAxes[c], r, c); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// bindHeader adds what one header cell contributes to b. A non-empty axis
// takes the text literally; otherwise the text must be a keyword.
func (h Headers) bindHeader(b Binding, text, axis string, r, c int) error {
	if IsBlank(text) {
		return nil
	}
	if axis != "" {
		b[axis] = One(text)
		return nil
	}
	kw, ok := h.Keywords[text]
	if !ok {
		return &ConfigurationError{Row: r, Column: c, Text: text, Reason: "unrecognized header keyword"}
	}
	b[kw.Axis] = One(kw.Value)
	return nil
}
