package cartula

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table is a grid of cleaned cell text. Rows may differ in length.
type Table [][]string

// At returns the cell at row r, column c, or "" outside the grid.
func (t Table) At(r, c int) string {
	if r < 0 || r >= len(t) || c < 0 || c >= len(t[r]) {
		return ""
	}
	return t[r][c]
}

// Width is the length of the longest row.
func (t Table) Width() int {
	w := 0
	for _, row := range t {
		w = max(w, len(row))
	}
	return w
}

// SourceOptions controls how delimiter-separated text becomes a Table.
type SourceOptions struct {
	// Delimiter separates cells on a line.
	Delimiter string `yaml:"delimiter"`
	// Comment marks lines to skip when it prefixes them.
	Comment string `yaml:"comment"`
	// Cutset is trimmed from both ends of every cell.
	Cutset string `yaml:"cutset"`
}

// DefaultSourceOptions reads tab-separated text with "#" comments.
func DefaultSourceOptions() SourceOptions {
	return SourceOptions{Delimiter: "\t", Comment: "#", Cutset: DefaultCutset}
}

// withDefaults fills every empty field from DefaultSourceOptions.
func (o SourceOptions) withDefaults() SourceOptions {
	d := DefaultSourceOptions()
	if o.Delimiter == "" {
		o.Delimiter = d.Delimiter
	}
	if o.Comment == "" {
		o.Comment = d.Comment
	}
	if o.Cutset == "" {
		o.Cutset = d.Cutset
	}
	return o
}

// ReadTable reads delimiter-separated rows from r. Blank lines and lines
// starting with the comment prefix are skipped.
func ReadTable(r io.Reader, opts SourceOptions) (Table, error) {
	opts = opts.withDefaults()
	var t Table
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), opts.Comment) {
			continue
		}
		fields := strings.Split(line, opts.Delimiter)
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = CleanCell(f, opts.Cutset)
		}
		t = append(t, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadTableFile opens path and reads it with ReadTable.
func ReadTableFile(path string, opts SourceOptions) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTable(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}
