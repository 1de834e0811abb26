package cartula

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadTable(t *testing.T) {
	src := "# nouns\n" +
		"*\tsingular\tplural\n" +
		"\n" +
		"nominative\t cat \tcats\r\n" +
		"  # indented comment\n" +
		"genitive\tcat\u00a0's\tcats\u2019\n"
	got, err := ReadTable(strings.NewReader(src), SourceOptions{})
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	want := Table{
		{"*", "singular", "plural"},
		{"nominative", "cat", "cats"},
		{"genitive", "cat 's", "cats'"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadTable mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTableOptions(t *testing.T) {
	src := "; header\n*;a;b\nx;-1-;-2-\n"
	got, err := ReadTable(strings.NewReader(src), SourceOptions{Delimiter: ";", Comment: ";", Cutset: "-"})
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	want := Table{{"*", "a", "b"}, {"x", "1", "2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadTable mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanCell(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  rosa\t", "rosa"},
		{"ro\u200bsa", "rosa"},
		{"\ufeffrosa", "rosa"},
		{"rosa\u0301", "ros\u00e1"},
		{"l\u02bchomme", "l'homme"},
		{"a\u00a0b", "a b"},
		{" ", ""},
	}
	for _, tc := range cases {
		if got := CleanCell(tc.in, DefaultCutset); got != tc.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if !IsBlank(CleanCell("\u200b \u00a0", DefaultCutset)) {
		t.Error("invisible-only cell is not blank")
	}
}

func TestTableAt(t *testing.T) {
	table := Table{{"a", "b", "c"}, {"d"}}
	if got := table.At(1, 2); got != "" {
		t.Errorf("At past a short row = %q, want empty", got)
	}
	if got := table.At(0, 2); got != "c" {
		t.Errorf("At(0, 2) = %q, want c", got)
	}
	if got := table.At(-1, 0); got != "" {
		t.Errorf("At(-1, 0) = %q, want empty", got)
	}
	if got := table.Width(); got != 3 {
		t.Errorf("Width() = %d, want 3", got)
	}
}

func TestReadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.tsv")
	if err := os.WriteFile(path, []byte("a\tb\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTableFile(path, DefaultSourceOptions())
	if err != nil {
		t.Fatalf("ReadTableFile: %v", err)
	}
	if diff := cmp.Diff(Table{{"a", "b"}}, got); diff != "" {
		t.Errorf("ReadTableFile mismatch (-want +got):\n%s", diff)
	}
	if _, err := ReadTableFile(filepath.Join(t.TempDir(), "missing.tsv"), DefaultSourceOptions()); err == nil {
		t.Error("ReadTableFile on a missing file succeeded")
	}
}
