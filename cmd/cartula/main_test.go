package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cours-de-latin/cartula"
)

const testConfig = `
keywords:
  number:
    singular: {axis: number, value: singular}
    plural: {axis: number, value: plural}
  case:
    nominative: {axis: case, value: nominative}
    genitive: {axis: case, value: genitive}
tables:
  - name: nouns
    path: nouns.tsv
    axes: [noun, number, case]
    annotation: {families: [number, case], header_row_axes: {0: noun}}
  - name: variants
    path: variants.tsv
    discipline: list
    separator: /
    axes: [verb]
    annotation: {kind: row}
languages:
  - name: english
    syntax: english
    inflections:
      n: {table: nouns, token_axis: noun, defaults: {number: singular, case: nominative}}
`

const testNouns = "*\tcat\tcat\n" +
	"*\tsingular\tplural\n" +
	"nominative\tcat\tcats\n" +
	"genitive\tcat's\tcats'\n"

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nouns.tsv"), []byte(testNouns), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "variants.tsv"), []byte("dream\tdreamed/dreamt\n"), 0o644))
	path := filepath.Join(dir, "cartula.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

// run executes the root command and returns what it wrote to stdout and
// stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAnnotateCommand(t *testing.T) {
	out, _, err := run(t, "--config", writeConfig(t), "annotate", "nouns")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "2:1\t{case:nominative, noun:cat, number:singular}\tcat", lines[0])

	_, _, err = run(t, "--config", writeConfig(t), "annotate", "verbs")
	assert.ErrorContains(t, err, `table "verbs" is not configured`)
}

func TestLookupCommand(t *testing.T) {
	path := writeConfig(t)

	out, _, err := run(t, "--config", path, "lookup", "nouns", "noun=cat", "number=plural", "case=genitive")
	require.NoError(t, err)
	assert.Equal(t, "cats'\n", out)

	_, stderr, err := run(t, "--config", path, "lookup", "nouns", "noun=cat", "number=singular,plural", "case=genitive")
	require.ErrorIs(t, err, cartula.ErrAmbiguousKey)
	assert.Equal(t, 2, strings.Count(stderr, "candidate:"))

	_, _, err = run(t, "--config", path, "lookup", "nouns", "noun=dog", "number=plural", "case=genitive")
	assert.ErrorIs(t, err, cartula.ErrKeyNotFound)

	_, _, err = run(t, "--config", path, "lookup", "variants", "verb=dream")
	assert.ErrorContains(t, err, `flat table "variants" is not loaded`)
}

func TestEntriesCommand(t *testing.T) {
	path := writeConfig(t)

	out, _, err := run(t, "--config", path, "entries", "nouns", "case=nominative")
	require.NoError(t, err)
	assert.Equal(t, "{case:nominative, noun:cat, number:plural}\tcats\n"+
		"{case:nominative, noun:cat, number:singular}\tcat\n", out)

	out, _, err = run(t, "--config", path, "entries", "variants")
	require.NoError(t, err)
	assert.Equal(t, "{verb:dream}\t[dreamed dreamt]\n", out)

	_, _, err = run(t, "--config", path, "entries", "missing")
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	path := writeConfig(t)

	out, _, err := run(t, "--config", path, "render", "english",
		"{clause [np role=subject @s +capitalize [n cat]]}", "--seme", "s.number=plural")
	require.NoError(t, err)
	assert.Equal(t, "Cats\n", out)

	out, _, err = run(t, "--config", path, "render", "english", "[np [n dog]]")
	assert.ErrorContains(t, err, "did not resolve")
	assert.Equal(t, cartula.DefaultSentinel+"\n", out)

	_, _, err = run(t, "--config", path, "render", "latin", "[n rosa]")
	assert.ErrorContains(t, err, `language "latin" is not configured`)
}
