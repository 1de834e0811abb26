package cartula

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTree(t *testing.T) {
	got, err := ParseTree(`[clause @event {vp mood=content-question [np role=subject number=singular|plural +cloze [n cat]] "sat down"}]`)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	want := &Rule{
		Tag:  "clause",
		Seme: "event",
		Children: []Node{
			&Rule{
				Tag:       "vp",
				Features:  Bind("mood", "content-question"),
				Unordered: true,
				Children: []Node{
					&Rule{
						Tag:      "np",
						Features: Binding{"role": One("subject"), "number": Any("singular", "plural")},
						Marks:    []string{"cloze"},
						Children: []Node{Leaf("n", "cat")},
					},
					Token("sat down"),
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseTree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTreeRoundTrip(t *testing.T) {
	for _, src := range []string{
		`[n cat]`,
		`{clause [np role=subject @s [n cat]] [vp role=verb [v eat]]}`,
		`[s +title +cloze [w "it is"] [w ""] [w "a=b"]]`,
		`[np number=plural|singular [n "+x"]]`,
		`[w "a\rb"]`,
		`[w "a\vb"]`,
		`[w "a\u00a0b"]`,
		`[np [n хлеб] [adj à] [n Πόλη]]`,
	} {
		n, err := ParseTree(src)
		if err != nil {
			t.Errorf("ParseTree(%q): %v", src, err)
			continue
		}
		if got := n.String(); got != src {
			t.Errorf("String() = %q, want %q", got, src)
		}
		again, err := ParseTree(n.String())
		if err != nil {
			t.Errorf("reparse %q: %v", n.String(), err)
			continue
		}
		if diff := cmp.Diff(n, again); diff != "" {
			t.Errorf("reparse mismatch (-first +second):\n%s", diff)
		}
	}
}

func TestParseTreeMultibyteTokens(t *testing.T) {
	for _, token := range []string{"à", "Å", "хлеб", "Πόλη", "città", "Ярослав"} {
		n, err := ParseTree("[n " + token + "]")
		if err != nil {
			t.Errorf("ParseTree([n %s]): %v", token, err)
			continue
		}
		if diff := cmp.Diff(Leaf("n", token), n); diff != "" {
			t.Errorf("ParseTree([n %s]) mismatch (-want +got):\n%s", token, diff)
		}
	}

	// Unicode spaces separate words like ASCII ones.
	n, err := ParseTree("[w a\u00a0b\u2003c]")
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	want := NewRule("w", Token("a"), Token("b"), Token("c"))
	if diff := cmp.Diff(want, n); diff != "" {
		t.Errorf("ParseTree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTreeErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{``, "unexpected end of input"},
		{`[]`, "rule without a tag"},
		{`[n cat`, "unclosed"},
		{`[n cat}`, "mismatched"},
		{`]`, "unbalanced"},
		{`[n cat] extra`, "after tree"},
		{`[n =x cat]`, "malformed feature"},
		{`[n "cat]`, "unterminated"},
	}
	for _, tc := range cases {
		_, err := ParseTree(tc.src)
		if err == nil {
			t.Errorf("ParseTree(%q) succeeded, want error", tc.src)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("ParseTree(%q) error %q, want it to mention %q", tc.src, err, tc.want)
		}
	}
}

func TestRuleCopiesDoNotAlias(t *testing.T) {
	base := Leaf("n", "cat").With(Bind("number", "singular"))
	plural := base.With(Bind("number", "plural")).Marked(MarkCloze).Attached("s")

	if v, _ := base.Features.Value("number"); v != "singular" {
		t.Errorf("base number = %q, want singular", v)
	}
	if base.HasMark(MarkCloze) || base.Seme != "" {
		t.Errorf("base was modified: %s", base)
	}
	if got, want := plural.String(), "[n number=plural +cloze @s cat]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
