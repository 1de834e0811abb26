package cartula

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Formatting wraps the resolved text of a rule in presentation markup.
// Implementations are pure string transforms.
type Formatting interface {
	Format(r *Rule, text string) string
}

// PlainFormatting leaves text untouched.
type PlainFormatting struct{}

func (PlainFormatting) Format(_ *Rule, text string) string { return text }

// Presentation marks understood by MarkupFormatting.
const (
	MarkCloze      = "cloze"
	MarkEmphasis   = "emphasis"
	MarkStrong     = "strong"
	MarkCapitalize = "capitalize"
	MarkTitle      = "title"
)

// MarkupFormatting renders marks as flashcard markup: Anki cloze deletions
// and HTML emphasis spans. Casing marks follow the rules of Language.
type MarkupFormatting struct {
	// Cloze is the deletion number written into {{cN::...}}; 0 means 1.
	Cloze    int
	Language language.Tag
}

func (f MarkupFormatting) Format(r *Rule, text string) string {
	if text == "" || len(r.Marks) == 0 {
		return text
	}
	if r.HasMark(MarkTitle) {
		text = cases.Title(f.Language).String(text)
	} else if r.HasMark(MarkCapitalize) {
		text = f.capitalize(text)
	}
	if r.HasMark(MarkEmphasis) {
		text = "<em>" + text + "</em>"
	}
	if r.HasMark(MarkStrong) {
		text = "<strong>" + text + "</strong>"
	}
	if r.HasMark(MarkCloze) {
		n := f.Cloze
		if n <= 0 {
			n = 1
		}
		text = fmt.Sprintf("{{c%d::%s}}", n, text)
	}
	return text
}

// capitalize upper-cases the first letter only.
func (f MarkupFormatting) capitalize(text string) string {
	_, size := utf8.DecodeRuneInString(text)
	return cases.Upper(f.Language).String(text[:size]) + text[size:]
}
