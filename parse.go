package cartula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseTree reads one node written in bracket notation:
//
//	[clause @event {clause [np role=subject +cloze [n cat]] [vp role=verb [v eat]]}]
//
// Square brackets make an ordered rule, braces an unordered one. The first
// word inside is the tag. Within a rule, key=v1|v2 adds a feature, +mark a
// presentation mark and @name a seme attachment; every other word, or a
// double-quoted string, is a Token child.
func ParseTree(src string) (Node, error) {
	p := &treeParser{src: src}
	p.skipSpace()
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q after tree", p.src[p.pos:])
	}
	return n, nil
}

// MustParseTree is ParseTree for templates known at compile time.
func MustParseTree(src string) Node {
	n, err := ParseTree(src)
	if err != nil {
		panic(err)
	}
	return n
}

type treeParser struct {
	src string
	pos int
}

func (p *treeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("parse tree at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *treeParser) skipSpace() {
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func (p *treeParser) node() (Node, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.src[p.pos]; c {
	case '[', '{':
		return p.rule()
	case ']', '}':
		return nil, p.errorf("unbalanced %q", c)
	case '"':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return Token(s), nil
	default:
		return Token(p.word()), nil
	}
}

func (p *treeParser) rule() (*Rule, error) {
	opener := p.src[p.pos]
	closer := byte(']')
	if opener == '{' {
		closer = '}'
	}
	p.pos++
	p.skipSpace()
	tag := p.word()
	if tag == "" {
		return nil, p.errorf("rule without a tag")
	}
	r := &Rule{Tag: tag, Unordered: opener == '{'}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unclosed %q for [%s]", opener, tag)
		}
		c := p.src[p.pos]
		if c == closer {
			p.pos++
			return r, nil
		}
		if c == '[' || c == '{' || c == '"' {
			child, err := p.node()
			if err != nil {
				return nil, err
			}
			r.Children = append(r.Children, child)
			continue
		}
		if c == ']' || c == '}' {
			return nil, p.errorf("mismatched %q closing [%s]", c, tag)
		}
		w := p.word()
		switch {
		case strings.HasPrefix(w, "+") && len(w) > 1:
			r.Marks = append(r.Marks, w[1:])
		case strings.HasPrefix(w, "@") && len(w) > 1:
			r.Seme = w[1:]
		case strings.Contains(w, "="):
			axis, values, _ := strings.Cut(w, "=")
			if axis == "" || values == "" {
				return nil, p.errorf("malformed feature %q", w)
			}
			if r.Features == nil {
				r.Features = Binding{}
			}
			r.Features[axis] = Any(strings.Split(values, "|")...)
		default:
			r.Children = append(r.Children, Token(w))
		}
	}
}

// word reads up to the next space, bracket or quote.
func (p *treeParser) word() string {
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if unicode.IsSpace(r) || strings.ContainsRune("[]{}\"", r) {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *treeParser) quoted() (string, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			s, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				return "", p.errorf("bad quoted token: %v", err)
			}
			return s, nil
		}
		p.pos++
	}
	return "", p.errorf("unterminated quoted token")
}
