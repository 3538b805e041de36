// Package tokentree defines the token tree model shared by the lexer, the
// pattern engine and the rewrite tooling: identifiers, literals, punctuation
// and delimited groups, recursively nested.
package tokentree

import (
	"fmt"
	"strings"
)

// Position is a location in source text. Offset is a byte offset, Line and
// Col are 1-based. Tokens produced by substitution carry the zero Position.
type Position struct {
	Offset int
	Line   int
	Col    int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// IsValid reports whether the position refers to source text.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) advance(n int) Position {
	if !p.IsValid() {
		return p
	}
	return Position{Offset: p.Offset + n, Line: p.Line, Col: p.Col + n}
}

// Spacing tells whether a punctuation character is immediately followed by
// another punctuation character.
type Spacing int

const (
	Alone Spacing = iota
	Joint
)

func (s Spacing) String() string {
	if s == Joint {
		return "joint"
	}
	return "alone"
}

type Delimiter int

const (
	Paren Delimiter = iota
	Brace
	Bracket
)

func (d Delimiter) Open() byte {
	switch d {
	case Brace:
		return '{'
	case Bracket:
		return '['
	default:
		return '('
	}
}

func (d Delimiter) Close() byte {
	switch d {
	case Brace:
		return '}'
	case Bracket:
		return ']'
	default:
		return ')'
	}
}

func (d Delimiter) String() string {
	switch d {
	case Paren:
		return "paren"
	case Brace:
		return "brace"
	case Bracket:
		return "bracket"
	default:
		return "unknown"
	}
}

type LiteralKind int

const (
	Int LiteralKind = iota
	Float
	String
	RawString
	Char
)

func (k LiteralKind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case RawString:
		return "raw string"
	case Char:
		return "char"
	default:
		return "unknown"
	}
}

// TokenTree is one of *Ident, *Literal, *Punct or *Group.
type TokenTree interface {
	Pos() Position
	// End is the position just past the token.
	End() Position
	String() string
	tokenTree()
}

type Ident struct {
	Name string
	At   Position
}

func (t *Ident) Pos() Position  { return t.At }
func (t *Ident) End() Position  { return t.At.advance(len(t.Name)) }
func (t *Ident) String() string { return t.Name }
func (*Ident) tokenTree()       {}

type Literal struct {
	Raw  string
	Kind LiteralKind
	At   Position
}

func (t *Literal) Pos() Position { return t.At }

func (t *Literal) End() Position {
	if !t.At.IsValid() {
		return t.At
	}
	// raw strings may span lines
	end := t.At
	for i := 0; i < len(t.Raw); i++ {
		end.Offset++
		if t.Raw[i] == '\n' {
			end.Line++
			end.Col = 1
		} else {
			end.Col++
		}
	}
	return end
}

func (t *Literal) String() string { return t.Raw }
func (*Literal) tokenTree()       {}

type Punct struct {
	Char    byte
	Spacing Spacing
	At      Position
}

func (t *Punct) Pos() Position  { return t.At }
func (t *Punct) End() Position  { return t.At.advance(1) }
func (t *Punct) String() string { return string(t.Char) }
func (*Punct) tokenTree()       {}

type Group struct {
	Delim  Delimiter
	Stream Stream
	At     Position
	// Close is the position of the closing delimiter.
	Close Position
}

func (t *Group) Pos() Position { return t.At }
func (t *Group) End() Position { return t.Close.advance(1) }

func (t *Group) String() string {
	var sb strings.Builder
	writeGroup(&sb, t)
	return sb.String()
}

func (*Group) tokenTree() {}

// Stream is an ordered sequence of token trees.
type Stream []TokenTree

func (s Stream) String() string {
	var sb strings.Builder
	writeStream(&sb, s)
	return sb.String()
}

// Pos returns the position of the first token.
func (s Stream) Pos() Position {
	if len(s) == 0 {
		return Position{}
	}
	return s[0].Pos()
}

// End returns the end position of the last token.
func (s Stream) End() Position {
	if len(s) == 0 {
		return Position{}
	}
	return s[len(s)-1].End()
}

// NewIdent, NewLiteral and NewPunct build tokens without a source position.
func NewIdent(name string) *Ident { return &Ident{Name: name} }

func NewLiteral(raw string) *Literal {
	return &Literal{Raw: raw, Kind: literalKind(raw)}
}

func NewPunct(ch byte, spacing Spacing) *Punct {
	return &Punct{Char: ch, Spacing: spacing}
}

func NewGroup(delim Delimiter, stream Stream) *Group {
	return &Group{Delim: delim, Stream: stream}
}

func literalKind(raw string) LiteralKind {
	if raw == "" {
		return String
	}
	switch raw[0] {
	case '"':
		return String
	case '`':
		return RawString
	case '\'':
		return Char
	}
	if strings.ContainsAny(raw, ".eE") && !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		return Float
	}
	return Int
}

// Equal reports whether two streams have the same structure and text,
// ignoring positions and punctuation spacing.
func Equal(a, b Stream) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualTree(a[i], b[i]) {
			return false
		}
	}
	return true
}

// EqualTree compares two token trees ignoring positions and spacing.
func EqualTree(a, b TokenTree) bool {
	switch x := a.(type) {
	case *Ident:
		y, ok := b.(*Ident)
		return ok && x.Name == y.Name
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Raw == y.Raw
	case *Punct:
		y, ok := b.(*Punct)
		return ok && x.Char == y.Char
	case *Group:
		y, ok := b.(*Group)
		return ok && x.Delim == y.Delim && Equal(x.Stream, y.Stream)
	default:
		return false
	}
}
