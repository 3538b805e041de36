package fragment

import (
	"fmt"

	"github.com/gnolang/tokpat/tokentree"
)

// Kind is the descriptor of a fragment parameter, written after the
// parameter name as `:ident`, `:expr` and so on.
type Kind int

const (
	Ident Kind = iota
	Literal
	Punct
	Group
	TT
	Path
	Expr
)

var kindNames = [...]string{
	Ident:   "ident",
	Literal: "literal",
	Punct:   "punct",
	Group:   "group",
	TT:      "tt",
	Path:    "path",
	Expr:    "expr",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// KindOf returns the kind named s.
func KindOf(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

func (k Kind) Tokens() tokentree.Stream {
	return tokentree.Stream{
		tokentree.NewPunct(':', tokentree.Alone),
		tokentree.NewIdent(k.String()),
	}
}

// Accepts reports whether a parameter of kind k can render a fragment of
// kind other. A tt parameter takes any single token tree, a path takes an
// identifier and an expr takes anything.
func (k Kind) Accepts(other Kind) bool {
	if k == other {
		return true
	}
	switch k {
	case TT:
		return other == Ident || other == Literal || other == Punct || other == Group
	case Path:
		return other == Ident
	case Expr:
		return true
	default:
		return false
	}
}

// ParseKind reads a `:kind` descriptor.
func ParseKind(c *tokentree.Cursor) (Kind, error) {
	pos := c.Pos()
	tok, ok := c.Next()
	if p, isPunct := tok.(*tokentree.Punct); !ok || !isPunct || p.Char != ':' {
		return 0, &DescriptorError{Pos: pos, Msg: "expected `:` followed by a fragment kind"}
	}
	pos = c.Pos()
	tok, ok = c.Next()
	ident, isIdent := tok.(*tokentree.Ident)
	if !ok || !isIdent {
		return 0, &DescriptorError{Pos: pos, Msg: "expected a fragment kind after `:`"}
	}
	k, known := KindOf(ident.Name)
	if !known {
		return 0, &DescriptorError{Pos: pos, Msg: fmt.Sprintf("unknown fragment kind `%s`", ident.Name)}
	}
	return k, nil
}

// DescriptorError reports a malformed `:kind` descriptor.
type DescriptorError struct {
	Pos tokentree.Position
	Msg string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// KindMismatchError is returned when a bound fragment cannot be rendered
// for a parameter of another kind.
type KindMismatchError struct {
	Name     string
	Expected Kind
	Found    Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("parameter `%s` expects fragment kind %s, found %s", e.Name, e.Expected, e.Found)
}
