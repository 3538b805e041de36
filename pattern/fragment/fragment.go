// Package fragment is the default payload for patterns: parameters are
// described by a syntactic Kind and bound to the tokens they matched.
package fragment

import (
	"fmt"
	"slices"

	"github.com/gnolang/tokpat/tokentree"
)

// Fragment is a bound run of tokens together with the kind that parsed it.
type Fragment struct {
	Kind   Kind
	Tokens tokentree.Stream
}

// Equal compares the tokens of two fragments. The kind is ignored, so an
// identifier bound once as ident and once as tt is still consistent.
func (f Fragment) Equal(other Fragment) bool {
	return tokentree.Equal(f.Tokens, other.Tokens)
}

func (f Fragment) String() string {
	return f.Tokens.String()
}

// ParseError is returned when the input does not hold a fragment of the
// expected kind.
type ParseError struct {
	Pos  tokentree.Position
	Kind Kind
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: expected %s: %s", e.Pos, e.Kind, e.Msg)
}

func (k Kind) errorf(pos tokentree.Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// ParseBinding reads one fragment of kind k from c.
func (k Kind) ParseBinding(c *tokentree.Cursor) (Fragment, error) {
	start := c.Fork()
	pos := c.Pos()
	tok, ok := c.Peek()
	if !ok {
		return Fragment{}, k.errorf(pos, "found end of input")
	}

	switch k {
	case Ident:
		if _, isIdent := tok.(*tokentree.Ident); !isIdent {
			return Fragment{}, k.errorf(pos, "found `%s`", tok)
		}
		c.Next()
	case Literal:
		if _, isLit := tok.(*tokentree.Literal); !isLit {
			return Fragment{}, k.errorf(pos, "found `%s`", tok)
		}
		c.Next()
	case Punct:
		if _, isRun := tokentree.ReadPunctRun(c); !isRun {
			return Fragment{}, k.errorf(pos, "found `%s`", tok)
		}
	case Group:
		if _, isGroup := tok.(*tokentree.Group); !isGroup {
			return Fragment{}, k.errorf(pos, "found `%s`", tok)
		}
		c.Next()
	case TT:
		if _, isRun := tokentree.ReadPunctRun(c); !isRun {
			c.Next()
		}
	case Path:
		if err := parsePath(c); err != nil {
			return Fragment{}, err
		}
	case Expr:
		if err := parseExpr(c); err != nil {
			return Fragment{}, err
		}
	default:
		return Fragment{}, fmt.Errorf("unknown fragment kind %d", int(k))
	}
	return Fragment{Kind: k, Tokens: c.Since(start)}, nil
}

// parsePath reads identifiers joined by `.` or `::`.
func parsePath(c *tokentree.Cursor) error {
	pos := c.Pos()
	tok, _ := c.Next()
	if _, isIdent := tok.(*tokentree.Ident); !isIdent {
		if tok == nil {
			return Path.errorf(pos, "found end of input")
		}
		return Path.errorf(pos, "found `%s`", tok)
	}
	for {
		fork := c.Fork()
		run, ok := tokentree.ReadPunctRun(fork)
		if !ok {
			return nil
		}
		if sep := run.String(); sep != "." && sep != "::" {
			return nil
		}
		next, ok := fork.Next()
		if _, isIdent := next.(*tokentree.Ident); !ok || !isIdent {
			return nil
		}
		c.Commit(fork)
	}
}

// parseExpr reads token trees up to a top-level `,`, `;` or `=>`.
func parseExpr(c *tokentree.Cursor) error {
	pos := c.Pos()
	n := 0
	for !c.IsEmpty() && !isExprEnd(c) {
		c.Next()
		n++
	}
	if n == 0 {
		if tok, ok := c.Peek(); ok {
			return Expr.errorf(pos, "found `%s`", tok)
		}
		return Expr.errorf(pos, "found end of input")
	}
	return nil
}

func isExprEnd(c *tokentree.Cursor) bool {
	tok, _ := c.Peek()
	p, ok := tok.(*tokentree.Punct)
	if !ok {
		return false
	}
	switch p.Char {
	case ',', ';':
		return true
	case '=':
		if p.Spacing != tokentree.Joint {
			return false
		}
		next, _ := c.PeekN(1)
		q, ok := next.(*tokentree.Punct)
		return ok && q.Char == '>'
	}
	return false
}

// TokenizeBinding renders v for a parameter of kind k.
func (k Kind) TokenizeBinding(name string, v Fragment) (tokentree.Stream, error) {
	if !k.Accepts(v.Kind) {
		return nil, &KindMismatchError{Name: name, Expected: k, Found: v.Kind}
	}
	return slices.Clone(v.Tokens), nil
}

// DummyTokens returns placeholder tokens that parse as k.
func (k Kind) DummyTokens() tokentree.Stream {
	switch k {
	case Literal:
		return tokentree.Stream{tokentree.NewLiteral("0")}
	case Punct:
		return tokentree.Stream{tokentree.NewPunct('+', tokentree.Alone)}
	case Group:
		return tokentree.Stream{tokentree.NewGroup(tokentree.Paren, nil)}
	default:
		return tokentree.Stream{tokentree.NewIdent("_")}
	}
}

// FromSource lexes src and parses all of it as one fragment of kind k.
func FromSource(k Kind, src string) (Fragment, error) {
	toks, err := tokentree.Lex(src)
	if err != nil {
		return Fragment{}, err
	}
	c := tokentree.NewCursor(toks)
	f, err := k.ParseBinding(c)
	if err != nil {
		return Fragment{}, err
	}
	if tok, ok := c.Peek(); ok {
		return Fragment{}, k.errorf(tok.Pos(), "unexpected `%s` after fragment", tok)
	}
	return f, nil
}

// MustFromSource is like FromSource but panics on error.
func MustFromSource(k Kind, src string) Fragment {
	f, err := FromSource(k, src)
	if err != nil {
		panic(err)
	}
	return f
}
