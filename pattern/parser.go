package pattern

import (
	"fmt"

	"github.com/gnolang/tokpat/tokentree"
)

// Parse reads a pattern from tokens, using parseDescriptor for the
// descriptor that follows each parameter name.
func Parse[T Descriptor](tokens tokentree.Stream, parseDescriptor DescriptorParser[T]) (*Pattern[T], error) {
	items, err := parseItems(tokens, parseDescriptor)
	if err != nil {
		return nil, err
	}
	return New(items, parseDescriptor)
}

func parseItems[T Descriptor](tokens tokentree.Stream, parseDescriptor DescriptorParser[T]) ([]Item, error) {
	p := &parser[T]{parseDescriptor: parseDescriptor}
	return p.items(tokentree.NewCursor(tokens))
}

type parser[T Descriptor] struct {
	parseDescriptor DescriptorParser[T]
}

func (p *parser[T]) items(c *tokentree.Cursor) ([]Item, error) {
	var items []Item
	for !c.IsEmpty() {
		tok, _ := c.Peek()
		switch t := tok.(type) {
		case *tokentree.Punct:
			if t.Char == '$' {
				it, err := p.escape(c)
				if err != nil {
					return nil, err
				}
				items = append(items, it)
				continue
			}
			items = append(items, &PunctItem{Run: readRun(c)})
		case *tokentree.Ident:
			c.Next()
			items = append(items, &IdentItem{Ident: t})
		case *tokentree.Literal:
			c.Next()
			items = append(items, &LiteralItem{Literal: t})
		case *tokentree.Group:
			c.Next()
			inner, err := p.items(tokentree.NewGroupCursor(t))
			if err != nil {
				return nil, err
			}
			items = append(items, &Group{Delim: t.Delim, Items: inner, At: t.At})
		}
	}
	return items, nil
}

// readRun reads a punctuation run, stopping before any `$` so that a run
// never swallows the escape marker.
func readRun(c *tokentree.Cursor) tokentree.PunctRun {
	var run tokentree.PunctRun
	for {
		tok, ok := c.Peek()
		if !ok {
			break
		}
		punct, ok := tok.(*tokentree.Punct)
		if !ok || punct.Char == '$' {
			break
		}
		c.Next()
		run = append(run, punct)
		if punct.Spacing != tokentree.Joint {
			break
		}
	}
	return run
}

func (p *parser[T]) escape(c *tokentree.Cursor) (Item, error) {
	dollar, _ := c.Next()
	pos := dollar.Pos()

	tok, ok := c.Peek()
	if !ok {
		return nil, &SyntaxError{Pos: pos, Msg: "expected parameter, index or repetition after `$`"}
	}

	switch t := tok.(type) {
	case *tokentree.Punct:
		switch t.Char {
		case '$':
			c.Next()
			return &PunctItem{Run: tokentree.PunctRun{t}}, nil
		case '#':
			c.Next()
			next, ok := c.Next()
			ident, isIdent := next.(*tokentree.Ident)
			if !ok || !isIdent {
				return nil, &SyntaxError{Pos: t.At, Msg: "expected index name after `$#`"}
			}
			return &IndexRef{Name: ident.Name, At: pos}, nil
		}

	case *tokentree.Ident:
		c.Next()
		if p.parseDescriptor == nil {
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("parameter `%s` cannot be parsed without a descriptor parser", t.Name)}
		}
		descPos := c.Pos()
		desc, err := p.parseDescriptor(c)
		if err != nil {
			return nil, &SyntaxError{Pos: descPos, Msg: fmt.Sprintf("invalid descriptor for parameter `%s`", t.Name), Err: err}
		}
		return &Parameter[T]{Name: t.Name, Descriptor: desc, At: pos}, nil

	case *tokentree.Group:
		return p.repetition(c, pos)
	}

	return nil, &SyntaxError{Pos: tok.Pos(), Msg: fmt.Sprintf("unexpected `%s` after `$`", tok)}
}

func (p *parser[T]) repetition(c *tokentree.Cursor, pos tokentree.Position) (Item, error) {
	var index string
	if tok, _ := c.Peek(); isGroup(tok, tokentree.Bracket) {
		c.Next()
		g := tok.(*tokentree.Group)
		var ident *tokentree.Ident
		if len(g.Stream) == 1 {
			ident, _ = g.Stream[0].(*tokentree.Ident)
		}
		if ident == nil {
			return nil, &SyntaxError{Pos: g.At, Msg: "expected a single index name in `$[...]`"}
		}
		index = ident.Name
	}

	tok, _ := c.Next()
	if !isGroup(tok, tokentree.Paren) {
		return nil, &SyntaxError{Pos: pos, Msg: "expected `(` after `$` to open a repetition"}
	}
	body := tok.(*tokentree.Group)
	items, err := p.items(tokentree.NewGroupCursor(body))
	if err != nil {
		return nil, err
	}

	sep, op, err := readOperator(c, body.End())
	if err != nil {
		return nil, err
	}

	r := Repetition{Index: index, Items: items, Separator: sep, At: pos}
	switch op.Char {
	case '?':
		if index != "" || sep != nil {
			return nil, &SyntaxError{Pos: op.At, Msg: "optional block cannot have an index or a separator"}
		}
		return &Optional{r}, nil
	case '*':
		return &ZeroOrMore{r}, nil
	default:
		return &OneOrMore{r}, nil
	}
}

func isGroup(tok tokentree.TokenTree, delim tokentree.Delimiter) bool {
	g, ok := tok.(*tokentree.Group)
	return ok && g.Delim == delim
}

func isOperator(tok tokentree.TokenTree) (*tokentree.Punct, bool) {
	p, ok := tok.(*tokentree.Punct)
	if !ok {
		return nil, false
	}
	return p, p.Char == '?' || p.Char == '*' || p.Char == '+'
}

// readOperator reads the optional separator and the repetition operator.
// A Joint operator character followed by another operator is a separator,
// so `$(...)++` repeats with `+` between iterations.
func readOperator(c *tokentree.Cursor, pos tokentree.Position) (sep, op *tokentree.Punct, err error) {
	tok, ok := c.Next()
	if !ok {
		return nil, nil, &SyntaxError{Pos: pos, Msg: "expected `?`, `*` or `+` after repetition"}
	}
	first, ok := tok.(*tokentree.Punct)
	if !ok || first.Char == '$' {
		return nil, nil, &SyntaxError{Pos: tok.Pos(), Msg: "expected `?`, `*` or `+` after repetition"}
	}

	if _, isOp := isOperator(first); isOp {
		if first.Spacing == tokentree.Joint {
			if next, ok := c.Peek(); ok {
				if second, isOp := isOperator(next); isOp {
					c.Next()
					return first, second, nil
				}
			}
		}
		return nil, first, nil
	}

	next, ok := c.Next()
	if !ok {
		return nil, nil, &SyntaxError{Pos: first.End(), Msg: fmt.Sprintf("expected `?`, `*` or `+` after separator `%c`", first.Char)}
	}
	op, isOp := isOperator(next)
	if !isOp {
		return nil, nil, &SyntaxError{Pos: next.Pos(), Msg: fmt.Sprintf("expected `?`, `*` or `+` after separator `%c`", first.Char)}
	}
	return first, op, nil
}
