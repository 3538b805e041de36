package tokentree

// Cursor walks one level of a token stream. A Cursor is a plain value:
// copying it forks the walk, and assigning a fork back commits it.
type Cursor struct {
	stream Stream
	index  int
	end    Position
}

// NewCursor returns a cursor at the start of s.
func NewCursor(s Stream) *Cursor {
	return &Cursor{stream: s, end: s.End()}
}

// NewGroupCursor returns a cursor over the contents of g. Its end position
// is the closing delimiter.
func NewGroupCursor(g *Group) *Cursor {
	return &Cursor{stream: g.Stream, end: g.Close}
}

// Fork returns an independent copy of c.
func (c *Cursor) Fork() *Cursor {
	fork := *c
	return &fork
}

// Commit moves c to the position reached by fork. fork must have been
// derived from c.
func (c *Cursor) Commit(fork *Cursor) {
	*c = *fork
}

func (c *Cursor) Next() (TokenTree, bool) {
	if c.index >= len(c.stream) {
		return nil, false
	}
	tok := c.stream[c.index]
	c.index++
	return tok, true
}

func (c *Cursor) Peek() (TokenTree, bool) {
	return c.PeekN(0)
}

// PeekN returns the token n positions ahead without consuming anything.
func (c *Cursor) PeekN(n int) (TokenTree, bool) {
	if c.index+n >= len(c.stream) {
		return nil, false
	}
	return c.stream[c.index+n], true
}

func (c *Cursor) IsEmpty() bool {
	return c.index >= len(c.stream)
}

// Pos returns the position of the next token, or the end position when the
// cursor is exhausted.
func (c *Cursor) Pos() Position {
	if tok, ok := c.Peek(); ok {
		return tok.Pos()
	}
	return c.end
}

// Index returns the number of tokens consumed so far.
func (c *Cursor) Index() int {
	return c.index
}

// Rest returns the unconsumed tokens.
func (c *Cursor) Rest() Stream {
	return c.stream[c.index:]
}

// Since returns the tokens consumed between from and c. Both cursors must
// walk the same stream.
func (c *Cursor) Since(from *Cursor) Stream {
	if from.index >= c.index {
		return nil
	}
	return c.stream[from.index:c.index]
}
