package pattern

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gnolang/tokpat/tokentree"
)

// Match matches the whole of input against p.
//
// Repetitions are matched speculatively: each optional iteration runs on a
// fork of the input cursor and is committed only if it matches entirely. A
// separator is committed together with the iteration that follows it, so a
// trailing separator is never consumed. An optional iteration that consumes
// no input ends the repetition; only the mandatory first iteration of a
// one-or-more repetition may be empty.
func Match[T Matchable[V], V Value[V]](p *Pattern[T], input tokentree.Stream) (*Bindings[V], error) {
	m := newMatchVisitor[T, V](tokentree.NewCursor(input), endTrailing)
	if err := p.Visit(m); err != nil {
		return nil, err
	}
	return m.bindings, nil
}

// MatchPrefix matches p against a prefix of the input at c. On success c
// is advanced past the matched tokens; on failure c is left untouched.
func MatchPrefix[T Matchable[V], V Value[V]](p *Pattern[T], c *tokentree.Cursor) (*Bindings[V], error) {
	fork := c.Fork()
	m := newMatchVisitor[T, V](fork, endAny)
	if err := p.Visit(m); err != nil {
		return nil, err
	}
	c.Commit(fork)
	return m.bindings, nil
}

type endMode int

const (
	endAny endMode = iota
	endTrailing
	endGroup
)

type matchVisitor[T Matchable[V], V Value[V]] struct {
	cursor   *tokentree.Cursor
	bindings *Bindings[V]
	end      endMode
}

func newMatchVisitor[T Matchable[V], V Value[V]](c *tokentree.Cursor, end endMode) *matchVisitor[T, V] {
	return &matchVisitor[T, V]{cursor: c, bindings: NewBindings[V](), end: end}
}

// isStop reports whether err only means that a speculative iteration did
// not match.
func isStop(err error) bool {
	var matchErr *MatchError
	var mismatch *BindingMismatchError
	return errors.As(err, &matchErr) || errors.As(err, &mismatch)
}

func (m *matchVisitor[T, V]) next(expected string) (tokentree.TokenTree, error) {
	tok, ok := m.cursor.Next()
	if !ok {
		return nil, &MatchError{
			Kind: UnexpectedEnd,
			Pos:  m.cursor.Pos(),
			Msg:  fmt.Sprintf("expected `%s`, found end of input", expected),
		}
	}
	return tok, nil
}

func mismatch(tok tokentree.TokenTree, expected string) *MatchError {
	return &MatchError{
		Kind: MismatchedToken,
		Pos:  tok.Pos(),
		Msg:  fmt.Sprintf("expected `%s`, found `%s`", expected, tok),
	}
}

func (m *matchVisitor[T, V]) VisitIdent(item *IdentItem) error {
	tok, err := m.next(item.Ident.Name)
	if err != nil {
		return err
	}
	if ident, ok := tok.(*tokentree.Ident); !ok || ident.Name != item.Ident.Name {
		return mismatch(tok, item.Ident.Name)
	}
	return nil
}

func (m *matchVisitor[T, V]) VisitLiteral(item *LiteralItem) error {
	tok, err := m.next(item.Literal.Raw)
	if err != nil {
		return err
	}
	if lit, ok := tok.(*tokentree.Literal); !ok || lit.Raw != item.Literal.Raw {
		return mismatch(tok, item.Literal.Raw)
	}
	return nil
}

// VisitPunctRun matches the characters of the run one by one. When the run
// ends Alone in the pattern it must end in the input too, so `=` does not
// match the first half of `==`.
func (m *matchVisitor[T, V]) VisitPunctRun(item *PunctItem) error {
	want := item.Run.String()
	for i, p := range item.Run {
		tok, err := m.next(want)
		if err != nil {
			return err
		}
		punct, ok := tok.(*tokentree.Punct)
		if !ok || punct.Char != p.Char {
			return mismatch(tok, want)
		}
		last := i == len(item.Run)-1
		if !last && punct.Spacing != tokentree.Joint {
			return mismatch(tok, want)
		}
		if last && p.Spacing == tokentree.Alone && punct.Spacing == tokentree.Joint {
			return mismatch(tok, want)
		}
	}
	return nil
}

func (m *matchVisitor[T, V]) VisitParameter(p *Parameter[T]) error {
	pos := m.cursor.Pos()
	fork := m.cursor.Fork()
	v, err := p.Descriptor.ParseBinding(fork)
	if err != nil {
		return &MatchError{
			Kind: PayloadMismatch,
			Pos:  pos,
			Msg:  fmt.Sprintf("cannot match parameter `%s`", p.Name),
			Err:  err,
		}
	}
	m.cursor.Commit(fork)
	return m.bindings.AddValue(p.Name, v)
}

// VisitIndex expects the current ordinal for a scoped reference, and binds
// an integer literal otherwise.
func (m *matchVisitor[T, V]) VisitIndex(ref *IndexRef, count int, scoped bool) error {
	expected := "integer"
	if scoped {
		expected = strconv.Itoa(count)
	}
	tok, err := m.next(expected)
	if err != nil {
		return err
	}
	lit, ok := tok.(*tokentree.Literal)
	if !ok || lit.Kind != tokentree.Int {
		return mismatch(tok, expected)
	}
	n, err := strconv.Atoi(lit.Raw)
	if err != nil || n < 0 {
		return mismatch(tok, expected)
	}
	if scoped {
		if n != count {
			return mismatch(tok, expected)
		}
		return nil
	}
	return m.bindings.AddIndex(ref.Name, n)
}

func (m *matchVisitor[T, V]) PreVisitGroup(g *Group) (Visitor[T], error) {
	expected := string(g.Delim.Open())
	tok, err := m.next(expected)
	if err != nil {
		return nil, err
	}
	group, ok := tok.(*tokentree.Group)
	if !ok || group.Delim != g.Delim {
		return nil, mismatch(tok, expected)
	}
	return &matchVisitor[T, V]{
		cursor:   tokentree.NewGroupCursor(group),
		bindings: m.bindings,
		end:      endGroup,
	}, nil
}

func (m *matchVisitor[T, V]) PostVisitGroup(*Group, Visitor[T]) error {
	return nil
}

func (m *matchVisitor[T, V]) VisitEnd() error {
	if m.end == endAny || m.cursor.IsEmpty() {
		return nil
	}
	tok, _ := m.cursor.Peek()
	if m.end == endGroup {
		return &MatchError{Kind: ExpectedEndOfGroup, Pos: tok.Pos(), Msg: fmt.Sprintf("expected end of group, found `%s`", tok)}
	}
	return &MatchError{Kind: TrailingInput, Pos: tok.Pos(), Msg: fmt.Sprintf("expected end of input, found `%s`", tok)}
}

// speculate returns a visitor for one iteration over a fork of base.
func (m *matchVisitor[T, V]) speculate(base *tokentree.Cursor) *matchVisitor[T, V] {
	return newMatchVisitor[T, V](base.Fork(), endAny)
}

func (m *matchVisitor[T, V]) PreVisitOptional(*Optional) (OptionalVisitor[T], error) {
	return &matchOptional[T, V]{parent: m}, nil
}

func (m *matchVisitor[T, V]) PostVisitOptional(r *Optional, ov OptionalVisitor[T]) error {
	once := ov.(*matchOptional[T, V])
	for _, name := range r.Names() {
		var inner Binding[V]
		if once.result != nil {
			inner, _ = once.result.Get(name)
		}
		if err := m.bindings.AddOptional(name, inner); err != nil {
			return err
		}
	}
	return nil
}

func (m *matchVisitor[T, V]) PreVisitZeroOrMore(*ZeroOrMore) (ZeroOrMoreVisitor[T], error) {
	return &matchIteration[T, V]{parent: m}, nil
}

func (m *matchVisitor[T, V]) PostVisitZeroOrMore(r *ZeroOrMore, count int, zv ZeroOrMoreVisitor[T]) error {
	lists := collectIterations(r.Names(), zv.(*matchIteration[T, V]).iterations)
	for _, name := range r.Names() {
		if err := m.bindings.AddZeroOrMore(name, lists[name]); err != nil {
			return err
		}
	}
	return m.addRepetitionIndex(&r.Repetition, count)
}

func (m *matchVisitor[T, V]) PreVisitOneOrMore(*OneOrMore) (OneOrMoreVisitor[T], error) {
	return &matchIteration[T, V]{parent: m}, nil
}

func (m *matchVisitor[T, V]) PostVisitOneOrMore(r *OneOrMore, count int, ov OneOrMoreVisitor[T]) error {
	lists := collectIterations(r.Names(), ov.(*matchIteration[T, V]).iterations)
	for _, name := range r.Names() {
		if err := m.bindings.AddOneOrMore(name, lists[name]); err != nil {
			return err
		}
	}
	return m.addRepetitionIndex(&r.Repetition, count)
}

func (m *matchVisitor[T, V]) addRepetitionIndex(r *Repetition, count int) error {
	if r.Index == "" {
		return nil
	}
	return m.bindings.AddIndex(r.Index, count)
}

type matchOptional[T Matchable[V], V Value[V]] struct {
	parent *matchVisitor[T, V]
	result *Bindings[V]
}

func (o *matchOptional[T, V]) PreVisitOnce() (Visitor[T], bool, error) {
	return o.parent.speculate(o.parent.cursor), true, nil
}

func (o *matchOptional[T, V]) PostVisitOnce(v Visitor[T], result error) error {
	if result != nil {
		if isStop(result) {
			return nil
		}
		return result
	}
	sub := v.(*matchVisitor[T, V])
	o.parent.cursor.Commit(sub.cursor)
	o.result = sub.bindings
	return nil
}

type matchIteration[T Matchable[V], V Value[V]] struct {
	parent     *matchVisitor[T, V]
	iterations []*Bindings[V]

	// start is where the running iteration began, after any separator.
	start *tokentree.Cursor
}

func (it *matchIteration[T, V]) VisitSeparator(sep *tokentree.Punct) (bool, error) {
	fork := it.parent.cursor.Fork()
	tok, ok := fork.Next()
	if !ok {
		return false, nil
	}
	if punct, isPunct := tok.(*tokentree.Punct); !isPunct || punct.Char != sep.Char {
		return false, nil
	}
	it.start = fork
	return true, nil
}

func (it *matchIteration[T, V]) PreVisitIteration() (Visitor[T], bool, error) {
	if it.start == nil {
		it.start = it.parent.cursor
	}
	return it.parent.speculate(it.start), true, nil
}

func (it *matchIteration[T, V]) PostVisitIteration(v Visitor[T], result error) (bool, error) {
	start := it.start
	it.start = nil
	if result != nil {
		if isStop(result) {
			return false, nil
		}
		return false, result
	}
	sub := v.(*matchVisitor[T, V])
	if sub.cursor.Index() == start.Index() {
		// an empty iteration would repeat forever
		return false, nil
	}
	it.parent.cursor.Commit(sub.cursor)
	it.iterations = append(it.iterations, sub.bindings)
	return true, nil
}

func (it *matchIteration[T, V]) PreVisitFirst() (Visitor[T], bool, error) {
	return it.parent.speculate(it.parent.cursor), true, nil
}

func (it *matchIteration[T, V]) PostVisitFirst(v Visitor[T], result error) error {
	if result != nil {
		return result
	}
	sub := v.(*matchVisitor[T, V])
	it.parent.cursor.Commit(sub.cursor)
	it.iterations = append(it.iterations, sub.bindings)
	return nil
}
