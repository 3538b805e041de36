package pattern

import (
	"strconv"

	"github.com/gnolang/tokpat/tokentree"
)

// DummySubstitute renders p with every parameter replaced by its dummy
// tokens. Optional blocks are rendered once and other repetitions exactly
// once, so the output shows the shape of every branch. Index references
// render as 0.
func DummySubstitute[T DummyTokenizer](p *Pattern[T]) (tokentree.Stream, error) {
	out := tokentree.Stream{}
	if err := p.Visit(&dummyVisitor[T]{out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

type dummyVisitor[T DummyTokenizer] struct {
	out *tokentree.Stream
}

func (d *dummyVisitor[T]) emit(toks ...tokentree.TokenTree) {
	*d.out = append(*d.out, toks...)
}

func (d *dummyVisitor[T]) VisitParameter(p *Parameter[T]) error {
	d.emit(p.Descriptor.DummyTokens()...)
	return nil
}

func (d *dummyVisitor[T]) VisitIndex(_ *IndexRef, count int, _ bool) error {
	d.emit(tokentree.NewLiteral(strconv.Itoa(count)))
	return nil
}

func (d *dummyVisitor[T]) VisitIdent(item *IdentItem) error {
	d.emit(item.Ident)
	return nil
}

func (d *dummyVisitor[T]) VisitLiteral(item *LiteralItem) error {
	d.emit(item.Literal)
	return nil
}

func (d *dummyVisitor[T]) VisitPunctRun(item *PunctItem) error {
	d.emit(item.Run.Stream()...)
	return nil
}

func (d *dummyVisitor[T]) PreVisitGroup(*Group) (Visitor[T], error) {
	inner := tokentree.Stream{}
	return &dummyVisitor[T]{out: &inner}, nil
}

func (d *dummyVisitor[T]) PostVisitGroup(g *Group, child Visitor[T]) error {
	d.emit(tokentree.NewGroup(g.Delim, *child.(*dummyVisitor[T]).out))
	return nil
}

func (d *dummyVisitor[T]) VisitEnd() error { return nil }

func (d *dummyVisitor[T]) PreVisitOptional(*Optional) (OptionalVisitor[T], error) {
	return &dummyOnce[T]{parent: d}, nil
}

func (d *dummyVisitor[T]) PostVisitOptional(*Optional, OptionalVisitor[T]) error { return nil }

func (d *dummyVisitor[T]) PreVisitZeroOrMore(*ZeroOrMore) (ZeroOrMoreVisitor[T], error) {
	return &dummyOnce[T]{parent: d}, nil
}

func (d *dummyVisitor[T]) PostVisitZeroOrMore(*ZeroOrMore, int, ZeroOrMoreVisitor[T]) error {
	return nil
}

func (d *dummyVisitor[T]) PreVisitOneOrMore(*OneOrMore) (OneOrMoreVisitor[T], error) {
	return &dummyOnce[T]{parent: d}, nil
}

func (d *dummyVisitor[T]) PostVisitOneOrMore(*OneOrMore, int, OneOrMoreVisitor[T]) error {
	return nil
}

type dummyOnce[T DummyTokenizer] struct {
	parent  *dummyVisitor[T]
	visited bool
}

func (o *dummyOnce[T]) once() (Visitor[T], bool, error) {
	if o.visited {
		return nil, false, nil
	}
	o.visited = true
	return o.parent, true, nil
}

func (o *dummyOnce[T]) PreVisitOnce() (Visitor[T], bool, error) {
	return o.once()
}

func (o *dummyOnce[T]) PostVisitOnce(_ Visitor[T], result error) error {
	return result
}

func (o *dummyOnce[T]) VisitSeparator(*tokentree.Punct) (bool, error) {
	return false, nil
}

func (o *dummyOnce[T]) PreVisitIteration() (Visitor[T], bool, error) {
	return o.once()
}

func (o *dummyOnce[T]) PostVisitIteration(_ Visitor[T], result error) (bool, error) {
	return result == nil, result
}

func (o *dummyOnce[T]) PreVisitFirst() (Visitor[T], bool, error) {
	return o.once()
}

func (o *dummyOnce[T]) PostVisitFirst(_ Visitor[T], result error) error {
	return result
}
