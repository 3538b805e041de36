package pattern

import (
	"strconv"

	"github.com/gnolang/tokpat/tokentree"
)

// Substitute renders p with the given bindings. Separators are emitted only
// between iterations. A repetition index that is also bound as a scalar
// must agree with the number of iterations.
func Substitute[T Substitutable[V], V Value[V]](p *Pattern[T], bindings *Bindings[V]) (tokentree.Stream, error) {
	out := tokentree.Stream{}
	s := &substituteVisitor[T, V]{view: bindings.View(), out: &out}
	if err := p.Visit(s); err != nil {
		return nil, err
	}
	return out, nil
}

type substituteVisitor[T Substitutable[V], V Value[V]] struct {
	view View[V]
	out  *tokentree.Stream
}

func (s *substituteVisitor[T, V]) emit(toks ...tokentree.TokenTree) {
	*s.out = append(*s.out, toks...)
}

// child returns a visitor writing to the same output through another view.
func (s *substituteVisitor[T, V]) child(view View[V]) *substituteVisitor[T, V] {
	return &substituteVisitor[T, V]{view: view, out: s.out}
}

func (s *substituteVisitor[T, V]) VisitParameter(p *Parameter[T]) error {
	v, err := s.view.GetValue(p.Name)
	if err != nil {
		return err
	}
	toks, err := p.Descriptor.TokenizeBinding(p.Name, v)
	if err != nil {
		return err
	}
	s.emit(toks...)
	return nil
}

func (s *substituteVisitor[T, V]) VisitIndex(ref *IndexRef, count int, scoped bool) error {
	if !scoped {
		n, err := s.view.GetIndex(ref.Name)
		if err != nil {
			return err
		}
		count = n
	}
	s.emit(tokentree.NewLiteral(strconv.Itoa(count)))
	return nil
}

func (s *substituteVisitor[T, V]) VisitIdent(item *IdentItem) error {
	s.emit(item.Ident)
	return nil
}

func (s *substituteVisitor[T, V]) VisitLiteral(item *LiteralItem) error {
	s.emit(item.Literal)
	return nil
}

func (s *substituteVisitor[T, V]) VisitPunctRun(item *PunctItem) error {
	s.emit(item.Run.Stream()...)
	return nil
}

func (s *substituteVisitor[T, V]) PreVisitGroup(*Group) (Visitor[T], error) {
	inner := tokentree.Stream{}
	return &substituteVisitor[T, V]{view: s.view, out: &inner}, nil
}

func (s *substituteVisitor[T, V]) PostVisitGroup(g *Group, child Visitor[T]) error {
	inner := child.(*substituteVisitor[T, V]).out
	s.emit(tokentree.NewGroup(g.Delim, *inner))
	return nil
}

func (s *substituteVisitor[T, V]) VisitEnd() error { return nil }

func (s *substituteVisitor[T, V]) PreVisitOptional(r *Optional) (OptionalVisitor[T], error) {
	inner, some, err := s.view.Optional(r.boundNames(s.view.Has))
	if err != nil {
		return nil, err
	}
	return &substituteOptional[T, V]{parent: s, inner: inner, some: some}, nil
}

func (s *substituteVisitor[T, V]) PostVisitOptional(*Optional, OptionalVisitor[T]) error {
	return nil
}

func (s *substituteVisitor[T, V]) PreVisitZeroOrMore(r *ZeroOrMore) (ZeroOrMoreVisitor[T], error) {
	views, err := s.view.ZeroOrMore(r.boundNames(s.view.Has))
	if err != nil {
		return nil, err
	}
	return s.iterate(&r.Repetition, views)
}

func (s *substituteVisitor[T, V]) PostVisitZeroOrMore(*ZeroOrMore, int, ZeroOrMoreVisitor[T]) error {
	return nil
}

func (s *substituteVisitor[T, V]) PreVisitOneOrMore(r *OneOrMore) (OneOrMoreVisitor[T], error) {
	views, err := s.view.OneOrMore(r.boundNames(s.view.Has))
	if err != nil {
		return nil, err
	}
	return s.iterate(&r.Repetition, views)
}

func (s *substituteVisitor[T, V]) PostVisitOneOrMore(*OneOrMore, int, OneOrMoreVisitor[T]) error {
	return nil
}

func (s *substituteVisitor[T, V]) iterate(r *Repetition, views []View[V]) (*substituteIteration[T, V], error) {
	if err := checkIndexLen(s.view, r, len(views)); err != nil {
		return nil, err
	}
	return &substituteIteration[T, V]{parent: s, views: views}, nil
}

// checkIndexLen compares the iteration count of r with a scalar binding of
// its index, if there is one.
func checkIndexLen[V Value[V]](view View[V], r *Repetition, count int) error {
	if r.Index == "" {
		return nil
	}
	n, ok, err := view.MaybeIndex(r.Index)
	if err != nil {
		return err
	}
	if ok && n != count {
		return &RepetitionLenMismatchError{Name: r.Index, Expected: n, Found: count, Index: true}
	}
	return nil
}

type substituteOptional[T Substitutable[V], V Value[V]] struct {
	parent *substituteVisitor[T, V]
	inner  View[V]
	some   bool
}

func (o *substituteOptional[T, V]) PreVisitOnce() (Visitor[T], bool, error) {
	if !o.some {
		return nil, false, nil
	}
	return o.parent.child(o.inner), true, nil
}

func (o *substituteOptional[T, V]) PostVisitOnce(_ Visitor[T], result error) error {
	return result
}

type substituteIteration[T Substitutable[V], V Value[V]] struct {
	parent *substituteVisitor[T, V]
	views  []View[V]
	next   int
}

func (it *substituteIteration[T, V]) VisitSeparator(sep *tokentree.Punct) (bool, error) {
	if it.next >= len(it.views) {
		return false, nil
	}
	it.parent.emit(tokentree.NewPunct(sep.Char, tokentree.Alone))
	return true, nil
}

func (it *substituteIteration[T, V]) PreVisitIteration() (Visitor[T], bool, error) {
	if it.next >= len(it.views) {
		return nil, false, nil
	}
	v := it.parent.child(it.views[it.next])
	it.next++
	return v, true, nil
}

func (it *substituteIteration[T, V]) PostVisitIteration(_ Visitor[T], result error) (bool, error) {
	if result != nil {
		return false, result
	}
	return true, nil
}

func (it *substituteIteration[T, V]) PreVisitFirst() (Visitor[T], bool, error) {
	return it.PreVisitIteration()
}

func (it *substituteIteration[T, V]) PostVisitFirst(v Visitor[T], result error) error {
	_, err := it.PostVisitIteration(v, result)
	return err
}
