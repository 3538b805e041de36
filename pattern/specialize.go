package pattern

import (
	"strconv"

	"github.com/gnolang/tokpat/tokentree"
)

// Specialize substitutes the bindings it is given and keeps everything else
// generic. A bound parameter is rendered and the result parsed again as
// pattern items, so a value may itself contain pattern syntax. A repetition
// is unrolled when every name it references is bound and kept as it is
// otherwise. Bound index references become literals.
func Specialize[T Substitutable[V], V Value[V]](p *Pattern[T], bindings *Bindings[V]) (*Pattern[T], error) {
	var out []Item
	s := &specializeVisitor[T, V]{
		view:            bindings.View(),
		out:             &out,
		level:           newSpecializeLevel(),
		parseDescriptor: p.parseDescriptor,
	}
	if err := p.Visit(s); err != nil {
		return nil, err
	}
	return New(out, p.parseDescriptor)
}

type specializeVisitor[T Substitutable[V], V Value[V]] struct {
	view            View[V]
	out             *[]Item
	level           *specializeLevel
	parseDescriptor DescriptorParser[T]
}

// specializeLevel tracks the free index references of one repetition level.
// Groups share the level of their parent. An unrolled repetition fixes the
// value of its index for the whole level, including references already
// emitted.
type specializeLevel struct {
	counts  map[string]int
	pending map[string][]indexSlot
}

type indexSlot struct {
	out *[]Item
	at  int
}

func newSpecializeLevel() *specializeLevel {
	return &specializeLevel{counts: make(map[string]int), pending: make(map[string][]indexSlot)}
}

func (l *specializeLevel) unrolled(name string, count int) {
	l.counts[name] = count
	for _, slot := range l.pending[name] {
		(*slot.out)[slot.at] = indexLiteral(count)
	}
	delete(l.pending, name)
}

func indexLiteral(count int) *LiteralItem {
	return &LiteralItem{Literal: tokentree.NewLiteral(strconv.Itoa(count))}
}

func (s *specializeVisitor[T, V]) emit(items ...Item) {
	*s.out = append(*s.out, items...)
}

func (s *specializeVisitor[T, V]) child(view View[V]) *specializeVisitor[T, V] {
	return &specializeVisitor[T, V]{view: view, out: s.out, level: newSpecializeLevel(), parseDescriptor: s.parseDescriptor}
}

func (s *specializeVisitor[T, V]) VisitParameter(p *Parameter[T]) error {
	v, ok, err := s.view.MaybeValue(p.Name)
	if err != nil {
		return err
	}
	if !ok {
		s.emit(p)
		return nil
	}
	toks, err := p.Descriptor.TokenizeBinding(p.Name, v)
	if err != nil {
		return err
	}
	items, err := parseItems(toks, s.parseDescriptor)
	if err != nil {
		return err
	}
	s.emit(items...)
	return nil
}

func (s *specializeVisitor[T, V]) VisitIndex(ref *IndexRef, count int, scoped bool) error {
	if !scoped {
		n, ok, err := s.view.MaybeIndex(ref.Name)
		if err != nil {
			return err
		}
		if !ok {
			n, ok = s.level.counts[ref.Name]
		}
		if !ok {
			s.level.pending[ref.Name] = append(s.level.pending[ref.Name], indexSlot{out: s.out, at: len(*s.out)})
			s.emit(ref)
			return nil
		}
		count = n
	}
	s.emit(indexLiteral(count))
	return nil
}

func (s *specializeVisitor[T, V]) VisitIdent(item *IdentItem) error {
	s.emit(item)
	return nil
}

func (s *specializeVisitor[T, V]) VisitLiteral(item *LiteralItem) error {
	s.emit(item)
	return nil
}

func (s *specializeVisitor[T, V]) VisitPunctRun(item *PunctItem) error {
	s.emit(item)
	return nil
}

func (s *specializeVisitor[T, V]) PreVisitGroup(*Group) (Visitor[T], error) {
	var inner []Item
	return &specializeVisitor[T, V]{view: s.view, out: &inner, level: s.level, parseDescriptor: s.parseDescriptor}, nil
}

func (s *specializeVisitor[T, V]) PostVisitGroup(g *Group, child Visitor[T]) error {
	inner := child.(*specializeVisitor[T, V]).out
	s.emit(&Group{Delim: g.Delim, Items: *inner, At: g.At})
	return nil
}

func (s *specializeVisitor[T, V]) VisitEnd() error { return nil }

func (s *specializeVisitor[T, V]) PreVisitOptional(r *Optional) (OptionalVisitor[T], error) {
	o := &specializeOptional[T, V]{parent: s}
	if !s.view.HasAll(r.boundNames(s.view.Has)) {
		o.keep = true
		return o, nil
	}
	inner, some, err := s.view.Optional(r.boundNames(s.view.Has))
	if err != nil {
		return nil, err
	}
	o.inner, o.some = inner, some
	return o, nil
}

func (s *specializeVisitor[T, V]) PostVisitOptional(r *Optional, ov OptionalVisitor[T]) error {
	if ov.(*specializeOptional[T, V]).keep {
		s.emit(r)
	}
	return nil
}

func (s *specializeVisitor[T, V]) PreVisitZeroOrMore(r *ZeroOrMore) (ZeroOrMoreVisitor[T], error) {
	if !s.view.HasAll(r.boundNames(s.view.Has)) {
		return &specializeIteration[T, V]{parent: s, keep: true}, nil
	}
	views, err := s.view.ZeroOrMore(r.boundNames(s.view.Has))
	if err != nil {
		return nil, err
	}
	return &specializeIteration[T, V]{parent: s, views: views}, nil
}

func (s *specializeVisitor[T, V]) PostVisitZeroOrMore(r *ZeroOrMore, count int, zv ZeroOrMoreVisitor[T]) error {
	if zv.(*specializeIteration[T, V]).keep {
		s.emit(r)
		return nil
	}
	return s.unrolled(&r.Repetition, count)
}

func (s *specializeVisitor[T, V]) PreVisitOneOrMore(r *OneOrMore) (OneOrMoreVisitor[T], error) {
	if !s.view.HasAll(r.boundNames(s.view.Has)) {
		return &specializeIteration[T, V]{parent: s, keep: true}, nil
	}
	views, err := s.view.OneOrMore(r.boundNames(s.view.Has))
	if err != nil {
		return nil, err
	}
	return &specializeIteration[T, V]{parent: s, views: views}, nil
}

func (s *specializeVisitor[T, V]) PostVisitOneOrMore(r *OneOrMore, count int, ov OneOrMoreVisitor[T]) error {
	if ov.(*specializeIteration[T, V]).keep {
		s.emit(r)
		return nil
	}
	return s.unrolled(&r.Repetition, count)
}

func (s *specializeVisitor[T, V]) unrolled(r *Repetition, count int) error {
	if err := checkIndexLen(s.view, r, count); err != nil {
		return err
	}
	if r.Index != "" {
		s.level.unrolled(r.Index, count)
	}
	return nil
}

type specializeOptional[T Substitutable[V], V Value[V]] struct {
	parent *specializeVisitor[T, V]
	inner  View[V]
	some   bool
	keep   bool
}

func (o *specializeOptional[T, V]) PreVisitOnce() (Visitor[T], bool, error) {
	if o.keep || !o.some {
		return nil, false, nil
	}
	return o.parent.child(o.inner), true, nil
}

func (o *specializeOptional[T, V]) PostVisitOnce(_ Visitor[T], result error) error {
	return result
}

// specializeIteration unrolls a repetition into the parent's items, or
// skips it when keep is set.
type specializeIteration[T Substitutable[V], V Value[V]] struct {
	parent *specializeVisitor[T, V]
	views  []View[V]
	next   int
	keep   bool
}

func (it *specializeIteration[T, V]) VisitSeparator(sep *tokentree.Punct) (bool, error) {
	if it.keep || it.next >= len(it.views) {
		return false, nil
	}
	it.parent.emit(&PunctItem{Run: tokentree.PunctRun{tokentree.NewPunct(sep.Char, tokentree.Alone)}})
	return true, nil
}

func (it *specializeIteration[T, V]) PreVisitIteration() (Visitor[T], bool, error) {
	if it.keep || it.next >= len(it.views) {
		return nil, false, nil
	}
	v := it.parent.child(it.views[it.next])
	it.next++
	return v, true, nil
}

func (it *specializeIteration[T, V]) PostVisitIteration(_ Visitor[T], result error) (bool, error) {
	if result != nil {
		return false, result
	}
	return true, nil
}

func (it *specializeIteration[T, V]) PreVisitFirst() (Visitor[T], bool, error) {
	return it.PreVisitIteration()
}

func (it *specializeIteration[T, V]) PostVisitFirst(v Visitor[T], result error) error {
	_, err := it.PostVisitIteration(v, result)
	return err
}
