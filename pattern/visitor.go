package pattern

import "github.com/gnolang/tokpat/tokentree"

// Visitor is driven by (*Pattern).Visit over the items of a pattern. The
// matcher, the substituter, the specializer and the collecting traversals
// all implement it and share the one walk.
//
// Group and repetition hooks come in pairs: the pre hook returns the visitor
// for the nested items and the post hook receives it back once the nested
// walk is over.
type Visitor[T Descriptor] interface {
	VisitParameter(p *Parameter[T]) error
	// VisitIndex is called for `$#name`. When scoped is true the reference is
	// inside a repetition indexed by name and count is its current ordinal.
	VisitIndex(ref *IndexRef, count int, scoped bool) error
	VisitIdent(item *IdentItem) error
	VisitLiteral(item *LiteralItem) error
	VisitPunctRun(item *PunctItem) error

	PreVisitGroup(g *Group) (Visitor[T], error)
	PostVisitGroup(g *Group, child Visitor[T]) error

	PreVisitOptional(r *Optional) (OptionalVisitor[T], error)
	PostVisitOptional(r *Optional, ov OptionalVisitor[T]) error

	PreVisitZeroOrMore(r *ZeroOrMore) (ZeroOrMoreVisitor[T], error)
	PostVisitZeroOrMore(r *ZeroOrMore, count int, zv ZeroOrMoreVisitor[T]) error

	PreVisitOneOrMore(r *OneOrMore) (OneOrMoreVisitor[T], error)
	PostVisitOneOrMore(r *OneOrMore, count int, ov OneOrMoreVisitor[T]) error

	// VisitEnd is called after the last item of the pattern and of every
	// group, but not after a repetition body.
	VisitEnd() error
}

// OptionalVisitor drives the single possible iteration of an optional.
type OptionalVisitor[T Descriptor] interface {
	// PreVisitOnce returns the visitor for the body, or false to skip it.
	PreVisitOnce() (Visitor[T], bool, error)
	// PostVisitOnce receives the result of walking the body. Returning nil
	// for a failed walk discards it.
	PostVisitOnce(v Visitor[T], result error) error
}

// IterationVisitor drives the optional iterations of a repetition.
type IterationVisitor[T Descriptor] interface {
	// VisitSeparator is called between iterations when the repetition has a
	// separator. Returning false ends the repetition.
	VisitSeparator(sep *tokentree.Punct) (bool, error)
	// PreVisitIteration returns the visitor for the next iteration, or false
	// to end the repetition.
	PreVisitIteration() (Visitor[T], bool, error)
	// PostVisitIteration receives the result of walking the iteration and
	// reports whether the iteration counts. An iteration that does not count
	// ends the repetition.
	PostVisitIteration(v Visitor[T], result error) (bool, error)
}

type ZeroOrMoreVisitor[T Descriptor] interface {
	IterationVisitor[T]
}

// OneOrMoreVisitor adds the mandatory first iteration.
type OneOrMoreVisitor[T Descriptor] interface {
	IterationVisitor[T]
	// PreVisitFirst returns the visitor for the first iteration, or false to
	// skip the repetition entirely.
	PreVisitFirst() (Visitor[T], bool, error)
	// PostVisitFirst receives the result of the first iteration. Unlike
	// later iterations, a failure here is returned to the caller.
	PostVisitFirst(v Visitor[T], result error) error
}
