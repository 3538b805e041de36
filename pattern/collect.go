package pattern

import "github.com/gnolang/tokpat/tokentree"

// Parameters returns the descriptor of every parameter in the pattern.
// When a name appears more than once the first occurrence wins.
func (p *Pattern[T]) Parameters() map[string]T {
	out := make(map[string]T)
	for name, param := range p.parameterItems() {
		out[name] = param.Descriptor
	}
	return out
}

func (p *Pattern[T]) parameterItems() map[string]*Parameter[T] {
	c := &collectVisitor[T]{params: make(map[string]*Parameter[T])}
	// the collector never fails
	_ = p.Visit(c)
	return c.params
}

// collectVisitor visits every repetition body exactly once.
type collectVisitor[T Descriptor] struct {
	params map[string]*Parameter[T]
}

func (c *collectVisitor[T]) VisitParameter(p *Parameter[T]) error {
	if _, ok := c.params[p.Name]; !ok {
		c.params[p.Name] = p
	}
	return nil
}

func (c *collectVisitor[T]) VisitIndex(*IndexRef, int, bool) error {
	return nil
}

func (c *collectVisitor[T]) VisitIdent(*IdentItem) error {
	return nil
}

func (c *collectVisitor[T]) VisitLiteral(*LiteralItem) error {
	return nil
}

func (c *collectVisitor[T]) VisitPunctRun(*PunctItem) error {
	return nil
}

func (c *collectVisitor[T]) VisitEnd() error {
	return nil
}

func (c *collectVisitor[T]) PreVisitGroup(*Group) (Visitor[T], error) {
	return c, nil
}

func (c *collectVisitor[T]) PostVisitGroup(*Group, Visitor[T]) error {
	return nil
}

func (c *collectVisitor[T]) PreVisitOptional(*Optional) (OptionalVisitor[T], error) {
	return &collectOnce[T]{parent: c}, nil
}

func (c *collectVisitor[T]) PostVisitOptional(*Optional, OptionalVisitor[T]) error {
	return nil
}

func (c *collectVisitor[T]) PreVisitZeroOrMore(*ZeroOrMore) (ZeroOrMoreVisitor[T], error) {
	return &collectOnce[T]{parent: c}, nil
}

func (c *collectVisitor[T]) PostVisitZeroOrMore(*ZeroOrMore, int, ZeroOrMoreVisitor[T]) error {
	return nil
}

func (c *collectVisitor[T]) PreVisitOneOrMore(*OneOrMore) (OneOrMoreVisitor[T], error) {
	return &collectOnce[T]{parent: c}, nil
}

func (c *collectVisitor[T]) PostVisitOneOrMore(*OneOrMore, int, OneOrMoreVisitor[T]) error {
	return nil
}

// collectOnce lets the walker into a repetition body a single time.
type collectOnce[T Descriptor] struct {
	parent  *collectVisitor[T]
	visited bool
}

func (o *collectOnce[T]) once() (Visitor[T], bool, error) {
	if o.visited {
		return nil, false, nil
	}
	o.visited = true
	return o.parent, true, nil
}

func (o *collectOnce[T]) PreVisitOnce() (Visitor[T], bool, error) {
	return o.once()
}

func (o *collectOnce[T]) PostVisitOnce(_ Visitor[T], result error) error {
	return result
}

func (o *collectOnce[T]) VisitSeparator(*tokentree.Punct) (bool, error) {
	return false, nil
}

func (o *collectOnce[T]) PreVisitIteration() (Visitor[T], bool, error) {
	return o.once()
}

func (o *collectOnce[T]) PreVisitFirst() (Visitor[T], bool, error) {
	return o.once()
}

func (o *collectOnce[T]) PostVisitFirst(_ Visitor[T], result error) error {
	return result
}

func (o *collectOnce[T]) PostVisitIteration(_ Visitor[T], result error) (bool, error) {
	return result == nil, result
}
