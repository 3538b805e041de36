package pattern

import "fmt"

// Visit walks the pattern with v. Every call gets its own IndexScope, so a
// pattern can be visited from several goroutines at once.
func (p *Pattern[T]) Visit(v Visitor[T]) error {
	var scope IndexScope
	if err := walkItems(p.items, v, &scope); err != nil {
		return err
	}
	return v.VisitEnd()
}

func walkItems[T Descriptor](items []Item, v Visitor[T], scope *IndexScope) error {
	for _, it := range items {
		if err := walkItem(it, v, scope); err != nil {
			return err
		}
	}
	return nil
}

func walkItem[T Descriptor](it Item, v Visitor[T], scope *IndexScope) error {
	switch it := it.(type) {
	case *IdentItem:
		return v.VisitIdent(it)
	case *LiteralItem:
		return v.VisitLiteral(it)
	case *PunctItem:
		return v.VisitPunctRun(it)
	case *Parameter[T]:
		return v.VisitParameter(it)
	case *IndexRef:
		count, scoped := scope.Lookup(it.Name)
		return v.VisitIndex(it, count, scoped)

	case *Group:
		child, err := v.PreVisitGroup(it)
		if err != nil {
			return err
		}
		if err := walkItems(it.Items, child, scope); err != nil {
			return err
		}
		if err := child.VisitEnd(); err != nil {
			return err
		}
		return v.PostVisitGroup(it, child)

	case *Optional:
		ov, err := v.PreVisitOptional(it)
		if err != nil {
			return err
		}
		sub, ok, err := ov.PreVisitOnce()
		if err != nil {
			return err
		}
		if ok {
			if err := ov.PostVisitOnce(sub, walkItems(it.Items, sub, scope)); err != nil {
				return err
			}
		}
		return v.PostVisitOptional(it, ov)

	case *ZeroOrMore:
		zv, err := v.PreVisitZeroOrMore(it)
		if err != nil {
			return err
		}
		count, err := walkRepetition[T](&it.Repetition, nil, zv, scope)
		if err != nil {
			return err
		}
		return v.PostVisitZeroOrMore(it, count, zv)

	case *OneOrMore:
		ov, err := v.PreVisitOneOrMore(it)
		if err != nil {
			return err
		}
		count, err := walkRepetition[T](&it.Repetition, ov, ov, scope)
		if err != nil {
			return err
		}
		return v.PostVisitOneOrMore(it, count, ov)

	default:
		return fmt.Errorf("pattern: unexpected item %T", it)
	}
}

// walkRepetition runs the iterations of r and returns how many counted.
// first is non-nil for one-or-more repetitions.
func walkRepetition[T Descriptor](r *Repetition, first OneOrMoreVisitor[T], iv IterationVisitor[T], scope *IndexScope) (int, error) {
	scope.Push(r.Index)
	defer scope.Pop()

	count := 0
	if first != nil {
		sub, ok, err := first.PreVisitFirst()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
		if err := first.PostVisitFirst(sub, walkItems(r.Items, sub, scope)); err != nil {
			return 0, err
		}
		count++
		scope.Increment()
	}

	for {
		if count > 0 && r.Separator != nil {
			ok, err := iv.VisitSeparator(r.Separator)
			if err != nil {
				return 0, err
			}
			if !ok {
				break
			}
		}
		sub, ok, err := iv.PreVisitIteration()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		counted, err := iv.PostVisitIteration(sub, walkItems(r.Items, sub, scope))
		if err != nil {
			return 0, err
		}
		if !counted {
			break
		}
		count++
		scope.Increment()
	}
	return count, nil
}
