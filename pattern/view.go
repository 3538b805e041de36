package pattern

import "sort"

// View is a read-only window on a set of bindings, optionally restricted to
// some names. Views share the underlying bindings.
type View[V Value[V]] struct {
	m       map[string]Binding[V]
	allowed map[string]struct{}
}

func (v View[V]) lookup(name string) (Binding[V], bool) {
	if v.allowed != nil {
		if _, ok := v.allowed[name]; !ok {
			return nil, false
		}
	}
	b, ok := v.m[name]
	return b, ok
}

func (v View[V]) Has(name string) bool {
	_, ok := v.lookup(name)
	return ok
}

// HasAll reports whether every name is bound.
func (v View[V]) HasAll(names []string) bool {
	for _, n := range names {
		if !v.Has(n) {
			return false
		}
	}
	return true
}

// Names returns the names visible through v, sorted.
func (v View[V]) Names() []string {
	var names []string
	for n := range v.m {
		if v.Has(n) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func (v View[V]) Get(name string) (Binding[V], error) {
	b, ok := v.lookup(name)
	if !ok {
		return nil, &BindingNotFoundError{Name: name}
	}
	return b, nil
}

func (v View[V]) GetValue(name string) (V, error) {
	var zero V
	b, err := v.Get(name)
	if err != nil {
		return zero, err
	}
	vb, ok := b.(*ValueBinding[V])
	if !ok {
		return zero, &BindingTypeMismatchError{Name: name, Expected: KindValue, Found: b.Kind()}
	}
	return vb.Value, nil
}

// MaybeValue is like GetValue but reports an absent name with false.
func (v View[V]) MaybeValue(name string) (V, bool, error) {
	var zero V
	if !v.Has(name) {
		return zero, false, nil
	}
	value, err := v.GetValue(name)
	return value, err == nil, err
}

func (v View[V]) GetIndex(name string) (int, error) {
	b, err := v.Get(name)
	if err != nil {
		return 0, err
	}
	ib, ok := b.(*IndexBinding[V])
	if !ok {
		return 0, &BindingTypeMismatchError{Name: name, Expected: KindIndex, Found: b.Kind()}
	}
	return ib.Count, nil
}

// MaybeIndex is like GetIndex but reports an absent name with false.
func (v View[V]) MaybeIndex(name string) (int, bool, error) {
	if !v.Has(name) {
		return 0, false, nil
	}
	count, err := v.GetIndex(name)
	return count, err == nil, err
}

// Project restricts v to names.
func (v View[V]) Project(names []string) View[V] {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		if v.Has(n) {
			allowed[n] = struct{}{}
		}
	}
	return View[V]{m: v.m, allowed: allowed}
}

// Optional reads the optional bindings of names. It returns a view over the
// inner bindings when they are all Some, and false when they are all None.
func (v View[V]) Optional(names []string) (View[V], bool, error) {
	inner := make(map[string]Binding[V], len(names))
	present := -1
	for _, name := range names {
		b, err := v.Get(name)
		if err != nil {
			return View[V]{}, false, err
		}
		ob, ok := b.(*OptionalBinding[V])
		if !ok {
			return View[V]{}, false, &BindingTypeMismatchError{Name: name, Expected: KindOptional, Found: b.Kind()}
		}
		n := 0
		if ob.Inner != nil {
			n = 1
			inner[name] = ob.Inner
		}
		if present >= 0 && n != present {
			return View[V]{}, false, &RepetitionLenMismatchError{Name: name, Expected: present, Found: n}
		}
		present = n
	}
	if present != 1 {
		return View[V]{}, false, nil
	}
	return View[V]{m: inner}, true, nil
}

// ZeroOrMore reads the zero-or-more bindings of names and returns one view
// per iteration.
func (v View[V]) ZeroOrMore(names []string) ([]View[V], error) {
	return v.repetition(names, KindZeroOrMore)
}

// OneOrMore is like ZeroOrMore for one-or-more bindings. An empty list is an
// error.
func (v View[V]) OneOrMore(names []string) ([]View[V], error) {
	views, err := v.repetition(names, KindOneOrMore)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 && len(names) > 0 {
		return nil, &EmptyRepetitionError{Name: names[0]}
	}
	return views, nil
}

func (v View[V]) repetition(names []string, kind BindingKind) ([]View[V], error) {
	lists := make(map[string][]Binding[V], len(names))
	length := -1
	for _, name := range names {
		b, err := v.Get(name)
		if err != nil {
			return nil, err
		}
		var items []Binding[V]
		switch rb := b.(type) {
		case *ZeroOrMoreBinding[V]:
			if kind != KindZeroOrMore {
				return nil, &BindingTypeMismatchError{Name: name, Expected: kind, Found: b.Kind()}
			}
			items = rb.Items
		case *OneOrMoreBinding[V]:
			if kind != KindOneOrMore {
				return nil, &BindingTypeMismatchError{Name: name, Expected: kind, Found: b.Kind()}
			}
			items = rb.Items
		default:
			return nil, &BindingTypeMismatchError{Name: name, Expected: kind, Found: b.Kind()}
		}
		if length >= 0 && len(items) != length {
			return nil, &RepetitionLenMismatchError{Name: name, Expected: length, Found: len(items)}
		}
		length = len(items)
		lists[name] = items
	}

	views := make([]View[V], max(length, 0))
	for i := range views {
		m := make(map[string]Binding[V], len(names))
		for name, items := range lists {
			m[name] = items[i]
		}
		views[i] = View[V]{m: m}
	}
	return views, nil
}
