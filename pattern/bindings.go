package pattern

import (
	"sort"
	"strings"
)

// Bindings maps names to the bindings produced by a match, or supplied for
// substitution and specialization.
type Bindings[V Value[V]] struct {
	m map[string]Binding[V]
}

func NewBindings[V Value[V]]() *Bindings[V] {
	return &Bindings[V]{m: make(map[string]Binding[V])}
}

// Add binds name. Binding a name again is accepted only with an equal
// binding.
func (b *Bindings[V]) Add(name string, binding Binding[V]) error {
	if existing, ok := b.m[name]; ok {
		if !EqualBinding[V](existing, binding) {
			return &BindingMismatchError{Name: name, Existing: existing.String(), Found: binding.String()}
		}
		return nil
	}
	b.m[name] = binding
	return nil
}

func (b *Bindings[V]) AddValue(name string, v V) error {
	return b.Add(name, &ValueBinding[V]{Value: v})
}

func (b *Bindings[V]) AddIndex(name string, count int) error {
	return b.Add(name, &IndexBinding[V]{Count: count})
}

// AddOptional binds name to Some(inner), or to None when inner is nil.
func (b *Bindings[V]) AddOptional(name string, inner Binding[V]) error {
	return b.Add(name, &OptionalBinding[V]{Inner: inner})
}

func (b *Bindings[V]) AddZeroOrMore(name string, items []Binding[V]) error {
	return b.Add(name, &ZeroOrMoreBinding[V]{Items: items})
}

func (b *Bindings[V]) AddOneOrMore(name string, items []Binding[V]) error {
	return b.Add(name, &OneOrMoreBinding[V]{Items: items})
}

// Merge adds every binding of other to b.
func (b *Bindings[V]) Merge(other *Bindings[V]) error {
	for _, name := range other.Names() {
		if err := b.Add(name, other.m[name]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bindings[V]) Get(name string) (Binding[V], bool) {
	binding, ok := b.m[name]
	return binding, ok
}

// Names returns the bound names, sorted.
func (b *Bindings[V]) Names() []string {
	names := make([]string, 0, len(b.m))
	for n := range b.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (b *Bindings[V]) Len() int { return len(b.m) }

// View returns a view over all bindings.
func (b *Bindings[V]) View() View[V] {
	return View[V]{m: b.m}
}

func (b *Bindings[V]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range b.Names() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(b.m[name].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// MapBindings rebuilds b with every value passed through f.
func MapBindings[V Value[V], W Value[W]](b *Bindings[V], f func(V) (W, error)) (*Bindings[W], error) {
	out := NewBindings[W]()
	for name, binding := range b.m {
		mapped, err := MapBinding(binding, f)
		if err != nil {
			return nil, err
		}
		out.m[name] = mapped
	}
	return out, nil
}

// collectIterations folds per-iteration bindings into one list per name.
func collectIterations[V Value[V]](names []string, iterations []*Bindings[V]) map[string][]Binding[V] {
	out := make(map[string][]Binding[V], len(names))
	for _, name := range names {
		items := make([]Binding[V], 0, len(iterations))
		for _, it := range iterations {
			if binding, ok := it.m[name]; ok {
				items = append(items, binding)
			}
		}
		out[name] = items
	}
	return out
}
