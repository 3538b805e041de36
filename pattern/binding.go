package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

type BindingKind int

const (
	KindValue BindingKind = iota
	KindIndex
	KindOptional
	KindZeroOrMore
	KindOneOrMore
)

func (k BindingKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindIndex:
		return "index"
	case KindOptional:
		return "optional"
	case KindZeroOrMore:
		return "zero-or-more"
	case KindOneOrMore:
		return "one-or-more"
	default:
		return "unknown"
	}
}

// Binding is what a name is bound to: *ValueBinding, *IndexBinding,
// *OptionalBinding, *ZeroOrMoreBinding or *OneOrMoreBinding.
type Binding[V any] interface {
	Kind() BindingKind
	String() string
	binding()
}

type ValueBinding[V any] struct {
	Value V
}

type IndexBinding[V any] struct {
	Count int
}

// OptionalBinding with a nil Inner is None.
type OptionalBinding[V any] struct {
	Inner Binding[V]
}

type ZeroOrMoreBinding[V any] struct {
	Items []Binding[V]
}

type OneOrMoreBinding[V any] struct {
	Items []Binding[V]
}

func (*ValueBinding[V]) Kind() BindingKind      { return KindValue }
func (*IndexBinding[V]) Kind() BindingKind      { return KindIndex }
func (*OptionalBinding[V]) Kind() BindingKind   { return KindOptional }
func (*ZeroOrMoreBinding[V]) Kind() BindingKind { return KindZeroOrMore }
func (*OneOrMoreBinding[V]) Kind() BindingKind  { return KindOneOrMore }

func (*ValueBinding[V]) binding()      {}
func (*IndexBinding[V]) binding()      {}
func (*OptionalBinding[V]) binding()   {}
func (*ZeroOrMoreBinding[V]) binding() {}
func (*OneOrMoreBinding[V]) binding()  {}

func (b *ValueBinding[V]) String() string { return fmt.Sprint(b.Value) }
func (b *IndexBinding[V]) String() string { return strconv.Itoa(b.Count) }

func (b *OptionalBinding[V]) String() string {
	if b.Inner == nil {
		return "None"
	}
	return "Some (" + b.Inner.String() + ")"
}

func (b *ZeroOrMoreBinding[V]) String() string { return listString(b.Items) }
func (b *OneOrMoreBinding[V]) String() string  { return listString(b.Items) }

func listString[V any](items []Binding[V]) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Some and None build optional bindings.
func Some[V any](inner Binding[V]) *OptionalBinding[V] { return &OptionalBinding[V]{Inner: inner} }
func None[V any]() *OptionalBinding[V]                 { return &OptionalBinding[V]{} }

// EqualBinding compares two bindings structurally.
func EqualBinding[V Value[V]](a, b Binding[V]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *ValueBinding[V]:
		return x.Value.Equal(b.(*ValueBinding[V]).Value)
	case *IndexBinding[V]:
		return x.Count == b.(*IndexBinding[V]).Count
	case *OptionalBinding[V]:
		return EqualBinding[V](x.Inner, b.(*OptionalBinding[V]).Inner)
	case *ZeroOrMoreBinding[V]:
		return equalItems(x.Items, b.(*ZeroOrMoreBinding[V]).Items)
	case *OneOrMoreBinding[V]:
		return equalItems(x.Items, b.(*OneOrMoreBinding[V]).Items)
	default:
		return false
	}
}

func equalItems[V Value[V]](a, b []Binding[V]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualBinding[V](a[i], b[i]) {
			return false
		}
	}
	return true
}

// MapBinding rebuilds b with every value passed through f.
func MapBinding[V, W any](b Binding[V], f func(V) (W, error)) (Binding[W], error) {
	switch b := b.(type) {
	case *ValueBinding[V]:
		w, err := f(b.Value)
		if err != nil {
			return nil, err
		}
		return &ValueBinding[W]{Value: w}, nil
	case *IndexBinding[V]:
		return &IndexBinding[W]{Count: b.Count}, nil
	case *OptionalBinding[V]:
		if b.Inner == nil {
			return None[W](), nil
		}
		inner, err := MapBinding(b.Inner, f)
		if err != nil {
			return nil, err
		}
		return Some[W](inner), nil
	case *ZeroOrMoreBinding[V]:
		items, err := mapItems(b.Items, f)
		if err != nil {
			return nil, err
		}
		return &ZeroOrMoreBinding[W]{Items: items}, nil
	case *OneOrMoreBinding[V]:
		items, err := mapItems(b.Items, f)
		if err != nil {
			return nil, err
		}
		return &OneOrMoreBinding[W]{Items: items}, nil
	default:
		return nil, fmt.Errorf("unknown binding %T", b)
	}
}

func mapItems[V, W any](items []Binding[V], f func(V) (W, error)) ([]Binding[W], error) {
	out := make([]Binding[W], len(items))
	for i, it := range items {
		mapped, err := MapBinding(it, f)
		if err != nil {
			return nil, err
		}
		out[i] = mapped
	}
	return out, nil
}
