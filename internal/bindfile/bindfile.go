// Package bindfile reads and writes fragment bindings as plain YAML or JSON
// trees. The shape each name takes is read off the pattern it is meant for:
// scalar parameters are source strings, indices are integers, optionals are
// a value or null and repetitions are lists.
package bindfile

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/tokpat/pattern"
	"github.com/gnolang/tokpat/pattern/fragment"
)

// Error reports a binding that does not fit the pattern.
type Error struct {
	Name string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("binding `%s`: %s: %v", e.Name, e.Msg, e.Err)
	}
	return fmt.Sprintf("binding `%s`: %s", e.Name, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Decode parses a YAML (or JSON) mapping of names to values into bindings
// for p.
func Decode(p *fragment.Pattern, data []byte) (*fragment.Bindings, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode bindings: %w", err)
	}
	return FromMap(p, m)
}

// FromMap converts a decoded YAML or JSON tree into bindings for p. Every
// key must be a name bound by p.
func FromMap(p *fragment.Pattern, m map[string]any) (*fragment.Bindings, error) {
	kinds := p.Parameters()
	out := fragment.NewBindings()
	for name, raw := range m {
		path, index, ok := p.Schema().Lookup(name)
		if !ok {
			return nil, &Error{Name: name, Msg: "not bound by the pattern"}
		}
		d := decoder{name: name, kind: kinds[name], index: index}
		b, err := d.decode(path, raw)
		if err != nil {
			return nil, err
		}
		if err := out.Add(name, b); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type decoder struct {
	name  string
	kind  fragment.Kind
	index bool
}

func (d decoder) errorf(format string, args ...any) *Error {
	return &Error{Name: d.name, Msg: fmt.Sprintf(format, args...)}
}

func (d decoder) decode(path []pattern.RepetitionKind, raw any) (fragment.Binding, error) {
	if len(path) == 0 {
		return d.leaf(raw)
	}

	rest := path[1:]
	switch path[0] {
	case pattern.RepeatOptional:
		if raw == nil {
			return pattern.None[fragment.Fragment](), nil
		}
		inner, err := d.decode(rest, raw)
		if err != nil {
			return nil, err
		}
		return pattern.Some[fragment.Fragment](inner), nil
	case pattern.RepeatZeroOrMore, pattern.RepeatOneOrMore:
		list, ok := raw.([]any)
		if !ok {
			if raw != nil {
				return nil, d.errorf("expected a list for %s repetition, found %T", path[0], raw)
			}
			list = nil
		}
		items := make([]fragment.Binding, 0, len(list))
		for _, elem := range list {
			item, err := d.decode(rest, elem)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if path[0] == pattern.RepeatOneOrMore {
			return &pattern.OneOrMoreBinding[fragment.Fragment]{Items: items}, nil
		}
		return &pattern.ZeroOrMoreBinding[fragment.Fragment]{Items: items}, nil
	default:
		return nil, d.errorf("unknown repetition kind %s", path[0])
	}
}

func (d decoder) leaf(raw any) (fragment.Binding, error) {
	if d.index {
		n, ok := toInt(raw)
		if !ok || n < 0 {
			return nil, d.errorf("expected a non-negative integer index, found %v", raw)
		}
		return &pattern.IndexBinding[fragment.Fragment]{Count: n}, nil
	}

	var src string
	switch v := raw.(type) {
	case string:
		src = v
	case int, int64, uint64, float64, bool:
		src = fmt.Sprint(v)
	default:
		return nil, d.errorf("expected %s source text, found %T", d.kind, raw)
	}
	f, err := fragment.FromSource(d.kind, src)
	if err != nil {
		return nil, &Error{Name: d.name, Msg: fmt.Sprintf("cannot parse %q", src), Err: err}
	}
	return fragment.Value(f), nil
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

// Encode renders b as a tree of strings, ints, nils and lists that
// marshals to YAML or JSON and decodes back with FromMap.
func Encode(b *fragment.Bindings) map[string]any {
	out := make(map[string]any, b.Len())
	for _, name := range b.Names() {
		binding, _ := b.Get(name)
		out[name] = encode(binding)
	}
	return out
}

func encode(b fragment.Binding) any {
	switch b := b.(type) {
	case *pattern.ValueBinding[fragment.Fragment]:
		return b.Value.String()
	case *pattern.IndexBinding[fragment.Fragment]:
		return b.Count
	case *pattern.OptionalBinding[fragment.Fragment]:
		if b.Inner == nil {
			return nil
		}
		return encode(b.Inner)
	case *pattern.ZeroOrMoreBinding[fragment.Fragment]:
		return encodeItems(b.Items)
	case *pattern.OneOrMoreBinding[fragment.Fragment]:
		return encodeItems(b.Items)
	default:
		return nil
	}
}

func encodeItems(items []fragment.Binding) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = encode(item)
	}
	return out
}
