// Package pattern matches token trees against parameterized templates,
// substitutes bindings back into them and specializes them.
//
// Pattern syntax, where `$` is the escape marker:
//
//	$name <descriptor>         a parameter; the descriptor is read by a DescriptorParser
//	$#name                     an index reference
//	$( ... )?                  an optional block
//	$[index]( ... ) sep *      zero or more iterations, index and separator optional
//	$[index]( ... ) sep +      one or more iterations
//	$$                         a literal `$`
//
// Everything else matches verbatim. Patterns are generic over the parameter
// descriptor T, which decides how values are parsed and rendered.
package pattern

import (
	"fmt"
	"slices"

	"github.com/gnolang/tokpat/tokentree"
)

// Pattern is a validated sequence of items. It is immutable once built and
// safe for concurrent use.
type Pattern[T Descriptor] struct {
	items           []Item
	schema          *Schema
	parseDescriptor DescriptorParser[T]
}

// New validates items and builds a pattern. parseDescriptor is used when
// specialization re-parses rendered values; it may be nil if the pattern
// is never specialized.
func New[T Descriptor](items []Item, parseDescriptor DescriptorParser[T]) (*Pattern[T], error) {
	schema, err := extractSchema[T](items)
	if err != nil {
		return nil, err
	}
	return &Pattern[T]{items: items, schema: schema, parseDescriptor: parseDescriptor}, nil
}

func (p *Pattern[T]) Items() []Item { return p.items }

func (p *Pattern[T]) Schema() *Schema { return p.schema }

// Names returns every name the pattern binds, sorted.
func (p *Pattern[T]) Names() []string { return p.schema.Names() }

// Tokens renders the pattern back to pattern syntax.
func (p *Pattern[T]) Tokens() tokentree.Stream {
	return itemsTokens[T](p.items)
}

func (p *Pattern[T]) String() string {
	return p.Tokens().String()
}

// MissingParameterError is returned by AssertParametersSuperset.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("parameter `%s` is not bound by the pattern", e.Name)
}

// AssertParametersSuperset checks that every name of other is bound by p
// with the same classification, so that bindings matched by p can be
// substituted into other.
func (p *Pattern[T]) AssertParametersSuperset(other *Pattern[T]) error {
	params := other.parameterItems()
	for _, name := range other.schema.Names() {
		var pos tokentree.Position
		if param, ok := params[name]; ok {
			pos = param.At
		}
		wantPath, wantIndex, _ := other.schema.Lookup(name)
		path, index, ok := p.schema.Lookup(name)
		if !ok {
			return &MissingParameterError{Name: name}
		}
		if index != wantIndex {
			return &IndexConflictError{Name: name, Pos: pos}
		}
		if !slices.Equal(path, wantPath) {
			return &IncompatibleRepetitionsError{Name: name, Pos: pos, First: path, Second: wantPath}
		}
	}
	return nil
}
