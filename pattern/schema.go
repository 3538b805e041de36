package pattern

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gnolang/tokpat/tokentree"
)

type RepetitionKind int

const (
	RepeatOptional RepetitionKind = iota
	RepeatZeroOrMore
	RepeatOneOrMore
)

func (k RepetitionKind) String() string {
	switch k {
	case RepeatOptional:
		return "optional"
	case RepeatZeroOrMore:
		return "zero-or-more"
	case RepeatOneOrMore:
		return "one-or-more"
	default:
		return "unknown"
	}
}

// Schema records, level by level, which names a pattern binds. Each level
// holds the parameters and indices bound directly at it and at most one
// nested schema per repetition kind. Repetitions of the same kind at the
// same level share a nested schema.
type Schema struct {
	params  map[string]struct{}
	indices map[string]struct{}

	Optional   *Schema
	ZeroOrMore *Schema
	OneOrMore  *Schema
}

func newSchema() *Schema {
	return &Schema{
		params:  make(map[string]struct{}),
		indices: make(map[string]struct{}),
	}
}

// Params returns the sorted parameter names bound at this level.
func (s *Schema) Params() []string { return sortedKeys(s.params) }

// Indices returns the sorted index names bound at this level.
func (s *Schema) Indices() []string { return sortedKeys(s.indices) }

// Sub returns the nested schema for kind, or nil.
func (s *Schema) Sub(kind RepetitionKind) *Schema {
	switch kind {
	case RepeatOptional:
		return s.Optional
	case RepeatZeroOrMore:
		return s.ZeroOrMore
	default:
		return s.OneOrMore
	}
}

func (s *Schema) subRef(kind RepetitionKind) **Schema {
	switch kind {
	case RepeatOptional:
		return &s.Optional
	case RepeatZeroOrMore:
		return &s.ZeroOrMore
	default:
		return &s.OneOrMore
	}
}

var repetitionKinds = []RepetitionKind{RepeatOptional, RepeatZeroOrMore, RepeatOneOrMore}

func (s *Schema) IsEmpty() bool {
	if len(s.params) > 0 || len(s.indices) > 0 {
		return false
	}
	for _, k := range repetitionKinds {
		if sub := s.Sub(k); sub != nil && !sub.IsEmpty() {
			return false
		}
	}
	return true
}

// Names returns every name bound at this level or below, sorted.
func (s *Schema) Names() []string {
	all := make(map[string]struct{})
	s.collectNames(all)
	return sortedKeys(all)
}

func (s *Schema) collectNames(into map[string]struct{}) {
	for n := range s.params {
		into[n] = struct{}{}
	}
	for n := range s.indices {
		into[n] = struct{}{}
	}
	for _, k := range repetitionKinds {
		if sub := s.Sub(k); sub != nil {
			sub.collectNames(into)
		}
	}
}

// Lookup returns the repetition path under which name is bound and whether
// it is bound as an index.
func (s *Schema) Lookup(name string) (path []RepetitionKind, index bool, ok bool) {
	if _, found := s.params[name]; found {
		return nil, false, true
	}
	if _, found := s.indices[name]; found {
		return nil, true, true
	}
	for _, k := range repetitionKinds {
		sub := s.Sub(k)
		if sub == nil {
			continue
		}
		if rest, index, found := sub.Lookup(name); found {
			return append([]RepetitionKind{k}, rest...), index, true
		}
	}
	return nil, false, false
}

// IsSuperschema reports whether every name of other is bound by s with the
// same classification.
func (s *Schema) IsSuperschema(other *Schema) bool {
	for _, name := range other.Names() {
		wantPath, wantIndex, _ := other.Lookup(name)
		path, index, ok := s.Lookup(name)
		if !ok || index != wantIndex || !slices.Equal(path, wantPath) {
			return false
		}
	}
	return true
}

func (s *Schema) IsSubschema(other *Schema) bool {
	return other.IsSuperschema(s)
}

func (s *Schema) String() string {
	var parts []string
	if len(s.params) > 0 {
		parts = append(parts, fmt.Sprintf("params: [%s]", strings.Join(s.Params(), ", ")))
	}
	if len(s.indices) > 0 {
		parts = append(parts, fmt.Sprintf("indices: [%s]", strings.Join(s.Indices(), ", ")))
	}
	for _, k := range repetitionKinds {
		if sub := s.Sub(k); sub != nil {
			parts = append(parts, fmt.Sprintf("%s: %s", k, sub))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s *Schema) merge(other *Schema) {
	for n := range other.params {
		s.params[n] = struct{}{}
	}
	for n := range other.indices {
		s.indices[n] = struct{}{}
	}
	for _, k := range repetitionKinds {
		sub := other.Sub(k)
		if sub == nil {
			continue
		}
		ref := s.subRef(k)
		if *ref == nil {
			*ref = newSchema()
		}
		(*ref).merge(sub)
	}
}

type nameUsage struct {
	path  []RepetitionKind
	index bool
}

// schemaBuilder extracts the schema of a pattern and checks that every name
// keeps one classification across the whole pattern.
type schemaBuilder[T Descriptor] struct {
	seen map[string]nameUsage
}

func extractSchema[T Descriptor](items []Item) (*Schema, error) {
	b := &schemaBuilder[T]{seen: make(map[string]nameUsage)}
	s := newSchema()
	if err := b.fill(s, items, nil, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// fill adds the names bound by items to s. scopes lists the indices of the
// enclosing repetitions.
func (b *schemaBuilder[T]) fill(s *Schema, items []Item, path []RepetitionKind, scopes []string) error {
	for _, it := range items {
		var err error
		switch it := it.(type) {
		case *Parameter[T]:
			err = b.record(s, it.Name, path, false, it.At)
		case *IndexRef:
			if !slices.Contains(scopes, it.Name) {
				err = b.record(s, it.Name, path, true, it.At)
			}
		case *Group:
			err = b.fill(s, it.Items, path, scopes)
		case *Optional:
			err = b.repetition(s, RepeatOptional, &it.Repetition, path, scopes)
		case *ZeroOrMore:
			err = b.repetition(s, RepeatZeroOrMore, &it.Repetition, path, scopes)
		case *OneOrMore:
			err = b.repetition(s, RepeatOneOrMore, &it.Repetition, path, scopes)
		case *IdentItem, *LiteralItem, *PunctItem:
		default:
			err = &SyntaxError{Pos: it.Pos(), Msg: fmt.Sprintf("unexpected pattern item %T", it)}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *schemaBuilder[T]) repetition(s *Schema, kind RepetitionKind, r *Repetition, path []RepetitionKind, scopes []string) error {
	if r.Index != "" {
		if err := b.record(s, r.Index, path, true, r.At); err != nil {
			return err
		}
		scopes = append(slices.Clip(scopes), r.Index)
	}

	nested := newSchema()
	if err := b.fill(nested, r.Items, append(slices.Clip(path), kind), scopes); err != nil {
		return err
	}
	if nested.IsEmpty() {
		return &NoParameterInRepetitionError{Pos: r.At}
	}
	if r.names == nil {
		r.names = nested.Names()
		r.nestedIndices = declaredIndices(r.Items)
	}

	ref := s.subRef(kind)
	if *ref == nil {
		*ref = newSchema()
	}
	(*ref).merge(nested)
	return nil
}

// declaredIndices lists the indices of the repetitions found in items without
// descending into them.
func declaredIndices(items []Item) []string {
	var out []string
	for _, it := range items {
		switch it := it.(type) {
		case *Group:
			out = append(out, declaredIndices(it.Items)...)
		case *ZeroOrMore:
			if it.Index != "" {
				out = append(out, it.Index)
			}
		case *OneOrMore:
			if it.Index != "" {
				out = append(out, it.Index)
			}
		}
	}
	return out
}

func (b *schemaBuilder[T]) record(s *Schema, name string, path []RepetitionKind, index bool, pos tokentree.Position) error {
	if prev, ok := b.seen[name]; ok {
		if !slices.Equal(prev.path, path) {
			return &IncompatibleRepetitionsError{Name: name, Pos: pos, First: prev.path, Second: slices.Clone(path)}
		}
		if prev.index != index {
			return &IndexConflictError{Name: name, Pos: pos}
		}
	} else {
		b.seen[name] = nameUsage{path: slices.Clone(path), index: index}
	}

	if index {
		s.indices[name] = struct{}{}
	} else {
		s.params[name] = struct{}{}
	}
	return nil
}
