package pattern

import (
	"slices"
	"sort"

	"github.com/gnolang/tokpat/tokentree"
)

// Item is one element of a pattern: *IdentItem, *LiteralItem, *PunctItem,
// *Group, *Parameter[T], *IndexRef, *Optional, *ZeroOrMore or *OneOrMore.
type Item interface {
	Pos() tokentree.Position
	item()
}

// IdentItem, LiteralItem and PunctItem match their token verbatim.
type IdentItem struct {
	Ident *tokentree.Ident
}

type LiteralItem struct {
	Literal *tokentree.Literal
}

type PunctItem struct {
	Run tokentree.PunctRun
}

type Group struct {
	Delim tokentree.Delimiter
	Items []Item
	At    tokentree.Position
}

// Parameter binds a value described by Descriptor, written `$name <descriptor>`.
type Parameter[T Descriptor] struct {
	Name       string
	Descriptor T
	At         tokentree.Position
}

// IndexRef is written `$#name`. Inside a repetition indexed by name it stands
// for the current iteration ordinal; elsewhere it binds an integer.
type IndexRef struct {
	Name string
	At   tokentree.Position
}

// Repetition holds what the three repetition kinds share. Index and
// Separator are always empty for Optional.
type Repetition struct {
	Index     string
	Items     []Item
	Separator *tokentree.Punct
	At        tokentree.Position

	names []string
	// indices declared by repetitions directly inside Items. A match
	// always binds them but substitution does not need them.
	nestedIndices []string
}

// Names returns the sorted parameter and index names bound inside the
// repetition, including those of nested repetitions.
func (r *Repetition) Names() []string {
	return r.names
}

// boundNames returns the names to read from bindings when expanding r. An
// index declared by a nested repetition is left out when has reports it
// unbound.
func (r *Repetition) boundNames(has func(string) bool) []string {
	if len(r.nestedIndices) == 0 {
		return r.names
	}
	names := make([]string, 0, len(r.names))
	for _, n := range r.names {
		if slices.Contains(r.nestedIndices, n) && !has(n) {
			continue
		}
		names = append(names, n)
	}
	return names
}

func (r *Repetition) Pos() tokentree.Position { return r.At }

// Optional is written `$(...)?`.
type Optional struct{ Repetition }

// ZeroOrMore is written `$[index](...)sep*` with index and separator optional.
type ZeroOrMore struct{ Repetition }

// OneOrMore is written `$[index](...)sep+` with index and separator optional.
type OneOrMore struct{ Repetition }

func (i *IdentItem) Pos() tokentree.Position   { return i.Ident.At }
func (i *LiteralItem) Pos() tokentree.Position { return i.Literal.At }
func (i *PunctItem) Pos() tokentree.Position   { return i.Run.Pos() }
func (g *Group) Pos() tokentree.Position       { return g.At }
func (p *Parameter[T]) Pos() tokentree.Position {
	return p.At
}
func (r *IndexRef) Pos() tokentree.Position { return r.At }

func (*IdentItem) item()    {}
func (*LiteralItem) item()  {}
func (*PunctItem) item()    {}
func (*Group) item()        {}
func (*Parameter[T]) item() {}
func (*IndexRef) item()     {}
func (*Optional) item()     {}
func (*ZeroOrMore) item()   {}
func (*OneOrMore) item()    {}

// itemsTokens renders items back to pattern source tokens.
func itemsTokens[T Descriptor](items []Item) tokentree.Stream {
	var out tokentree.Stream
	for _, it := range items {
		out = append(out, itemTokens[T](it)...)
	}
	return out
}

func itemTokens[T Descriptor](it Item) tokentree.Stream {
	dollar := func() *tokentree.Punct { return tokentree.NewPunct('$', tokentree.Alone) }

	switch it := it.(type) {
	case *IdentItem:
		return tokentree.Stream{it.Ident}
	case *LiteralItem:
		return tokentree.Stream{it.Literal}
	case *PunctItem:
		if len(it.Run) == 1 && it.Run[0].Char == '$' {
			return tokentree.Stream{tokentree.NewPunct('$', tokentree.Joint), tokentree.NewPunct('$', tokentree.Alone)}
		}
		return it.Run.Stream()
	case *Group:
		return tokentree.Stream{tokentree.NewGroup(it.Delim, itemsTokens[T](it.Items))}
	case *Parameter[T]:
		out := tokentree.Stream{dollar(), tokentree.NewIdent(it.Name)}
		return append(out, it.Descriptor.Tokens()...)
	case *IndexRef:
		return tokentree.Stream{
			tokentree.NewPunct('$', tokentree.Joint),
			tokentree.NewPunct('#', tokentree.Alone),
			tokentree.NewIdent(it.Name),
		}
	case *Optional:
		return repetitionTokens[T](&it.Repetition, '?')
	case *ZeroOrMore:
		return repetitionTokens[T](&it.Repetition, '*')
	case *OneOrMore:
		return repetitionTokens[T](&it.Repetition, '+')
	default:
		return nil
	}
}

func repetitionTokens[T Descriptor](r *Repetition, op byte) tokentree.Stream {
	out := tokentree.Stream{tokentree.NewPunct('$', tokentree.Alone)}
	if r.Index != "" {
		out = append(out, tokentree.NewGroup(tokentree.Bracket, tokentree.Stream{tokentree.NewIdent(r.Index)}))
	}
	out = append(out, tokentree.NewGroup(tokentree.Paren, itemsTokens[T](r.Items)))
	if r.Separator != nil {
		out = append(out, tokentree.NewPunct(r.Separator.Char, tokentree.Joint))
	}
	return append(out, tokentree.NewPunct(op, tokentree.Alone))
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
