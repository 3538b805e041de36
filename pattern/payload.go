package pattern

import "github.com/gnolang/tokpat/tokentree"

// Descriptor describes how a parameter's value is parsed and rendered. The
// engine treats it as opaque apart from rendering it back to source.
type Descriptor interface {
	Tokens() tokentree.Stream
}

// DescriptorParser reads a descriptor following a parameter name.
type DescriptorParser[T Descriptor] func(c *tokentree.Cursor) (T, error)

// Value is a bound payload value. Equal decides whether a name bound twice
// is bound consistently.
type Value[V any] interface {
	Equal(other V) bool
}

// Matchable descriptors can parse a value from input. ParseBinding consumes
// a prefix of c; on error the matcher discards c.
type Matchable[V any] interface {
	Descriptor
	ParseBinding(c *tokentree.Cursor) (V, error)
}

// Substitutable descriptors can render a bound value.
type Substitutable[V any] interface {
	Descriptor
	TokenizeBinding(name string, v V) (tokentree.Stream, error)
}

// DummyTokenizer descriptors produce placeholder tokens for a parameter, so
// a pattern can be rendered with every parameter stubbed out.
type DummyTokenizer interface {
	Descriptor
	DummyTokens() tokentree.Stream
}
