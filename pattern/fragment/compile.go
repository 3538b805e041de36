package fragment

import (
	"github.com/gnolang/tokpat/pattern"
	"github.com/gnolang/tokpat/tokentree"
)

type (
	Pattern  = pattern.Pattern[Kind]
	Bindings = pattern.Bindings[Fragment]
	View     = pattern.View[Fragment]
	Binding  = pattern.Binding[Fragment]
)

func NewBindings() *Bindings {
	return pattern.NewBindings[Fragment]()
}

// Compile lexes src and parses it as a pattern over fragments.
func Compile(src string) (*Pattern, error) {
	toks, err := tokentree.Lex(src)
	if err != nil {
		return nil, err
	}
	return pattern.Parse[Kind](toks, ParseKind)
}

func MustCompile(src string) *Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

func Match(p *Pattern, input tokentree.Stream) (*Bindings, error) {
	return pattern.Match[Kind, Fragment](p, input)
}

// MatchSource lexes src and matches all of it against p.
func MatchSource(p *Pattern, src string) (*Bindings, error) {
	toks, err := tokentree.Lex(src)
	if err != nil {
		return nil, err
	}
	return Match(p, toks)
}

func MatchPrefix(p *Pattern, c *tokentree.Cursor) (*Bindings, error) {
	return pattern.MatchPrefix[Kind, Fragment](p, c)
}

func Substitute(p *Pattern, b *Bindings) (tokentree.Stream, error) {
	return pattern.Substitute[Kind, Fragment](p, b)
}

func Specialize(p *Pattern, b *Bindings) (*Pattern, error) {
	return pattern.Specialize[Kind, Fragment](p, b)
}

func DummySubstitute(p *Pattern) (tokentree.Stream, error) {
	return pattern.DummySubstitute[Kind](p)
}

// Value wraps a fragment as a scalar binding.
func Value(f Fragment) Binding {
	return &pattern.ValueBinding[Fragment]{Value: f}
}
