package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tokpat/pattern"
	"github.com/gnolang/tokpat/pattern/fragment"
	"github.com/gnolang/tokpat/tokentree"
)

func TestMatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		pattern  string
		input    string
		expected string
	}{
		{"literal", "a + b", "a + b", "{}"},
		{"scalar", "let $x:ident = $v:expr;", "let a = f(1, 2);", "{v: f(1, 2), x: a}"},
		{"separated", "a $($x:ident),* b", "a x1, x2, x3 b", "{x: [x1, x2, x3]}"},
		{"empty zero-or-more", "a $($x:ident),* ;", "a ;", "{x: []}"},
		{"one-or-more", "$($x:ident)+", "x1", "{x: [x1]}"},
		{"optional present", "f($($x:ident)?)", "f(a)", "{x: Some (a)}"},
		{"optional absent", "f($($x:ident)?)", "f()", "{x: None}"},
		{"nested", "$($k:ident => $($v:literal),+);*", "a => 1, 2; b => 3", "{k: [a, b], v: [[1, 2], [3]]}"},
		{"repetition index", "$[i]($x:ident)*", "a b c", "{i: 3, x: [a, b, c]}"},
		{"scoped index", "$[i]($x:ident = $#i),*", "a = 0, b = 1", "{i: 2, x: [a, b]}"},
		{"free index", "tuple.$#n", "tuple.4", "{n: 4}"},
		{"index bound twice", "$[i]($x:ident)* $#i", "a b 2", "{i: 2, x: [a, b]}"},
		{"repeated name", "$a:ident == $a:ident", "x == x", "{a: x}"},
		{"nested optional", "$($($x:ident)?)*", "a b", "{x: [Some (a), Some (b)]}"},
		{"path", "use $p:path;", "use std::io::Read;", "{p: std::io::Read}"},
		{"punct", "a $op:punct b", "a >>= b", "{op: >>=}"},
		{"dollar", "$$ $x:ident", "$ a", "{x: a}"},
		{"run", "$x:ident -> $y:ident", "a -> b", "{x: a, y: b}"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := fragment.MustCompile(tt.pattern)
			b, err := fragment.MatchSource(p, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b.String())
		})
	}
}

func TestMatchErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		pattern string
		input   string
		kind    pattern.MatchErrorKind
	}{
		{"wrong ident", "a b", "a c", pattern.MismatchedToken},
		{"short input", "a b", "a", pattern.UnexpectedEnd},
		{"trailing input", "a", "a b", pattern.TrailingInput},
		{"group end", "f($x:ident)", "f(a b)", pattern.ExpectedEndOfGroup},
		{"wrong delimiter", "f($x:ident)", "f[a]", pattern.MismatchedToken},
		{"payload", "let $x:ident", "let 1", pattern.PayloadMismatch},
		{"empty one-or-more", "$($x:ident)+", "", pattern.PayloadMismatch},
		{"trailing separator", "$($x:ident),*", "a, b,", pattern.TrailingInput},
		{"split run", "a = b", "a == b", pattern.MismatchedToken},
		{"wrong scoped index", "$[i]($x:ident $#i)*", "a 0 b 2", pattern.TrailingInput},
		{"index not an integer", "x $#n", "x y", pattern.MismatchedToken},
		// repetitions are greedy and never give back an iteration
		{"greedy zero-or-more", "a $($x:ident),* b", "a b", pattern.UnexpectedEnd},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := fragment.MustCompile(tt.pattern)
			_, err := fragment.MatchSource(p, tt.input)
			require.Error(t, err)

			var matchErr *pattern.MatchError
			require.ErrorAs(t, err, &matchErr)
			assert.Equal(t, tt.kind, matchErr.Kind, err.Error())
		})
	}
}

func TestMatchBindingMismatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		pattern string
		input   string
	}{
		{"$a:ident == $a:ident", "x == y"},
		{"$[i]($x:ident)* $#i", "a b 3"},
		{"$($x:ident),* ; $($x:ident),*", "a, b; a"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			_, err := fragment.MatchSource(fragment.MustCompile(tt.pattern), tt.input)
			var mismatch *pattern.BindingMismatchError
			require.ErrorAs(t, err, &mismatch)
		})
	}
}

func TestMatchStopsOnEmptyIteration(t *testing.T) {
	t.Parallel()
	p := fragment.MustCompile("$($($x:ident)?)* ;")

	b, err := fragment.MatchSource(p, ";")
	require.NoError(t, err)
	assert.Equal(t, "{x: []}", b.String())
}

func TestMatchIterationBacktracks(t *testing.T) {
	t.Parallel()
	// the last iteration fails half way and must give its tokens back
	p := fragment.MustCompile("$($k:ident = $v:literal),* , $rest:ident = $x:ident")

	b, err := fragment.MatchSource(p, "a = 1, b = 2, c = d")
	require.NoError(t, err)
	assert.Equal(t, "{k: [a, b], rest: c, v: [1, 2], x: d}", b.String())
}

func TestMatchPrefix(t *testing.T) {
	t.Parallel()
	p := fragment.MustCompile("a $x:ident")
	c := tokentree.NewCursor(tokentree.MustLex("a b c"))

	b, err := fragment.MatchPrefix(p, c)
	require.NoError(t, err)
	assert.Equal(t, "{x: b}", b.String())
	assert.Equal(t, 2, c.Index())

	_, err = fragment.MatchPrefix(p, c)
	require.Error(t, err)
	assert.Equal(t, 2, c.Index())
}

func TestMatchReusesPattern(t *testing.T) {
	t.Parallel()
	p := fragment.MustCompile("$[i]($x:ident),+")

	inputs := []string{"a", "a, b", "a, b, c"}
	done := make(chan int, len(inputs))
	for _, in := range inputs {
		in := in
		go func() {
			b, err := fragment.MatchSource(p, in)
			if err != nil {
				done <- -1
				return
			}
			view := b.View()
			n, _ := view.GetIndex("i")
			done <- n
		}()
	}

	var counts []int
	for range inputs {
		counts = append(counts, <-done)
	}
	assert.ElementsMatch(t, []int{1, 2, 3}, counts)
}
