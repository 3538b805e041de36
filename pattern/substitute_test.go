package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tokpat/pattern"
	"github.com/gnolang/tokpat/pattern/fragment"
	"github.com/gnolang/tokpat/tokentree"
)

func TestSubstituteRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		pattern string
		input   string
	}{
		{"fn $name:ident($($arg:ident: $ty:path),*) -> $ret:path", "fn add(a: i32, b: i32) -> i32"},
		{"fn $name:ident($($arg:ident: $ty:path),*) -> $ret:path", "fn nop() -> unit"},
		{"$($k:ident => $($v:literal),+);*", "a => 1, 2; b => 3"},
		{"$[i]($x:ident = $#i),*", "a = 0, b = 1, c = 2"},
		{"f($($x:expr)?)", "f()"},
		{"f($($x:expr)?)", "f(a + b * c)"},
		{"$c:ident { $($s:expr;)* }", "block { x = 1; y(2); }"},
		{"tuple.$#n", "tuple.7"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			p := fragment.MustCompile(tt.pattern)
			input := tokentree.MustLex(tt.input)

			b, err := fragment.Match(p, input)
			require.NoError(t, err)

			out, err := fragment.Substitute(p, b)
			require.NoError(t, err)
			assert.True(t, tokentree.Equal(input, out), "got %s", out)
		})
	}
}

func TestSubstitute(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		pattern  string
		bindings func(b *fragment.Bindings)
		expected string
	}{
		{
			name:    "separated list",
			pattern: "a $($x:ident),* b",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("p", "q"))
			},
			expected: "a p, q b",
		},
		{
			name:    "empty list",
			pattern: "a $($x:ident),* b",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", nil)
			},
			expected: "a b",
		},
		{
			name:    "optional none",
			pattern: "f($($x:ident)?) g",
			bindings: func(b *fragment.Bindings) {
				b.Add("x", pattern.None[fragment.Fragment]())
			},
			expected: "f() g",
		},
		{
			name:    "optional some",
			pattern: "f($(& $x:ident)?)",
			bindings: func(b *fragment.Bindings) {
				b.Add("x", pattern.Some[fragment.Fragment](value("v")))
			},
			expected: "f(& v)",
		},
		{
			name:    "scoped index",
			pattern: "$[i]($x:ident = $#i);*",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("a", "b"))
			},
			expected: "a = 0; b = 1",
		},
		{
			name:    "index matching the count",
			pattern: "$[i]($x:ident)* $#i",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("a", "b"))
				b.AddIndex("i", 2)
			},
			expected: "a b 2",
		},
		{
			name:    "nested index left unbound",
			pattern: "$( $[j]($x:ident),* ; )*",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", []pattern.Binding[fragment.Fragment]{
					&pattern.ZeroOrMoreBinding[fragment.Fragment]{Items: values("a", "b")},
					&pattern.ZeroOrMoreBinding[fragment.Fragment]{Items: values("c")},
				})
			},
			expected: "a, b; c;",
		},
		{
			name:    "tt accepts an ident",
			pattern: "[$x:tt]",
			bindings: func(b *fragment.Bindings) {
				b.AddValue("x", ident("z"))
			},
			expected: "[z]",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := fragment.NewBindings()
			tt.bindings(b)

			out, err := fragment.Substitute(fragment.MustCompile(tt.pattern), b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestSubstituteErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		pattern  string
		bindings func(b *fragment.Bindings)
		check    func(t *testing.T, err error)
	}{
		{
			name:     "missing binding",
			pattern:  "a $x:ident",
			bindings: func(*fragment.Bindings) {},
			check: func(t *testing.T, err error) {
				var e *pattern.BindingNotFoundError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "x", e.Name)
			},
		},
		{
			name:    "list where a value is expected",
			pattern: "a $x:ident",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("p"))
			},
			check: func(t *testing.T, err error) {
				var e *pattern.BindingTypeMismatchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, pattern.KindValue, e.Expected)
				assert.Equal(t, pattern.KindZeroOrMore, e.Found)
			},
		},
		{
			name:    "zero-or-more given for one-or-more",
			pattern: "$($x:ident)+",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("p"))
			},
			check: func(t *testing.T, err error) {
				var e *pattern.BindingTypeMismatchError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "empty one-or-more",
			pattern: "$($x:ident)+",
			bindings: func(b *fragment.Bindings) {
				b.AddOneOrMore("x", nil)
			},
			check: func(t *testing.T, err error) {
				var e *pattern.EmptyRepetitionError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "x", e.Name)
			},
		},
		{
			name:    "unequal lists",
			pattern: "$($k:ident = $v:ident),*",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("k", values("a", "b"))
				b.AddZeroOrMore("v", values("c"))
			},
			check: func(t *testing.T, err error) {
				var e *pattern.RepetitionLenMismatchError
				require.ErrorAs(t, err, &e)
				assert.False(t, e.Index)
			},
		},
		{
			name:    "index disagrees with the count",
			pattern: "$[i]($x:ident)* $#i",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("a", "b", "c", "d"))
				b.AddIndex("i", 3)
			},
			check: func(t *testing.T, err error) {
				var e *pattern.RepetitionLenMismatchError
				require.ErrorAs(t, err, &e)
				assert.True(t, e.Index)
				assert.Equal(t, "i", e.Name)
				assert.Equal(t, 3, e.Expected)
				assert.Equal(t, 4, e.Found)
			},
		},
		{
			name:    "mixed optionals",
			pattern: "$($a:ident $b:ident)?",
			bindings: func(b *fragment.Bindings) {
				b.Add("a", pattern.Some[fragment.Fragment](value("x")))
				b.Add("b", pattern.None[fragment.Fragment]())
			},
			check: func(t *testing.T, err error) {
				var e *pattern.RepetitionLenMismatchError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "incompatible fragment",
			pattern: "a $x:ident",
			bindings: func(b *fragment.Bindings) {
				b.AddValue("x", fragment.MustFromSource(fragment.Literal, "1"))
			},
			check: func(t *testing.T, err error) {
				var e *fragment.KindMismatchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, fragment.Ident, e.Expected)
				assert.Equal(t, fragment.Literal, e.Found)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := fragment.NewBindings()
			tt.bindings(b)

			_, err := fragment.Substitute(fragment.MustCompile(tt.pattern), b)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSpecialize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		pattern  string
		bindings func(b *fragment.Bindings)
		expected string
	}{
		{
			name:    "scalar bound",
			pattern: "$a:ident + $($x:ident),*",
			bindings: func(b *fragment.Bindings) {
				b.AddValue("a", ident("foo"))
			},
			expected: "foo + $($x:ident),*",
		},
		{
			name:    "repetition unrolled",
			pattern: "$a:ident + $($x:ident),*",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("p", "q"))
			},
			expected: "$a:ident + p, q",
		},
		{
			name:    "scoped index",
			pattern: "$[i]($x:ident = $#i),*",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("a", "b"))
			},
			expected: "a = 0, b = 1",
		},
		{
			name:    "partially bound repetition is kept",
			pattern: "$($k:ident = $v:ident),*",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("k", values("a"))
			},
			expected: "$($k:ident = $v:ident),*",
		},
		{
			name:    "free index",
			pattern: "tuple.$#n",
			bindings: func(b *fragment.Bindings) {
				b.AddIndex("n", 2)
			},
			expected: "tuple.2",
		},
		{
			name:    "optional none",
			pattern: "f($($x:ident)?) $y:ident",
			bindings: func(b *fragment.Bindings) {
				b.Add("x", pattern.None[fragment.Fragment]())
			},
			expected: "f() $y:ident",
		},
		{
			name:    "free index after unrolled repetition",
			pattern: "$[i]($x:ident $#i)* end $#i",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("p"))
			},
			expected: "p 0 end 1",
		},
		{
			name:    "free index before unrolled repetition",
			pattern: "[$#i] $[i]($x:ident),*",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", values("a", "b"))
			},
			expected: "[2] a, b",
		},
		{
			name:    "nested index left unbound",
			pattern: "$( $[j]($x:ident),* ; )*",
			bindings: func(b *fragment.Bindings) {
				b.AddZeroOrMore("x", []pattern.Binding[fragment.Fragment]{
					&pattern.ZeroOrMoreBinding[fragment.Fragment]{Items: values("a")},
				})
			},
			expected: "a;",
		},
		{
			name:     "nothing bound",
			pattern:  "$x:ident $($y:expr)?",
			bindings: func(*fragment.Bindings) {},
			expected: "$x:ident $($y:expr)?",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := fragment.NewBindings()
			tt.bindings(b)

			p, err := fragment.Specialize(fragment.MustCompile(tt.pattern), b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.String())
		})
	}
}

func TestSpecializeReparsesValues(t *testing.T) {
	t.Parallel()
	p := fragment.MustCompile("let $lhs:expr = $rhs:expr;")

	b := fragment.NewBindings()
	require.NoError(t, b.AddValue("lhs", fragment.MustFromSource(fragment.Expr, "$name:ident")))

	sp, err := fragment.Specialize(p, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "rhs"}, sp.Names())

	got, err := fragment.MatchSource(sp, "let x = 1;")
	require.NoError(t, err)
	assert.Equal(t, "{name: x, rhs: 1}", got.String())
}

func TestSpecializeThenSubstitute(t *testing.T) {
	t.Parallel()
	p := fragment.MustCompile("$f:ident($($a:expr),*)")

	preset := fragment.NewBindings()
	require.NoError(t, preset.AddValue("f", ident("print")))
	sp, err := fragment.Specialize(p, preset)
	require.NoError(t, err)

	b, err := fragment.MatchSource(sp, "print(1, x)")
	require.NoError(t, err)
	_, bound := b.Get("f")
	assert.False(t, bound)

	out, err := fragment.Substitute(p, mergeBindings(t, preset, b))
	require.NoError(t, err)
	assert.Equal(t, "print(1, x)", out.String())
}

func mergeBindings(t *testing.T, all ...*fragment.Bindings) *fragment.Bindings {
	t.Helper()
	out := fragment.NewBindings()
	for _, b := range all {
		require.NoError(t, out.Merge(b))
	}
	return out
}

func TestDummySubstitute(t *testing.T) {
	t.Parallel()
	tests := []struct {
		pattern  string
		expected string
	}{
		{"fn $name:ident($($a:ident: $t:tt),*) $($body:group)?", "fn _(_:_)()"},
		{"$[i]($x:literal $#i)+", "0 0"},
		{"$op:punct $g:group", "+ ()"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			out, err := fragment.DummySubstitute(fragment.MustCompile(tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.String())
		})
	}
}
