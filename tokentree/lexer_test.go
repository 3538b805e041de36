package tokentree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected Stream
	}{
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
		{
			name:  "identifiers and punctuation",
			input: "a.b -> c",
			expected: Stream{
				NewIdent("a"),
				NewPunct('.', Alone),
				NewIdent("b"),
				NewPunct('-', Joint),
				NewPunct('>', Alone),
				NewIdent("c"),
			},
		},
		{
			name:  "nested groups",
			input: "f(x, [1]) { y }",
			expected: Stream{
				NewIdent("f"),
				NewGroup(Paren, Stream{
					NewIdent("x"),
					NewPunct(',', Alone),
					NewGroup(Bracket, Stream{NewLiteral("1")}),
				}),
				NewGroup(Brace, Stream{NewIdent("y")}),
			},
		},
		{
			name:  "literals",
			input: "\"a \\\" b\" `raw` 'c' '\\n' 1.5e3 0xFF 10u8",
			expected: Stream{
				NewLiteral("\"a \\\" b\""),
				NewLiteral("`raw`"),
				NewLiteral("'c'"),
				NewLiteral("'\\n'"),
				NewLiteral("1.5e3"),
				NewLiteral("0xFF"),
				NewLiteral("10u8"),
			},
		},
		{
			name:  "range is not a float",
			input: "1..2",
			expected: Stream{
				NewLiteral("1"),
				NewPunct('.', Joint),
				NewPunct('.', Alone),
				NewLiteral("2"),
			},
		},
		{
			name:  "lifetime quote is punctuation",
			input: "&'a str",
			expected: Stream{
				NewPunct('&', Joint),
				NewPunct('\'', Alone),
				NewIdent("a"),
				NewIdent("str"),
			},
		},
		{
			name:  "comments are skipped",
			input: "a // line\n b /* block */ c",
			expected: Stream{
				NewIdent("a"),
				NewIdent("b"),
				NewIdent("c"),
			},
		},
		{
			name:  "pattern syntax",
			input: "$($x:ident),*",
			expected: Stream{
				NewPunct('$', Alone),
				NewGroup(Paren, Stream{
					NewPunct('$', Alone),
					NewIdent("x"),
					NewPunct(':', Alone),
					NewIdent("ident"),
				}),
				NewPunct(',', Joint),
				NewPunct('*', Alone),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Lex(tt.input)
			require.NoError(t, err)
			assert.True(t, Equal(tt.expected, got), "got %s", got)
		})
	}
}

func TestLexSpacing(t *testing.T) {
	t.Parallel()
	got := MustLex("a == b = c")
	require.Len(t, got, 6)
	assert.Equal(t, Joint, got[1].(*Punct).Spacing)
	assert.Equal(t, Alone, got[2].(*Punct).Spacing)
	assert.Equal(t, Alone, got[4].(*Punct).Spacing)
}

func TestLexLiteralKinds(t *testing.T) {
	t.Parallel()
	got := MustLex("1 2.5 \"s\" `r` 'c' 3e2")
	kinds := make([]LiteralKind, 0, len(got))
	for _, tok := range got {
		kinds = append(kinds, tok.(*Literal).Kind)
	}
	assert.Equal(t, []LiteralKind{Int, Float, String, RawString, Char, Float}, kinds)
}

func TestLexPositions(t *testing.T) {
	t.Parallel()
	got := MustLex("a\n  (b)")
	require.Len(t, got, 2)

	assert.Equal(t, Position{Offset: 0, Line: 1, Col: 1}, got[0].Pos())
	assert.Equal(t, Position{Offset: 1, Line: 1, Col: 2}, got[0].End())

	g := got[1].(*Group)
	assert.Equal(t, Position{Offset: 4, Line: 2, Col: 3}, g.Pos())
	assert.Equal(t, Position{Offset: 6, Line: 2, Col: 5}, g.Close)
	assert.Equal(t, 7, g.End().Offset)
	assert.Equal(t, Position{Offset: 5, Line: 2, Col: 4}, g.Stream[0].Pos())
}

func TestLexErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		pos   Position
		msg   string
	}{
		{"unclosed group", "(a", Position{Offset: 0, Line: 1, Col: 1}, "unclosed `(`"},
		{"unexpected close", "a)", Position{Offset: 1, Line: 1, Col: 2}, "unexpected `)`"},
		{"mismatched close", "(a]", Position{Offset: 2, Line: 1, Col: 3}, "mismatched `]`: `(` opened at 1:1"},
		{"unterminated string", "x \"abc", Position{Offset: 2, Line: 1, Col: 3}, "unterminated string literal"},
		{"unterminated comment", "/* x", Position{Offset: 0, Line: 1, Col: 1}, "unterminated comment"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Lex(tt.input)
			require.Error(t, err)

			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.pos, lexErr.Pos)
			assert.Equal(t, tt.msg, lexErr.Msg)
		})
	}
}
