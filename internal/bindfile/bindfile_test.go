package bindfile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/tokpat/pattern"
	"github.com/gnolang/tokpat/pattern/fragment"
)

func TestDecode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		pattern  string
		yaml     string
		expected string
	}{
		{
			name:     "scalars",
			pattern:  "$f:ident($a:expr)",
			yaml:     "f: print\na: x + 1\n",
			expected: "{a: x + 1, f: print}",
		},
		{
			name:     "number as literal",
			pattern:  "$n:literal",
			yaml:     "n: 42\n",
			expected: "{n: 42}",
		},
		{
			name:     "nested lists",
			pattern:  "$($k:ident => $($v:literal),+);*",
			yaml:     "k: [a, b]\nv: [[1, 2], [3]]\n",
			expected: "{k: [a, b], v: [[1, 2], [3]]}",
		},
		{
			name:     "optional",
			pattern:  "f($($x:ident)?) $($y:ident)?",
			yaml:     "x: a\ny: null\n",
			expected: "{x: Some (a), y: None}",
		},
		{
			name:     "index",
			pattern:  "$[i]($x:ident)* $#i",
			yaml:     "x: [a, b]\ni: 2\n",
			expected: "{i: 2, x: [a, b]}",
		},
		{
			name:     "partial",
			pattern:  "$a:ident $b:ident",
			yaml:     "b: z\n",
			expected: "{b: z}",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := Decode(fragment.MustCompile(tt.pattern), []byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b.String())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		pattern string
		yaml    string
	}{
		{"unknown name", "$a:ident", "b: x\n"},
		{"bad fragment", "$a:ident", "a: 1\n"},
		{"trailing tokens", "$a:ident", "a: x y\n"},
		{"scalar for list", "$($a:ident)*", "a: x\n"},
		{"list for scalar", "$a:ident", "a: [x]\n"},
		{"negative index", "tuple.$#n", "n: -1\n"},
		{"string index", "tuple.$#n", "n: one\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(fragment.MustCompile(tt.pattern), []byte(tt.yaml))
			var bindErr *Error
			require.ErrorAs(t, err, &bindErr)
			assert.NotEmpty(t, bindErr.Name)
		})
	}
}

func TestDecodeWrapsParseError(t *testing.T) {
	t.Parallel()
	_, err := Decode(fragment.MustCompile("$a:ident"), []byte("a: '1'\n"))
	var parseErr *fragment.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, fragment.Ident, parseErr.Kind)
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()
	p := fragment.MustCompile("$[i]($k:ident = $($v:expr)?),* ; $#n")
	b, err := fragment.MatchSource(p, "a = 1 + 2, b = ; 5")
	require.NoError(t, err)

	tree := Encode(b)
	assert.Equal(t, map[string]any{
		"i": 2,
		"k": []any{"a", "b"},
		"v": []any{"1 + 2", nil},
		"n": 5,
	}, tree)

	data, err := yaml.Marshal(tree)
	require.NoError(t, err)
	back, err := Decode(p, data)
	require.NoError(t, err)
	assert.Equal(t, b.String(), back.String())

	data, err = json.Marshal(tree)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	back, err = FromMap(p, m)
	require.NoError(t, err)
	assert.Equal(t, b.String(), back.String())
}

func TestEncodeOneOrMore(t *testing.T) {
	t.Parallel()
	b := fragment.NewBindings()
	require.NoError(t, b.AddOneOrMore("xs", []fragment.Binding{
		fragment.Value(fragment.MustFromSource(fragment.Ident, "a")),
	}))
	require.NoError(t, b.Add("o", pattern.None[fragment.Fragment]()))

	assert.Equal(t, map[string]any{"xs": []any{"a"}, "o": nil}, Encode(b))
}
