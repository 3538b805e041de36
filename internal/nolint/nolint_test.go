package nolint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnolang/tokpat/tokentree"
)

func parse(src string) *Manager {
	return Parse(src, tokentree.MustLex(src))
}

func TestParseIgnoreRuleNames(t *testing.T) {
	t.Parallel()
	result := parseIgnoreRuleNames("rule1, rule2,,rule3")
	assert.Len(t, result, 3)
	for _, rule := range []string{"rule1", "rule2", "rule3"} {
		assert.Contains(t, result, rule)
	}
	assert.Empty(t, parseIgnoreRuleNames(""))
}

func TestIgnored(t *testing.T) {
	t.Parallel()
	src := `fn a() {
    x.unwrap(); //tokpat:ignore
    y.unwrap();
}

//tokpat:ignore:unwrap,other
fn b() {
    z.unwrap();
}

// tokpat:ignore
let s = "//tokpat:ignore";
let t = 1;
`
	m := parse(src)
	assert.Equal(t, 3, m.Len())

	tests := []struct {
		line    int
		rule    string
		ignored bool
	}{
		{2, "any", true},
		{3, "any", false},
		{1, "any", false},
		{6, "unwrap", true},
		{8, "unwrap", true},
		{9, "unwrap", true},
		{8, "rename", false},
		{10, "unwrap", false},
		{11, "any", true},
		{12, "any", true},
		{13, "any", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ignored, m.Ignored(tt.line, tt.rule), "line %d rule %s", tt.line, tt.rule)
	}
}

func TestIgnoreFile(t *testing.T) {
	t.Parallel()
	m := parse("a\n//tokpat:ignore-file:r\nb\nc\n")
	assert.True(t, m.Ignored(1, "r"))
	assert.True(t, m.Ignored(4, "r"))
	assert.False(t, m.Ignored(4, "s"))
}

func TestInvalidComments(t *testing.T) {
	t.Parallel()
	tests := []string{
		"//tokpat:ignored\na",
		"//tokpat:ignore:\na",
		"// nothing here\na",
		"/* //tokpat:ignore */ a",
	}
	for _, src := range tests {
		m := parse(src)
		assert.False(t, m.Ignored(2, "r"), src)
	}
}

func TestTrailingCommentWithoutCode(t *testing.T) {
	t.Parallel()
	m := parse("a\n//tokpat:ignore")
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Ignored(2, "r"))
	assert.False(t, m.Ignored(1, "r"))
}
