// Package rewrite applies sets of match/replace pattern rules to token
// streams and source text.
package rewrite

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/tokpat/internal/bindfile"
	"github.com/gnolang/tokpat/internal/nolint"
	"github.com/gnolang/tokpat/internal/trie"
	"github.com/gnolang/tokpat/pattern"
	"github.com/gnolang/tokpat/pattern/fragment"
	"github.com/gnolang/tokpat/tokentree"
)

type compiledRule struct {
	Rule
	match   *fragment.Pattern
	replace *fragment.Pattern
}

// Engine holds a compiled rule set. It is safe for concurrent use.
type Engine struct {
	rules  []compiledRule
	index  *trie.Trie
	logger *zap.Logger
	hash   string
}

// Compile parses and validates rules. Rules are tried in the given order.
func Compile(rules []Rule, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		index:  trie.New(),
		logger: logger,
	}

	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("rule %q: defined more than once", r.Name)
		}
		seen[r.Name] = struct{}{}

		cr, err := compileRule(r)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		e.rules = append(e.rules, cr)
		e.index.Insert(patternKey(cr.match.Items()), i)
	}

	hash, err := rulesHash(rules)
	if err != nil {
		return nil, err
	}
	e.hash = hash
	return e, nil
}

func compileRule(r Rule) (compiledRule, error) {
	match, err := fragment.Compile(r.Match)
	if err != nil {
		return compiledRule{}, fmt.Errorf("match: %w", err)
	}
	replace, err := fragment.Compile(r.Replace)
	if err != nil {
		return compiledRule{}, fmt.Errorf("replace: %w", err)
	}

	if len(r.With) > 0 {
		preset, err := bindfile.FromMap(match, r.With)
		if err != nil {
			return compiledRule{}, fmt.Errorf("with: %w", err)
		}
		if match, err = fragment.Specialize(match, preset); err != nil {
			return compiledRule{}, fmt.Errorf("match: %w", err)
		}
		if replace, err = fragment.Specialize(replace, preset); err != nil {
			return compiledRule{}, fmt.Errorf("replace: %w", err)
		}
	}

	if err := match.AssertParametersSuperset(replace); err != nil {
		return compiledRule{}, err
	}
	return compiledRule{Rule: r, match: match, replace: replace}, nil
}

// patternKey lists the literal tokens a pattern starts with. The key ends
// after the first group or at the first parameter or repetition.
func patternKey(items []pattern.Item) []string {
	var key []string
	for _, it := range items {
		switch it := it.(type) {
		case *pattern.IdentItem:
			key = append(key, "i:"+it.Ident.Name)
		case *pattern.LiteralItem:
			key = append(key, "l:"+it.Literal.Raw)
		case *pattern.PunctItem:
			for _, p := range it.Run {
				key = append(key, "p:"+string(p.Char))
			}
		case *pattern.Group:
			return append(key, "g:"+string(it.Delim.Open()))
		default:
			return key
		}
	}
	return key
}

func tokenKey(tok tokentree.TokenTree) string {
	switch tok := tok.(type) {
	case *tokentree.Ident:
		return "i:" + tok.Name
	case *tokentree.Literal:
		return "l:" + tok.Raw
	case *tokentree.Punct:
		return "p:" + string(tok.Char)
	case *tokentree.Group:
		return "g:" + string(tok.Delim.Open())
	default:
		return ""
	}
}

func rulesHash(rules []Rule) (string, error) {
	data, err := yaml.Marshal(RulesConfig{Rules: rules})
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Hash identifies the rule set. It changes whenever a rule does.
func (e *Engine) Hash() string { return e.hash }

func (e *Engine) Len() int { return len(e.rules) }

// Rules returns the rules in the order they are tried.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Rule
	}
	return out
}

// Edit replaces the source between Start and End with Text.
type Edit struct {
	Rule  string
	Start tokentree.Position
	End   tokentree.Position
	Text  string
	// Old is the replaced text as rendered from its tokens.
	Old string
}

// Rewrite scans s left to right. At each position the first rule whose
// match pattern matches a non-empty prefix wins and scanning resumes after
// the match. Groups that are not matched as a whole are scanned
// recursively. Edits that would not change the tokens are dropped.
func (e *Engine) Rewrite(s tokentree.Stream) ([]Edit, error) {
	var edits []Edit
	if err := e.rewrite(s, &edits); err != nil {
		return nil, err
	}
	return edits, nil
}

func (e *Engine) rewrite(s tokentree.Stream, edits *[]Edit) error {
	c := tokentree.NewCursor(s)
	for !c.IsEmpty() {
		applied, err := e.applyAt(c, edits)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		tok, _ := c.Next()
		if g, ok := tok.(*tokentree.Group); ok {
			if err := e.rewrite(g.Stream, edits); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) candidates(c *tokentree.Cursor) []int {
	return e.index.Lookup(func(depth int) (string, bool) {
		if depth > 0 {
			if prev, _ := c.PeekN(depth - 1); isGroup(prev) {
				return "", false
			}
		}
		tok, ok := c.PeekN(depth)
		if !ok {
			return "", false
		}
		return tokenKey(tok), true
	})
}

func isGroup(tok tokentree.TokenTree) bool {
	_, ok := tok.(*tokentree.Group)
	return ok
}

func (e *Engine) applyAt(c *tokentree.Cursor, edits *[]Edit) (bool, error) {
	for _, i := range e.candidates(c) {
		r := &e.rules[i]
		fork := c.Fork()
		b, err := fragment.MatchPrefix(r.match, fork)
		if err != nil || fork.Index() == c.Index() {
			continue
		}

		out, err := fragment.Substitute(r.replace, b)
		if err != nil {
			return false, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		matched := fork.Since(c)
		c.Commit(fork)

		if tokentree.Equal(matched, out) {
			return true, nil
		}
		edit := Edit{
			Rule:  r.Name,
			Start: matched.Pos(),
			End:   matched.End(),
			Text:  out.String(),
			Old:   matched.String(),
		}
		e.logger.Debug("rule applied",
			zap.String("rule", r.Name),
			zap.Stringer("pos", edit.Start),
			zap.String("old", edit.Old),
			zap.String("new", edit.Text),
		)
		*edits = append(*edits, edit)
		return true, nil
	}
	return false, nil
}

// RewriteSource lexes src, rewrites it and splices the edits back into
// src. Text outside the edited ranges is kept as is. Edits starting on a
// line covered by a `//tokpat:ignore` comment are dropped.
func (e *Engine) RewriteSource(src string) (string, []Edit, error) {
	toks, err := tokentree.Lex(src)
	if err != nil {
		return "", nil, err
	}
	edits, err := e.Rewrite(toks)
	if err != nil {
		return "", nil, err
	}

	ignore := nolint.Parse(src, toks)
	if ignore.Len() > 0 {
		kept := edits[:0]
		for _, edit := range edits {
			if ignore.Ignored(edit.Start.Line, edit.Rule) {
				e.logger.Debug("edit ignored", zap.String("rule", edit.Rule), zap.Stringer("pos", edit.Start))
				continue
			}
			kept = append(kept, edit)
		}
		edits = kept
	}
	return ApplyEdits(src, edits), edits, nil
}

// ApplyEdits splices non-overlapping edits into src.
func ApplyEdits(src string, edits []Edit) string {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Offset > sorted[j].Start.Offset
	})

	out := src
	for _, edit := range sorted {
		out = out[:edit.Start.Offset] + edit.Text + out[edit.End.Offset:]
	}
	return out
}
