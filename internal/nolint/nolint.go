// Package nolint finds `//tokpat:ignore` comments that keep rewrite rules
// away from parts of a file.
//
//	//tokpat:ignore            suppress every rule
//	//tokpat:ignore:r1,r2      suppress the listed rules
//	//tokpat:ignore-file       the same, for the whole file
//
// A comment after code on the same line covers that line. A comment on a
// line of its own covers itself and the next line of code, up to the end
// of the last token tree starting there, so a comment above a block
// covers the whole block.
package nolint

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gnolang/tokpat/tokentree"
)

const (
	ignorePrefix = "tokpat:ignore"
	fileSuffix   = "-file"
)

// Manager manages ignore scopes and checks if a line is ignored.
type Manager struct {
	scopes []scope
}

// scope is a range of lines where the rules are ignored.
type scope struct {
	rules map[string]struct{} // empty => every rule
	start int
	end   int
}

type span struct{ start, end int }

// index records where the code of a file is.
type index struct {
	// leaves holds the byte spans of leaf tokens, sorted
	leaves []span
	// firstCode maps a line to the offset of its first token
	firstCode map[int]int
	// lastLine maps a line to the last line of the token trees starting on it
	lastLine map[int]int
}

func buildIndex(tokens tokentree.Stream) *index {
	idx := &index{
		firstCode: make(map[int]int),
		lastLine:  make(map[int]int),
	}
	idx.add(tokens)
	sort.Slice(idx.leaves, func(i, j int) bool { return idx.leaves[i].start < idx.leaves[j].start })
	return idx
}

func (idx *index) add(tokens tokentree.Stream) {
	for _, tok := range tokens {
		pos, end := tok.Pos(), tok.End()
		if !pos.IsValid() {
			continue
		}
		if off, ok := idx.firstCode[pos.Line]; !ok || pos.Offset < off {
			idx.firstCode[pos.Line] = pos.Offset
		}
		idx.lastLine[pos.Line] = max(idx.lastLine[pos.Line], end.Line)

		if g, ok := tok.(*tokentree.Group); ok {
			if _, seen := idx.firstCode[g.Close.Line]; !seen {
				idx.firstCode[g.Close.Line] = g.Close.Offset
			}
			idx.add(g.Stream)
			continue
		}
		idx.leaves = append(idx.leaves, span{pos.Offset, end.Offset})
	}
}

// inToken reports whether offset falls inside a leaf token, such as a
// string literal containing `//`.
func (idx *index) inToken(offset int) bool {
	i := sort.Search(len(idx.leaves), func(i int) bool { return idx.leaves[i].end > offset })
	return i < len(idx.leaves) && idx.leaves[i].start <= offset
}

// Parse returns the ignore scopes of src. tokens must be the result of
// lexing src.
func Parse(src string, tokens tokentree.Stream) *Manager {
	idx := buildIndex(tokens)
	m := &Manager{}

	line := 1
	for i := 0; i+1 < len(src); i++ {
		if src[i] == '\n' {
			line++
			continue
		}
		if src[i] != '/' || src[i+1] != '/' || idx.inToken(i) {
			continue
		}
		end := strings.IndexByte(src[i:], '\n')
		if end < 0 {
			end = len(src) - i
		}
		if s, err := parseComment(src[i+2:i+end], line, i, idx); err == nil {
			m.scopes = append(m.scopes, s)
		}
		// the rest of the line is comment text
		i += end - 1
	}
	return m
}

// parseComment parses one comment and determines its scope. text is the
// comment without its leading `//`.
func parseComment(text string, line, offset int, idx *index) (scope, error) {
	var s scope
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, ignorePrefix) {
		return s, fmt.Errorf("not an ignore comment")
	}
	rest := text[len(ignorePrefix):]

	fileWide := false
	if strings.HasPrefix(rest, fileSuffix) {
		fileWide = true
		rest = rest[len(fileSuffix):]
	}

	// A comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return s, fmt.Errorf("invalid ignore comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return s, fmt.Errorf("invalid ignore comment: no rules specified after colon")
		}
	}
	s.rules = parseIgnoreRuleNames(rest)

	switch {
	case fileWide:
		s.start, s.end = 1, math.MaxInt
	case isInline(line, offset, idx):
		s.start, s.end = line, line
	default:
		s.start, s.end = line, line
		if next, ok := nextCodeLine(line, idx); ok {
			s.end = idx.lastLine[next]
		}
	}
	return s, nil
}

// parseIgnoreRuleNames parses the comma separated rule list.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	for _, rule := range strings.Split(text, ",") {
		if rule = strings.TrimSpace(rule); rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

func isInline(line, offset int, idx *index) bool {
	first, ok := idx.firstCode[line]
	return ok && first < offset
}

func nextCodeLine(line int, idx *index) (int, bool) {
	next, found := 0, false
	for l := range idx.lastLine {
		if l > line && (!found || l < next) {
			next, found = l, true
		}
	}
	return next, found
}

// Ignored reports whether ruleName is ignored on line.
func (m *Manager) Ignored(line int, ruleName string) bool {
	for _, s := range m.scopes {
		if line < s.start || line > s.end {
			continue
		}
		// If the rules list is empty, the comment applies to all rules
		if len(s.rules) == 0 {
			return true
		}
		if _, exists := s.rules[ruleName]; exists {
			return true
		}
	}
	return false
}

func (m *Manager) Len() int { return len(m.scopes) }
