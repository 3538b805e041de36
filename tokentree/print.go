package tokentree

import "strings"

// The printer renders streams on a single line, spaced after the conventions
// of C-like languages.

func writeStream(sb *strings.Builder, s Stream) {
	for i, tok := range s {
		if i > 0 && needsSpace(s[i-1], tok) {
			sb.WriteByte(' ')
		}
		writeTree(sb, tok)
	}
}

func writeTree(sb *strings.Builder, tok TokenTree) {
	switch t := tok.(type) {
	case *Group:
		writeGroup(sb, t)
	default:
		sb.WriteString(tok.String())
	}
}

func writeGroup(sb *strings.Builder, g *Group) {
	sb.WriteByte(g.Delim.Open())
	if g.Delim == Brace && len(g.Stream) > 0 {
		sb.WriteByte(' ')
		writeStream(sb, g.Stream)
		sb.WriteByte(' ')
	} else {
		writeStream(sb, g.Stream)
	}
	sb.WriteByte(g.Delim.Close())
}

func needsSpace(prev, next TokenTree) bool {
	if p, ok := prev.(*Punct); ok {
		if p.Spacing == Joint {
			// keeps `-` `>` fused as `->`
			return false
		}
		switch p.Char {
		case '.', '$', '#', '@', '\\', ':':
			return false
		}
	}
	if p, ok := next.(*Punct); ok {
		switch p.Char {
		case ',', ';', '.', ':', '?':
			return false
		}
		if _, isPunct := prev.(*Punct); isPunct {
			// two separate runs must stay apart: `= =` is not `==`
			return true
		}
	}
	if g, ok := next.(*Group); ok && g.Delim != Brace {
		switch prev.(type) {
		case *Ident, *Group:
			// calls and indexing: f(x), a[i], f(x)(y)
			return false
		}
	}
	return true
}
