package tokentree

import "strings"

const punctChars = "!#$%&*+,-./:;<=>?@^|~'\\"

// IsPunct reports whether ch lexes as a punctuation character.
func IsPunct(ch byte) bool {
	return strings.IndexByte(punctChars, ch) >= 0
}

// PunctRun is a run of punctuation characters with no whitespace between
// them, such as `->` or `::`. A run is matched as one unit.
type PunctRun []*Punct

func (r PunctRun) String() string {
	var sb strings.Builder
	for _, p := range r {
		sb.WriteByte(p.Char)
	}
	return sb.String()
}

func (r PunctRun) Pos() Position {
	if len(r) == 0 {
		return Position{}
	}
	return r[0].At
}

// Equal compares the characters of two runs.
func (r PunctRun) Equal(other PunctRun) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i].Char != other[i].Char {
			return false
		}
	}
	return true
}

// Stream returns the run as tokens. The last character is marked Alone so
// the run does not fuse with whatever is emitted after it.
func (r PunctRun) Stream() Stream {
	out := make(Stream, len(r))
	for i, p := range r {
		spacing := Joint
		if i == len(r)-1 {
			spacing = Alone
		}
		out[i] = &Punct{Char: p.Char, Spacing: spacing, At: p.At}
	}
	return out
}

// NewPunctRun builds a run from a string of punctuation characters.
func NewPunctRun(s string) PunctRun {
	run := make(PunctRun, len(s))
	for i := 0; i < len(s); i++ {
		spacing := Joint
		if i == len(s)-1 {
			spacing = Alone
		}
		run[i] = &Punct{Char: s[i], Spacing: spacing}
	}
	return run
}

// ReadPunctRun consumes a maximal punctuation run from c. It returns false
// and leaves c untouched when the next token is not punctuation.
func ReadPunctRun(c *Cursor) (PunctRun, bool) {
	var run PunctRun
	for {
		tok, ok := c.Peek()
		if !ok {
			break
		}
		p, ok := tok.(*Punct)
		if !ok {
			break
		}
		c.Next()
		run = append(run, p)
		if p.Spacing != Joint {
			break
		}
	}
	return run, len(run) > 0
}
