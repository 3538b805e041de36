package tokentree

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// LexError is returned by Lex for malformed input.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Lex splits src into token trees. Whitespace and comments (`//` and `/* */`)
// separate tokens and are otherwise dropped. Columns count bytes.
func Lex(src string) (Stream, error) {
	l := &lexer{src: src, line: 1, col: 1}
	return l.stream(nil)
}

// MustLex is like Lex but panics on error. It is meant for tests and for
// token literals known at compile time.
func MustLex(src string) Stream {
	s, err := Lex(src)
	if err != nil {
		panic(err)
	}
	return s
}

type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func (l *lexer) pos() Position {
	return Position{Offset: l.off, Line: l.line, Col: l.col}
}

func (l *lexer) eof() bool {
	return l.off >= len(l.src)
}

func (l *lexer) peek(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.off < len(l.src); i++ {
		if l.src[l.off] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.off++
	}
}

func (l *lexer) errorf(pos Position, format string, args ...any) error {
	return &LexError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipSpace() error {
	for !l.eof() {
		ch := l.peek(0)
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.advance(1)
		case ch == '/' && l.peek(1) == '/':
			for !l.eof() && l.peek(0) != '\n' {
				l.advance(1)
			}
		case ch == '/' && l.peek(1) == '*':
			start := l.pos()
			l.advance(2)
			for {
				if l.eof() {
					return l.errorf(start, "unterminated comment")
				}
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance(2)
					break
				}
				l.advance(1)
			}
		default:
			return nil
		}
	}
	return nil
}

// stream lexes until the closing delimiter of open, or until end of input
// when open is nil.
func (l *lexer) stream(open *Group) (Stream, error) {
	var out Stream
	for {
		if err := l.skipSpace(); err != nil {
			return nil, err
		}
		if l.eof() {
			if open != nil {
				return nil, l.errorf(open.At, "unclosed `%c`", open.Delim.Open())
			}
			return out, nil
		}

		start := l.pos()
		ch := l.peek(0)
		switch {
		case ch == '(' || ch == '[' || ch == '{':
			g := &Group{Delim: delimiterOf(ch), At: start}
			l.advance(1)
			inner, err := l.stream(g)
			if err != nil {
				return nil, err
			}
			g.Stream = inner
			out = append(out, g)

		case ch == ')' || ch == ']' || ch == '}':
			if open == nil {
				return nil, l.errorf(start, "unexpected `%c`", ch)
			}
			if open.Delim.Close() != ch {
				return nil, l.errorf(start, "mismatched `%c`: `%c` opened at %s", ch, open.Delim.Open(), open.At)
			}
			open.Close = start
			l.advance(1)
			return out, nil

		case ch >= '0' && ch <= '9':
			out = append(out, l.number(start))

		case ch == '"':
			lit, err := l.quoted(start, '"', String)
			if err != nil {
				return nil, err
			}
			out = append(out, lit)

		case ch == '`':
			lit, err := l.quoted(start, '`', RawString)
			if err != nil {
				return nil, err
			}
			out = append(out, lit)

		case ch == '\'' && l.charLiteralLen() > 0:
			n := l.charLiteralLen()
			out = append(out, &Literal{Raw: l.src[l.off : l.off+n], Kind: Char, At: start})
			l.advance(n)

		case IsPunct(ch):
			spacing := Alone
			if next := l.peek(1); next != 0 && IsPunct(next) {
				spacing = Joint
			}
			out = append(out, &Punct{Char: ch, Spacing: spacing, At: start})
			l.advance(1)

		default:
			r, size := utf8.DecodeRuneInString(l.src[l.off:])
			if r != '_' && !unicode.IsLetter(r) {
				return nil, l.errorf(start, "unexpected character %q", r)
			}
			end := l.off + size
			for end < len(l.src) {
				r, size := utf8.DecodeRuneInString(l.src[end:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				end += size
			}
			name := l.src[l.off:end]
			l.advance(end - l.off)
			out = append(out, &Ident{Name: name, At: start})
		}
	}
}

func delimiterOf(ch byte) Delimiter {
	switch ch {
	case '{':
		return Brace
	case '[':
		return Bracket
	default:
		return Paren
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlnum(ch byte) bool {
	return ch == '_' || isDigit(ch) || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func (l *lexer) number(start Position) *Literal {
	end := l.off
	kind := Int
	src := l.src
	if src[end] == '0' && end+1 < len(src) && (src[end+1] == 'x' || src[end+1] == 'X') {
		end += 2
		for end < len(src) && isAlnum(src[end]) {
			end++
		}
	} else {
		for end < len(src) && (isDigit(src[end]) || src[end] == '_') {
			end++
		}
		if end+1 < len(src) && src[end] == '.' && isDigit(src[end+1]) {
			kind = Float
			end++
			for end < len(src) && (isDigit(src[end]) || src[end] == '_') {
				end++
			}
		}
		if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
			exp := end + 1
			if exp < len(src) && (src[exp] == '+' || src[exp] == '-') {
				exp++
			}
			if exp < len(src) && isDigit(src[exp]) {
				kind = Float
				end = exp
				for end < len(src) && isDigit(src[end]) {
					end++
				}
			}
		}
		// type suffixes such as 1u8 or 2i
		for end < len(src) && isAlnum(src[end]) {
			end++
		}
	}
	lit := &Literal{Raw: src[l.off:end], Kind: kind, At: start}
	l.advance(end - l.off)
	return lit
}

func (l *lexer) quoted(start Position, quote byte, kind LiteralKind) (*Literal, error) {
	end := l.off + 1
	for {
		if end >= len(l.src) {
			return nil, l.errorf(start, "unterminated %s literal", kind)
		}
		ch := l.src[end]
		if ch == '\\' && quote != '`' {
			end += 2
			continue
		}
		end++
		if ch == quote {
			break
		}
	}
	lit := &Literal{Raw: l.src[l.off:end], Kind: kind, At: start}
	l.advance(end - l.off)
	return lit, nil
}

// charLiteralLen returns the length of the character literal starting at
// the current quote, or 0 when the quote is punctuation (a label or a
// lifetime such as 'a).
func (l *lexer) charLiteralLen() int {
	rest := l.src[l.off:]
	if len(rest) < 3 {
		return 0
	}
	if rest[1] == '\\' {
		for i := 3; i < len(rest) && i < 12; i++ {
			if rest[i] == '\'' {
				return i + 1
			}
		}
		return 0
	}
	_, size := utf8.DecodeRuneInString(rest[1:])
	if 1+size < len(rest) && rest[1+size] == '\'' {
		return size + 2
	}
	return 0
}
