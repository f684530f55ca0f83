package lexer

import (
	"unicode/utf8"

	"github.com/kakitgogogo/mcc/internal/source"
	"github.com/kakitgogogo/mcc/internal/token"
)

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c rune) bool {
	return isAlpha(c) || isDigit(c)
}

// skipSpaceOnce consumes one run of horizontal whitespace or one comment,
// reporting whether it consumed anything. Newline is never consumed here
// -- it is its own token kind.
func (l *Lexer) skipSpaceOnce() bool {
	c := l.rd.NextChar()
	switch {
	case c == source.EOF:
		return false
	case isSpace(c):
		return true
	case c == '/':
		if l.rd.NextIf('/') {
			for c != '\n' && c != source.EOF {
				c = l.rd.NextChar()
			}
			if c == '\n' {
				l.rd.UngetChar(c)
			}
			return true
		}
		if l.rd.NextIf('*') {
			pos := l.pos(-2)
			for {
				c = l.rd.NextChar()
				if c == source.EOF {
					l.rd.UngetChar(c)
					l.bag.Errorf(pos, "unexpected end of block comment")
					return false
				}
				if c == '*' && l.rd.NextIf('/') {
					return true
				}
			}
		}
	}
	l.rd.UngetChar(c)
	return false
}

func (l *Lexer) skipSpace() bool {
	if !l.skipSpaceOnce() {
		return false
	}
	for l.skipSpaceOnce() {
	}
	return true
}

// readIdent scans an identifier, decoding \u/\U escapes into its UTF-8
// byte sequence as it goes.
func (l *Lexer) readIdent(c rune) token.Token {
	pos := l.pos(-1)
	var buf []byte
	invalid := false

	appendUCN := func() {
		u := l.readEscapeChar()
		if u == invalidRune {
			invalid = true
			return
		}
		var tmp [utf8.UTFMax]byte
		n := utf8.EncodeRune(tmp[:], u)
		buf = append(buf, tmp[:n]...)
	}

	if c == '\\' && (l.rd.Peek() == 'u' || l.rd.Peek() == 'U') {
		appendUCN()
	} else {
		buf = utf8.AppendRune(buf, c)
	}
	for {
		c = l.rd.NextChar()
		if isAlnum(c) || c == '_' {
			buf = utf8.AppendRune(buf, c)
			continue
		}
		if c == '\\' && (l.rd.Peek() == 'u' || l.rd.Peek() == 'U') {
			appendUCN()
			continue
		}
		l.rd.UngetChar(c)
		if invalid {
			return token.New(token.TINVALID, pos)
		}
		return token.NewIdent(string(buf), pos)
	}
}

// readNumber greedily scans a pp-number: identifier characters, '.', and
// one sign immediately after e/E/p/P; exact int/float classification is
// left to the parser.
func (l *Lexer) readNumber(c rune) token.Token {
	pos := l.pos(-1)
	buf := []byte{byte(c)}
	last := c
	for {
		c = l.rd.NextChar()
		isExpSign := (last == 'e' || last == 'E' || last == 'p' || last == 'P') && (c == '+' || c == '-')
		if !isAlnum(c) && c != '.' && !isExpSign {
			l.rd.UngetChar(c)
			return token.NewNumber(string(buf), pos)
		}
		buf = append(buf, byte(c))
		last = c
	}
}

func (l *Lexer) readChar(enc token.Encoding) token.Token {
	pos := l.pos(-1)
	c := l.rd.NextChar()
	if c == source.EOF || c == '\n' {
		l.rd.UngetChar(c)
		l.bag.Errorf(pos, "missing character and '''")
		return token.New(token.TINVALID, pos)
	}
	var chr rune
	if c == '\\' {
		chr = l.readEscapeChar()
	} else {
		chr = c
	}
	c = l.rd.NextChar()
	if c != '\'' {
		for c != '\n' && c != source.EOF {
			c = l.rd.NextChar()
		}
		l.rd.UngetChar(c)
		l.bag.Errorf(pos, "missing terminating ' character")
		return token.New(token.TINVALID, pos)
	}
	if chr == invalidRune {
		return token.New(token.TINVALID, pos)
	}
	return token.NewChar(chr, enc, pos)
}

func (l *Lexer) readString(enc token.Encoding) token.Token {
	pos := l.pos(-1)
	var buf []byte
	invalid := false
	for {
		c := l.rd.NextChar()
		if c == source.EOF || c == '\n' {
			l.rd.UngetChar(c)
			l.bag.Errorf(pos, "missing terminating \" character")
			return token.New(token.TINVALID, pos)
		}
		if c == '"' {
			break
		}
		if c != '\\' {
			buf = append(buf, byte(c))
			continue
		}
		isUCN := l.rd.Peek() == 'u' || l.rd.Peek() == 'U'
		r := l.readEscapeChar()
		if r == invalidRune {
			invalid = true
			continue
		}
		if isUCN {
			buf = utf8.AppendRune(buf, r)
		} else {
			buf = append(buf, byte(r))
		}
	}
	if invalid {
		return token.New(token.TINVALID, pos)
	}
	return token.NewString(buf, enc, pos)
}

// readToken reads exactly one raw token: whitespace (collapsed to a
// single TSPACE), a newline, or a real token. It does not apply
// leading-space/begin-of-line flags; NextToken does that.
func (l *Lexer) readToken() token.Token {
	pos := l.pos(0)
	if l.skipSpace() {
		return token.New(token.TSPACE, pos)
	}
	pos = l.pos(0)
	c := l.rd.NextChar()
	switch {
	case c == '\n':
		return token.New(token.TNEWLINE, pos)
	case c == '_' || (isAlpha(c) && c != 'u' && c != 'U' && c != 'L'):
		return l.readIdent(c)
	case c == '\\':
		if l.rd.Peek() == 'u' || l.rd.Peek() == 'U' {
			return l.readIdent(c)
		}
		l.bag.Errorf(pos, "stray '\\' in program")
		return token.New(token.TINVALID, pos)
	case c == 'u':
		if l.rd.NextIf('\'') {
			return l.readChar(token.EncChar16)
		}
		if l.rd.NextIf('"') {
			return l.readString(token.EncChar16)
		}
		if l.rd.NextIf('8') {
			if l.rd.NextIf('"') {
				return l.readString(token.EncUTF8)
			}
			l.rd.UngetChar('8')
		}
		return l.readIdent(c)
	case c == 'U' || c == 'L':
		enc := token.EncChar32
		if c == 'L' {
			enc = token.EncWChar
		}
		if l.rd.NextIf('\'') {
			return l.readChar(enc)
		}
		if l.rd.NextIf('"') {
			return l.readString(enc)
		}
		return l.readIdent(c)
	case isDigit(c):
		return l.readNumber(c)
	case c == '\'':
		return l.readChar(token.EncNone)
	case c == '"':
		return l.readString(token.EncNone)
	}
	return l.readPunctuator(c, pos)
}

// readPunctuator implements the full C11 punctuator set including the
// digraphs <: :> <% %> %: %:%:.
func (l *Lexer) readPunctuator(c rune, pos token.Pos) token.Token {
	kw := func(k token.Kind) token.Token { return token.New(k, pos) }
	switch c {
	case '[', ']', '(', ')', '{', '}', '~', '?', ';', ',':
		return kw(token.Kind(c))
	case '.':
		if isDigit(l.rd.Peek()) {
			return l.readNumber(c)
		}
		if l.rd.NextIf('.') {
			if l.rd.NextIf('.') {
				return kw(token.P_ELLIPSIS)
			}
			return token.NewIdent("..", pos) // not a valid ident; useful to the preprocessor only
		}
		return kw(token.Kind('.'))
	case '-':
		if l.rd.NextIf('-') {
			return kw(token.P_DEC)
		}
		if l.rd.NextIf('>') {
			return kw(token.P_ARROW)
		}
		if l.rd.NextIf('=') {
			return kw(token.P_ASSIGN_SUB)
		}
		return kw(token.Kind('-'))
	case '+':
		if l.rd.NextIf('+') {
			return kw(token.P_INC)
		}
		if l.rd.NextIf('=') {
			return kw(token.P_ASSIGN_ADD)
		}
		return kw(token.Kind('+'))
	case '&':
		if l.rd.NextIf('&') {
			return kw(token.P_LOGAND)
		}
		if l.rd.NextIf('=') {
			return kw(token.P_ASSIGN_AND)
		}
		return kw(token.Kind('&'))
	case '*':
		if l.rd.NextIf('=') {
			return kw(token.P_ASSIGN_MUL)
		}
		return kw(token.Kind('*'))
	case '!':
		if l.rd.NextIf('=') {
			return kw(token.P_NE)
		}
		return kw(token.Kind('!'))
	case '/':
		if l.rd.NextIf('=') {
			return kw(token.P_ASSIGN_DIV)
		}
		return kw(token.Kind('/'))
	case '%':
		if l.rd.NextIf('=') {
			return kw(token.P_ASSIGN_MOD)
		}
		if l.rd.NextIf('>') {
			return kw(token.Kind('}')) // %> digraph
		}
		if l.rd.NextIf(':') {
			if l.rd.NextIf('%') {
				if l.rd.NextIf(':') {
					return kw(token.P_HASHHASH) // %:%: digraph
				}
				l.rd.UngetChar('%')
			}
			return kw(token.Kind('#')) // %: digraph
		}
		return kw(token.Kind('%'))
	case '<':
		if l.rd.NextIf('<') {
			if l.rd.NextIf('=') {
				return kw(token.P_ASSIGN_SAL)
			}
			return kw(token.P_SAL)
		}
		if l.rd.NextIf('=') {
			return kw(token.P_LE)
		}
		if l.rd.NextIf(':') {
			return kw(token.Kind('[')) // <: digraph
		}
		if l.rd.NextIf('%') {
			return kw(token.Kind('{')) // <% digraph
		}
		return kw(token.Kind('<'))
	case '>':
		if l.rd.NextIf('>') {
			if l.rd.NextIf('=') {
				return kw(token.P_ASSIGN_SAR)
			}
			return kw(token.P_SAR)
		}
		if l.rd.NextIf('=') {
			return kw(token.P_GE)
		}
		return kw(token.Kind('>'))
	case '=':
		if l.rd.NextIf('=') {
			return kw(token.P_EQ)
		}
		return kw(token.Kind('='))
	case '^':
		if l.rd.NextIf('=') {
			return kw(token.P_ASSIGN_XOR)
		}
		return kw(token.Kind('^'))
	case '|':
		if l.rd.NextIf('|') {
			return kw(token.P_LOGOR)
		}
		if l.rd.NextIf('=') {
			return kw(token.P_ASSIGN_OR)
		}
		return kw(token.Kind('|'))
	case ':':
		if l.rd.NextIf('>') {
			return kw(token.Kind(']')) // :> digraph
		}
		return kw(token.Kind(':'))
	case '#':
		if l.rd.NextIf('#') {
			return kw(token.P_HASHHASH)
		}
		return kw(token.Kind('#'))
	case source.EOF:
		return kw(token.TEOF)
	}
	l.bag.Errorf(pos, "stray '%c' in program", c)
	return kw(token.TINVALID)
}
