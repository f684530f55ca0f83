// Package lexer tokenizes raw source characters into a C11 token stream,
// grounded on lexer.h/lexer.cpp.
package lexer

import (
	"github.com/kakitgogogo/mcc/internal/diag"
	"github.com/kakitgogogo/mcc/internal/source"
	"github.com/kakitgogogo/mcc/internal/token"
)

// Lexer produces a token stream for a single translation unit. The
// preprocessor pulls from it one token at a time; both expose the same
// get/unget/peek shape.
type Lexer struct {
	rd       *source.Reader
	bag      *diag.Bag
	buffer   []token.Token // unget stack, LIFO
	baseFile string
}

// New returns a lexer with no active input; call PushFile or PushString
// before NextToken.
func New(bag *diag.Bag) *Lexer {
	return &Lexer{rd: source.New(), bag: bag}
}

// PushFile opens path as the lexer's (new top) input frame. The first
// file ever pushed becomes BaseFile.
func (l *Lexer) PushFile(path string) error {
	if err := l.rd.PushFile(path); err != nil {
		return err
	}
	if l.baseFile == "" {
		l.baseFile = path
	}
	return nil
}

// PushString pushes an in-memory buffer as the lexer's new top frame,
// used by LexString (for -D bodies, _Pragma and ## pasting); it does
// not affect BaseFile.
func (l *Lexer) PushString(name string, buf []byte) {
	l.rd.PushString(name, buf)
}

// PopFile discards the lexer's top input frame. The reader already pops
// exhausted frames on its own, so normal lexing never calls this.
func (l *Lexer) PopFile() {
	l.rd.Pop()
}

// BaseFile is the name of the first file pushed onto this lexer,
// exposed for __BASE_FILE__.
func (l *Lexer) BaseFile() string {
	return l.baseFile
}

// CurrentFile is the name of the lexer's active input frame, exposed for
// __FILE__.
func (l *Lexer) CurrentFile() string {
	return l.rd.Pos().File
}

// IncludeDepth is how many file frames are stacked, exposed for
// __INCLUDE_LEVEL__ (the bottommost frame does not count as an include).
func (l *Lexer) IncludeDepth() int {
	d := l.rd.Count() - 1
	if d < 0 {
		return 0
	}
	return d
}

func (l *Lexer) pos(delta int) token.Pos {
	p := l.rd.Pos()
	p.Col += delta
	return p
}

// NextToken returns the next token, applying leading-space and
// begin-of-line flags exactly as lexer.cpp's get_token does.
func (l *Lexer) NextToken() token.Token {
	if n := len(l.buffer); n > 0 {
		tok := l.buffer[n-1]
		l.buffer = l.buffer[:n-1]
		return tok
	}
	if l.rd.Count() == 0 {
		return token.New(token.TEOF, l.pos(0))
	}
	bol := l.rd.Pos().Col == 1
	tok := l.readToken()
	if tok.Kind == token.TSPACE {
		tok = l.readToken()
		tok.LeadingSpace = true
	}
	tok.BeginOfLine = bol
	return tok
}

// UngetToken pushes tok back; it will be the next token NextToken
// returns. EOF tokens are not buffered (mirrors lexer.cpp).
func (l *Lexer) UngetToken(tok token.Token) {
	if tok.Kind == token.TEOF {
		return
	}
	l.buffer = append(l.buffer, tok)
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Token {
	tok := l.NextToken()
	l.UngetToken(tok)
	return tok
}

// NextIf consumes and returns true if the next token has kind k.
func (l *Lexer) NextIf(k token.Kind) bool {
	tok := l.NextToken()
	if tok.Kind == k {
		return true
	}
	l.UngetToken(tok)
	return false
}

// LexString tokenizes str in its entirety (used by _Pragma's re-lex of
// its string-literal operand) and returns every token up to, but not
// including, EOF.
func LexString(bag *diag.Bag, name string, str []byte) []token.Token {
	l := New(bag)
	l.PushString(name, str)
	var toks []token.Token
	for {
		tok := l.readToken()
		if tok.Kind == token.TEOF {
			return toks
		}
		if tok.Kind == token.TSPACE || tok.Kind == token.TNEWLINE {
			continue
		}
		toks = append(toks, tok)
	}
}
