// Package cpp is the C11 preprocessor: hideset-based macro expansion,
// conditional inclusion, #include resolution with #pragma once tracking,
// and the predefined-macro set, grounded on preprocessor.h/preprocessor.cpp.
package cpp

import (
	"github.com/kakitgogogo/mcc/internal/diag"
	"github.com/kakitgogogo/mcc/internal/lexer"
	"github.com/kakitgogogo/mcc/internal/token"
)

// Preprocessor sits between the lexer and the parser, exposing the same
// get/unget/peek token interface as the lexer itself, so the parser
// never has to know whether a token came straight off the wire or out
// of a macro expansion.
type Preprocessor struct {
	lex *lexer.Lexer
	bag *diag.Bag

	macros  map[string]*Macro
	pending []token.Token // LIFO: unget'd and re-injected (macro-expansion) tokens

	cond []condFrame

	onces       map[string]bool // absolute path -> seen a #pragma once
	includeDirs []string

	counter int // __COUNTER__
}

// New builds a preprocessor reading from lex, with includeDirs searched
// in order (after the including file's own directory) for a quoted or
// angle-bracket #include that isn't found directly.
func New(bag *diag.Bag, lex *lexer.Lexer, includeDirs []string) *Preprocessor {
	p := &Preprocessor{
		lex:         lex,
		bag:         bag,
		macros:      make(map[string]*Macro),
		onces:       make(map[string]bool),
		includeDirs: includeDirs,
	}
	p.initPredefinedMacros()
	return p
}

// Define installs a macro as if by #define, used by the driver to
// synthesize -D command-line definitions.
func (p *Preprocessor) Define(name string, m *Macro) {
	p.macros[name] = m
}

// Undef installs a -U command-line undefine.
func (p *Preprocessor) Undef(name string) {
	delete(p.macros, name)
}

// rawNext pulls the next token before macro expansion: from the pending
// LIFO buffer if non-empty, else straight from the lexer.
func (p *Preprocessor) rawNext() token.Token {
	if n := len(p.pending); n > 0 {
		tok := p.pending[n-1]
		p.pending = p.pending[:n-1]
		return tok
	}
	return p.lex.NextToken()
}

func (p *Preprocessor) unreadRaw(tok token.Token) {
	p.pending = append(p.pending, tok)
}

// pushTokens re-injects toks so they are consumed (in order) before
// anything already pending or on the lexer.
func (p *Preprocessor) pushTokens(toks []token.Token) {
	for i := len(toks) - 1; i >= 0; i-- {
		p.pending = append(p.pending, toks[i])
	}
}

// NextToken returns the next fully macro-expanded, directive-free token.
func (p *Preprocessor) NextToken() token.Token {
	for {
		tok := p.rawNext()
		if tok.Kind == token.TNEWLINE {
			continue
		}
		if tok.Kind == token.Kind('#') && tok.BeginOfLine {
			p.readDirective()
			continue
		}
		if tok.Kind == token.TEOF {
			return tok
		}
		out := p.expand(tok)
		if out.Kind == token.TNEWLINE {
			continue
		}
		return out
	}
}

// UngetToken pushes tok back; the next NextToken call returns it again.
func (p *Preprocessor) UngetToken(tok token.Token) {
	if tok.Kind == token.TEOF {
		return
	}
	p.pending = append(p.pending, tok)
}

// Peek returns the next token without consuming it.
func (p *Preprocessor) Peek() token.Token {
	tok := p.NextToken()
	p.UngetToken(tok)
	return tok
}

// NextIf consumes and returns true if the next token has kind k.
func (p *Preprocessor) NextIf(k token.Kind) bool {
	tok := p.NextToken()
	if tok.Kind == k {
		return true
	}
	p.UngetToken(tok)
	return false
}
