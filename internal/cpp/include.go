package cpp

import (
	"os"
	"path/filepath"

	"github.com/kakitgogogo/mcc/internal/lexer"
	"github.com/kakitgogogo/mcc/internal/token"
)

// readInclude implements C11 6.10.2. A quoted or angle-bracket form
// recognized directly from the raw token stream is used as-is; anything
// else is macro-expanded first and re-examined (C11 6.10.2p4).
func (p *Preprocessor) readInclude(hash token.Token) {
	first := p.rawNext()
	var path string
	var isSystem bool

	switch {
	case first.Kind == token.TSTRING:
		path = string(first.Str)
		p.skipLine()
	case first.Kind == token.Kind('<'):
		path = p.scanHeaderName()
		isSystem = true
		p.skipLine()
	default:
		p.unreadRaw(first)
		toks := p.expandAll(p.readRestOfLine())
		switch {
		case len(toks) == 1 && toks[0].Kind == token.TSTRING:
			path = string(toks[0].Str)
		case len(toks) >= 1 && toks[0].Kind == token.Kind('<'):
			var buf []byte
			for _, t := range toks[1:] {
				if t.Kind == token.Kind('>') {
					break
				}
				buf = append(buf, []byte(t.String())...)
			}
			path = string(buf)
			isSystem = true
		default:
			p.bag.Errorf(hash.Pos, "expected \"FILENAME\" or <FILENAME> after #include")
			return
		}
	}

	p.doInclude(hash.Pos, path, isSystem)
}

// scanHeaderName reassembles an angle-bracket header name from the
// individually tokenized characters between '<' and '>' -- the lexer
// has no notion of a header-name pp-token, so `<sys/types.h>` arrives as
// ordinary punctuator/identifier tokens that are re-concatenated here.
func (p *Preprocessor) scanHeaderName() string {
	var buf []byte
	for {
		tok := p.rawNext()
		if tok.Kind == token.Kind('>') || tok.Kind == token.TNEWLINE || tok.Kind == token.TEOF {
			if tok.Kind == token.TNEWLINE || tok.Kind == token.TEOF {
				p.unreadRaw(tok)
			}
			return string(buf)
		}
		buf = append(buf, []byte(tok.String())...)
	}
}

func (p *Preprocessor) doInclude(pos token.Pos, name string, isSystem bool) {
	full, ok := p.resolveInclude(name, isSystem)
	if !ok {
		p.bag.Errorf(pos, "%s: no such file or directory", name)
		return
	}
	if abs, err := filepath.Abs(full); err == nil && p.onces[abs] {
		return
	}
	if err := p.lex.PushFile(full); err != nil {
		p.bag.Errorf(pos, "%v", err)
	}
}

// resolveInclude implements the search order of C11 6.10.2p3/p4: a
// quoted include first looks in the including file's own directory,
// then falls through (like an angle-bracket include) to the -I search
// path in order.
func (p *Preprocessor) resolveInclude(name string, isSystem bool) (string, bool) {
	exists := func(path string) (string, bool) {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		return "", false
	}
	if filepath.IsAbs(name) {
		return exists(name)
	}
	if !isSystem {
		if full, ok := exists(filepath.Join(filepath.Dir(p.lex.CurrentFile()), name)); ok {
			return full, true
		}
	}
	for _, dir := range p.includeDirs {
		if full, ok := exists(filepath.Join(dir, name)); ok {
			return full, true
		}
	}
	return "", false
}

func (p *Preprocessor) readPragma(hash token.Token) {
	p.handlePragmaTokens(hash.Pos, p.readRestOfLine())
}

// handlePragmaTokens processes one pragma's operand tokens, from either
// a #pragma directive or the _Pragma("...") operator (C11 6.10.6, 6.10.9).
// The only pragma this compiler gives meaning to is `once`; anything
// else is accepted and ignored, matching a permissive `-w`-style stance
// toward pragmas a translator doesn't recognize (C11 6.10.6p1).
func (p *Preprocessor) handlePragmaTokens(pos token.Pos, toks []token.Token) {
	if len(toks) == 1 && toks[0].Kind == token.TIDENT && toks[0].Name == "once" {
		if abs, err := filepath.Abs(p.lex.CurrentFile()); err == nil {
			p.onces[abs] = true
		}
	}
}

// applyPragmaOperator consumes the "(" STRING ")" that follows an
// identifier already confirmed to be the _Pragma operator and not a
// user-redefined macro of that name, and returns the next token so the
// calling expand loop can continue -- _Pragma(...) itself expands to no
// tokens at all (C11 6.10.9p1).
func (p *Preprocessor) applyPragmaOperator() token.Token {
	str := p.rawNext()
	if str.Kind != token.TSTRING {
		p.bag.Errorf(str.Pos, "_Pragma takes a single parenthesized string literal")
	} else {
		// The lexer already decoded every escape sequence in Str, which
		// is exactly what destringizing \" and \\ amounts to here.
		toks := lexer.LexString(p.bag, "<_Pragma>", str.Str)
		p.handlePragmaTokens(str.Pos, toks)
	}
	if rparen := p.rawNext(); rparen.Kind != token.Kind(')') {
		p.unreadRaw(rparen)
	}
	return p.rawNext()
}
