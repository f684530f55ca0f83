package cpp

import "github.com/kakitgogogo/mcc/internal/token"

// condFrame tracks one #if/#ifdef/#ifndef ... #endif chain. parentActive
// records whether the enclosing context (if any) is itself emitting
// tokens; once false nothing in this chain can ever become active,
// regardless of what its own conditions evaluate to.
type condFrame struct {
	parentActive bool
	anyTrue      bool
	active       bool
	sawElse      bool
}

func (p *Preprocessor) isActive() bool {
	return len(p.cond) == 0 || p.cond[len(p.cond)-1].active
}

// readDirective handles one '#'-introduced line (the '#' itself has
// already been consumed by NextToken).
func (p *Preprocessor) readDirective() {
	tok := p.rawNext()
	if tok.Kind == token.TNEWLINE {
		return // the null directive, C11 6.10.7
	}
	if tok.Kind == token.TEOF {
		p.unreadRaw(tok)
		return
	}
	if tok.Kind != token.TIDENT {
		p.bag.Errorf(tok.Pos, "invalid preprocessing directive")
		p.skipLine()
		return
	}
	switch tok.Name {
	case "if":
		p.readIf(tok)
	case "ifdef":
		p.readIfdef(tok, false)
	case "ifndef":
		p.readIfdef(tok, true)
	case "elif":
		p.readElif(tok)
	case "else":
		p.readElse(tok)
	case "endif":
		p.readEndif(tok)
	case "include":
		p.readInclude(tok)
	case "define":
		p.readDefine(tok)
	case "undef":
		p.readUndef(tok)
	case "line":
		p.readLine(tok)
	case "error":
		p.readError(tok)
	case "pragma":
		p.readPragma(tok)
	default:
		p.bag.Errorf(tok.Pos, "invalid preprocessing directive #%s", tok.Name)
		p.skipLine()
	}
}

func (p *Preprocessor) skipLine() {
	for {
		tok := p.rawNext()
		if tok.Kind == token.TNEWLINE {
			return
		}
		if tok.Kind == token.TEOF {
			p.unreadRaw(tok)
			return
		}
	}
}

// readRestOfLine collects every raw token up to (not including) the
// terminating newline.
func (p *Preprocessor) readRestOfLine() []token.Token {
	var toks []token.Token
	for {
		tok := p.rawNext()
		if tok.Kind == token.TNEWLINE {
			return toks
		}
		if tok.Kind == token.TEOF {
			p.unreadRaw(tok)
			return toks
		}
		toks = append(toks, tok)
	}
}

func (p *Preprocessor) readIf(hash token.Token) {
	parentActive := p.isActive()
	val := false
	if parentActive {
		val = p.evalConstExpr(hash)
	} else {
		p.skipLine()
	}
	p.cond = append(p.cond, condFrame{parentActive: parentActive, anyTrue: val, active: parentActive && val})
	if !p.isActive() {
		p.skipCondIncl()
	}
}

func (p *Preprocessor) readIfdef(hash token.Token, negate bool) {
	parentActive := p.isActive()
	name := p.rawNext()
	if name.Kind != token.TIDENT {
		p.bag.Errorf(name.Pos, "macro name missing after #%s", hash.Name)
	}
	p.skipLine()
	_, defined := p.macros[name.Name]
	val := defined
	if negate {
		val = !defined
	}
	p.cond = append(p.cond, condFrame{parentActive: parentActive, anyTrue: val && parentActive, active: parentActive && val})
	if !p.isActive() {
		p.skipCondIncl()
	}
}

func (p *Preprocessor) readElif(hash token.Token) {
	if len(p.cond) == 0 {
		p.bag.Errorf(hash.Pos, "#elif without #if")
		p.skipLine()
		return
	}
	top := &p.cond[len(p.cond)-1]
	if !top.parentActive || top.anyTrue {
		top.active = false
		p.skipLine()
		p.skipCondIncl()
		return
	}
	val := p.evalConstExpr(hash)
	top.active = val
	if val {
		top.anyTrue = true
		return
	}
	p.skipCondIncl()
}

func (p *Preprocessor) readElse(hash token.Token) {
	if len(p.cond) == 0 {
		p.bag.Errorf(hash.Pos, "#else without #if")
		p.skipLine()
		return
	}
	p.skipLine()
	top := &p.cond[len(p.cond)-1]
	if top.sawElse {
		p.bag.Errorf(hash.Pos, "#else after #else")
	}
	top.sawElse = true
	if !top.parentActive || top.anyTrue {
		top.active = false
		p.skipCondIncl()
		return
	}
	top.active = true
	top.anyTrue = true
}

func (p *Preprocessor) readEndif(hash token.Token) {
	if len(p.cond) == 0 {
		p.bag.Errorf(hash.Pos, "#endif without #if")
		p.skipLine()
		return
	}
	p.skipLine()
	p.cond = p.cond[:len(p.cond)-1]
}

// skipCondIncl scans forward over an inactive branch's tokens, tracking
// nested #if-family depth, and dispatches whichever #elif/#else/#endif
// ends it at this chain's own depth (grounded on
// preprocessor.cpp's skip_cond_incl).
func (p *Preprocessor) skipCondIncl() {
	depth := 0
	for {
		tok := p.rawNext()
		if tok.Kind == token.TEOF {
			p.unreadRaw(tok)
			return
		}
		if tok.Kind != token.Kind('#') || !tok.BeginOfLine {
			continue
		}
		name := p.rawNext()
		if name.Kind != token.TIDENT {
			continue
		}
		switch name.Name {
		case "if", "ifdef", "ifndef":
			depth++
		case "endif":
			if depth == 0 {
				p.readEndif(name)
				return
			}
			depth--
		case "elif":
			if depth == 0 {
				p.readElif(name)
				return
			}
		case "else":
			if depth == 0 {
				p.readElse(name)
				return
			}
		}
	}
}

func (p *Preprocessor) readUndef(hash token.Token) {
	name := p.rawNext()
	if name.Kind != token.TIDENT {
		p.bag.Errorf(name.Pos, "macro name missing after #undef")
		p.skipLine()
		return
	}
	p.skipLine()
	delete(p.macros, name.Name)
}

func (p *Preprocessor) readDefine(hash token.Token) {
	name := p.rawNext()
	if name.Kind != token.TIDENT {
		p.bag.Errorf(name.Pos, "macro name missing after #define")
		p.skipLine()
		return
	}
	// A '(' with no leading space directly after the name makes this a
	// function-like macro (C11 6.10.3p1); anything else (including a
	// space before '(') makes it object-like.
	next := p.rawNext()
	if next.Kind == token.Kind('(') && !next.LeadingSpace {
		p.readFunctionMacro(name)
		return
	}
	p.unreadRaw(next)
	body := p.readRestOfLine()
	p.macros[name.Name] = newObjectMacro(body)
}

func (p *Preprocessor) readFunctionMacro(name token.Token) {
	var params []string
	variadic := false
	if !p.nextIsRaw(token.Kind(')')) {
		for {
			tok := p.rawNext()
			if tok.Kind == token.P_ELLIPSIS {
				variadic = true
				p.expectRaw(token.Kind(')'))
				break
			}
			if tok.Kind != token.TIDENT {
				p.bag.Errorf(tok.Pos, "expected parameter name")
				break
			}
			params = append(params, tok.Name)
			sep := p.rawNext()
			if sep.Kind == token.Kind(')') {
				break
			}
			if sep.Kind != token.Kind(',') {
				p.bag.Errorf(sep.Pos, "expected ',' or ')' in macro parameter list")
				break
			}
		}
	} else {
		p.rawNext() // consume ')'
	}

	body := p.markMacroParams(p.readRestOfLine(), params, variadic)
	p.macros[name.Name] = newFunctionMacro(body, len(params), variadic)
}

// markMacroParams rewrites every identifier in body matching a
// parameter name (or, for a variadic macro, __VA_ARGS__) into a
// TMACRO_PARAM placeholder carrying its position.
func (p *Preprocessor) markMacroParams(body []token.Token, params []string, variadic bool) []token.Token {
	index := make(map[string]int, len(params))
	for i, name := range params {
		index[name] = i
	}
	out := make([]token.Token, len(body))
	for i, t := range body {
		if t.Kind == token.TIDENT {
			if pos, ok := index[t.Name]; ok {
				out[i] = token.NewMacroParam(pos, false, t.Pos).WithLeadingSpace(t.LeadingSpace)
				continue
			}
			if variadic && t.Name == "__VA_ARGS__" {
				out[i] = token.NewMacroParam(len(params), true, t.Pos).WithLeadingSpace(t.LeadingSpace)
				continue
			}
		}
		out[i] = t
	}
	return out
}

func (p *Preprocessor) nextIsRaw(k token.Kind) bool {
	tok := p.rawNext()
	p.unreadRaw(tok)
	return tok.Kind == k
}

func (p *Preprocessor) expectRaw(k token.Kind) {
	tok := p.rawNext()
	if tok.Kind != k {
		p.bag.Errorf(tok.Pos, "expected %v", k)
		p.unreadRaw(tok)
	}
}

func (p *Preprocessor) readLine(hash token.Token) {
	// #line is accepted and its line-number/filename effect on
	// diagnostics is intentionally not modeled -- positions stay the
	// reader's own row/col, not a directive-settable override -- but it
	// is still consumed so it doesn't fall through to "invalid directive".
	p.skipLine()
}

func (p *Preprocessor) readError(hash token.Token) {
	toks := p.readRestOfLine()
	msg := ""
	for i, t := range toks {
		if i > 0 && t.LeadingSpace {
			msg += " "
		}
		msg += t.String()
	}
	p.bag.Errorf(hash.Pos, "#error %s", msg)
}
