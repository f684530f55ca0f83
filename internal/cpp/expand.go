package cpp

import (
	"github.com/kakitgogogo/mcc/internal/lexer"
	"github.com/kakitgogogo/mcc/internal/token"
)

// expand is Dave Prosser's classic hide-set macro-expansion algorithm
// (the one later used by gcc and clang): an identifier whose own name is
// already in its hideset is "blue-painted" and returned untouched;
// otherwise a matching macro's replacement is substituted, hidden by
// (for an object macro) the macro's own name, or (for a function macro)
// the intersection of the invocation and closing-paren hidesets plus the
// macro's name, and rescanned by looping instead of recursing.
func (p *Preprocessor) expand(tok token.Token) token.Token {
	for {
		if tok.Kind != token.TIDENT {
			return tok
		}
		if tok.Name == "_Pragma" {
			if _, overridden := p.macros["_Pragma"]; !overridden {
				if next := p.rawNext(); next.Kind == token.Kind('(') {
					tok = p.applyPragmaOperator()
					continue
				} else {
					p.unreadRaw(next)
				}
			}
		}
		if tok.Hideset.Contains(tok.Name) {
			return tok
		}
		m, ok := p.macros[tok.Name]
		if !ok {
			return p.maybeKeyword(tok)
		}

		switch m.Kind {
		case MKObject:
			hs := tok.Hideset.Add(tok.Name)
			p.pushTokens(p.subst(m, nil, hs))
			tok = p.rawNext()

		case MKFunction:
			next := p.rawNext()
			if next.Kind != token.Kind('(') {
				p.unreadRaw(next)
				return p.maybeKeyword(tok)
			}
			args, rparen := p.readArgs(tok, m)
			hs := tok.Hideset.Intersect(rparen.Hideset).Add(tok.Name)
			p.pushTokens(p.subst(m, args, hs))
			tok = p.rawNext()

		case MKPredefined:
			return p.maybeKeyword(m.Handler(tok))
		}
	}
}

// maybeKeyword converts an identifier spelled like a keyword into its
// keyword token kind; this happens only once a token is finally leaving
// the preprocessor; while expansion is in progress identifiers must stay
// TIDENT so their spelling round-trips through stringize and #if's
// `defined` operator.
func (p *Preprocessor) maybeKeyword(tok token.Token) token.Token {
	if tok.Kind != token.TIDENT {
		return tok
	}
	if k, ok := token.Keyword(tok.Name); ok {
		tok.Kind = k
	}
	return tok
}

// expandAll fully macro-expands an already-collected argument's raw
// tokens in isolation, used to substitute a macro parameter everywhere
// except immediately next to # or ## (C11 6.10.3.1p1).
func (p *Preprocessor) expandAll(toks []token.Token) []token.Token {
	saved := p.pending
	p.pending = nil
	p.pushTokens([]token.Token{token.New(token.TEOF, token.Pos{})})
	p.pushTokens(toks)

	var out []token.Token
	for {
		tok := p.rawNext()
		expanded := p.expandWithinArg(tok)
		if expanded.Kind == token.TEOF {
			break
		}
		out = append(out, expanded)
	}
	p.pending = saved
	return out
}

// expandWithinArg is expand, but it must not reach past the sentinel EOF
// appended by expandAll out into the enclosing token stream (a function
// macro whose name appears at the very end of an argument list must not
// swallow the real ')' that closes the outer invocation).
func (p *Preprocessor) expandWithinArg(tok token.Token) token.Token {
	for {
		if tok.Kind != token.TIDENT {
			return tok
		}
		if tok.Name == "_Pragma" {
			if _, overridden := p.macros["_Pragma"]; !overridden {
				if next := p.rawNext(); next.Kind == token.Kind('(') {
					tok = p.applyPragmaOperator()
					continue
				} else {
					p.unreadRaw(next)
				}
			}
		}
		if tok.Hideset.Contains(tok.Name) {
			return tok
		}
		m, ok := p.macros[tok.Name]
		if !ok {
			return tok
		}
		switch m.Kind {
		case MKObject:
			hs := tok.Hideset.Add(tok.Name)
			p.pushTokens(p.subst(m, nil, hs))
			tok = p.rawNext()
		case MKFunction:
			next := p.rawNext()
			if next.Kind != token.Kind('(') {
				p.unreadRaw(next)
				return tok
			}
			args, rparen := p.readArgs(tok, m)
			hs := tok.Hideset.Intersect(rparen.Hideset).Add(tok.Name)
			p.pushTokens(p.subst(m, args, hs))
			tok = p.rawNext()
		case MKPredefined:
			return m.Handler(tok)
		}
	}
}

// readArgs consumes the tokens of a function-like macro invocation up to
// (and including) the matching ')', already past the opening '('. A
// variadic macro's trailing arguments are rejoined (with their original
// commas) into one final __VA_ARGS__ slot.
func (p *Preprocessor) readArgs(name token.Token, m *Macro) ([][]token.Token, token.Token) {
	var raw [][]token.Token
	var cur []token.Token
	depth := 0
	var rparen token.Token

	for {
		tok := p.rawNext()
		switch {
		case tok.Kind == token.TEOF:
			p.bag.Errorf(tok.Pos, "unterminated argument list invoking macro %q", name.Name)
			raw = append(raw, cur)
			rparen = tok
			goto done
		case tok.Kind == token.Kind('('):
			depth++
			cur = append(cur, tok)
		case tok.Kind == token.Kind(')'):
			if depth == 0 {
				raw = append(raw, cur)
				rparen = tok
				goto done
			}
			depth--
			cur = append(cur, tok)
		case tok.Kind == token.Kind(',') && depth == 0:
			raw = append(raw, cur)
			cur = nil
		default:
			cur = append(cur, tok)
		}
	}
done:
	if len(raw) == 1 && len(raw[0]) == 0 && m.NArgs == 0 && !m.Variadic {
		raw = nil
	}
	if !m.Variadic {
		return raw, rparen
	}
	for len(raw) < m.NArgs {
		raw = append(raw, nil)
	}
	named := append([][]token.Token{}, raw[:m.NArgs]...)
	var variadic []token.Token
	for i := m.NArgs; i < len(raw); i++ {
		if i > m.NArgs {
			variadic = append(variadic, token.New(token.Kind(','), rparen.Pos))
		}
		variadic = append(variadic, raw[i]...)
	}
	return append(named, variadic), rparen
}

// subst implements C11 6.10.3.1-3: parameter substitution (fully
// macro-expanded, except when adjacent to # or ##), stringization, and
// token pasting, in one left-to-right pass over the macro body.
func (p *Preprocessor) subst(m *Macro, args [][]token.Token, hs *token.Hideset) []token.Token {
	body := m.Body
	var res []token.Token

	for i := 0; i < len(body); i++ {
		t := body[i]

		switch {
		case t.Kind == token.Kind('#') && i+1 < len(body) && body[i+1].Kind == token.TMACRO_PARAM:
			res = append(res, stringize(args[body[i+1].ParamPos], t.Pos))
			i++

		case t.Kind == token.P_HASHHASH:
			i++
			if i >= len(body) {
				res = append(res, t)
				break
			}
			right := body[i]
			if right.Kind == token.TMACRO_PARAM {
				arg := args[right.ParamPos]
				if len(arg) == 0 {
					if right.ParamVariadic && len(res) > 0 && res[len(res)-1].Kind == token.Kind(',') {
						res = res[:len(res)-1]
					}
					break
				}
				if right.ParamVariadic {
					// GNU ",##__VA_ARGS__": a non-empty variadic argument
					// is appended as-is, comma and all, with no pasting
					// against the preceding ',' (C11 ## would instead
					// glue the two into one token and fail to lex).
					res = append(res, arg...)
				} else {
					res = p.glue(res, arg[0])
					res = append(res, arg[1:]...)
				}
			} else {
				res = p.glue(res, right)
			}

		case t.Kind == token.TMACRO_PARAM:
			if i+1 < len(body) && body[i+1].Kind == token.P_HASHHASH {
				res = append(res, args[t.ParamPos]...) // raw: the ## case above pastes its first token
			} else {
				res = append(res, p.expandAll(args[t.ParamPos])...)
			}

		default:
			res = append(res, t)
		}
	}

	for i := range res {
		res[i] = res[i].WithHideset(res[i].Hideset.Union(hs))
	}
	return res
}

// stringize implements the # operator (C11 6.10.3.2): the argument's
// spelling, spaces collapsed to one between tokens and none at the ends,
// escaped as a string literal body.
func stringize(arg []token.Token, pos token.Pos) token.Token {
	var buf []byte
	for i, t := range arg {
		if i > 0 && t.LeadingSpace {
			buf = append(buf, ' ')
		}
		buf = append(buf, escapeForStringize(t.String())...)
	}
	return token.NewString(buf, token.EncNone, pos)
}

func escapeForStringize(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return out
}

// glue implements the ## operator between res's last token and right:
// their spellings are concatenated and re-lexed as a single token.
func (p *Preprocessor) glue(res []token.Token, right token.Token) []token.Token {
	if len(res) == 0 {
		return append(res, right)
	}
	left := res[len(res)-1]
	combined := left.String() + right.String()
	toks := lexer.LexString(p.bag, "<paste>", []byte(combined))
	if len(toks) != 1 {
		p.bag.Errorf(left.Pos, "pasting %q and %q does not give a valid preprocessing token", left.String(), right.String())
		return append(res, right)
	}
	glued := toks[0]
	glued.Pos = left.Pos
	glued.LeadingSpace = left.LeadingSpace
	glued.Hideset = left.Hideset.Intersect(right.Hideset)
	res[len(res)-1] = glued
	return res
}
