package parser

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/cscope"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// readStmt reads one statement, grounded on read_stmt's dispatch table
// in parser.cpp. Loops, switch, and goto/label all desugar here into
// COMPOUND_STMT wrapping IF/JUMP/LABEL nodes -- ast.Node has no
// dedicated kind for any of them, by design.
func (p *Parser) readStmt() *ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case token.Kind('{'):
		return p.readCompoundStmt()
	case token.KW_IF:
		p.next()
		return p.readIfStmt(tok)
	case token.KW_SWITCH:
		p.next()
		return p.readSwitchStmt(tok)
	case token.KW_WHILE:
		p.next()
		return p.readWhileStmt(tok)
	case token.KW_DO:
		p.next()
		return p.readDoStmt(tok)
	case token.KW_FOR:
		p.next()
		return p.readForStmt(tok)
	case token.KW_GOTO:
		p.next()
		return p.readGotoStmt(tok)
	case token.KW_CONTINUE:
		p.next()
		return p.readContinueStmt(tok)
	case token.KW_BREAK:
		p.next()
		return p.readBreakStmt(tok)
	case token.KW_RETURN:
		p.next()
		return p.readReturnStmt(tok)
	case token.KW_CASE:
		p.next()
		return p.readCaseStmt(tok)
	case token.KW_DEFAULT:
		p.next()
		return p.readDefaultStmt(tok)
	case token.TIDENT:
		if p.isLabelAhead() {
			return p.readLabeledStmt()
		}
	}
	return p.readExprStmt()
}

// readExprStmt reads `expr-opt ';'`, returning nil for a bare `;`.
func (p *Parser) readExprStmt() *ast.Node {
	if p.accept(token.Kind(';')) {
		return nil
	}
	n := p.readExpr()
	p.expect(token.Kind(';'))
	return n
}

// readBooleanExpr converts a controlling expression to a scalar
// condition, the form while/if/for/do all test (C11 6.8.4.1/6.8.5).
func (p *Parser) readBooleanExpr() *ast.Node {
	return p.convert(p.readExpr(), ctypes.InvalidID)
}

// readCompoundStmt reads a `{ ... }` block, pushing a fresh block scope
// so declarations inside it shadow outer ones and vanish on exit.
func (p *Parser) readCompoundStmt() *ast.Node {
	tok := p.expect(token.Kind('{'))
	p.scope.In(ctypes.InvalidID)
	var list []*ast.Node
	for !p.accept(token.Kind('}')) {
		if p.peek().Kind == token.TEOF {
			p.errorf(p.peek().Pos, "expected '}'")
			break
		}
		if p.isTypeName(p.peek()) || p.peek().Kind == token.KW_STATIC_ASSERT {
			p.readDecl(&list, false)
			continue
		}
		if n := p.readStmt(); n != nil {
			list = append(list, n)
		}
	}
	p.scope.Out()
	return ast.NewCompoundStmt(tok.Pos, list)
}

func (p *Parser) readIfStmt(tok token.Token) *ast.Node {
	p.expect(token.Kind('('))
	cond := p.readBooleanExpr()
	p.expect(token.Kind(')'))
	then := p.readStmt()
	var els *ast.Node
	if p.accept(token.KW_ELSE) {
		els = p.readStmt()
	}
	return ast.NewIf(tok.Pos, cond, then, els)
}

// readSwitchStmt desugars `switch (e) body` into: evaluate e once into
// a temporary; one IF-and-JUMP per case range (equality test when
// lo==hi, a bounded range test otherwise); a JUMP to default (or to the
// end label if there's no default); the body; and the end label,
// grounded on read_switch_stmt/make_switch_jump.
func (p *Parser) readSwitchStmt(tok token.Token) *ast.Node {
	p.expect(token.Kind('('))
	expr := p.convert(p.readExpr(), ctypes.InvalidID)
	if !p.types.At(expr.Type).IsInt() {
		p.errorf(expr.Pos, "switch quantity not an integer")
	}
	p.expect(token.Kind(')'))

	end := p.labels.Label()
	p.scope.InSwitch(end)
	p.breakStack = append(p.breakStack, end)

	body := p.readStmt()

	name := p.labels.Tmp()
	var v *ast.Node
	if p.scope.IsLocal() {
		v = ast.NewLocalVar(expr.Pos, expr.Type, name)
		p.funcLocals = append(p.funcLocals, v)
	} else {
		v = ast.NewGlobalVar(expr.Pos, expr.Type, name)
	}
	list := []*ast.Node{p.makeAssign(tok.Pos, v, expr)}
	for _, c := range p.scope.Cases() {
		list = append(list, makeSwitchJump(tok.Pos, p.types, v, c))
	}
	defaultLabel := p.scope.DefaultLabel()
	if defaultLabel == "" {
		defaultLabel = end
	}
	list = append(list, ast.NewJump(tok.Pos, defaultLabel, defaultLabel))
	if body != nil {
		list = append(list, body)
	}
	list = append(list, ast.NewLabel(tok.Pos, end, end))

	p.scope.OutSwitch()
	p.breakStack = p.breakStack[:len(p.breakStack)-1]

	return ast.NewCompoundStmt(tok.Pos, list)
}

func makeSwitchJump(pos token.Pos, types *ctypes.Arena, v *ast.Node, c cscope.CaseRange) *ast.Node {
	var cond *ast.Node
	if c.Lo == c.Hi {
		cond = ast.NewBinary(pos, ast.Op(token.P_EQ), types.Int(), v, ast.NewInt(pos, v.Type, c.Lo))
	} else {
		lo := ast.NewBinary(pos, ast.Op(token.P_LE), types.Int(), ast.NewInt(pos, v.Type, c.Lo), v)
		hi := ast.NewBinary(pos, ast.Op(token.P_LE), types.Int(), v, ast.NewInt(pos, v.Type, c.Hi))
		cond = ast.NewBinary(pos, ast.Op(token.P_LOGAND), types.Int(), lo, hi)
	}
	return ast.NewIf(pos, cond, ast.NewJump(pos, c.Label, c.Label), nil)
}

// readCaseStmt reads `case const-expr ('...' const-expr)? ':' stmt`,
// registering a range with the enclosing switch and emitting its label
// right before the statement that follows (GNU case-range extension,
// recovered from original_source's test programs).
func (p *Parser) readCaseStmt(tok token.Token) *ast.Node {
	if !p.scope.IsInSwitch() {
		p.errorf(tok.Pos, "case label not within a switch statement")
	}
	lo := p.readConstExpr().IntVal
	hi := lo
	if p.accept(token.P_ELLIPSIS) {
		hi = p.readConstExpr().IntVal
	}
	p.expect(token.Kind(':'))
	label := p.labels.Label()
	if p.scope.IsInSwitch() {
		p.scope.AddCase(cscope.CaseRange{Lo: lo, Hi: hi, Label: label})
	}
	stmt := p.readStmt()
	list := []*ast.Node{ast.NewLabel(tok.Pos, label, label)}
	if stmt != nil {
		list = append(list, stmt)
	}
	return ast.NewCompoundStmt(tok.Pos, list)
}

func (p *Parser) readDefaultStmt(tok token.Token) *ast.Node {
	if !p.scope.IsInSwitch() {
		p.errorf(tok.Pos, "default label not within a switch statement")
	}
	p.expect(token.Kind(':'))
	label := p.labels.Label()
	if p.scope.IsInSwitch() {
		p.scope.SetDefaultLabel(label)
	}
	stmt := p.readStmt()
	list := []*ast.Node{ast.NewLabel(tok.Pos, label, label)}
	if stmt != nil {
		list = append(list, stmt)
	}
	return ast.NewCompoundStmt(tok.Pos, list)
}

// readWhileStmt desugars `while (cond) body` into:
//   LABEL begin; IF(cond, body, JUMP end); JUMP begin; LABEL end
func (p *Parser) readWhileStmt(tok token.Token) *ast.Node {
	p.expect(token.Kind('('))
	begin, end := p.labels.Label(), p.labels.Label()
	p.scope.InLoop(begin, end)
	p.breakStack = append(p.breakStack, end)

	cond := p.readBooleanExpr()
	p.expect(token.Kind(')'))
	body := p.readStmt()

	p.scope.OutLoop()
	p.breakStack = p.breakStack[:len(p.breakStack)-1]

	list := []*ast.Node{
		ast.NewLabel(tok.Pos, begin, begin),
		ast.NewIf(tok.Pos, cond, body, ast.NewJump(tok.Pos, end, end)),
		ast.NewJump(tok.Pos, begin, begin),
		ast.NewLabel(tok.Pos, end, end),
	}
	return ast.NewCompoundStmt(tok.Pos, list)
}

// readDoStmt desugars `do body while (cond);` into:
//   LABEL begin; body; IF(cond, JUMP begin, nil); LABEL end
func (p *Parser) readDoStmt(tok token.Token) *ast.Node {
	begin, end := p.labels.Label(), p.labels.Label()
	p.scope.InLoop(begin, end)
	p.breakStack = append(p.breakStack, end)

	body := p.readStmt()
	p.expect(token.KW_WHILE)
	p.expect(token.Kind('('))
	cond := p.readBooleanExpr()
	p.expect(token.Kind(')'))
	p.expect(token.Kind(';'))

	p.scope.OutLoop()
	p.breakStack = p.breakStack[:len(p.breakStack)-1]

	var list []*ast.Node
	list = append(list, ast.NewLabel(tok.Pos, begin, begin))
	if body != nil {
		list = append(list, body)
	}
	list = append(list, ast.NewIf(tok.Pos, cond, ast.NewJump(tok.Pos, begin, begin), nil))
	list = append(list, ast.NewLabel(tok.Pos, end, end))
	return ast.NewCompoundStmt(tok.Pos, list)
}

// readForStmt desugars `for (init; cond; step) body` into:
//   init; LABEL begin; IF(cond, nil, JUMP end); body; LABEL next; step;
//   JUMP begin; LABEL end
// -- continue targets `next` rather than `begin` so step still runs.
func (p *Parser) readForStmt(tok token.Token) *ast.Node {
	p.expect(token.Kind('('))
	begin, next, end := p.labels.Label(), p.labels.Label(), p.labels.Label()
	p.scope.In(ctypes.InvalidID)
	p.scope.InLoop(next, end)
	p.breakStack = append(p.breakStack, end)

	init := p.readForInit()
	var cond *ast.Node
	if !p.accept(token.Kind(';')) {
		cond = p.readBooleanExpr()
		p.expect(token.Kind(';'))
	}
	var step *ast.Node
	if !p.accept(token.Kind(')')) {
		step = p.readExpr()
		p.expect(token.Kind(')'))
	}
	body := p.readStmt()

	p.scope.OutLoop()
	p.scope.Out()
	p.breakStack = p.breakStack[:len(p.breakStack)-1]

	var list []*ast.Node
	if init != nil {
		list = append(list, init)
	}
	list = append(list, ast.NewLabel(tok.Pos, begin, begin))
	if cond != nil {
		list = append(list, ast.NewIf(tok.Pos, cond, nil, ast.NewJump(tok.Pos, end, end)))
	}
	if body != nil {
		list = append(list, body)
	}
	list = append(list, ast.NewLabel(tok.Pos, next, next))
	if step != nil {
		list = append(list, step)
	}
	list = append(list, ast.NewJump(tok.Pos, begin, begin))
	list = append(list, ast.NewLabel(tok.Pos, end, end))
	return ast.NewCompoundStmt(tok.Pos, list)
}

// readForInit reads the for-loop's init-clause: either a declaration
// (already terminated by its own ';') or a bare expression-statement.
func (p *Parser) readForInit() *ast.Node {
	tok := p.peek()
	if tok.Kind == token.TEOF {
		p.errorf(tok.Pos, "expected declaration or statement at end of input")
		return ast.Error
	}
	var list []*ast.Node
	if p.isTypeName(tok) || tok.Kind == token.KW_STATIC_ASSERT {
		p.readDecl(&list, false)
	} else {
		if n := p.readExprStmt(); n != nil {
			list = append(list, n)
		} else {
			return nil
		}
	}
	return ast.NewCompoundStmt(tok.Pos, list)
}

// readGotoStmt reads `goto ident ;` or the GNU computed-goto form
// `goto * expr ;`, queuing the former for the end-of-function two-pass
// label resolution (see readExternalDecl in extdecl.go).
func (p *Parser) readGotoStmt(tok token.Token) *ast.Node {
	if p.accept(token.Kind('*')) {
		t := p.peek()
		expr := p.readCastExpr()
		if p.types.At(expr.Type).Kind != ctypes.Ptr {
			p.errorf(t.Pos, "pointer expected for computed goto")
			return ast.Error
		}
		p.expect(token.Kind(';'))
		return ast.NewUnary(tok.Pos, ast.COMPUTED_GOTO, ctypes.InvalidID, expr)
	}
	ident := p.expect(token.TIDENT)
	p.expect(token.Kind(';'))
	n := ast.NewJump(tok.Pos, ident.Name, "")
	p.gotos = append(p.gotos, n)
	return n
}

func (p *Parser) readContinueStmt(tok token.Token) *ast.Node {
	p.expect(token.Kind(';'))
	if !p.scope.IsInLoop() {
		p.errorf(tok.Pos, "continue statement not within a loop")
		return ast.Error
	}
	label := p.scope.ContinueLabel()
	return ast.NewJump(tok.Pos, label, label)
}

func (p *Parser) readBreakStmt(tok token.Token) *ast.Node {
	p.expect(token.Kind(';'))
	if len(p.breakStack) == 0 {
		p.errorf(tok.Pos, "break statement not within loop or switch")
		return ast.Error
	}
	label := p.breakStack[len(p.breakStack)-1]
	return ast.NewJump(tok.Pos, label, label)
}

func (p *Parser) readReturnStmt(tok token.Token) *ast.Node {
	if p.accept(token.Kind(';')) {
		return ast.NewReturn(tok.Pos, nil)
	}
	val := p.readExpr()
	p.expect(token.Kind(';'))
	retType := p.types.At(p.scope.CurrentFunc()).Return
	return ast.NewReturn(tok.Pos, p.assignConvert(val, retType))
}

// isLabelAhead reports whether the upcoming `ident :` is a label
// definition rather than the start of an expression-statement (an
// identifier can legally begin either), peeking two tokens and
// restoring both.
func (p *Parser) isLabelAhead() bool {
	first := p.next()
	second := p.peek()
	p.unget(first)
	return second.Kind == token.Kind(':')
}

// readLabeledStmt reads `ident ':' stmt`, registering the label's
// mangled asm name in the function-wide label namespace.
func (p *Parser) readLabeledStmt() *ast.Node {
	ident := p.next()
	p.expect(token.Kind(':'))
	asmLabel, ok := p.scope.GetLabel(ident.Name)
	if !ok {
		asmLabel = p.labels.Label()
		p.scope.AddLabel(ident.Name, asmLabel)
	}
	stmt := p.readStmt()
	list := []*ast.Node{ast.NewLabel(ident.Pos, ident.Name, asmLabel)}
	if stmt != nil {
		list = append(list, stmt)
	}
	return ast.NewCompoundStmt(ident.Pos, list)
}
