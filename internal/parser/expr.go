package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// readExpr reads a comma-expression: `assignment-expr (, assignment-expr)*`.
// Every operand but the last is evaluated purely for side effects, so
// this only makes sense as a statement-level or for-clause expression.
func (p *Parser) readExpr() *ast.Node {
	n := p.readAssignExpr()
	for p.accept(token.Kind(',')) {
		rhs := p.readAssignExpr()
		n = ast.NewBinary(n.Pos, ast.Op(token.Kind(',')), rhs.Type, n, rhs)
	}
	return n
}

// readAssignExpr reads `conditional-expr` or one of the eleven
// C11 6.5.16 assignment forms, desugaring every compound assignment
// (`+=`, `<<=`, ...) into `lhs = lhs OP rhs` built on a single
// evaluation of lhs -- safe because the parser only ever sees lhs as a
// bare lvalue expression here, never one with a side-effecting index.
func (p *Parser) readAssignExpr() *ast.Node {
	lhs := p.readConditionalExpr()
	tok := p.peek()
	var opKind token.Kind
	switch tok.Kind {
	case token.Kind('='):
		p.next()
		rhs := p.readAssignExpr()
		return p.makeAssign(tok.Pos, lhs, rhs)
	case token.P_ASSIGN_ADD:
		opKind = token.Kind('+')
	case token.P_ASSIGN_SUB:
		opKind = token.Kind('-')
	case token.P_ASSIGN_MUL:
		opKind = token.Kind('*')
	case token.P_ASSIGN_DIV:
		opKind = token.Kind('/')
	case token.P_ASSIGN_MOD:
		opKind = token.Kind('%')
	case token.P_ASSIGN_AND:
		opKind = token.Kind('&')
	case token.P_ASSIGN_OR:
		opKind = token.Kind('|')
	case token.P_ASSIGN_XOR:
		opKind = token.Kind('^')
	case token.P_ASSIGN_SAL:
		opKind = token.P_SAL
	case token.P_ASSIGN_SAR:
		opKind = token.P_SAR
	default:
		return lhs
	}
	p.next()
	rhs := p.readAssignExpr()
	var combined *ast.Node
	if opKind == token.P_SAL || opKind == token.P_SAR {
		combined = p.makeShift(tok.Pos, opKind, lhs, rhs)
	} else if opKind == token.Kind('+') || opKind == token.Kind('-') {
		combined = p.makeBinop(tok.Pos, opKind, lhs, rhs)
	} else {
		combined = p.makeArithBinop(tok.Pos, opKind, lhs, rhs)
	}
	return p.makeAssign(tok.Pos, lhs, combined)
}

// makeAssign builds an assignment node, checking C11 6.5.16.1's
// assignment-compatibility rule and converting rhs to lhs's type.
func (p *Parser) makeAssign(pos token.Pos, lhs, rhs *ast.Node) *ast.Node {
	if !lhs.IsLvalue() {
		p.errorf(pos, "expression is not assignable")
	}
	if !p.isAssignable(lhs.Type, rhs.Type) {
		p.errorf(pos, "incompatible types in assignment")
	}
	rhs = p.assignConvert(rhs, lhs.Type)
	return ast.NewBinary(pos, ast.Op(token.Kind('=')), lhs.Type, lhs, rhs)
}

// makeArithBinop applies the usual arithmetic conversions for the
// operators that never accept a pointer operand (*, /, %, &, |, ^).
func (p *Parser) makeArithBinop(pos token.Pos, opKind token.Kind, left, right *ast.Node) *ast.Node {
	lt, rt := p.types.At(left.Type), p.types.At(right.Type)
	switch opKind {
	case token.Kind('&'), token.Kind('|'), token.Kind('^'), token.Kind('%'):
		if !lt.IsInt() || !rt.IsInt() {
			p.errorf(pos, "invalid operands to binary expression (expected integer types)")
		}
	default:
		if !lt.IsArith() || !rt.IsArith() {
			p.errorf(pos, "invalid operands to binary expression")
		}
	}
	ty := ctypes.UsualArithmeticConversions(p.types, left.Type, right.Type)
	return ast.NewBinary(pos, ast.Op(opKind), ty, p.convert(left, ty), p.convert(right, ty))
}

// makeShift implements C11 6.5.7: the result type is the (promoted)
// left operand's type alone, and a right shift of a signed type is an
// arithmetic shift (SAR) while an unsigned type's is logical (SHR).
func (p *Parser) makeShift(pos token.Pos, opKind token.Kind, left, right *ast.Node) *ast.Node {
	left = p.convert(left, ctypes.InvalidID)
	right = p.convert(right, ctypes.InvalidID)
	if opKind == token.P_SAL {
		return ast.NewBinary(pos, ast.SAL, left.Type, left, right)
	}
	if p.types.At(left.Type).Unsigned {
		return ast.NewBinary(pos, ast.SHR, left.Type, left, right)
	}
	return ast.NewBinary(pos, ast.SAR, left.Type, left, right)
}

// readConditionalExpr reads `logical-or-expr ('?' expr ':' conditional-expr)?`.
func (p *Parser) readConditionalExpr() *ast.Node {
	cond := p.readLogOrExpr()
	tok := p.peek()
	if !p.accept(token.Kind('?')) {
		return cond
	}
	then := p.readExpr()
	p.expect(token.Kind(':'))
	els := p.readConditionalExpr()
	ty := ctypes.UsualArithmeticConversions(p.types, then.Type, els.Type)
	if p.types.At(then.Type).Kind == ctypes.Ptr || p.types.At(els.Type).Kind == ctypes.Ptr {
		ty = then.Type
		if p.types.At(then.Type).Kind != ctypes.Ptr {
			ty = els.Type
		}
	}
	return ast.NewTernary(tok.Pos, ty, p.convert(cond, ctypes.InvalidID), p.assignConvert(then, ty), p.assignConvert(els, ty))
}

func (p *Parser) readLogOrExpr() *ast.Node  { return p.readLeftAssoc(token.P_LOGOR, p.readLogAndExpr) }
func (p *Parser) readLogAndExpr() *ast.Node { return p.readLeftAssoc(token.P_LOGAND, p.readBitOrExpr) }
func (p *Parser) readBitOrExpr() *ast.Node  { return p.readLeftAssoc(token.Kind('|'), p.readBitXorExpr) }
func (p *Parser) readBitXorExpr() *ast.Node { return p.readLeftAssoc(token.Kind('^'), p.readBitAndExpr) }
func (p *Parser) readBitAndExpr() *ast.Node { return p.readLeftAssoc(token.Kind('&'), p.readEqualityExpr) }

// readLeftAssoc reads a single left-associative binary-operator level
// recognizing exactly one token kind, used for the levels whose result
// type is always `int` (logical) or the operand type unchanged (bitwise).
func (p *Parser) readLeftAssoc(k token.Kind, next func() *ast.Node) *ast.Node {
	n := next()
	for p.peek().Kind == k {
		tok := p.next()
		rhs := next()
		if k == token.P_LOGAND || k == token.P_LOGOR {
			n = ast.NewBinary(tok.Pos, ast.Op(k), p.types.Int(), p.convert(n, ctypes.InvalidID), p.convert(rhs, ctypes.InvalidID))
		} else {
			n = p.makeArithBinop(tok.Pos, k, n, rhs)
		}
	}
	return n
}

func (p *Parser) readEqualityExpr() *ast.Node {
	n := p.readRelationalExpr()
	for {
		tok := p.peek()
		if tok.Kind != token.P_EQ && tok.Kind != token.P_NE {
			return n
		}
		p.next()
		rhs := p.readRelationalExpr()
		n = p.makeBinop(tok.Pos, tok.Kind, n, rhs)
		n.Type = p.types.Int()
	}
}

func (p *Parser) readRelationalExpr() *ast.Node {
	n := p.readShiftExpr()
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.Kind('<'), token.Kind('>'), token.P_LE, token.P_GE:
			p.next()
			rhs := p.readShiftExpr()
			n = p.makeBinop(tok.Pos, tok.Kind, n, rhs)
			n.Type = p.types.Int()
		default:
			return n
		}
	}
}

func (p *Parser) readShiftExpr() *ast.Node {
	n := p.readAdditiveExpr()
	for {
		tok := p.peek()
		if tok.Kind != token.P_SAL && tok.Kind != token.P_SAR {
			return n
		}
		p.next()
		rhs := p.readAdditiveExpr()
		n = p.makeShift(tok.Pos, tok.Kind, n, rhs)
	}
}

func (p *Parser) readAdditiveExpr() *ast.Node {
	n := p.readMultiplicativeExpr()
	for {
		tok := p.peek()
		if tok.Kind != token.Kind('+') && tok.Kind != token.Kind('-') {
			return n
		}
		p.next()
		rhs := p.readMultiplicativeExpr()
		n = p.makeBinop(tok.Pos, tok.Kind, n, rhs)
	}
}

func (p *Parser) readMultiplicativeExpr() *ast.Node {
	n := p.readCastExpr()
	for {
		tok := p.peek()
		if tok.Kind != token.Kind('*') && tok.Kind != token.Kind('/') && tok.Kind != token.Kind('%') {
			return n
		}
		p.next()
		rhs := p.readCastExpr()
		n = p.makeArithBinop(tok.Pos, tok.Kind, n, rhs)
	}
}

// readCastExpr reads `( type-name ) cast-expr`, a compound literal
// `( type-name ) { initializer-list }`, or falls through to unary-expr.
func (p *Parser) readCastExpr() *ast.Node {
	if p.peek().Kind == token.Kind('(') {
		save := p.next()
		if p.isTypeName(p.peek()) {
			ty := p.readTypeName()
			p.expect(token.Kind(')'))
			if p.peek().Kind == token.Kind('{') {
				return p.readCompoundLiteral(save.Pos, ty)
			}
			operand := p.readCastExpr()
			return ast.NewUnary(save.Pos, ast.CAST, ty, operand)
		}
		p.unget(save)
	}
	return p.readUnaryExpr()
}

// readCompoundLiteral builds a DECL for an anonymous object of type ty
// initialized by the braced initializer list that follows, and returns a
// reference to it (C11 6.5.2.5). Every compound literal is given static
// storage duration, whether it's written at file scope or inside a
// function body -- a simplification documented in DESIGN.md, since this
// compiler otherwise has no way to re-run a block-scope initializer on
// each entry.
func (p *Parser) readCompoundLiteral(pos token.Pos, ty ctypes.ID) *ast.Node {
	label := p.labels.Static("cl")
	v := ast.NewStaticLocalVar(pos, ty, label, label)
	init := p.readInitializer(v, ty)
	decl := ast.NewDecl(pos, v)
	decl.InitList = init
	p.toplevel = append(p.toplevel, decl)
	return v
}

// readUnaryExpr reads the C11 6.5.3 unary-expression forms: prefix
// increment/decrement, the unary operators, sizeof, _Alignof, and
// otherwise a postfix-expression.
func (p *Parser) readUnaryExpr() *ast.Node {
	tok := p.next()
	switch tok.Kind {
	case token.P_INC:
		operand := p.readUnaryExpr()
		return ast.NewUnary(tok.Pos, ast.PRE_INC, operand.Type, operand)
	case token.P_DEC:
		operand := p.readUnaryExpr()
		return ast.NewUnary(tok.Pos, ast.PRE_DEC, operand.Type, operand)
	case token.Kind('&'):
		operand := p.readCastExpr()
		if !operand.IsLvalue() && operand.Kind != ast.FUNC_DESG {
			p.errorf(tok.Pos, "cannot take the address of a non-lvalue")
		}
		return ast.NewUnary(tok.Pos, ast.ADDR, p.types.NewPtr(operand.Type), operand)
	case token.Kind('*'):
		operand := p.convert(p.readCastExpr(), ctypes.InvalidID)
		ot := p.types.At(operand.Type)
		if ot.Kind != ctypes.Ptr {
			p.errorf(tok.Pos, "indirection requires pointer operand")
			return ast.Error
		}
		return ast.NewUnary(tok.Pos, ast.DEREF, ot.Elem, operand)
	case token.Kind('+'):
		return p.convert(p.readCastExpr(), ctypes.InvalidID)
	case token.Kind('-'):
		operand := p.convert(p.readCastExpr(), ctypes.InvalidID)
		zero := ast.NewInt(tok.Pos, operand.Type, 0)
		return p.makeBinop(tok.Pos, token.Kind('-'), zero, operand)
	case token.Kind('~'):
		operand := p.convert(p.readCastExpr(), ctypes.InvalidID)
		return ast.NewUnary(tok.Pos, ast.Op(token.Kind('~')), operand.Type, operand)
	case token.Kind('!'):
		operand := p.convert(p.readCastExpr(), ctypes.InvalidID)
		return ast.NewUnary(tok.Pos, ast.Op(token.Kind('!')), p.types.Int(), operand)
	case token.KW_SIZEOF:
		return p.readSizeof(tok)
	case token.KW_ALIGNOF:
		p.expect(token.Kind('('))
		ty := p.readTypeName()
		p.expect(token.Kind(')'))
		return ast.NewInt(tok.Pos, p.types.ULong(), int64(p.types.At(ty).Align))
	}
	p.unget(tok)
	return p.readPostfixExpr()
}

// readSizeof implements both `sizeof unary-expr` (the operand's static
// type is used without evaluating it) and `sizeof ( type-name )`.
func (p *Parser) readSizeof(tok token.Token) *ast.Node {
	if p.peek().Kind == token.Kind('(') {
		save := p.next()
		if p.isTypeName(p.peek()) {
			ty := p.readTypeName()
			p.expect(token.Kind(')'))
			return ast.NewInt(tok.Pos, p.types.ULong(), int64(p.types.At(ty).Size))
		}
		p.unget(save)
	}
	operand := p.readUnaryExpr()
	return ast.NewInt(tok.Pos, p.types.ULong(), int64(p.types.At(operand.Type).Size))
}

// readPostfixExpr reads a primary-expression followed by any run of
// postfix operators: array subscript, call, member access (`.`/`->`),
// and post-increment/decrement.
func (p *Parser) readPostfixExpr() *ast.Node {
	n := p.readPrimaryExpr()
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.Kind('['):
			p.next()
			idx := p.readExpr()
			p.expect(token.Kind(']'))
			n = p.makeSubscript(tok.Pos, n, idx)
		case token.Kind('('):
			p.next()
			n = p.readCallArgs(tok.Pos, n)
		case token.Kind('.'):
			p.next()
			field := p.expect(token.TIDENT)
			n = p.makeMember(tok.Pos, n, field)
		case token.P_ARROW:
			p.next()
			field := p.expect(token.TIDENT)
			deref := ast.NewUnary(tok.Pos, ast.DEREF, p.types.At(n.Type).Elem, p.convert(n, ctypes.InvalidID))
			n = p.makeMember(tok.Pos, deref, field)
		case token.P_INC:
			p.next()
			n = ast.NewUnary(tok.Pos, ast.POST_INC, n.Type, n)
		case token.P_DEC:
			p.next()
			n = ast.NewUnary(tok.Pos, ast.POST_DEC, n.Type, n)
		default:
			return n
		}
	}
}

// makeSubscript implements `a[i]` as `*(a + i)`, per C11 6.5.2.1p2.
func (p *Parser) makeSubscript(pos token.Pos, arr, idx *ast.Node) *ast.Node {
	arr = p.convert(arr, ctypes.InvalidID)
	idx = p.convert(idx, ctypes.InvalidID)
	sum := p.makeBinop(pos, token.Kind('+'), arr, idx)
	et := p.types.At(sum.Type)
	if et.Kind != ctypes.Ptr {
		p.errorf(pos, "subscripted value is not an array or pointer")
		return ast.Error
	}
	return ast.NewUnary(pos, ast.DEREF, et.Elem, sum)
}

// findField looks name up in struc's flattened field list.
func findField(a *ctypes.Arena, structID ctypes.ID, name string) (ctypes.Field, bool) {
	t := a.At(structID)
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ctypes.Field{}, false
}

func (p *Parser) makeMember(pos token.Pos, struc *ast.Node, field token.Token) *ast.Node {
	st := p.types.At(struc.Type)
	if st.Kind != ctypes.Struct && st.Kind != ctypes.Union {
		p.errorf(pos, "request for member %q in something not a structure or union", field.Name)
		return ast.Error
	}
	f, ok := findField(p.types, struc.Type, field.Name)
	if !ok {
		p.errorf(pos, "no member named %q", field.Name)
		return ast.Error
	}
	return ast.NewStructMember(pos, f.Type, struc, field.Name)
}

// readCallArgs reads the argument-expression-list of a call already
// past its opening '(', builds the conversions C11 6.5.2.2 requires
// (default argument promotion past the last prototyped parameter, or
// every argument when calling through a non-prototyped K&R pointer),
// and dispatches to a FUNC_CALL or FUNCPTR_CALL node depending on
// whether callee names a known function directly.
func (p *Parser) readCallArgs(pos token.Pos, callee *ast.Node) *ast.Node {
	var args []*ast.Node
	if !p.accept(token.Kind(')')) {
		for {
			args = append(args, p.readAssignExpr())
			if p.accept(token.Kind(')')) {
				break
			}
			p.expect(token.Kind(','))
		}
	}

	var funcType ctypes.ID
	switch {
	case callee.Kind == ast.FUNC_DESG:
		n, _ := p.scope.Get(callee.Name)
		if n != nil {
			funcType = n.Type
		}
	case p.types.At(callee.Type).Kind == ctypes.Func:
		funcType = callee.Type
	case p.types.At(callee.Type).Kind == ctypes.Ptr && p.types.At(p.types.At(callee.Type).Elem).Kind == ctypes.Func:
		funcType = p.types.At(callee.Type).Elem
	default:
		p.errorf(pos, "called object is not a function or function pointer")
		return ast.Error
	}
	ft := p.types.At(funcType)
	for i, a := range args {
		if i < len(ft.Params) {
			args[i] = p.assignConvert(a, ft.Params[i])
		} else {
			args[i] = p.convert(a, ctypes.InvalidID)
		}
	}
	if callee.Kind == ast.FUNC_DESG || p.types.At(callee.Type).Kind == ctypes.Func {
		return ast.NewFuncCall(pos, ast.FUNC_CALL, callee.Name, funcType, ft.Return, nil, args)
	}
	return ast.NewFuncCall(pos, ast.FUNCPTR_CALL, "", funcType, ft.Return, p.convert(callee, ctypes.InvalidID), args)
}

// readPrimaryExpr reads an identifier, a constant, a string literal, a
// parenthesized expression, or a _Generic selection.
func (p *Parser) readPrimaryExpr() *ast.Node {
	tok := p.next()
	switch tok.Kind {
	case token.Kind('('):
		n := p.readExpr()
		p.expect(token.Kind(')'))
		return n
	case token.TIDENT:
		return p.readIdent(tok)
	case token.TNUMBER:
		return p.parseNumber(tok)
	case token.TCHAR:
		return ast.NewInt(tok.Pos, p.charLiteralType(tok.Encoding), int64(tok.Rune))
	case token.TSTRING:
		return p.readStringLiteral(tok)
	case token.KW_GENERIC:
		return p.readGeneric(tok)
	}
	p.errorf(tok.Pos, "unexpected token %q in expression", tok.String())
	return ast.Error
}

// readIdent resolves an identifier as a local/global variable, an enum
// constant (folded directly to a LITERAL by readEnumSpec), or an
// implicitly-declared function (with a warning, as K&R and GNU C allow).
func (p *Parser) readIdent(tok token.Token) *ast.Node {
	if n, ok := p.scope.Get(tok.Name); ok {
		return n
	}
	if p.peek().Kind == token.Kind('(') {
		p.warnf(tok.Pos, "implicit declaration of function %q", tok.Name)
		fnType := p.types.NewFunc(p.types.Int(), nil, true, true)
		p.scope.AddGlobal(tok.Name, ast.NewGlobalVar(tok.Pos, fnType, tok.Name))
		return ast.NewFuncDesignator(tok.Pos, fnType, tok.Name)
	}
	p.errorf(tok.Pos, "use of undeclared identifier %q", tok.Name)
	return ast.Error
}

// readStringLiteral concatenates adjacent string-literal tokens (C11
// 6.4.5p5), re-encoding the lexer's UTF-8 decoded bytes to UTF-16LE or
// UTF-32LE when an L/u/U prefix was present (the lexer only classifies
// the prefix into tok.Encoding and leaves re-encoding to the AST
// builder), then installs the result as a static .data object, returning
// an array lvalue of the encoding's element type the way any other
// global array would be.
func (p *Parser) readStringLiteral(first token.Token) *ast.Node {
	enc := first.Encoding
	raw := append([]byte(nil), first.Str...)
	for p.peek().Kind == token.TSTRING {
		tok := p.next()
		raw = append(raw, tok.Str...)
		// C11 6.4.5p5 leaves mixed-prefix concatenation undefined; the
		// first non-default prefix in the sequence wins.
		if enc == token.EncNone && tok.Encoding != token.EncNone {
			enc = tok.Encoding
		}
	}

	runes := decodeUTF8Runes(raw)
	elemType, buf := encodeStringLiteral(p.types, enc, runes)

	ty := p.types.NewArray(elemType, len(buf)/p.types.At(elemType).Size)
	label := p.labels.Static("str")
	n := ast.NewStaticLocalVar(first.Pos, ty, label, label)
	n.StrVal = buf
	return n
}

// charLiteralType maps a character-literal's encoding prefix to its
// C11 type: a plain or wide ('L') literal is int-typed (6.4.4.4p10 for
// the former, the target wchar_t being a plain 32-bit int for the
// latter); u/U select the fixed-width char16_t/char32_t integer types.
func (p *Parser) charLiteralType(enc token.Encoding) ctypes.ID {
	switch enc {
	case token.EncChar16:
		return p.types.UShort()
	case token.EncChar32:
		return p.types.UInt()
	default:
		return p.types.Int()
	}
}

// decodeUTF8Runes decodes raw (the lexer's UTF-8 spelling of a string
// literal's contents) into its code points, one rune per iteration via
// utf8.DecodeRune, invalid bytes substituted with the replacement rune.
func decodeUTF8Runes(raw []byte) []rune {
	runes := make([]rune, 0, len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		runes = append(runes, r)
		raw = raw[size:]
	}
	return runes
}

// encodeStringLiteral re-encodes runes per enc, returning the element
// type of the resulting array and its byte contents including a
// terminator sized to one element (a single zero byte for char, two
// for char16_t, four for char32_t/wchar_t).
func encodeStringLiteral(types *ctypes.Arena, enc token.Encoding, runes []rune) (ctypes.ID, []byte) {
	switch enc {
	case token.EncChar16:
		return types.UShort(), encodeUTF16LE(runes)
	case token.EncChar32:
		return types.UInt(), encodeUTF32LE(runes)
	case token.EncWChar:
		return types.Int(), encodeUTF32LE(runes)
	default:
		buf := make([]byte, 0, len(runes)+1)
		for _, r := range runes {
			buf = utf8.AppendRune(buf, r)
		}
		return types.Char(), append(buf, 0)
	}
}

// encodeUTF16LE re-encodes runes (splitting any code point above
// U+FFFF into a UTF-16 surrogate pair) into little-endian 16-bit code
// units, NUL-terminated with one all-zero unit.
func encodeUTF16LE(runes []rune) []byte {
	buf := make([]byte, 0, (len(runes)+1)*2)
	for _, r := range runes {
		if r > 0xFFFF {
			r -= 0x10000
			hi := uint16(0xD800 + (r >> 10))
			lo := uint16(0xDC00 + (r & 0x3FF))
			buf = append(buf, byte(hi), byte(hi>>8), byte(lo), byte(lo>>8))
			continue
		}
		u := uint16(r)
		buf = append(buf, byte(u), byte(u>>8))
	}
	return append(buf, 0, 0)
}

// encodeUTF32LE re-encodes runes into little-endian 32-bit code points,
// NUL-terminated with one all-zero unit.
func encodeUTF32LE(runes []rune) []byte {
	buf := make([]byte, 0, (len(runes)+1)*4)
	for _, r := range runes {
		u := uint32(r)
		buf = append(buf, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
	}
	return append(buf, 0, 0, 0, 0)
}

// parseNumber classifies a raw TNUMBER's spelling into an integer or
// floating constant and its precise type, per C11 6.4.4.1/6.4.4.2's
// suffix rules; the lexer leaves classification to the parser.
func (p *Parser) parseNumber(tok token.Token) *ast.Node {
	text := tok.Name
	if strings.ContainsAny(text, ".") || (hasExponent(text) && !strings.HasPrefix(text, "0x")) {
		return p.parseFloatConstant(tok)
	}
	base := text
	unsigned := false
	longCount := 0
	for len(base) > 0 {
		c := base[len(base)-1]
		switch c {
		case 'u', 'U':
			unsigned = true
		case 'l', 'L':
			longCount++
		default:
			goto doneSuffix
		}
		base = base[:len(base)-1]
	}
doneSuffix:
	if isFloatSuffix(base) && !strings.HasPrefix(strings.ToLower(base), "0x") {
		return p.parseFloatConstant(tok)
	}
	v, err := strconv.ParseUint(normalizeIntBase(base), 0, 64)
	if err != nil {
		p.errorf(tok.Pos, "invalid integer constant %q", text)
		return ast.NewInt(tok.Pos, p.types.Int(), 0)
	}
	ty := p.intConstantType(v, unsigned, longCount)
	return ast.NewInt(tok.Pos, ty, int64(v))
}

func hasExponent(s string) bool {
	return strings.ContainsAny(s, "eEpP")
}

func isFloatSuffix(base string) bool {
	return strings.HasSuffix(base, "f") || strings.HasSuffix(base, "F")
}

// normalizeIntBase returns base unchanged, leaving Go's ParseUint to
// interpret 0x/0 prefixes.
func normalizeIntBase(base string) string {
	return base
}

// intConstantType implements C11 6.4.4.1p5's table: the smallest type
// in the requested (unsigned-ness, minimum rank) family that can
// represent v, escalating rank until one fits.
func (p *Parser) intConstantType(v uint64, unsigned bool, longCount int) ctypes.ID {
	fitsInt := v <= 0x7fffffff
	fitsUInt := v <= 0xffffffff
	switch {
	case longCount == 0 && !unsigned && fitsInt:
		return p.types.Int()
	case longCount == 0 && fitsUInt:
		if unsigned {
			return p.types.UInt()
		}
		return p.types.Long()
	case longCount <= 1 && !unsigned:
		return p.types.Long()
	default:
		return p.types.ULong()
	}
}

func (p *Parser) parseFloatConstant(tok token.Token) *ast.Node {
	text := tok.Name
	ty := p.types.Double()
	clean := text
	if strings.HasSuffix(clean, "f") || strings.HasSuffix(clean, "F") {
		ty = p.types.Float()
		clean = clean[:len(clean)-1]
	} else if strings.HasSuffix(clean, "l") || strings.HasSuffix(clean, "L") {
		ty = p.types.LDouble()
		clean = clean[:len(clean)-1]
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		p.errorf(tok.Pos, "invalid floating constant %q", text)
		v = 0
	}
	return ast.NewFloat(tok.Pos, ty, v)
}

// readGeneric implements `_Generic(expr, type : expr, ..., default : expr)`
// (C11 6.5.1.1): the controlling expression's type is matched against
// each association's type-name and only the matching branch is parsed
// into the result (the others are still consumed as ordinary
// assignment-expressions so diagnostics elsewhere still see balanced
// tokens, but their value is discarded).
func (p *Parser) readGeneric(tok token.Token) *ast.Node {
	p.expect(token.Kind('('))
	ctrl := p.readAssignExpr()
	p.expect(token.Kind(','))
	var result *ast.Node
	var defaultResult *ast.Node
	for {
		if p.accept(token.KW_DEFAULT) {
			p.expect(token.Kind(':'))
			n := p.readAssignExpr()
			defaultResult = n
		} else {
			ty := p.readTypeName()
			p.expect(token.Kind(':'))
			n := p.readAssignExpr()
			if ctypes.Compatible(p.types, ctrl.Type, ty) && result == nil {
				result = n
			}
		}
		if p.accept(token.Kind(',')) {
			continue
		}
		break
	}
	p.expect(token.Kind(')'))
	if result != nil {
		return result
	}
	if defaultResult != nil {
		return defaultResult
	}
	p.errorf(tok.Pos, "_Generic selection has no matching association")
	return ast.Error
}

// ---- constant expression evaluation (array sizes, bitfields, enum
// values, _Static_assert, case labels) --------------------------------

// readConstExpr reads a conditional-expression and folds it to a
// literal in place: this is a different evaluator from internal/cpp's
// (which works over raw tokens for #if/#elif), since here the operand
// is already a typed, parsed ast.Node tree that may reference enum
// constants, sizeof results, and casts.
func (p *Parser) readConstExpr() *ast.Node {
	n := p.readConditionalExpr()
	return p.foldConst(n)
}

// foldConst recursively evaluates n into an NK_LITERAL, erroring (and
// returning a zero literal) if it encounters something that is not a
// constant expression per C11 6.6.
func (p *Parser) foldConst(n *ast.Node) *ast.Node {
	if n == nil || n == ast.Error {
		return ast.NewInt(token.Pos{}, p.types.Int(), 0)
	}
	switch n.Kind {
	case ast.LITERAL:
		return n
	case ast.CONV, ast.CAST:
		operand := p.foldConst(n.Operand)
		return convertConstLiteral(p, operand, n.Type)
	case ast.TERNARY:
		cond := p.foldConst(n.Cond)
		if cond.IntVal != 0 {
			return p.foldConst(n.Then)
		}
		return p.foldConst(n.Els)
	}
	if n.Kind == ast.Op(token.Kind('!')) {
		v := p.foldConst(n.Operand)
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(intLiteralValue(v) == 0))
	}
	if n.Kind == ast.Op(token.Kind('~')) {
		v := p.foldConst(n.Operand)
		return ast.NewInt(n.Pos, n.Type, ^intLiteralValue(v))
	}
	if n.Left != nil && n.Right != nil {
		l := p.foldConst(n.Left)
		r := p.foldConst(n.Right)
		return foldBinaryLiteral(p, n, l, r)
	}
	p.errorf(n.Pos, "expression is not a compile-time constant")
	return ast.NewInt(n.Pos, p.types.Int(), 0)
}

func intLiteralValue(n *ast.Node) int64 {
	if n.FloatVal != 0 && n.IntVal == 0 {
		return int64(n.FloatVal)
	}
	return n.IntVal
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func convertConstLiteral(p *Parser, n *ast.Node, want ctypes.ID) *ast.Node {
	wt := p.types.At(want)
	if wt.IsFloat() {
		if n.Type != want {
			return ast.NewFloat(n.Pos, want, float64(intLiteralValue(n)))
		}
		return n
	}
	v := intLiteralValue(n)
	if wt.Size > 0 && wt.Size < 8 {
		mask := int64(1)<<(uint(wt.Size)*8) - 1
		v &= mask
		if !wt.Unsigned && v > mask>>1 {
			v -= mask + 1
		}
	}
	return ast.NewInt(n.Pos, want, v)
}

func foldBinaryLiteral(p *Parser, n, l, r *ast.Node) *ast.Node {
	lv, rv := intLiteralValue(l), intLiteralValue(r)
	switch n.Kind {
	case ast.Op(token.Kind('+')):
		return ast.NewInt(n.Pos, n.Type, lv+rv)
	case ast.Op(token.Kind('-')):
		return ast.NewInt(n.Pos, n.Type, lv-rv)
	case ast.Op(token.Kind('*')):
		return ast.NewInt(n.Pos, n.Type, lv*rv)
	case ast.Op(token.Kind('/')):
		if rv == 0 {
			p.errorf(n.Pos, "division by zero in constant expression")
			return ast.NewInt(n.Pos, n.Type, 0)
		}
		return ast.NewInt(n.Pos, n.Type, lv/rv)
	case ast.Op(token.Kind('%')):
		if rv == 0 {
			p.errorf(n.Pos, "division by zero in constant expression")
			return ast.NewInt(n.Pos, n.Type, 0)
		}
		return ast.NewInt(n.Pos, n.Type, lv%rv)
	case ast.Op(token.Kind('&')):
		return ast.NewInt(n.Pos, n.Type, lv&rv)
	case ast.Op(token.Kind('|')):
		return ast.NewInt(n.Pos, n.Type, lv|rv)
	case ast.Op(token.Kind('^')):
		return ast.NewInt(n.Pos, n.Type, lv^rv)
	case ast.SAL:
		return ast.NewInt(n.Pos, n.Type, lv<<uint(rv))
	case ast.SAR, ast.SHR:
		return ast.NewInt(n.Pos, n.Type, lv>>uint(rv))
	case ast.Op(token.P_LOGAND):
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(lv != 0 && rv != 0))
	case ast.Op(token.P_LOGOR):
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(lv != 0 || rv != 0))
	case ast.Op(token.Kind('<')):
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(lv < rv))
	case ast.Op(token.Kind('>')):
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(lv > rv))
	case ast.Op(token.P_LE):
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(lv <= rv))
	case ast.Op(token.P_GE):
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(lv >= rv))
	case ast.Op(token.P_EQ):
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(lv == rv))
	case ast.Op(token.P_NE):
		return ast.NewInt(n.Pos, p.types.Int(), boolToInt64(lv != rv))
	}
	p.errorf(n.Pos, "expression is not a compile-time constant")
	return ast.NewInt(n.Pos, p.types.Int(), 0)
}

// readStaticAssert implements `_Static_assert ( const-expr , string )`.
func (p *Parser) readStaticAssert(tok token.Token) {
	p.expect(token.Kind('('))
	cond := p.readConstExpr()
	var msg string
	if p.accept(token.Kind(',')) {
		strTok := p.expect(token.TSTRING)
		msg = string(strTok.Str)
	}
	p.expect(token.Kind(')'))
	p.expect(token.Kind(';'))
	if cond.IntVal == 0 {
		if msg != "" {
			p.errorf(tok.Pos, "static assertion failed: %s", msg)
		} else {
			p.errorf(tok.Pos, "static assertion failed")
		}
	}
}
