// Package parser is the recursive-descent parser and inline semantic
// analyzer: it turns the preprocessor's token stream directly into a
// typed ast.Node tree, applying conversions, layout, and constant
// folding as it goes rather than as a separate pass, grounded on
// parser.h/parser.cpp.
package parser

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/cpp"
	"github.com/kakitgogogo/mcc/internal/cscope"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/diag"
	"github.com/kakitgogogo/mcc/internal/token"
)

// declaratorKind controls which forms of direct-declarator read_declarator
// accepts: a concrete declarator requires a name, an
// abstract one (a bare type-name) forbids one, and an optional one (a
// struct member or prototype parameter) allows either.
type declaratorKind int

const (
	dkConcrete declaratorKind = iota
	dkAbstract
	dkOptional
)

// Parser ties the preprocessor, type arena, and scope together into one
// translation unit's worth of parsing state.
type Parser struct {
	pp     *cpp.Preprocessor
	bag    *diag.Bag
	types  *ctypes.Arena
	scope  *cscope.Scope
	labels *ast.LabelGen

	toplevel []*ast.Node

	gotos []*ast.Node // pending JUMP nodes inside the function currently being parsed

	funcLocals []*ast.Node // non-static LOCAL_VAR nodes declared in the function currently being parsed

	// breakStack tracks the innermost break-target label regardless of
	// whether it belongs to a loop or a switch, since C11 6.8.6.3's
	// "break terminates execution of the smallest enclosing loop or
	// switch" rule needs a single ordering the scope package's separate
	// loop/switch stacks don't expose on their own.
	breakStack []string
}

// New builds a parser reading macro-expanded tokens from pp.
func New(pp *cpp.Preprocessor, bag *diag.Bag, types *ctypes.Arena, scope *cscope.Scope, labels *ast.LabelGen) *Parser {
	return &Parser{
		pp:     pp,
		bag:    bag,
		types:  types,
		scope:  scope,
		labels: labels,
	}
}

// Parse consumes the whole translation unit and returns its top-level
// declarations and function definitions in source order.
func (p *Parser) Parse() []*ast.Node {
	for p.peek().Kind != token.TEOF {
		if p.peek().Kind == token.KW_STATIC_ASSERT {
			tok := p.next()
			p.readStaticAssert(tok)
			continue
		}
		p.readExternalDecl()
	}
	return p.toplevel
}

// ---- token-stream helpers -------------------------------------------------

func (p *Parser) next() token.Token  { return p.pp.NextToken() }
func (p *Parser) peek() token.Token  { return p.pp.Peek() }
func (p *Parser) unget(t token.Token) { p.pp.UngetToken(t) }

// accept consumes and reports true if the next token has kind k.
func (p *Parser) accept(k token.Kind) bool { return p.pp.NextIf(k) }

// expect consumes a token of kind k, reporting an error at pos if the
// next token doesn't match, but still consuming it so parsing can
// continue past the mistake rather than aborting the whole translation unit.
func (p *Parser) expect(k token.Kind) token.Token {
	tok := p.next()
	if tok.Kind != k {
		p.errorf(tok.Pos, "expected %q, got %q", token.Kind(k).String(), tok.String())
	}
	return tok
}

func (p *Parser) errorf(pos token.Pos, format string, args ...interface{}) {
	p.bag.Errorf(pos, format, args...)
}

func (p *Parser) warnf(pos token.Pos, format string, args ...interface{}) {
	p.bag.Warnf(pos, format, args...)
}

// isTypeKeyword reports whether k begins or continues a
// declaration-specifier (type-specifier, type-qualifier,
// storage-class-specifier, function-specifier, alignment-specifier).
func isTypeKeyword(k token.Kind) bool {
	switch k {
	case token.KW_VOID, token.KW_BOOL, token.KW_CHAR, token.KW_SHORT, token.KW_INT,
		token.KW_LONG, token.KW_FLOAT, token.KW_DOUBLE, token.KW_SIGNED, token.KW_UNSIGNED,
		token.KW_STRUCT, token.KW_UNION, token.KW_ENUM,
		token.KW_CONST, token.KW_RESTRICT, token.KW_VOLATILE, token.KW_ATOMIC,
		token.KW_TYPEDEF, token.KW_TYPEOF, token.KW_EXTERN, token.KW_STATIC,
		token.KW_THREAD_LOCAL, token.KW_AUTO, token.KW_REGISTER,
		token.KW_INLINE, token.KW_NORETURN, token.KW_ALIGNAS:
		return true
	}
	return false
}

// isTypeName reports whether tok can begin a declaration-specifier list:
// either one of the type keywords, or an identifier previously declared
// as a typedef name.
func (p *Parser) isTypeName(tok token.Token) bool {
	if isTypeKeyword(tok.Kind) {
		return true
	}
	if tok.Kind != token.TIDENT {
		return false
	}
	_, ok := p.getTypedef(tok.Name)
	return ok
}

// getTypedef looks name up as a typedef name in the current scope chain.
func (p *Parser) getTypedef(name string) (ctypes.ID, bool) {
	n, ok := p.scope.Get(name)
	if !ok || n.Kind != ast.TYPEDEF {
		return ctypes.InvalidID, false
	}
	return n.Type, true
}

// ---- conversions & binary-operator construction --------------------------

// convert wraps node in an NK_CONV if its type isn't already compatible
// with want (an explicit target), or, with want omitted (InvalidID),
// applies the implicit conversions C11 6.3 always performs on an
// expression's value: integer promotion of a narrow type or a bit-field
// whose width fits in int, and array-to-pointer / function-to-pointer
// decay.
func (p *Parser) convert(node *ast.Node, want ctypes.ID) *ast.Node {
	if node == nil || node == ast.Error {
		return node
	}
	if want != ctypes.InvalidID {
		if ctypes.Compatible(p.types, node.Type, want) {
			return node
		}
		return ast.NewUnary(node.Pos, ast.CONV, want, node)
	}
	t := p.types.At(node.Type)
	switch t.Kind {
	case ctypes.Bool, ctypes.Char, ctypes.Short:
		return ast.NewUnary(node.Pos, ast.CONV, p.types.Int(), node)
	case ctypes.Int:
		if t.BitSize > 0 {
			return ast.NewUnary(node.Pos, ast.CONV, p.types.Int(), node)
		}
	case ctypes.Array:
		return ast.NewUnary(node.Pos, ast.CONV, p.types.NewPtr(t.Elem), node)
	case ctypes.Func:
		return ast.NewUnary(node.Pos, ast.ADDR, p.types.NewPtr(node.Type), node)
	}
	return node
}

func isValidPointerBinop(k token.Kind) bool {
	switch k {
	case token.Kind('-'), token.Kind('<'), token.Kind('>'), token.P_EQ, token.P_NE, token.P_GE, token.P_LE:
		return true
	}
	return false
}

// makeBinop implements C11 6.5's operand-type rules shared by every
// additive/relational/equality operator: pointer-vs-pointer arithmetic,
// pointer-vs-integer arithmetic (left or right), and otherwise the usual
// arithmetic conversions on two arithmetic operands.
func (p *Parser) makeBinop(pos token.Pos, opKind token.Kind, left, right *ast.Node) *ast.Node {
	lt, rt := p.types.At(left.Type), p.types.At(right.Type)
	if lt.Kind == ctypes.Ptr && rt.Kind == ctypes.Ptr {
		if !isValidPointerBinop(opKind) {
			p.errorf(pos, "invalid operands to binary expression")
		}
		if opKind == token.Kind('-') {
			return ast.NewBinary(pos, ast.Op(opKind), p.types.Long(), left, right)
		}
		return ast.NewBinary(pos, ast.Op(opKind), p.types.Int(), left, right)
	}
	if lt.Kind == ctypes.Ptr {
		return ast.NewBinary(pos, ast.Op(opKind), left.Type, left, right)
	}
	if rt.Kind == ctypes.Ptr {
		return ast.NewBinary(pos, ast.Op(opKind), right.Type, left, right)
	}
	ty := ctypes.UsualArithmeticConversions(p.types, left.Type, right.Type)
	return ast.NewBinary(pos, ast.Op(opKind), ty, p.convert(left, ty), p.convert(right, ty))
}

// isAssignable reports whether a value of type src may be assigned (or
// passed/returned/initialized) into a variable of type dst without an
// explicit cast: arithmetic-to-arithmetic, any pointer from/to a void
// pointer, pointers to compatible types, a pointer into _Bool, and
// otherwise structural compatibility. Only types are checked; an integer
// null constant assigned to a pointer is not accepted here.
func (p *Parser) isAssignable(dst, src ctypes.ID) bool {
	dt, st := p.types.At(dst), p.types.At(src)
	if dt.IsArith() && st.IsArith() {
		return true
	}
	if dt.Kind == ctypes.Ptr && st.Kind == ctypes.Ptr {
		if p.types.At(dt.Elem).Kind == ctypes.Void || p.types.At(st.Elem).Kind == ctypes.Void {
			return true
		}
		return ctypes.Compatible(p.types, dt.Elem, st.Elem)
	}
	if dt.Kind == ctypes.Bool && st.Kind == ctypes.Ptr {
		return true
	}
	return ctypes.Compatible(p.types, dst, src)
}

// assignConvert converts node to dst for an assignment/initialization/
// argument/return context, decaying arrays and functions first.
func (p *Parser) assignConvert(node *ast.Node, dst ctypes.ID) *ast.Node {
	node = p.convert(node, ctypes.InvalidID)
	if ctypes.Compatible(p.types, node.Type, dst) {
		return node
	}
	return ast.NewUnary(node.Pos, ast.CONV, dst, node)
}
