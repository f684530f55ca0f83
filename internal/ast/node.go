// Package ast is the tagged-sum typed AST produced by the parser and
// consumed by the code generator, grounded on ast.h/ast.cpp. The
// original's virtual-dispatch node hierarchy (IntNode, BinaryOperNode,
// FuncCallNode, ...) is replaced by one Node struct carrying every
// kind's payload; codegen and constant-folding switch exhaustively on
// Kind instead of calling a virtual method.
package ast

import (
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// Kind tags a Node. Values below structuralBase are reused directly
// from token.Kind for operator nodes (binary/unary arithmetic, compare,
// shift, logical, assignment) exactly as the original keeps NK_START
// just past the last punctuator kind; values at or above structuralBase
// are node shapes with no single-token counterpart.
type Kind int

const structuralBase Kind = 1 << 20

const (
	ERROR Kind = structuralBase + iota
	LITERAL
	LOCAL_VAR
	GLOBAL_VAR
	FUNC_DESG
	TYPEDEF
	FUNC_CALL
	FUNCPTR_CALL
	STRUCT_MEMBER
	TERNARY
	INIT
	DECL
	IF
	JUMP
	LABEL
	COMPOUND_STMT
	RETURN
	FUNC_DEF

	CAST
	CONV
	DEREF
	COMPUTED_GOTO

	PRE_INC
	PRE_DEC
	POST_INC
	POST_DEC
	ADDR
	LABEL_ADDR

	SAL
	SAR
	SHR
)

// Op returns a Kind that reuses a token punctuator/keyword as a binary
// or unary operator tag (e.g. Op('+'), Op(token.P_LOGAND)).
func Op(k token.Kind) Kind { return Kind(k) }

// Node is the single tagged-sum AST node. Only the fields relevant to
// Kind are populated; the rest are zero.
type Node struct {
	Kind Kind
	Type ctypes.ID
	Pos  token.Pos

	// LITERAL
	IntVal   int64
	FloatVal float64
	StrVal   []byte
	Label    string // .data label assigned to a float/string literal at codegen time

	// LOCAL_VAR / GLOBAL_VAR / FUNC_DESG / TYPEDEF / LABEL / JUMP / LABEL_ADDR
	Name        string
	Offset      int    // LOCAL_VAR: frame-relative byte offset
	GlobalLabel string // GLOBAL_VAR / static local: its emitted asm label
	OriginLabel string // LABEL / JUMP: the C label name as written
	NormalLabel string // LABEL / JUMP: the mangled .L-prefixed asm label

	// unary/binary/ternary/if
	Operand         *Node // unary kinds, CAST, CONV, DEREF, ADDR, inc/dec, COMPUTED_GOTO
	Left, Right     *Node // binary kinds
	Cond, Then, Els *Node // TERNARY, IF

	// STRUCT_MEMBER
	Struc     *Node
	FieldName string

	// FUNC_CALL / FUNCPTR_CALL
	FuncName string
	FuncType ctypes.ID
	FuncPtr  *Node
	Args     []*Node

	// INIT / DECL
	Value      *Node // INIT's source expression
	InitOffset int    // INIT's byte offset within the enclosing object
	Var        *Node // DECL's declared variable node
	InitList   []*Node

	// COMPOUND_STMT
	List []*Node

	// RETURN
	ReturnVal *Node

	// FUNC_DEF
	FuncDefName string
	Params      []*Node
	Body        *Node
	LocalVars   []*Node
}

// Error is the sentinel returned in place of a node the parser could not
// build after it has already reported a diagnostic, so that recovery can
// keep typing the rest of the expression tree without a nil check at
// every call site.
var Error = &Node{Kind: ERROR}

func NewInt(pos token.Pos, ty ctypes.ID, v int64) *Node {
	return &Node{Kind: LITERAL, Type: ty, Pos: pos, IntVal: v}
}

func NewFloat(pos token.Pos, ty ctypes.ID, v float64) *Node {
	return &Node{Kind: LITERAL, Type: ty, Pos: pos, FloatVal: v}
}

func NewString(pos token.Pos, ty ctypes.ID, str []byte) *Node {
	return &Node{Kind: LITERAL, Type: ty, Pos: pos, StrVal: str}
}

func NewLocalVar(pos token.Pos, ty ctypes.ID, name string) *Node {
	return &Node{Kind: LOCAL_VAR, Type: ty, Pos: pos, Name: name}
}

func NewGlobalVar(pos token.Pos, ty ctypes.ID, name string) *Node {
	return &Node{Kind: GLOBAL_VAR, Type: ty, Pos: pos, Name: name, GlobalLabel: name}
}

func NewStaticLocalVar(pos token.Pos, ty ctypes.ID, name, label string) *Node {
	return &Node{Kind: GLOBAL_VAR, Type: ty, Pos: pos, Name: name, GlobalLabel: label}
}

func NewFuncDesignator(pos token.Pos, ty ctypes.ID, name string) *Node {
	return &Node{Kind: FUNC_DESG, Type: ty, Pos: pos, Name: name}
}

func NewTypedef(pos token.Pos, ty ctypes.ID, name string) *Node {
	return &Node{Kind: TYPEDEF, Type: ty, Pos: pos, Name: name}
}

func NewUnary(pos token.Pos, kind Kind, ty ctypes.ID, operand *Node) *Node {
	return &Node{Kind: kind, Type: ty, Pos: pos, Operand: operand}
}

func NewBinary(pos token.Pos, kind Kind, ty ctypes.ID, left, right *Node) *Node {
	return &Node{Kind: kind, Type: ty, Pos: pos, Left: left, Right: right}
}

func NewTernary(pos token.Pos, ty ctypes.ID, cond, then, els *Node) *Node {
	return &Node{Kind: TERNARY, Type: ty, Pos: pos, Cond: cond, Then: then, Els: els}
}

func NewFuncCall(pos token.Pos, kind Kind, name string, funcType ctypes.ID, retType ctypes.ID, funcPtr *Node, args []*Node) *Node {
	return &Node{Kind: kind, Type: retType, Pos: pos, FuncName: name, FuncType: funcType, FuncPtr: funcPtr, Args: args}
}

func NewStructMember(pos token.Pos, fieldType ctypes.ID, struc *Node, field string) *Node {
	return &Node{Kind: STRUCT_MEMBER, Type: fieldType, Pos: pos, Struc: struc, FieldName: field}
}

func NewLabelAddr(pos token.Pos, voidPtr ctypes.ID, label string) *Node {
	return &Node{Kind: LABEL_ADDR, Type: voidPtr, Pos: pos, NormalLabel: label}
}

func NewInit(pos token.Pos, ty ctypes.ID, value *Node, offset int) *Node {
	return &Node{Kind: INIT, Type: ty, Pos: pos, Value: value, InitOffset: offset}
}

func NewDecl(pos token.Pos, v *Node) *Node {
	return &Node{Kind: DECL, Pos: pos, Var: v}
}

func NewCompoundStmt(pos token.Pos, list []*Node) *Node {
	return &Node{Kind: COMPOUND_STMT, Pos: pos, List: list}
}

func NewIf(pos token.Pos, cond, then, els *Node) *Node {
	return &Node{Kind: IF, Pos: pos, Cond: cond, Then: then, Els: els}
}

func NewLabel(pos token.Pos, origin, normal string) *Node {
	return &Node{Kind: LABEL, Pos: pos, OriginLabel: origin, NormalLabel: normal}
}

func NewJump(pos token.Pos, origin, normal string) *Node {
	return &Node{Kind: JUMP, Pos: pos, OriginLabel: origin, NormalLabel: normal}
}

func NewReturn(pos token.Pos, val *Node) *Node {
	return &Node{Kind: RETURN, Pos: pos, ReturnVal: val}
}

func NewFuncDef(pos token.Pos, funcType ctypes.ID, name string, params []*Node, body *Node, locals []*Node) *Node {
	return &Node{Kind: FUNC_DEF, Type: funcType, Pos: pos, FuncDefName: name, Params: params, Body: body, LocalVars: locals}
}

// IsLvalue reports whether n denotes an object whose address codegen
// can take (C11 6.3.2.1p1): variables, dereferences, and member/array
// accesses built on top of one.
func (n *Node) IsLvalue() bool {
	switch n.Kind {
	case LOCAL_VAR, GLOBAL_VAR, DEREF, STRUCT_MEMBER:
		return true
	}
	return false
}
