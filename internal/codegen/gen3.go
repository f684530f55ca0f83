package codegen

import (
	"fmt"
	"math"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// emitLiteralLoad loads a LITERAL node's value into %rax/%xmm0. Float
// and string literals are materialized once into a .data label cached
// directly on the node (node.Label), exactly the "if(!label)" guard
// generator.cpp keeps on NumberNode/StringNode; an integer literal
// needs no such label and is loaded as an immediate.
func (g *Generator) emitLiteralLoad(node *ast.Node) {
	ty := g.types.At(node.Type)
	switch {
	case ty.Kind == ctypes.Float:
		if node.Label == "" {
			node.Label = g.newLabel("F")
			g.pendingLiterals = append(g.pendingLiterals, pendingLiteral{label: node.Label, node: node})
		}
		g.e.Instr2("movss", RipMem(node.Label, 0), Reg("xmm0"))
	case ty.Kind == ctypes.Double || ty.Kind == ctypes.LDouble:
		if node.Label == "" {
			node.Label = g.newLabel("D")
			g.pendingLiterals = append(g.pendingLiterals, pendingLiteral{label: node.Label, node: node})
		}
		g.e.Instr2("movsd", RipMem(node.Label, 0), Reg("xmm0"))
	case ty.Kind == ctypes.Array:
		if node.Label == "" {
			node.Label = g.newLabel("S")
			g.pendingLiterals = append(g.pendingLiterals, pendingLiteral{label: node.Label, node: node})
		}
		g.e.Instr2("lea", RipMem(node.Label, 0), Reg("rax"))
	default:
		if ty.Size == 8 {
			g.e.Instr2("movq", ImmU(uint64(node.IntVal)), Reg("rax"))
		} else {
			g.e.Instr2("movl", Imm(node.IntVal), Reg("eax"))
		}
	}
}

// flushPendingLiterals emits the .data blocks for every float/string
// literal referenced since the last flush, called once per function
// body and once more after the last toplevel declaration.
func (g *Generator) flushPendingLiterals() {
	for _, p := range g.pendingLiterals {
		g.e.Directive(".data")
		g.e.Label(p.node.Label)
		ty := g.types.At(p.node.Type)
		switch {
		case ty.Kind == ctypes.Float:
			bits := math.Float32bits(float32(p.node.FloatVal))
			g.e.Directive(".long", fmt.Sprintf("%d", bits))
		case ty.Kind == ctypes.Double || ty.Kind == ctypes.LDouble:
			bits := math.Float64bits(p.node.FloatVal)
			g.e.Directive(".quad", fmt.Sprintf("%d", bits))
		default:
			g.emitAsciz(p.node.StrVal)
		}
	}
	g.pendingLiterals = g.pendingLiterals[:0]
}

// emitAsciz writes str as a GAS .byte dump terminated by an explicit
// NUL, since raw bytes from a string literal may themselves contain
// embedded NULs that .asciz's implicit terminator can't convey.
func (g *Generator) emitAsciz(str []byte) {
	buf := make([]byte, 0, len(str)+1)
	buf = append(buf, str...)
	buf = append(buf, 0)
	vals := make([]string, len(buf))
	for i, b := range buf {
		vals[i] = fmt.Sprintf("%d", b)
	}
	g.e.Directive(".byte", vals...)
}

// genExpr evaluates node into %rax (integers, pointers, aggregates'
// address) or %xmm0 (floats), grounded on each *Node::codegen() method
// in generator.cpp, unified here into one switch over ast.Kind.
func (g *Generator) genExpr(node *ast.Node) {
	switch node.Kind {
	case ast.LITERAL:
		g.emitLiteralLoad(node)
	case ast.LOCAL_VAR:
		g.emitLocalLoad(ctypes.Field{Type: node.Type}, "rbp", node.Offset)
	case ast.GLOBAL_VAR:
		g.emitGlobalLoad(ctypes.Field{Type: node.Type}, node.GlobalLabel, 0)
	case ast.FUNC_DESG:
		g.e.Instr2("lea", RipMem(node.Name, 0), Reg("rax"))
	case ast.STRUCT_MEMBER:
		f := g.fieldOf(node.Struc.Type, node.FieldName)
		g.emitStructMemberLoad(node.Struc, f, 0)
	case ast.LABEL_ADDR:
		g.e.Instr2("lea", RipMem(node.NormalLabel, 0), Reg("rax"))
	case ast.ADDR:
		g.emitAddr(node.Operand)
	case ast.DEREF:
		g.genExpr(node.Operand)
		elem := g.types.At(node.Operand.Type).Elem
		g.emitLocalLoad(ctypes.Field{Type: elem}, "rax", 0)
	case ast.CAST, ast.CONV:
		from := g.types.At(node.Operand.Type)
		g.genExpr(node.Operand)
		g.emitConv(from, g.types.At(node.Type))
	case ast.Op(token.Kind('~')):
		g.genExpr(node.Operand)
		g.e.Instr1("not", Reg(getReg(g.types.At(node.Type), 'a')))
	case ast.Op(token.Kind('!')):
		g.genExpr(node.Operand)
		g.emitToBool(g.types.At(node.Operand.Type))
		g.e.Instr1("sete", Reg("al"))
		g.e.Instr2("movzb", Reg("al"), Reg("eax"))
	case ast.Op(token.Kind('-')):
		if g.types.At(node.Type).IsFloat() {
			g.genExpr(node.Operand)
			g.e.Instr2("pxor", Reg("xmm1"), Reg("xmm1"))
			if g.types.At(node.Type).Kind == ctypes.Float {
				g.e.Instr2("subss", Reg("xmm0"), Reg("xmm1"))
				g.e.Instr2("movss", Reg("xmm1"), Reg("xmm0"))
			} else {
				g.e.Instr2("subsd", Reg("xmm0"), Reg("xmm1"))
				g.e.Instr2("movsd", Reg("xmm1"), Reg("xmm0"))
			}
		} else {
			g.genExpr(node.Operand)
			g.e.Instr1("neg", Reg(getReg(g.types.At(node.Type), 'a')))
		}
	case ast.PRE_INC, ast.PRE_DEC, ast.POST_INC, ast.POST_DEC:
		g.genIncDec(node)
	case ast.COMPUTED_GOTO:
		g.genExpr(node.Operand)
		g.e.Instr1("jmp", "*"+Reg("rax"))
	case ast.TERNARY:
		g.genTernary(node)
	case ast.FUNC_CALL, ast.FUNCPTR_CALL:
		g.emitCall(node)
	default:
		g.genBinop(node)
	}
}

// genBinop handles every kind ast.Op(...) denotes: comparisons, bitwise
// and/or, short-circuit logical and/or, assignment, comma, and
// arithmetic (pointer-scaled, integer, or float), grounded on
// BinaryOperNode::codegen's switch.
func (g *Generator) genBinop(node *ast.Node) {
	switch node.Kind {
	case ast.Op(token.Kind('<')), ast.Op(token.Kind('>')), ast.Op(token.P_LE), ast.Op(token.P_GE),
		ast.Op(token.P_EQ), ast.Op(token.P_NE):
		g.emitBinopCmp(node)
	case ast.Op(token.Kind('&')):
		g.genExpr(node.Left)
		g.push("rax")
		g.genExpr(node.Right)
		g.e.Instr2("movq", Reg("rax"), Reg("rcx"))
		g.pop("rax")
		g.e.Instr2("and", Reg("rcx"), Reg("rax"))
	case ast.Op(token.Kind('|')):
		g.genExpr(node.Left)
		g.push("rax")
		g.genExpr(node.Right)
		g.e.Instr2("movq", Reg("rax"), Reg("rcx"))
		g.pop("rax")
		g.e.Instr2("or", Reg("rcx"), Reg("rax"))
	case ast.Op(token.P_LOGAND):
		end := g.newLabel("and_end")
		g.genExpr(node.Left)
		g.emitToBool(g.types.At(node.Left.Type))
		g.e.Instr2("test", Reg("al"), Reg("al"))
		g.e.Instr1("je", end)
		g.genExpr(node.Right)
		g.emitToBool(g.types.At(node.Right.Type))
		g.e.Label(end)
		g.e.Instr2("movzb", Reg("al"), Reg("eax"))
	case ast.Op(token.P_LOGOR):
		end := g.newLabel("or_end")
		g.genExpr(node.Left)
		g.emitToBool(g.types.At(node.Left.Type))
		g.e.Instr2("test", Reg("al"), Reg("al"))
		g.e.Instr1("jne", end)
		g.genExpr(node.Right)
		g.emitToBool(g.types.At(node.Right.Type))
		g.e.Label(end)
		g.e.Instr2("movzb", Reg("al"), Reg("eax"))
	case ast.Op(token.Kind('=')):
		if g.types.At(node.Type).Kind == ctypes.Struct || g.types.At(node.Type).Kind == ctypes.Union {
			g.emitCopyStruct(node.Right, node.Left)
			return
		}
		g.genExpr(node.Right)
		g.emitConv(g.types.At(node.Right.Type), g.types.At(node.Left.Type))
		g.emitSave(node.Left)
	case ast.Op(token.Kind(',')):
		g.genExpr(node.Left)
		g.genExpr(node.Right)
	default:
		if g.types.At(node.Left.Type).Kind == ctypes.Ptr || g.types.At(node.Right.Type).Kind == ctypes.Ptr {
			g.genPtrArith(node)
		} else if g.types.At(node.Type).IsFloat() {
			g.emitBinopFloatArith(node)
		} else {
			g.emitBinopIntArith(node)
		}
	}
}

// genPtrArith scales the integer side of pointer + int / pointer - int
// by the pointee's size, and divides a pointer - pointer difference by
// it, since the parser leaves both unscaled -- matching
// BinaryOperNode::codegen's default case's explicit "if(size>1) imul".
func (g *Generator) genPtrArith(node *ast.Node) {
	leftPtr := g.types.At(node.Left.Type).Kind == ctypes.Ptr
	rightPtr := g.types.At(node.Right.Type).Kind == ctypes.Ptr

	if leftPtr && rightPtr {
		elemSize := g.types.At(g.types.At(node.Left.Type).Elem).Size
		g.genExpr(node.Left)
		g.push("rax")
		g.genExpr(node.Right)
		g.e.Instr2("movq", Reg("rax"), Reg("rcx"))
		g.pop("rax")
		g.e.Instr2("sub", Reg("rcx"), Reg("rax"))
		if elemSize > 1 {
			g.e.Instr2("movq", Imm(int64(elemSize)), Reg("rcx"))
			g.e.Instr0("cqto")
			g.e.Instr1("idivq", Reg("rcx"))
		}
		return
	}

	ptrSide, intSide := node.Left, node.Right
	if rightPtr {
		ptrSide, intSide = node.Right, node.Left
	}
	elemSize := g.types.At(g.types.At(ptrSide.Type).Elem).Size

	g.genExpr(ptrSide)
	g.push("rax")
	g.genExpr(intSide)
	g.emitIntToInt64(g.types.At(intSide.Type))
	if elemSize > 1 {
		g.e.Instr2("imul", Imm(int64(elemSize)), Reg("rax"))
	}
	g.e.Instr2("movq", Reg("rax"), Reg("rcx"))
	g.pop("rax")
	if node.Kind == ast.Op(token.Kind('-')) && rightPtr {
		ice("invalid pointer subtraction operand order")
	}
	if node.Kind == ast.Op(token.Kind('-')) {
		g.e.Instr2("sub", Reg("rcx"), Reg("rax"))
	} else {
		g.e.Instr2("add", Reg("rcx"), Reg("rax"))
	}
}

// genIncDec implements ++x/x++/--x/x-- by loading, adjusting, storing,
// and for the post- forms keeping the pre-adjustment value in
// %rax/%xmm0 as the expression's result.
func (g *Generator) genIncDec(node *ast.Node) {
	ty := g.types.At(node.Type)
	step := int64(1)
	if ty.Kind == ctypes.Ptr {
		step = int64(g.types.At(ty.Elem).Size)
	}
	dec := node.Kind == ast.PRE_DEC || node.Kind == ast.POST_DEC
	post := node.Kind == ast.POST_INC || node.Kind == ast.POST_DEC

	g.genExpr(node.Operand)
	if post {
		if ty.IsFloat() {
			g.pushXMM(0)
		} else {
			g.push("rax")
		}
	}
	if ty.IsFloat() {
		inst := "addsd"
		if ty.Kind == ctypes.Float {
			inst = "addss"
		}
		g.e.Instr2("mov", ImmU(uint64(step)), Reg("rax"))
		g.e.Instr2("cvtsi2sd", Reg("eax"), Reg("xmm1"))
		if dec {
			g.e.Instr2("subsd", Reg("xmm1"), Reg("xmm0"))
		} else {
			g.e.Instr2(inst, Reg("xmm1"), Reg("xmm0"))
		}
	} else {
		inst := "add"
		if dec {
			inst = "sub"
		}
		g.e.Instr2(inst, Imm(step), Reg(getReg(ty, 'a')))
	}
	g.emitSave(node.Operand)
	if post {
		if ty.IsFloat() {
			g.popXMM(0)
		} else {
			g.pop("rax")
		}
	}
}

// genTernary implements cond ? then : else with a two-branch jump,
// grounded on TernaryOperNode::codegen.
func (g *Generator) genTernary(node *ast.Node) {
	elseLabel := g.newLabel("tern_else")
	end := g.newLabel("tern_end")
	g.genExpr(node.Cond)
	g.emitToBool(g.types.At(node.Cond.Type))
	g.e.Instr2("test", Reg("al"), Reg("al"))
	g.e.Instr1("je", elseLabel)
	g.genExpr(node.Then)
	g.e.Instr1("jmp", end)
	g.e.Label(elseLabel)
	g.genExpr(node.Els)
	g.e.Label(end)
}
