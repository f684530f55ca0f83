package codegen

import (
	"math"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// emitLiteralSave stores a LITERAL node's value directly to offset(%rbp)
// without routing it through %rax/%xmm0 first, used by emitDeclInit for
// the overwhelmingly common case of a constant scalar initializer.
func (g *Generator) emitLiteralSave(node *ast.Node, toType ctypes.ID, offset int) {
	ty := g.types.At(toType)
	switch ty.Kind {
	case ctypes.Bool:
		v := int64(0)
		if node.IntVal != 0 {
			v = 1
		}
		g.e.Instr2("movb", Imm(v), Mem(offset, "rbp"))
	case ctypes.Char:
		g.e.Instr2("movb", Imm(node.IntVal), Mem(offset, "rbp"))
	case ctypes.Short:
		g.e.Instr2("movw", Imm(node.IntVal), Mem(offset, "rbp"))
	case ctypes.Int, ctypes.Enum:
		g.e.Instr2("movl", Imm(node.IntVal), Mem(offset, "rbp"))
	case ctypes.Long, ctypes.LLong, ctypes.Ptr:
		g.e.Instr2("movq", ImmU(uint64(node.IntVal)), Mem(offset, "rbp"))
	case ctypes.Float:
		bits := math.Float32bits(float32(node.FloatVal))
		g.e.Instr2("movl", ImmU(uint64(bits)), Mem(offset, "rbp"))
	case ctypes.Double, ctypes.LDouble:
		bits := math.Float64bits(node.FloatVal)
		g.e.Instr2("movq", ImmU(bits), Mem(offset, "rbp"))
	default:
		ice("invalid literal type %v for direct store", ty.Kind)
	}
}

// fieldAtOffset finds the field of structType (if any) whose own Offset
// equals offset, used to recover bitfield packing for an initializer
// entry that only carries an absolute byte offset. Misses for a field
// nested two or more structs deep, the same shallow scope this
// compiler's DESIGN NOTES accept for aggregate-initializer bitfields.
func (g *Generator) fieldAtOffset(structType ctypes.ID, offset int) (ctypes.Field, bool) {
	t := g.types.At(structType)
	if t.Kind != ctypes.Struct && t.Kind != ctypes.Union {
		return ctypes.Field{}, false
	}
	for _, f := range t.Fields {
		if f.Offset == offset {
			return f, true
		}
	}
	return ctypes.Field{}, false
}

// emitDeclInit emits a variable's initializer list as a sequence of
// memory stores at baseOffset(%rbp), zero-filling any byte range the
// list leaves untouched (C11 6.7.9p19/21), grounded on emit_decl_init.
func (g *Generator) emitDeclInit(rootType ctypes.ID, initList []*ast.Node, baseOffset, totalSize int) {
	emitZero := func(start, end int) {
		for ; start <= end-8; start += 8 {
			g.e.Instr2("movq", Imm(0), Mem(baseOffset+start, "rbp"))
		}
		for ; start <= end-4; start += 4 {
			g.e.Instr2("movl", Imm(0), Mem(baseOffset+start, "rbp"))
		}
		for ; start < end; start++ {
			g.e.Instr2("movb", Imm(0), Mem(baseOffset+start, "rbp"))
		}
	}
	lastEnd := 0
	for _, init := range initList {
		if init.InitOffset > lastEnd {
			emitZero(lastEnd, init.InitOffset)
		}
		lastEnd = init.InitOffset + g.types.At(init.Type).Size
		f, ok := g.fieldAtOffset(rootType, init.InitOffset)
		if !ok {
			f = ctypes.Field{Type: init.Type}
		}
		if init.Value.Kind == ast.LITERAL && !f.IsBit {
			g.emitLiteralSave(init.Value, init.Type, baseOffset+init.InitOffset)
		} else {
			g.genExpr(init.Value)
			g.emitLocalSave(f, baseOffset+init.InitOffset)
		}
	}
	emitZero(lastEnd, totalSize)
}

// emitAddr computes node's address into %rax, grounded on emit_addr.
// Unlike the reference generator, the DEREF case evaluates the pointer
// operand directly rather than re-running the dereference's own
// value-load codegen -- "the address of *p" is p's value, not a second
// indirection through it -- matching how the struct-member load/save
// helpers below already treat a DEREF base.
func (g *Generator) emitAddr(node *ast.Node) {
	switch node.Kind {
	case ast.LOCAL_VAR:
		g.e.Instr2("lea", Mem(node.Offset, "rbp"), Reg("rax"))
	case ast.GLOBAL_VAR:
		g.e.Instr2("lea", RipMem(node.GlobalLabel, 0), Reg("rax"))
	case ast.DEREF:
		g.genExpr(node.Operand)
	case ast.STRUCT_MEMBER:
		f := g.fieldOf(node.Struc.Type, node.FieldName)
		g.emitAddr(node.Struc)
		g.e.Instr2("add", Imm(int64(f.Offset)), Reg("rax"))
	case ast.FUNC_DESG:
		g.e.Instr2("lea", RipMem(node.Name, 0), Reg("rax"))
	default:
		ice("invalid use of '&' on node kind %v", node.Kind)
	}
}

// emitDerefSaveAux stores the value sitting on top of the stack through
// the address already in %rax, at the given extra offset, and balances
// the stack the caller grew to stash that value.
func (g *Generator) emitDerefSaveAux(ty *ctypes.Type, offset int) {
	if ty.IsFloat() {
		g.e.Instr2("movsd", Mem(0, "rsp"), Reg("xmm0"))
		if ty.Kind == ctypes.Float {
			g.e.Instr2("movss", Reg("xmm0"), Mem(offset, "rax"))
		} else {
			g.e.Instr2("movsd", Reg("xmm0"), Mem(offset, "rax"))
		}
		g.popXMM(0)
	} else {
		g.e.Instr2("movq", Mem(0, "rsp"), Reg("rcx"))
		g.e.Instr2("mov", Reg(getReg(ty, 'c')), Mem(offset, "rax"))
		g.pop("rax")
	}
}

// emitDerefSave stores whatever value genExpr last left in %rax/%xmm0
// through the pointer `*p = ...` denotes.
func (g *Generator) emitDerefSave(node *ast.Node) {
	ty := g.types.At(g.types.At(node.Operand.Type).Elem)
	if ty.IsFloat() {
		g.pushXMM(0)
	} else {
		g.push("rax")
	}
	g.genExpr(node.Operand)
	g.emitDerefSaveAux(ty, 0)
}

// emitStructMemberSave stores into field, recursing through a chain of
// nested STRUCT_MEMBER bases down to the addressable object (a local,
// a global, or a pointer dereference) it's ultimately built on, grounded
// on emit_struct_member_save.
func (g *Generator) emitStructMemberSave(struc *ast.Node, field ctypes.Field, offset int) {
	switch struc.Kind {
	case ast.LOCAL_VAR:
		g.emitLocalSave(field, offset+struc.Offset+field.Offset)
	case ast.GLOBAL_VAR:
		g.emitGlobalSave(field, struc.GlobalLabel, offset+field.Offset)
	case ast.DEREF:
		ty := g.types.At(field.Type)
		if ty.IsFloat() {
			g.pushXMM(0)
		} else {
			g.push("rax")
		}
		g.genExpr(struc.Operand)
		g.emitDerefSaveAux(ty, offset+field.Offset)
	case ast.STRUCT_MEMBER:
		inner := g.fieldOf(struc.Struc.Type, struc.FieldName)
		g.emitStructMemberSave(struc.Struc, field, offset+inner.Offset)
	default:
		ice("invalid struct-member store base kind %v", struc.Kind)
	}
}

// emitStructMemberLoad is emitStructMemberSave's load-side counterpart,
// grounded on emit_struct_member_load.
func (g *Generator) emitStructMemberLoad(struc *ast.Node, field ctypes.Field, offset int) {
	switch struc.Kind {
	case ast.LOCAL_VAR:
		g.emitLocalLoad(field, "rbp", offset+struc.Offset+field.Offset)
	case ast.GLOBAL_VAR:
		g.emitGlobalLoad(field, struc.GlobalLabel, offset+field.Offset)
	case ast.DEREF:
		g.genExpr(struc.Operand)
		g.emitLocalLoad(field, "rax", offset+field.Offset)
	case ast.STRUCT_MEMBER:
		inner := g.fieldOf(struc.Struc.Type, struc.FieldName)
		g.emitStructMemberLoad(struc.Struc, field, offset+inner.Offset)
	default:
		ice("invalid struct-member load base kind %v", struc.Kind)
	}
}

// emitSave stores whatever genExpr last left in %rax/%xmm0 into the
// lvalue node denotes, dispatching on its own kind before falling into
// the struct-member/deref helpers above.
func (g *Generator) emitSave(node *ast.Node) {
	switch node.Kind {
	case ast.LOCAL_VAR:
		g.emitLocalSave(ctypes.Field{Type: node.Type}, node.Offset)
	case ast.GLOBAL_VAR:
		g.emitGlobalSave(ctypes.Field{Type: node.Type}, node.GlobalLabel, 0)
	case ast.DEREF:
		g.emitDerefSave(node)
	case ast.STRUCT_MEMBER:
		f := g.fieldOf(node.Struc.Type, node.FieldName)
		g.emitStructMemberSave(node.Struc, f, 0)
	default:
		ice("invalid assignment target kind %v", node.Kind)
	}
}

// emitBinopCmp implements the four-mnemonic relational/equality family;
// '>'/'>=' are handled by swapping operands into '<'/'<=' since this
// compiler's parser, unlike the reference's, doesn't canonicalize them
// away before codegen.
func (g *Generator) emitBinopCmp(node *ast.Node) {
	left, right, op := node.Left, node.Right, node.Kind
	if op == ast.Op(token.Kind('>')) {
		left, right, op = right, left, ast.Op(token.Kind('<'))
	} else if op == ast.Op(token.P_GE) {
		left, right, op = right, left, ast.Op(token.P_LE)
	}

	lt := g.types.At(left.Type)
	if lt.IsFloat() {
		g.genExpr(left)
		g.pushXMM(0)
		g.genExpr(right)
		g.popXMM(1)
		inst := "ucomiss"
		if lt.Kind != ctypes.Float {
			inst = "ucomisd"
		}
		g.e.Instr2(inst, Reg("xmm0"), Reg("xmm1"))
	} else {
		g.genExpr(left)
		g.push("rax")
		g.genExpr(right)
		g.pop("rcx")
		if lt.Kind == ctypes.Long || lt.Kind == ctypes.LLong {
			g.e.Instr2("cmp", Reg("rax"), Reg("rcx"))
		} else {
			g.e.Instr2("cmp", Reg("eax"), Reg("ecx"))
		}
	}

	useUnsigned := lt.IsFloat() || lt.Unsigned
	var inst string
	switch op {
	case ast.Op(token.Kind('<')):
		inst = "setl"
		if useUnsigned {
			inst = "setb"
		}
	case ast.Op(token.P_LE):
		inst = "setle"
		if useUnsigned {
			inst = "setbe"
		}
	case ast.Op(token.P_EQ):
		inst = "sete"
	case ast.Op(token.P_NE):
		inst = "setne"
	default:
		ice("invalid comparison operator %v", node.Kind)
	}
	g.e.Instr1(inst, Reg("al"))
	g.e.Instr2("movzb", Reg("al"), Reg("eax"))
}

// emitBinopIntArith evaluates an integer binary operator into %rax,
// grounded on emit_binop_int_arith.
func (g *Generator) emitBinopIntArith(node *ast.Node) {
	var inst string
	switch node.Kind {
	case ast.Op(token.Kind('+')):
		inst = "add"
	case ast.Op(token.Kind('-')):
		inst = "sub"
	case ast.Op(token.Kind('*')):
		inst = "imul"
	case ast.Op(token.Kind('/')), ast.Op(token.Kind('%')):
		// handled below, after the operands are in place
	case ast.Op(token.Kind('^')):
		inst = "xor"
	case ast.SAL:
		inst = "sal"
	case ast.SAR:
		inst = "sar"
	case ast.SHR:
		inst = "shr"
	default:
		ice("invalid binary integer arithmetic operator %v", node.Kind)
	}

	g.genExpr(node.Left)
	g.push("rax")
	g.genExpr(node.Right)
	g.e.Instr2("movq", Reg("rax"), Reg("rcx"))
	g.pop("rax")

	switch node.Kind {
	case ast.Op(token.Kind('/')), ast.Op(token.Kind('%')):
		if g.types.At(node.Type).Unsigned {
			g.e.Instr2("movl", Imm(0), Reg("edx"))
			g.e.Instr1("divq", Reg("rcx"))
		} else {
			g.e.Instr0("cqto")
			g.e.Instr1("idivq", Reg("rcx"))
		}
		if node.Kind == ast.Op(token.Kind('%')) {
			g.e.Instr2("movq", Reg("rdx"), Reg("rax"))
		}
	case ast.SAL, ast.SAR, ast.SHR:
		g.e.Instr2(inst, Reg("cl"), Reg(getReg(g.types.At(node.Left.Type), 'a')))
	default:
		g.e.Instr2(inst, Reg("rcx"), Reg("rax"))
	}
}

func floatInst(isDouble bool, dbl, sgl string) string {
	if isDouble {
		return dbl
	}
	return sgl
}

// emitBinopFloatArith evaluates a floating binary operator into %xmm0,
// grounded on emit_binop_float_arith.
func (g *Generator) emitBinopFloatArith(node *ast.Node) {
	isDouble := g.types.At(node.Type).Kind != ctypes.Float
	var inst string
	switch node.Kind {
	case ast.Op(token.Kind('+')):
		inst = floatInst(isDouble, "addsd", "addss")
	case ast.Op(token.Kind('-')):
		inst = floatInst(isDouble, "subsd", "subss")
	case ast.Op(token.Kind('*')):
		inst = floatInst(isDouble, "mulsd", "mulss")
	case ast.Op(token.Kind('/')):
		inst = floatInst(isDouble, "divsd", "divss")
	default:
		ice("invalid binary float arithmetic operator %v", node.Kind)
	}

	g.genExpr(node.Left)
	g.pushXMM(0)
	g.genExpr(node.Right)
	g.e.Instr2(floatInst(isDouble, "movsd", "movss"), Reg("xmm0"), Reg("xmm1"))
	g.popXMM(0)
	g.e.Instr2(inst, Reg("xmm1"), Reg("xmm0"))
}

// emitCopyStruct copies a by-value struct assignment from `from`'s
// address to `to`'s address, 8 bytes at a time, grounded on
// emit_copy_struct.
func (g *Generator) emitCopyStruct(from, to *ast.Node) {
	aligned := align8(g.types.At(from.Type).Size)
	g.push("rcx")
	g.push("r11")
	g.emitAddr(from)
	g.e.Instr2("movq", Reg("rax"), Reg("rcx"))
	g.emitAddr(to)
	for i := 0; i < aligned; i += 8 {
		g.e.Instr2("movq", Mem(i, "rcx"), Reg("r11"))
		g.e.Instr2("movq", Reg("r11"), Mem(i, "rax"))
	}
	g.pop("r11")
	g.pop("rcx")
}
