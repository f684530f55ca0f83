package codegen

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
)

// genFuncDef lowers a whole function: prologue, parameter spilling,
// local-variable frame layout, body, and a fallthrough epilogue for a
// body that doesn't end with an explicit return, grounded on
// FuncDefNode::codegen.
//
// This port passes every struct-by-value argument on the stack rather
// than attempting the System V classification that would pack a small
// struct into one or two integer/SSE registers; a by-value struct
// parameter is therefore never spilled at all -- it already lives at a
// valid, stable frame offset on the caller's side of the prologue, so
// the callee just adopts that address as the variable's storage.
func (g *Generator) genFuncDef(node *ast.Node) {
	ty := g.types.At(node.Type)

	if !ty.IsStatic() {
		g.e.Directive(".globl", node.FuncDefName)
	}
	g.e.Directive(".text")
	g.e.Label(node.FuncDefName)
	g.e.Instr1("push", Reg("rbp"))
	g.e.Instr2("movq", Reg("rsp"), Reg("rbp"))
	g.e.Instr0("nop")

	variadic := ty.Variadic
	offset := 0
	if variadic {
		offset = -regSaveAreaSize
	}

	intParams, floatParams, otherParams := g.classifyArgs(node.Params)

	for idx, p := range intParams {
		pty := g.types.At(p.Type)
		offset -= align8(pty.Size)
		p.Offset = offset
		g.spillIntParam(p, idx)
	}
	for idx, p := range floatParams {
		pty := g.types.At(p.Type)
		offset -= align8(pty.Size)
		p.Offset = offset
		inst := "movsd"
		if pty.Kind == ctypes.Float {
			inst = "movss"
		}
		g.e.Instr2(inst, Reg(floatArgRegs[idx]), Mem(offset, "rbp"))
	}

	g.overflowAreaOffset = 16
	stackParamOffset := 16
	for _, p := range otherParams {
		pty := g.types.At(p.Type)
		p.Offset = stackParamOffset
		if pty.Kind == ctypes.Struct || pty.Kind == ctypes.Union {
			stackParamOffset += align8(pty.Size)
		} else {
			stackParamOffset += 8
		}
	}

	g.namedIntArgs = len(intParams)
	g.namedFloatArgs = len(floatParams)
	if variadic {
		g.emitRegSaveArea()
	}

	for _, v := range node.LocalVars {
		vty := g.types.At(v.Type)
		offset -= align8(vty.Size)
		v.Offset = offset
	}

	if localarea := -offset; localarea > 0 {
		g.e.Instr2("sub", Imm(int64(localarea)), Reg("rsp"))
	}

	g.genStmt(node.Body)

	g.e.Instr0("leave")
	g.e.Instr0("ret")

	g.flushPendingLiterals()
}

// spillIntParam stores the idx'th integer argument register into p's
// assigned frame slot, widening a _Bool parameter the same way
// emit_local_save does.
func (g *Generator) spillIntParam(p *ast.Node, idx int) {
	ty := g.types.At(p.Type)
	if ty.Kind == ctypes.Bool {
		g.e.Instr2("movzbl", Reg(intArgRegsLow[idx]), Reg("eax"))
		g.e.Instr2("movl", Reg("eax"), Mem(p.Offset, "rbp"))
		return
	}
	g.e.Instr2("mov", Reg(sizedIntArgReg(idx, ty.Size)), Mem(p.Offset, "rbp"))
}

// emitRegSaveArea spills every integer and SSE argument register into
// the 176-byte save area below the frame, so __builtin_va_start's
// reg_save_area pointer can later serve va_arg reads for both named
// and variadic arguments alike.
func (g *Generator) emitRegSaveArea() {
	base := -regSaveAreaSize
	for i := 0; i < 6; i++ {
		g.e.Instr2("movq", Reg(intArgRegs[i]), Mem(base+i*8, "rbp"))
	}
	for i := 0; i < 8; i++ {
		g.e.Instr2("movq", Reg(floatArgRegs[i]), Mem(base+48+i*16, "rbp"))
	}
}
