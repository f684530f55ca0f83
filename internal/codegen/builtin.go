package codegen

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
)

// emitVaStart writes __builtin_va_start(ap, last)'s four va_list
// fields -- gp_offset, fp_offset, overflow_arg_area, reg_save_area --
// grounded on the layout glibc's <stdarg.h> expands __va_list_tag to.
// The second argument (the name of the last named parameter) carries
// no runtime information here: the offsets it would otherwise be used
// to recompute are already known from the enclosing function's own
// parameter classification, recorded in namedIntArgs/namedFloatArgs by
// genFuncDef.
func (g *Generator) emitVaStart(node *ast.Node) {
	g.genExpr(node.Args[0])
	g.e.Instr2("movl", Imm(int64(g.namedIntArgs*8)), Mem(0, "rax"))
	g.e.Instr2("movl", Imm(int64(48+g.namedFloatArgs*16)), Mem(4, "rax"))
	g.e.Instr2("lea", Mem(g.overflowAreaOffset, "rbp"), Reg("rcx"))
	g.e.Instr2("movq", Reg("rcx"), Mem(8, "rax"))
	g.e.Instr2("lea", Mem(-regSaveAreaSize, "rbp"), Reg("rcx"))
	g.e.Instr2("movq", Reg("rcx"), Mem(16, "rax"))
}

// emitRegClass resolves __builtin_reg_class(T), the compile-time type
// classifier this compiler's <stdarg.h> va_arg macro expands into, to
// a constant 0 (INTEGER), 1 (SSE), or 2 (MEMORY) per the type of its
// sole (unevaluated) argument.
func (g *Generator) emitRegClass(node *ast.Node) {
	ty := g.types.At(node.Args[0].Type)
	class := int64(0)
	switch {
	case ty.IsFloat():
		class = 1
	case ty.Kind == ctypes.Struct || ty.Kind == ctypes.Union:
		class = 2
	}
	g.e.Instr2("movl", Imm(class), Reg("eax"))
}
