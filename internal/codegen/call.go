package codegen

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
)

// floatArgRegs are the System V SSE argument registers, in order.
var floatArgRegs = [8]string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}

const gprArgMax = 6
const xmmArgMax = 8

// classifyArgs buckets args into the integer-register, SSE-register,
// and stack-passed groups a call actually uses, tracking a running
// register budget exactly as emit_funccall's int_args/float_args/
// other_args split does; a struct-by-value argument always lands in
// otherArgs regardless of size, since it is passed on the stack.
func (g *Generator) classifyArgs(args []*ast.Node) (intArgs, floatArgs, otherArgs []*ast.Node) {
	gprUsed, xmmUsed := 0, 0
	for _, a := range args {
		ty := g.types.At(a.Type)
		switch {
		case ty.Kind == ctypes.Struct || ty.Kind == ctypes.Union:
			otherArgs = append(otherArgs, a)
		case ty.IsFloat():
			if xmmUsed < xmmArgMax {
				floatArgs = append(floatArgs, a)
				xmmUsed++
			} else {
				otherArgs = append(otherArgs, a)
			}
		default:
			if gprUsed < gprArgMax {
				intArgs = append(intArgs, a)
				gprUsed++
			} else {
				otherArgs = append(otherArgs, a)
			}
		}
	}
	return
}

// emitCall lowers a direct or indirect call, grounded on
// Generator::emit_funccall's argument staging: stack-passed arguments
// (structs and register-overflow scalars) are pushed first, in reverse
// so they land on the stack in left-to-right order, then the stack is
// padded to a 16-byte boundary, then the register-passed arguments are
// evaluated and pushed in left-to-right order and immediately popped
// back off in reverse into their real ABI registers just before the
// call -- the push-then-pop-in-reverse idiom lets each argument
// expression clobber %rax/%xmm0 freely without stepping on an
// already-placed earlier argument.
//
// An indirect call's target expression is evaluated after every
// argument (C leaves the relative order of the designator and the
// argument list unspecified) and pushed/popped the same way, so it
// never has to survive in a scratch register across an argument that
// might itself make a call.
func (g *Generator) emitCall(node *ast.Node) {
	switch node.FuncName {
	case "__builtin_va_start":
		g.emitVaStart(node)
		return
	case "__builtin_reg_class":
		g.emitRegClass(node)
		return
	}

	intArgs, floatArgs, otherArgs := g.classifyArgs(node.Args)

	stackArgsBytes := 0
	for i := len(otherArgs) - 1; i >= 0; i-- {
		a := otherArgs[i]
		ty := g.types.At(a.Type)
		switch {
		case ty.Kind == ctypes.Struct || ty.Kind == ctypes.Union:
			g.emitAddr(a)
			stackArgsBytes += g.pushStruct(ty.Size)
		case ty.IsFloat():
			g.genExpr(a)
			g.pushXMM(0)
			stackArgsBytes += 8
		default:
			g.genExpr(a)
			g.push("rax")
			stackArgsBytes += 8
		}
	}

	pad := 0
	if m := g.stackSize % 16; m != 0 {
		pad = 16 - m
		g.e.Instr2("sub", Imm(int64(pad)), Reg("rsp"))
		g.stackSize += pad
	}

	for _, a := range floatArgs {
		g.genExpr(a)
		g.pushXMM(0)
	}
	for _, a := range intArgs {
		g.genExpr(a)
		g.push("rax")
	}

	if node.Kind == ast.FUNCPTR_CALL {
		g.genExpr(node.FuncPtr)
		g.push("rax")
		g.pop("r11")
	}
	for i := len(intArgs) - 1; i >= 0; i-- {
		g.pop(intArgRegs[i])
	}
	for i := len(floatArgs) - 1; i >= 0; i-- {
		g.popXMM(i)
	}

	if g.types.At(node.FuncType).Variadic {
		g.e.Instr2("mov", Imm(int64(len(floatArgs))), Reg("eax"))
	}

	switch node.Kind {
	case ast.FUNC_CALL:
		g.e.Instr1("call", node.FuncName)
	case ast.FUNCPTR_CALL:
		g.e.Instr1("call", "*"+Reg("r11"))
	}

	if cleanup := stackArgsBytes + pad; cleanup > 0 {
		g.e.Instr2("add", Imm(int64(cleanup)), Reg("rsp"))
		g.stackSize -= cleanup
	}
}
