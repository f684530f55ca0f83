package codegen

import (
	"fmt"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
)

// regSaveAreaSize is 6 GPRs * 8 bytes + 8 XMMs * 16 bytes, the spill
// area __builtin_va_start reads register-passed variadic arguments
// back out of.
const regSaveAreaSize = 176

// intArgRegs are the System V integer/pointer argument registers, in
// order, at each width a spilled parameter might need.
var intArgRegs = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var intArgRegs32 = [6]string{"edi", "esi", "edx", "ecx", "r8d", "r9d"}
var intArgRegs16 = [6]string{"di", "si", "dx", "cx", "r8w", "r9w"}

// intArgRegsLow are intArgRegs' low byte, used to zero-extend a _Bool
// argument spilled straight from its incoming register.
var intArgRegsLow = [6]string{"dil", "sil", "dl", "cl", "r8b", "r9b"}

// sizedIntArgReg picks the idx'th integer argument register at the
// width size bytes needs.
func sizedIntArgReg(idx, size int) string {
	switch size {
	case 1:
		return intArgRegsLow[idx]
	case 2:
		return intArgRegs16[idx]
	case 4:
		return intArgRegs32[idx]
	default:
		return intArgRegs[idx]
	}
}

// Generator lowers one translation unit's toplevel nodes to GAS text.
// It carries no AST-visiting state across toplevel nodes besides the
// running stack-balance check and the .data label cache for literals,
// mirroring generator.h's Generator fields.
type Generator struct {
	e         *Emitter
	types     *ctypes.Arena
	stackSize int
	labelSeq  int

	// set for the duration of genFuncDef, read back by the
	// __builtin_va_start intrinsic.
	namedIntArgs      int
	namedFloatArgs    int
	overflowAreaOffset int

	// pendingLiterals collects the .data blocks float/string literals
	// need once their owning label has been minted; flushed after the
	// function body that referenced them is done.
	pendingLiterals []pendingLiteral
}

type pendingLiteral struct {
	label string
	node  *ast.Node
}

// New creates a Generator writing GAS text through e.
func New(e *Emitter, types *ctypes.Arena) *Generator {
	return &Generator{e: e, types: types}
}

func (g *Generator) newLabel(prefix string) string {
	g.labelSeq++
	return fmt.Sprintf(".L%s%d", prefix, g.labelSeq)
}

// ice panics with an internal-compiler-error message: every call site
// for this is a shape the type checker should already have rejected,
// same contract as generator.cpp's error()/assert() calls.
func ice(format string, args ...interface{}) {
	panic(fmt.Sprintf("codegen: internal error: "+format, args...))
}

// ---- stack bookkeeping ------------------------------------------------

func (g *Generator) push(reg string) {
	g.e.Instr1("push", Reg(reg))
	g.stackSize += 8
}

func (g *Generator) pop(reg string) {
	g.e.Instr1("pop", Reg(reg))
	g.stackSize -= 8
	if g.stackSize < 0 {
		ice("stack underflow popping %%%s", reg)
	}
}

func (g *Generator) pushXMM(id int) {
	g.e.Instr2("sub", Imm(8), Reg("rsp"))
	g.e.Instr2("movsd", Reg(fmt.Sprintf("xmm%d", id)), Mem(0, "rsp"))
	g.stackSize += 8
}

func (g *Generator) popXMM(id int) {
	g.e.Instr2("movsd", Mem(0, "rsp"), Reg(fmt.Sprintf("xmm%d", id)))
	g.e.Instr2("add", Imm(8), Reg("rsp"))
	g.stackSize -= 8
	if g.stackSize < 0 {
		ice("stack underflow popping xmm%d", id)
	}
}

// align8 rounds n up to the next multiple of 8.
func align8(n int) int {
	if m := n % 8; m != 0 {
		return n - m + 8
	}
	return n
}

// pushStruct copies the size-byte object whose address is in %rax onto
// the stack, 8 bytes at a time via %rcx, returning the aligned size it
// grew the stack by.
func (g *Generator) pushStruct(size int) int {
	aligned := align8(size)
	g.e.Instr2("sub", Imm(int64(aligned)), Reg("rsp"))
	g.e.Instr2("movq", Reg("rcx"), Mem(-8, "rsp"))
	for i := 0; i < aligned; i += 8 {
		g.e.Instr2("movq", Mem(i, "rax"), Reg("rcx"))
		g.e.Instr2("movq", Reg("rcx"), Mem(i, "rsp"))
	}
	g.e.Instr2("movq", Mem(-8, "rsp"), Reg("rcx"))
	g.stackSize += aligned
	return aligned
}

// getReg picks the 'a' or 'c' general register sized to ty, used by the
// bitfield and plain load/save helpers.
func getReg(ty *ctypes.Type, which byte) string {
	switch ty.Size {
	case 1:
		if which == 'a' {
			return "al"
		}
		return "cl"
	case 2:
		if which == 'a' {
			return "ax"
		}
		return "cx"
	case 4:
		if which == 'a' {
			return "eax"
		}
		return "ecx"
	case 8:
		if which == 'a' {
			return "rax"
		}
		return "rcx"
	}
	ice("invalid data size %d", ty.Size)
	return ""
}

// getMovInst picks the zero/sign-extending load mnemonic that widens
// ty's size up to a full 64-bit register ("movq" for 8-byte types), or
// "" for an unsigned 32-bit type, which needs no extension (movl already
// zeroes the upper half).
func getMovInst(ty *ctypes.Type) string {
	switch ty.Size {
	case 1:
		if ty.Unsigned {
			return "movzbq"
		}
		return "movsbq"
	case 2:
		if ty.Unsigned {
			return "movzwq"
		}
		return "movswq"
	case 4:
		if ty.Unsigned {
			return ""
		}
		return "movslq"
	case 8:
		return "movq"
	}
	ice("invalid mov data size %d", ty.Size)
	return ""
}

// ---- bitfield load/save -----------------------------------------------

func (g *Generator) emitBitfieldLoad(f ctypes.Field) {
	g.push("rcx")
	g.e.Instr2("shr", Imm(int64(f.BitOff)), Reg("rax"))
	g.e.Instr2("mov", ImmU((uint64(1)<<uint(f.BitSize))-1), Reg("rcx"))
	g.e.Instr2("and", Reg("rcx"), Reg("rax"))
	g.pop("rcx")
}

// emitBitfieldSave packs %rax's low bits into addr's bit-field slot
// without disturbing the storage unit's other bits; the value has not
// yet been written to memory when this returns -- the caller still
// issues the final "mov %reg, addr".
func (g *Generator) emitBitfieldSave(ty *ctypes.Type, f ctypes.Field, addr string) {
	g.push("rcx")
	g.push("rdi")
	mask := (uint64(1) << uint(f.BitSize)) - 1
	g.e.Instr2("mov", ImmU(mask), Reg("rdi"))
	g.e.Instr2("and", Reg("rdi"), Reg("rax"))
	g.e.Instr2("shl", Imm(int64(f.BitOff)), Reg("rax"))
	g.e.Instr2("mov", addr, Reg(getReg(ty, 'c')))
	g.e.Instr2("mov", ImmU(^(mask<<uint(f.BitOff))), Reg("rdi"))
	g.e.Instr2("and", Reg("rdi"), Reg("rcx"))
	g.e.Instr2("or", Reg("rcx"), Reg("rax"))
	g.pop("rdi")
	g.pop("rcx")
}

// ---- conversions --------------------------------------------------------

func (g *Generator) emitIntToInt64(ty *ctypes.Type) {
	switch ty.Kind {
	case ctypes.Bool, ctypes.Char:
		if ty.Unsigned {
			g.e.Instr2("movzbq", Reg("al"), Reg("rax"))
		} else {
			g.e.Instr2("movsbq", Reg("al"), Reg("rax"))
		}
	case ctypes.Short:
		if ty.Unsigned {
			g.e.Instr2("movzwq", Reg("ax"), Reg("rax"))
		} else {
			g.e.Instr2("movswq", Reg("ax"), Reg("rax"))
		}
	case ctypes.Int, ctypes.Enum:
		if ty.Unsigned {
			g.e.Instr2("movl", Reg("eax"), Reg("eax"))
		} else {
			g.e.Instr2("movslq", Reg("eax"), Reg("rax"))
		}
	case ctypes.Long, ctypes.LLong:
		// already 64 bits wide
	}
}

func (g *Generator) emitFloatToInt(ty *ctypes.Type) {
	switch ty.Kind {
	case ctypes.Float:
		g.e.Instr2("cvttss2si", Reg("xmm0"), Reg("eax"))
	case ctypes.Double, ctypes.LDouble:
		g.e.Instr2("cvttsd2si", Reg("xmm0"), Reg("eax"))
	}
}

func (g *Generator) emitToBool(ty *ctypes.Type) {
	if ty.IsFloat() {
		g.pushXMM(1)
		g.e.Instr2("xorpd", Reg("xmm1"), Reg("xmm1"))
		inst := "ucomiss"
		if ty.Kind != ctypes.Float {
			inst = "ucomisd"
		}
		g.e.Instr2(inst, Reg("xmm1"), Reg("xmm0"))
		g.e.Instr1("setne", Reg("al"))
		g.popXMM(1)
	} else {
		g.e.Instr2("cmp", Imm(0), Reg("rax"))
		g.e.Instr1("setne", Reg("al"))
	}
	g.e.Instr2("movzb", Reg("al"), Reg("eax"))
}

func (g *Generator) emitBoolConv(ty *ctypes.Type) {
	if ty.Kind == ctypes.Bool {
		g.e.Instr2("test", Reg("rax"), Reg("rax"))
		g.e.Instr1("setne", Reg("al"))
	}
}

// emitConv converts whatever genExpr(from-typed expr) left in
// %rax/%xmm0 from "from" to "to", grounded on emit_conv's dispatch
// order: int->float, float<->float, any->bool, int->int, float->int.
func (g *Generator) emitConv(from, to *ctypes.Type) {
	switch {
	case from.IsInt() && to.Kind == ctypes.Float:
		g.e.Instr2("cvtsi2ss", Reg("eax"), Reg("xmm0"))
	case from.IsInt() && (to.Kind == ctypes.Double || to.Kind == ctypes.LDouble):
		g.e.Instr2("cvtsi2sd", Reg("eax"), Reg("xmm0"))
	case from.Kind == ctypes.Float && (to.Kind == ctypes.Double || to.Kind == ctypes.LDouble):
		g.e.Instr2("cvtps2pd", Reg("xmm0"), Reg("xmm0"))
	case (from.Kind == ctypes.Double || from.Kind == ctypes.LDouble) && to.Kind == ctypes.Float:
		g.e.Instr2("cvtpd2ps", Reg("xmm0"), Reg("xmm0"))
	case to.Kind == ctypes.Bool:
		g.emitToBool(from)
	case from.IsInt() && to.IsInt():
		g.emitIntToInt64(from)
	case to.IsInt():
		g.emitFloatToInt(from)
	}
}

// ---- local/global load/save --------------------------------------------

func (g *Generator) emitLocalLoad(f ctypes.Field, base string, offset int) {
	ty := g.types.At(f.Type)
	switch {
	case ty.Kind == ctypes.Float:
		g.e.Instr2("movss", Mem(offset, base), Reg("xmm0"))
	case ty.Kind == ctypes.Double || ty.Kind == ctypes.LDouble:
		g.e.Instr2("movsd", Mem(offset, base), Reg("xmm0"))
	case ty.Kind == ctypes.Array || ty.Kind == ctypes.Struct || ty.Kind == ctypes.Union:
		g.e.Instr2("lea", Mem(offset, base), Reg("rax"))
	default:
		if inst := getMovInst(ty); inst == "" {
			g.e.Instr2("movl", Mem(offset, base), Reg("eax"))
		} else {
			g.e.Instr2(inst, Mem(offset, base), Reg("rax"))
		}
		if f.IsBit {
			g.emitBitfieldLoad(f)
		}
	}
}

func (g *Generator) emitLocalSave(f ctypes.Field, offset int) {
	ty := g.types.At(f.Type)
	switch {
	case ty.Kind == ctypes.Float:
		g.e.Instr2("movss", Reg("xmm0"), Mem(offset, "rbp"))
	case ty.Kind == ctypes.Double || ty.Kind == ctypes.LDouble:
		g.e.Instr2("movsd", Reg("xmm0"), Mem(offset, "rbp"))
	default:
		g.emitBoolConv(ty)
		reg := getReg(ty, 'a')
		addr := Mem(offset, "rbp")
		if f.IsBit {
			g.emitBitfieldSave(ty, f, addr)
		}
		g.e.Instr2("mov", Reg(reg), addr)
	}
}

func (g *Generator) emitGlobalLoad(f ctypes.Field, label string, offset int) {
	ty := g.types.At(f.Type)
	switch {
	case ty.Kind == ctypes.Array || ty.Kind == ctypes.Struct || ty.Kind == ctypes.Union:
		g.e.Instr2("lea", RipMem(label, offset), Reg("rax"))
	case ty.Kind == ctypes.Float:
		g.e.Instr2("movss", RipMem(label, offset), Reg("xmm0"))
	case ty.Kind == ctypes.Double || ty.Kind == ctypes.LDouble:
		g.e.Instr2("movsd", RipMem(label, offset), Reg("xmm0"))
	default:
		if inst := getMovInst(ty); inst == "" {
			g.e.Instr2("movl", RipMem(label, offset), Reg("eax"))
		} else {
			g.e.Instr2(inst, RipMem(label, offset), Reg("rax"))
		}
		if f.IsBit {
			g.emitBitfieldLoad(f)
		}
	}
}

func (g *Generator) emitGlobalSave(f ctypes.Field, label string, offset int) {
	ty := g.types.At(f.Type)
	switch {
	case ty.Kind == ctypes.Float:
		g.e.Instr2("movss", Reg("xmm0"), RipMem(label, offset))
	case ty.Kind == ctypes.Double || ty.Kind == ctypes.LDouble:
		g.e.Instr2("movsd", Reg("xmm0"), RipMem(label, offset))
	default:
		g.emitBoolConv(ty)
		reg := getReg(ty, 'a')
		addr := RipMem(label, offset)
		if f.IsBit {
			g.emitBitfieldSave(ty, f, addr)
		}
		g.e.Instr2("mov", Reg(reg), addr)
	}
}
