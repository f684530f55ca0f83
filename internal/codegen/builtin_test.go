package codegen

import (
	"strings"
	"testing"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

func TestEmitVaStartWritesAllFourFields(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	ptrID := types.NewPtr(types.Void())
	g.namedIntArgs = 2
	g.namedFloatArgs = 1
	g.overflowAreaOffset = 16

	ap := ast.NewLocalVar(token.Pos{}, ptrID, "ap")
	call := ast.NewFuncCall(token.Pos{}, ast.FUNC_CALL, "__builtin_va_start", 0, intID, nil, []*ast.Node{ap})

	g.emitVaStart(call)
	out := g.flush(buf)

	if !strings.Contains(out, "movl $16, (%rax)") {
		t.Errorf("expected gp_offset = namedIntArgs*8 = 16, got:\n%s", out)
	}
	if !strings.Contains(out, "movl $64, 4(%rax)") {
		t.Errorf("expected fp_offset = 48+namedFloatArgs*16 = 64, got:\n%s", out)
	}
	if !strings.Contains(out, "lea 16(%rbp), %rcx") {
		t.Errorf("expected the overflow area address loaded from overflowAreaOffset, got:\n%s", out)
	}
	if !strings.Contains(out, "movq %rcx, 8(%rax)") {
		t.Errorf("expected the overflow area pointer stored at offset 8, got:\n%s", out)
	}
	if !strings.Contains(out, "lea -176(%rbp), %rcx") {
		t.Errorf("expected the register save area address at -regSaveAreaSize, got:\n%s", out)
	}
	if !strings.Contains(out, "movq %rcx, 16(%rax)") {
		t.Errorf("expected the register save area pointer stored at offset 16, got:\n%s", out)
	}
}

func TestEmitRegClassIntegerIsZero(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	arg := ast.NewInt(token.Pos{}, intID, 0)
	call := ast.NewFuncCall(token.Pos{}, ast.FUNC_CALL, "__builtin_reg_class", 0, intID, nil, []*ast.Node{arg})

	g.emitRegClass(call)
	out := g.flush(buf)

	if !strings.Contains(out, "movl $0, %eax") {
		t.Errorf("expected class 0 (INTEGER) for an int argument, got:\n%s", out)
	}
}

func TestEmitRegClassFloatIsOne(t *testing.T) {
	g, buf, types := newTestGen()
	doubleID := types.Double()
	intID := types.Int()
	arg := ast.NewFloat(token.Pos{}, doubleID, 0)
	call := ast.NewFuncCall(token.Pos{}, ast.FUNC_CALL, "__builtin_reg_class", 0, intID, nil, []*ast.Node{arg})

	g.emitRegClass(call)
	out := g.flush(buf)

	if !strings.Contains(out, "movl $1, %eax") {
		t.Errorf("expected class 1 (SSE) for a double argument, got:\n%s", out)
	}
}

func TestEmitRegClassStructIsTwo(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	structID := types.NewStruct(ctypes.Struct, "s")
	types.At(structID).Size = 16
	arg := ast.NewLocalVar(token.Pos{}, structID, "v")
	call := ast.NewFuncCall(token.Pos{}, ast.FUNC_CALL, "__builtin_reg_class", 0, intID, nil, []*ast.Node{arg})

	g.emitRegClass(call)
	out := g.flush(buf)

	if !strings.Contains(out, "movl $2, %eax") {
		t.Errorf("expected class 2 (MEMORY) for a struct argument, got:\n%s", out)
	}
}
