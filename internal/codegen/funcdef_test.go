package codegen

import (
	"strings"
	"testing"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// buildAddFunc constructs `int add(int a, int b) { return a + b; }`.
func buildAddFunc(types *ctypes.Arena) *ast.Node {
	intID := types.Int()
	a := ast.NewLocalVar(token.Pos{}, intID, "a")
	b := ast.NewLocalVar(token.Pos{}, intID, "b")
	sum := ast.NewBinary(token.Pos{}, ast.Op(token.Kind('+')), intID, a, b)
	ret := ast.NewReturn(token.Pos{}, sum)
	body := ast.NewCompoundStmt(token.Pos{}, []*ast.Node{ret})
	funcType := types.NewFunc(intID, []ctypes.ID{intID, intID}, false, false)
	return ast.NewFuncDef(token.Pos{}, funcType, "add", []*ast.Node{a, b}, body, nil)
}

func TestGenFuncDefEmitsPrologueAndEpilogue(t *testing.T) {
	g, buf, types := newTestGen()
	fn := buildAddFunc(types)
	g.Generate([]*ast.Node{fn})
	out := g.flush(buf)

	for _, want := range []string{
		".globl add",
		"add:",
		"push %rbp",
		"movq %rsp, %rbp",
		"%edi",
		"%esi",
		"add %rcx, %rax",
		"leave",
		"ret",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q; got:\n%s", want, out)
		}
	}
}

func TestGenFuncDefStaticOmitsGlobl(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	staticFuncType := types.NewFunc(intID, nil, false, false)
	types.At(staticFuncType).StorageClass = ctypes.SCStatic
	body := ast.NewCompoundStmt(token.Pos{}, []*ast.Node{ast.NewReturn(token.Pos{}, ast.NewInt(token.Pos{}, intID, 0))})
	fn := ast.NewFuncDef(token.Pos{}, staticFuncType, "helper", nil, body, nil)

	g.Generate([]*ast.Node{fn})
	out := g.flush(buf)

	if strings.Contains(out, ".globl helper") {
		t.Errorf("static function should not be exported:\n%s", out)
	}
	if !strings.Contains(out, "helper:") {
		t.Errorf("missing function label:\n%s", out)
	}
}

func TestGenFuncDefVariadicSpillsRegSaveArea(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	fmtParam := ast.NewLocalVar(token.Pos{}, intID, "fmt")
	funcType := types.NewFunc(intID, []ctypes.ID{intID}, true, false)
	body := ast.NewCompoundStmt(token.Pos{}, []*ast.Node{ast.NewReturn(token.Pos{}, ast.NewInt(token.Pos{}, intID, 0))})
	fn := ast.NewFuncDef(token.Pos{}, funcType, "variadicfn", []*ast.Node{fmtParam}, body, nil)

	g.Generate([]*ast.Node{fn})
	out := g.flush(buf)

	// Every integer argument register must be spilled into the
	// 176-byte save area for a variadic prologue.
	for _, reg := range intArgRegs {
		if !strings.Contains(out, "%"+reg) {
			t.Errorf("missing spill of %%%s in variadic prologue:\n%s", reg, out)
		}
	}
	for _, reg := range floatArgRegs {
		if !strings.Contains(out, "%"+reg) {
			t.Errorf("missing spill of %%%s in variadic prologue:\n%s", reg, out)
		}
	}
}
