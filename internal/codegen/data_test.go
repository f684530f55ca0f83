package codegen

import (
	"strings"
	"testing"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

func TestGenGlobalDeclUninitializedGoesToBss(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	v := ast.NewGlobalVar(token.Pos{}, intID, "counter")
	decl := ast.NewDecl(token.Pos{}, v)

	g.genGlobalDecl(decl)
	out := g.flush(buf)

	if !strings.Contains(out, ".bss") || !strings.Contains(out, ".zero 4") || !strings.Contains(out, ".globl counter") {
		t.Errorf("expected .bss entry for uninitialized global, got:\n%s", out)
	}
}

func TestGenGlobalDeclStaticUninitializedUsesLcomm(t *testing.T) {
	g, buf, types := newTestGen()
	staticInt := types.Clone(types.Int())
	types.At(staticInt).StorageClass = ctypes.SCStatic
	v := ast.NewStaticLocalVar(token.Pos{}, staticInt, "counter", ".Lcounter")
	decl := ast.NewDecl(token.Pos{}, v)

	g.genGlobalDecl(decl)
	out := g.flush(buf)

	if !strings.Contains(out, ".lcomm .Lcounter, 4") {
		t.Errorf("expected .lcomm for static global, got:\n%s", out)
	}
}

func TestGenGlobalDeclExternWithoutInitIsSkipped(t *testing.T) {
	g, buf, types := newTestGen()
	externInt := types.Clone(types.Int())
	types.At(externInt).StorageClass = ctypes.SCExtern
	v := ast.NewGlobalVar(token.Pos{}, externInt, "g_extern")
	decl := ast.NewDecl(token.Pos{}, v)

	g.genGlobalDecl(decl)
	out := g.flush(buf)

	if out != "" {
		t.Errorf("extern declaration without initializer should emit nothing, got:\n%s", out)
	}
}

func TestEmitDataAuxFillsGapsWithZero(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	arrID := types.NewArray(intID, 4) // int[4], 16 bytes

	v := ast.NewGlobalVar(token.Pos{}, arrID, "arr")
	// Only initialize index 0 and index 3; 1 and 2 should come out as
	// a single 8-byte .zero gap.
	init0 := ast.NewInit(token.Pos{}, intID, ast.NewInt(token.Pos{}, intID, 11), 0)
	init3 := ast.NewInit(token.Pos{}, intID, ast.NewInt(token.Pos{}, intID, 44), 12)
	decl := ast.NewDecl(token.Pos{}, v)
	decl.InitList = []*ast.Node{init0, init3}

	g.genGlobalDecl(decl)
	out := g.flush(buf)

	if !strings.Contains(out, ".long 11") || !strings.Contains(out, ".long 44") {
		t.Errorf("missing initialized entries, got:\n%s", out)
	}
	if !strings.Contains(out, ".zero 8") {
		t.Errorf("expected a .zero 8 gap between index 0 and index 3, got:\n%s", out)
	}
}

func TestEmitDataStringLiteralPadsToArraySize(t *testing.T) {
	g, buf, types := newTestGen()
	charID := types.Char()
	arrID := types.NewArray(charID, 8) // char[8], "hi" + NUL + 5 bytes padding

	v := ast.NewGlobalVar(token.Pos{}, arrID, "msg")
	str := ast.NewString(token.Pos{}, arrID, []byte("hi"))
	init := ast.NewInit(token.Pos{}, arrID, str, 0)
	decl := ast.NewDecl(token.Pos{}, v)
	decl.InitList = []*ast.Node{init}

	g.genGlobalDecl(decl)
	out := g.flush(buf)

	if !strings.Contains(out, ".byte") {
		t.Errorf("expected .byte directives for the string bytes, got:\n%s", out)
	}
	if !strings.Contains(out, ".zero 5") {
		t.Errorf("expected 5 bytes of padding after \"hi\\0\", got:\n%s", out)
	}
}
