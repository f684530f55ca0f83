package codegen

import (
	"strings"
	"testing"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

func buildPairStruct(types *ctypes.Arena) (ctypes.ID, ctypes.ID) {
	intID := types.Int()
	structID := types.NewStruct(ctypes.Struct, "pair")
	types.At(structID).Size = 8
	types.At(structID).Fields = []ctypes.Field{
		{Name: "x", Type: intID, Offset: 0},
		{Name: "y", Type: intID, Offset: 4},
	}
	return structID, intID
}

func TestEmitAddrLocalVar(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	v := ast.NewLocalVar(token.Pos{}, intID, "x")
	v.Offset = -8

	g.emitAddr(v)
	out := g.flush(buf)

	if !strings.Contains(out, "lea -8(%rbp), %rax") {
		t.Errorf("expected the local's address loaded via lea, got:\n%s", out)
	}
}

func TestEmitAddrGlobalVar(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	v := ast.NewGlobalVar(token.Pos{}, intID, "g")

	g.emitAddr(v)
	out := g.flush(buf)

	if !strings.Contains(out, "lea g(%rip), %rax") {
		t.Errorf("expected a RIP-relative address load, got:\n%s", out)
	}
}

func TestEmitAddrStructMemberAddsFieldOffset(t *testing.T) {
	g, buf, types := newTestGen()
	structID, _ := buildPairStruct(types)
	s := ast.NewLocalVar(token.Pos{}, structID, "p")
	s.Offset = -16
	member := ast.NewStructMember(token.Pos{}, types.Int(), s, "y")

	g.emitAddr(member)
	out := g.flush(buf)

	if !strings.Contains(out, "lea -16(%rbp), %rax") {
		t.Errorf("expected the struct's own address first, got:\n%s", out)
	}
	if !strings.Contains(out, "add $4, %rax") {
		t.Errorf("expected the field's byte offset added, got:\n%s", out)
	}
}

func TestEmitAddrDerefEvaluatesPointerDirectly(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	ptrID := types.NewPtr(intID)
	p := ast.NewLocalVar(token.Pos{}, ptrID, "p")
	deref := ast.NewUnary(token.Pos{}, ast.DEREF, intID, p)

	g.emitAddr(deref)
	out := g.flush(buf)

	if !strings.Contains(out, "movq (%rbp), %rax") {
		t.Errorf("expected &*p to just load p's own value, got:\n%s", out)
	}
	if strings.Contains(out, "movslq") {
		t.Errorf("&*p should not re-dereference through the pointer, got:\n%s", out)
	}
}

func TestEmitStructMemberLoadThroughLocalBase(t *testing.T) {
	g, buf, types := newTestGen()
	structID, intID := buildPairStruct(types)
	s := ast.NewLocalVar(token.Pos{}, structID, "p")
	s.Offset = -16
	f := g.fieldOf(structID, "y")

	g.emitStructMemberLoad(s, f, 0)
	out := g.flush(buf)

	if !strings.Contains(out, "movslq -12(%rbp), %rax") {
		t.Errorf("expected the field loaded at base offset + field offset (-16+4=-12), got:\n%s", out)
	}
	_ = intID
}

func TestEmitStructMemberSaveThroughGlobalBase(t *testing.T) {
	g, buf, types := newTestGen()
	structID, _ := buildPairStruct(types)
	s := ast.NewGlobalVar(token.Pos{}, structID, "g")
	f := g.fieldOf(structID, "y")

	g.emitStructMemberSave(s, f, 0)
	out := g.flush(buf)

	if !strings.Contains(out, "g+4(%rip)") {
		t.Errorf("expected the store addressed at the global's label plus the field offset, got:\n%s", out)
	}
}

func TestEmitStructMemberLoadRecursesThroughNestedMember(t *testing.T) {
	g, buf, types := newTestGen()
	structID, intID := buildPairStruct(types)
	outerID := types.NewStruct(ctypes.Struct, "wrap")
	types.At(outerID).Size = 8
	types.At(outerID).Fields = []ctypes.Field{{Name: "inner", Type: structID, Offset: 0}}

	outer := ast.NewLocalVar(token.Pos{}, outerID, "w")
	outer.Offset = -24
	innerMember := ast.NewStructMember(token.Pos{}, structID, outer, "inner")
	f := g.fieldOf(structID, "y")

	g.emitStructMemberLoad(innerMember, f, 0)
	out := g.flush(buf)

	if !strings.Contains(out, "movslq -20(%rbp), %rax") {
		t.Errorf("expected the nested field at -24+0+4=-20, got:\n%s", out)
	}
	_ = intID
}

func TestEmitSaveDispatchesOnLvalueKind(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	v := ast.NewLocalVar(token.Pos{}, intID, "x")
	v.Offset = -4

	g.emitSave(v)
	out := g.flush(buf)

	if !strings.Contains(out, "mov %eax, -4(%rbp)") {
		t.Errorf("expected a direct local store, got:\n%s", out)
	}
}

func TestEmitDeclInitZeroFillsGapBeforeFirstInit(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	init := ast.NewInit(token.Pos{}, intID, ast.NewInt(token.Pos{}, intID, 5), 8)

	g.emitDeclInit(intID, []*ast.Node{init}, -16, 12)
	out := g.flush(buf)

	if !strings.Contains(out, "movq $0, -16(%rbp)") {
		t.Errorf("expected the 8-byte gap before the initializer zeroed, got:\n%s", out)
	}
	if !strings.Contains(out, "movl $5, -8(%rbp)") {
		t.Errorf("expected the literal stored at its own offset, got:\n%s", out)
	}
}

func TestEmitBinopCmpSwapsOperandsForGreaterThan(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	left := ast.NewInt(token.Pos{}, intID, 1)
	right := ast.NewInt(token.Pos{}, intID, 2)
	gt := ast.NewBinary(token.Pos{}, ast.Op(token.Kind('>')), intID, left, right)

	g.emitBinopCmp(gt)
	out := g.flush(buf)

	if !strings.Contains(out, "setl %al") {
		t.Errorf("expected '>' to be lowered via a swapped setl, got:\n%s", out)
	}
}

func TestEmitBinopCmpUnsignedUsesUnsignedSetcc(t *testing.T) {
	g, buf, types := newTestGen()
	uintID := types.Clone(types.Int())
	types.At(uintID).Unsigned = true
	left := ast.NewInt(token.Pos{}, uintID, 1)
	right := ast.NewInt(token.Pos{}, uintID, 2)
	lt := ast.NewBinary(token.Pos{}, ast.Op(token.Kind('<')), uintID, left, right)

	g.emitBinopCmp(lt)
	out := g.flush(buf)

	if !strings.Contains(out, "setb %al") {
		t.Errorf("expected an unsigned '<' to use setb, got:\n%s", out)
	}
}

func TestEmitCopyStructCopiesWholeObjectInEightByteChunks(t *testing.T) {
	g, buf, types := newTestGen()
	structID, _ := buildPairStruct(types)
	types.At(structID).Size = 16
	to := ast.NewLocalVar(token.Pos{}, structID, "a")
	to.Offset = -16
	from := ast.NewLocalVar(token.Pos{}, structID, "b")
	from.Offset = -32

	g.emitCopyStruct(from, to)
	out := g.flush(buf)

	if countOccurrences(out, "movq") < 4 {
		t.Errorf("expected two 8-byte load/store pairs for a 16-byte struct, got:\n%s", out)
	}
	if !strings.Contains(out, "push %rcx") || !strings.Contains(out, "pop %rcx") {
		t.Errorf("expected %%rcx saved and restored around the copy, got:\n%s", out)
	}
}
