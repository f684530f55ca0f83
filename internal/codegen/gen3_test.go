package codegen

import (
	"strings"
	"testing"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

func TestGenExprLiteralFloatQueuesPendingLiteral(t *testing.T) {
	g, buf, types := newTestGen()
	doubleID := types.Double()
	lit := ast.NewFloat(token.Pos{}, doubleID, 2.5)

	g.genExpr(lit)
	out := g.flush(buf)

	if lit.Label == "" {
		t.Fatalf("expected a .data label to be assigned to the float literal")
	}
	if !strings.Contains(out, "movsd "+lit.Label+"(%rip), %xmm0") {
		t.Errorf("expected a RIP-relative load of the cached literal, got:\n%s", out)
	}
	if len(g.pendingLiterals) != 1 {
		t.Errorf("expected the literal to be queued for later flush, got %d pending", len(g.pendingLiterals))
	}
}

func TestGenExprDerefLoadsThroughPointer(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	ptrID := types.NewPtr(intID)
	p := ast.NewLocalVar(token.Pos{}, ptrID, "p")
	deref := ast.NewUnary(token.Pos{}, ast.DEREF, intID, p)

	g.genExpr(deref)
	out := g.flush(buf)

	if !strings.Contains(out, "movq (%rbp), %rax") {
		t.Errorf("expected the pointer value loaded from its local slot, got:\n%s", out)
	}
	if !strings.Contains(out, "movslq (%rax), %rax") {
		t.Errorf("expected the pointee int loaded (sign-extended) through %%rax, got:\n%s", out)
	}
}

func TestGenExprUnaryNotProducesZeroOrOne(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	operand := ast.NewInt(token.Pos{}, intID, 0)
	not := ast.NewUnary(token.Pos{}, ast.Op(token.Kind('!')), intID, operand)

	g.genExpr(not)
	out := g.flush(buf)

	if !strings.Contains(out, "sete %al") || !strings.Contains(out, "movzb %al, %eax") {
		t.Errorf("expected a sete/movzb sequence for logical not, got:\n%s", out)
	}
}

func TestGenBinopAssignRoutesStructsThroughCopy(t *testing.T) {
	g, buf, types := newTestGen()
	structID := types.NewStruct(ctypes.Struct, "pair")
	types.At(structID).Size = 16
	lhs := ast.NewLocalVar(token.Pos{}, structID, "a")
	rhs := ast.NewLocalVar(token.Pos{}, structID, "b")
	assign := ast.NewBinary(token.Pos{}, ast.Op(token.Kind('=')), structID, lhs, rhs)

	g.genBinop(assign)
	out := g.flush(buf)

	if !strings.Contains(out, "movq %rax, %rcx") {
		t.Errorf("expected the 8-byte-at-a-time struct copy loop, got:\n%s", out)
	}
}

func TestGenBinopLogAndShortCircuitsOnFalse(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	left := ast.NewInt(token.Pos{}, intID, 0)
	right := ast.NewInt(token.Pos{}, intID, 1)
	and := ast.NewBinary(token.Pos{}, ast.Op(token.P_LOGAND), intID, left, right)

	g.genBinop(and)
	out := g.flush(buf)

	if !strings.Contains(out, "and_end") {
		t.Errorf("expected a short-circuit end label, got:\n%s", out)
	}
	if !strings.Contains(out, "je ") {
		t.Errorf("expected a je past the right operand when the left is false, got:\n%s", out)
	}
}

func TestGenBinopCommaEvaluatesBothDiscardingLeft(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	left := ast.NewInt(token.Pos{}, intID, 1)
	right := ast.NewInt(token.Pos{}, intID, 2)
	comma := ast.NewBinary(token.Pos{}, ast.Op(token.Kind(',')), intID, left, right)

	g.genBinop(comma)
	out := g.flush(buf)

	if countOccurrences(out, "mov") < 2 {
		t.Errorf("expected both comma operands to be evaluated, got:\n%s", out)
	}
	if !strings.Contains(out, "$2, %eax") {
		t.Errorf("expected the right operand's value to be the last one loaded into %%eax, got:\n%s", out)
	}
}

func TestGenPtrArithScalesIntByElementSize(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	ptrID := types.NewPtr(intID) // elem size 4
	p := ast.NewLocalVar(token.Pos{}, ptrID, "p")
	n := ast.NewInt(token.Pos{}, intID, 3)
	add := ast.NewBinary(token.Pos{}, ast.Op(token.Kind('+')), ptrID, p, n)

	g.genPtrArith(add)
	out := g.flush(buf)

	if !strings.Contains(out, "imul $4, %rax") {
		t.Errorf("expected the integer operand scaled by the 4-byte element size, got:\n%s", out)
	}
	if !strings.Contains(out, "add %rcx, %rax") {
		t.Errorf("expected the scaled offset added to the pointer, got:\n%s", out)
	}
}

func TestGenPtrArithDividesPointerDifferenceByElementSize(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	ptrID := types.NewPtr(intID) // elem size 4
	a := ast.NewLocalVar(token.Pos{}, ptrID, "a")
	b := ast.NewLocalVar(token.Pos{}, ptrID, "b")
	sub := ast.NewBinary(token.Pos{}, ast.Op(token.Kind('-')), intID, a, b)

	g.genPtrArith(sub)
	out := g.flush(buf)

	if !strings.Contains(out, "idivq %rcx") {
		t.Errorf("expected the byte difference divided by the element size, got:\n%s", out)
	}
}

func TestGenIncDecPostIncPreservesOriginalValue(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	v := ast.NewLocalVar(token.Pos{}, intID, "x")
	inc := ast.NewUnary(token.Pos{}, ast.POST_INC, intID, v)

	g.genIncDec(inc)
	out := g.flush(buf)

	if !strings.Contains(out, "push %rax") || !strings.Contains(out, "pop %rax") {
		t.Errorf("expected the pre-increment value saved across the store for a post-increment, got:\n%s", out)
	}
	if !strings.Contains(out, "add $1, %eax") {
		t.Errorf("expected the integer step added, got:\n%s", out)
	}
}

func TestGenIncDecPreDecOnPointerStepsByElementSize(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	ptrID := types.NewPtr(intID) // elem size 4
	p := ast.NewLocalVar(token.Pos{}, ptrID, "p")
	dec := ast.NewUnary(token.Pos{}, ast.PRE_DEC, ptrID, p)

	g.genIncDec(dec)
	out := g.flush(buf)

	if !strings.Contains(out, "sub $4, %rax") {
		t.Errorf("expected a pointer predecrement to step by the 4-byte element size, got:\n%s", out)
	}
	if strings.Contains(out, "push %rax") {
		t.Errorf("a pre-decrement should not stash the original value, got:\n%s", out)
	}
}

func TestGenTernaryBranchesToElseOnFalse(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	cond := ast.NewInt(token.Pos{}, intID, 0)
	then := ast.NewInt(token.Pos{}, intID, 1)
	els := ast.NewInt(token.Pos{}, intID, 2)
	tern := ast.NewTernary(token.Pos{}, intID, cond, then, els)

	g.genTernary(tern)
	out := g.flush(buf)

	if !strings.Contains(out, "tern_else") || !strings.Contains(out, "tern_end") {
		t.Errorf("expected both ternary branch labels, got:\n%s", out)
	}
	if !strings.Contains(out, "jmp ") {
		t.Errorf("expected the then-branch to jump past the else-branch, got:\n%s", out)
	}
}
