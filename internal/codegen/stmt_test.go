package codegen

import (
	"strings"
	"testing"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/token"
)

func TestGenStmtIfWithoutElseJumpsPastThen(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	cond := ast.NewInt(token.Pos{}, intID, 1)
	then := ast.NewReturn(token.Pos{}, ast.NewInt(token.Pos{}, intID, 0))
	ifNode := ast.NewIf(token.Pos{}, cond, then, nil)

	g.genStmt(ifNode)
	out := g.flush(buf)

	if countOccurrences(out, "if_end") != 2 {
		t.Errorf("expected the if_end label to appear twice (jump target + definition), got:\n%s", out)
	}
	if strings.Contains(out, "if_else") {
		t.Errorf("a two-armed if should not appear without an else branch, got:\n%s", out)
	}
	if !strings.Contains(out, "je ") {
		t.Errorf("expected a conditional jump over the then branch, got:\n%s", out)
	}
}

func TestGenStmtIfWithElseJumpsAroundBothArms(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	cond := ast.NewInt(token.Pos{}, intID, 1)
	then := ast.NewReturn(token.Pos{}, ast.NewInt(token.Pos{}, intID, 1))
	els := ast.NewReturn(token.Pos{}, ast.NewInt(token.Pos{}, intID, 2))
	ifNode := ast.NewIf(token.Pos{}, cond, then, els)

	g.genStmt(ifNode)
	out := g.flush(buf)

	if !strings.Contains(out, "if_else") {
		t.Errorf("expected an else label, got:\n%s", out)
	}
	if countOccurrences(out, "if_end") != 2 {
		t.Errorf("expected if_end as both a jmp target and a label, got:\n%s", out)
	}
	if countOccurrences(out, "ret") != 2 {
		t.Errorf("expected both arms' return to be emitted, got:\n%s", out)
	}
}

func TestGenStmtLabelAndJump(t *testing.T) {
	g, buf, _ := newTestGen()
	label := ast.NewLabel(token.Pos{}, "top", ".Ltop")
	jump := ast.NewJump(token.Pos{}, "top", ".Ltop")

	g.genStmt(label)
	g.genStmt(jump)
	out := g.flush(buf)

	if !strings.Contains(out, ".Ltop:") {
		t.Errorf("expected the label definition, got:\n%s", out)
	}
	if !strings.Contains(out, "jmp .Ltop") {
		t.Errorf("expected an unconditional jump to the label, got:\n%s", out)
	}
}

func TestGenStmtReturnWithoutValueSkipsGenExpr(t *testing.T) {
	g, buf, _ := newTestGen()
	ret := ast.NewReturn(token.Pos{}, nil)

	g.genStmt(ret)
	out := g.flush(buf)

	if !strings.Contains(out, "leave") || !strings.Contains(out, "ret") {
		t.Errorf("expected leave/ret even for a valueless return, got:\n%s", out)
	}
}

func TestGenStmtCompoundRunsEachStatementInOrder(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	first := ast.NewLabel(token.Pos{}, "a", ".La")
	second := ast.NewLabel(token.Pos{}, "b", ".Lb")
	body := ast.NewCompoundStmt(token.Pos{}, []*ast.Node{first, second, ast.NewReturn(token.Pos{}, ast.NewInt(token.Pos{}, intID, 0))})

	g.genStmt(body)
	out := g.flush(buf)

	ia, ib := strings.Index(out, ".La:"), strings.Index(out, ".Lb:")
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("expected .La: before .Lb:, got:\n%s", out)
	}
}

func TestGenLocalDeclWithNoInitEmitsNothing(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	v := ast.NewLocalVar(token.Pos{}, intID, "x")
	decl := ast.NewDecl(token.Pos{}, v)

	g.genLocalDecl(decl)
	out := g.flush(buf)

	if out != "" {
		t.Errorf("a local decl with no initializer list should emit nothing, got:\n%s", out)
	}
}

func TestGenLocalDeclWithLiteralInitStoresDirectly(t *testing.T) {
	g, buf, types := newTestGen()
	intID := types.Int()
	v := ast.NewLocalVar(token.Pos{}, intID, "x")
	v.Offset = -4
	decl := ast.NewDecl(token.Pos{}, v)
	decl.InitList = []*ast.Node{ast.NewInit(token.Pos{}, intID, ast.NewInt(token.Pos{}, intID, 9), 0)}

	g.genLocalDecl(decl)
	out := g.flush(buf)

	if !strings.Contains(out, "movl $9, -4(%rbp)") {
		t.Errorf("expected a direct literal store at the variable's offset, got:\n%s", out)
	}
}
