package cscope

import (
	"testing"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

func TestLookupLocalShadowsGlobal(t *testing.T) {
	s := New()
	g := ast.NewGlobalVar(token.Pos{}, 0, "x")
	s.AddGlobal("x", g)

	s.In(ctypes.InvalidID)
	l := ast.NewLocalVar(token.Pos{}, 0, "x")
	s.Add("x", l)

	got, ok := s.Get("x")
	if !ok || got != l {
		t.Fatalf("Get(x) = %v, want local shadow", got)
	}
	s.Out()
	got, ok = s.Get("x")
	if !ok || got != g {
		t.Fatalf("after Out, Get(x) = %v, want global", got)
	}
}

func TestTagsAreIndependentNamespace(t *testing.T) {
	s := New()
	s.AddTag("node", ctypes.ID(3))
	if id, ok := s.GetTag("node"); !ok || id != 3 {
		t.Fatalf("GetTag(node) = %v,%v", id, ok)
	}
	if _, ok := s.Get("node"); ok {
		t.Fatal("tag name must not leak into the ordinary identifier namespace")
	}
}

func TestLoopStack(t *testing.T) {
	s := New()
	if s.IsInLoop() {
		t.Fatal("not yet in a loop")
	}
	s.InLoop(".Lcontinue1", ".Lbreak1")
	if !s.IsInLoop() || s.ContinueLabel() != ".Lcontinue1" || s.BreakLabelLoop() != ".Lbreak1" {
		t.Fatal("loop context not recorded")
	}
	s.OutLoop()
	if s.IsInLoop() {
		t.Fatal("loop context should be popped")
	}
}

func TestSwitchCaseAccumulation(t *testing.T) {
	s := New()
	s.InSwitch(".Lbreak1")
	s.AddCase(CaseRange{Lo: 1, Hi: 1, Label: ".L1"})
	s.AddCase(CaseRange{Lo: 5, Hi: 9, Label: ".L2"})
	s.SetDefaultLabel(".Ldefault")

	if len(s.Cases()) != 2 {
		t.Fatalf("got %d cases, want 2", len(s.Cases()))
	}
	if s.DefaultLabel() != ".Ldefault" {
		t.Fatalf("default label = %q", s.DefaultLabel())
	}
	s.OutSwitch()
	if s.IsInSwitch() {
		t.Fatal("switch context should be popped")
	}
}

func TestClearLocalRecoverLocal(t *testing.T) {
	s := New()
	s.In(ctypes.InvalidID)
	s.Add("x", ast.NewLocalVar(token.Pos{}, 0, "x"))

	s.ClearLocal()
	if _, ok := s.Get("x"); ok {
		t.Fatal("ClearLocal must hide the local scope chain")
	}
	s.RecoverLocal()
	if _, ok := s.Get("x"); !ok {
		t.Fatal("RecoverLocal must restore the stashed scope chain")
	}
}
