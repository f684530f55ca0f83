package ast

import (
	"testing"

	"github.com/kakitgogogo/mcc/internal/token"
)

var token0 = token.Pos{}

func TestLabelGenMintsDistinctNames(t *testing.T) {
	g := NewLabelGen()
	if g.Label() == g.Label() {
		t.Fatal("successive labels must differ")
	}
	if g.Tmp() == g.Tmp() {
		t.Fatal("successive temporaries must differ")
	}
}

func TestStaticLabelPerName(t *testing.T) {
	g := NewLabelGen()
	a1 := g.Static("counter")
	a2 := g.Static("counter")
	b1 := g.Static("other")
	if a1 == a2 {
		t.Fatalf("two static locals named %q in one TU must get distinct labels, got %q twice", "counter", a1)
	}
	if a1 == b1 {
		t.Fatalf("different names should not collide: %q vs %q", a1, b1)
	}
}

func TestIsLvalue(t *testing.T) {
	v := NewLocalVar(token0, 0, "x")
	if !v.IsLvalue() {
		t.Error("local var should be an lvalue")
	}
	lit := NewInt(token0, 0, 1)
	if lit.IsLvalue() {
		t.Error("literal should not be an lvalue")
	}
}
