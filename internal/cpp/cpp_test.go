package cpp

import (
	"testing"

	"github.com/kakitgogogo/mcc/internal/diag"
	"github.com/kakitgogogo/mcc/internal/lexer"
	"github.com/kakitgogogo/mcc/internal/token"
)

func expandSource(t *testing.T, src string) []token.Token {
	t.Helper()
	bag := diag.New(true, false)
	l := lexer.New(bag)
	l.PushString("t.c", []byte(src))
	p := New(bag, l, nil)
	var toks []token.Token
	for {
		tok := p.NextToken()
		if tok.Kind == token.TEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func spellings(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.String()
	}
	return out
}

func assertSpellings(t *testing.T, src string, want []string) {
	t.Helper()
	got := spellings(expandSource(t, src))
	if len(got) != len(want) {
		t.Fatalf("expand(%q) = %v; want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expand(%q) = %v; want %v", src, got, want)
		}
	}
}

func TestObjectMacro(t *testing.T) {
	assertSpellings(t, "#define N 42\nN+N", []string{"42", "+", "42"})
}

func TestFunctionMacro(t *testing.T) {
	assertSpellings(t, "#define ADD(a,b) ((a)+(b))\nADD(1,2)",
		[]string{"(", "(", "1", ")", "+", "(", "2", ")", ")"})
}

func TestSelfReferentialMacroIsBluePainted(t *testing.T) {
	assertSpellings(t, "#define FOO FOO+1\nFOO", []string{"FOO", "+", "1"})
}

func TestIndirectSelfReference(t *testing.T) {
	assertSpellings(t, "#define A B\n#define B A\nA", []string{"A"})
}

func TestStringize(t *testing.T) {
	toks := expandSource(t, "#define STR(x) #x\nSTR(hello  world)")
	if len(toks) != 1 || toks[0].Kind != token.TSTRING || string(toks[0].Str) != "hello world" {
		t.Fatalf("got %+v", toks)
	}
}

func TestTokenPaste(t *testing.T) {
	assertSpellings(t, "#define CAT(a,b) a##b\nCAT(foo,bar)", []string{"foobar"})
}

func TestVariadicMacro(t *testing.T) {
	assertSpellings(t, "#define LOG(fmt,...) f(fmt,__VA_ARGS__)\nLOG(\"x\",1,2)",
		[]string{"f", "(", "\"x\"", ",", "1", ",", "2", ")"})
}

func TestVariadicCommaElision(t *testing.T) {
	assertSpellings(t, "#define LOG(fmt,...) f(fmt,##__VA_ARGS__)\nLOG(\"x\")",
		[]string{"f", "(", "\"x\"", ")"})
}

func TestVariadicCommaKeptWhenArgsNonEmpty(t *testing.T) {
	bag := diag.New(true, false)
	l := lexer.New(bag)
	l.PushString("t.c", []byte("#define LOG(fmt,...) f(fmt,##__VA_ARGS__)\nLOG(\"x\",1,2)"))
	p := New(bag, l, nil)
	var toks []token.Token
	for {
		tok := p.NextToken()
		if tok.Kind == token.TEOF {
			break
		}
		toks = append(toks, tok)
	}
	if bag.HasError() {
		t.Fatalf("expansion reported an error; a non-empty ,##__VA_ARGS__ must not paste the comma: %v", spellings(toks))
	}
	want := []string{"f", "(", "\"x\"", ",", "1", ",", "2", ")"}
	got := spellings(toks)
	if len(got) != len(want) {
		t.Fatalf("expand = %v; want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d = %q, want %q (full: %v)", i, got[i], w, got)
		}
	}
}

func TestConditionalInclusion(t *testing.T) {
	assertSpellings(t, "#if 1\nA\n#else\nB\n#endif", []string{"A"})
	assertSpellings(t, "#if 0\nA\n#elif 1\nB\n#else\nC\n#endif", []string{"B"})
	assertSpellings(t, "#ifdef FOO\nA\n#endif\nB", []string{"B"})
}

func TestNestedConditionalInsideInactiveParent(t *testing.T) {
	assertSpellings(t, "#if 0\n#if 1\nA\n#endif\nB\n#endif\nC", []string{"C"})
}

func TestDefinedOperator(t *testing.T) {
	assertSpellings(t, "#define FOO\n#if defined(FOO) && !defined(BAR)\nYES\n#endif", []string{"YES"})
}

func TestMacroArgumentFullyExpandedBeforeSubstitution(t *testing.T) {
	assertSpellings(t, "#define X 1\n#define ID(a) a\nID(X)", []string{"1"})
}

func TestPragmaOnce(t *testing.T) {
	bag := diag.New(true, false)
	l := lexer.New(bag)
	l.PushString("t.c", []byte("#pragma once\nA"))
	p := New(bag, l, nil)
	var toks []token.Token
	for {
		tok := p.NextToken()
		if tok.Kind == token.TEOF {
			break
		}
		toks = append(toks, tok)
	}
	if len(toks) != 1 || toks[0].Name != "A" {
		t.Fatalf("got %+v", toks)
	}
}

func TestUnderscorePragmaOperator(t *testing.T) {
	assertSpellings(t, `_Pragma("once") A`, []string{"A"})
}

func TestLineConstExpr(t *testing.T) {
	assertSpellings(t, "#if (1+2)*3 == 9\nYES\n#endif", []string{"YES"})
	assertSpellings(t, "#if 1 << 4 == 16\nYES\n#endif", []string{"YES"})
}
