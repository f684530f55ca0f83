package lexer

import (
	"testing"

	"github.com/kakitgogogo/mcc/internal/diag"
	"github.com/kakitgogogo/mcc/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	bag := diag.New(true, false)
	l := New(bag)
	l.PushString("t.c", []byte(src))
	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Kind == token.TEOF {
			return toks
		}
		if tok.Kind == token.TSPACE || tok.Kind == token.TNEWLINE {
			continue
		}
		toks = append(toks, tok)
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	for _, name := range []string{"x", "_foo", "foo_bar123"} {
		toks := lexAll(t, name)
		if len(toks) != 1 || toks[0].Kind != token.TIDENT || toks[0].Name != name {
			t.Errorf("lex(%q) = %+v; want single ident %q", name, toks, name)
		}
	}
}

// Non-ASCII identifier characters only reach the lexer through a \u/\U
// universal character name; raw UTF-8 source bytes are not an
// identifier-start/continue class on their own.
func TestIdentifierWithUCN(t *testing.T) {
	toks := lexAll(t, `\u00e9abc`)
	if len(toks) != 1 || toks[0].Kind != token.TIDENT {
		t.Fatalf("got %+v", toks)
	}
	if toks[0].Name != "\u00e9abc" {
		t.Fatalf("got %q", toks[0].Name)
	}
}

func TestEscapeSequenceEquivalence(t *testing.T) {
	a := lexAll(t, `"\x24"`)
	b := lexAll(t, `"$"`)
	if string(a[0].Str) != string(b[0].Str) {
		t.Fatalf("%q != %q", a[0].Str, b[0].Str)
	}
	c := lexAll(t, `"\xC2\xA2"`)
	d := lexAll(t, `"¢"`)
	if string(c[0].Str) != string(d[0].Str) {
		t.Fatalf("%q != %q", c[0].Str, d[0].Str)
	}
}

func TestNumberLexing(t *testing.T) {
	for _, s := range []string{"123", "3.14", "0x1p-3", "1e+10", "0xFFu", "1.5f"} {
		toks := lexAll(t, s)
		if len(toks) != 1 || toks[0].Kind != token.TNUMBER || toks[0].Name != s {
			t.Errorf("lex(%q) = %+v", s, toks)
		}
	}
}

func TestDigraphs(t *testing.T) {
	toks := lexAll(t, "<: :> <% %> %: %:%:")
	want := []token.Kind{token.Kind('['), token.Kind(']'), token.Kind('{'), token.Kind('}'), token.Kind('#'), token.P_HASHHASH}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLeadingSpaceAndBeginOfLine(t *testing.T) {
	bag := diag.New(true, false)
	l := New(bag)
	l.PushString("t.c", []byte("a  b\nc"))
	toks := []token.Token{l.NextToken(), l.NextToken(), l.NextToken(), l.NextToken()}
	if toks[0].LeadingSpace || !toks[0].BeginOfLine {
		t.Errorf("tok0: %+v", toks[0])
	}
	if !toks[1].LeadingSpace {
		t.Errorf("tok1 (b) should have leading space: %+v", toks[1])
	}
	if toks[2].Kind != token.TNEWLINE {
		t.Errorf("tok2 should be newline: %+v", toks[2])
	}
	if !toks[3].BeginOfLine {
		t.Errorf("tok3 (c) should begin a line: %+v", toks[3])
	}
}

func TestUngetToken(t *testing.T) {
	bag := diag.New(true, false)
	l := New(bag)
	l.PushString("t.c", []byte("a b"))
	first := l.NextToken()
	l.UngetToken(first)
	again := l.NextToken()
	if again.Name != first.Name {
		t.Fatalf("got %+v, want %+v", again, first)
	}
}

func TestPunctuators(t *testing.T) {
	toks := lexAll(t, "->+=-=<<=>>===!=<=>=&&||")
	want := []token.Kind{
		token.P_ARROW, token.P_ASSIGN_ADD, token.P_ASSIGN_SUB, token.P_ASSIGN_SAL,
		token.P_ASSIGN_SAR, token.P_EQ, token.P_NE, token.P_LE, token.P_GE,
		token.P_LOGAND, token.P_LOGOR,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens %+v, want %d", len(toks), toks, len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}
