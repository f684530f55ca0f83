package parser

import (
	"bytes"
	"testing"

	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

func TestCharLiteralTypeByEncoding(t *testing.T) {
	types := ctypes.NewArena()
	p := &Parser{types: types}

	cases := []struct {
		enc  token.Encoding
		want ctypes.ID
	}{
		{token.EncNone, types.Int()},
		{token.EncWChar, types.Int()},
		{token.EncChar16, types.UShort()},
		{token.EncChar32, types.UInt()},
	}
	for _, c := range cases {
		if got := p.charLiteralType(c.enc); got != c.want {
			t.Errorf("charLiteralType(%v) = %v, want %v", c.enc, got, c.want)
		}
	}
}

func TestDecodeUTF8RunesRoundTripsMultibyteText(t *testing.T) {
	// "h" + U+54C8 (哈) encoded as UTF-8.
	raw := append([]byte("h"), []byte{0xE5, 0x93, 0x88}...)
	runes := decodeUTF8Runes(raw)
	want := []rune{'h', 0x54C8}
	if len(runes) != len(want) || runes[0] != want[0] || runes[1] != want[1] {
		t.Fatalf("got %v, want %v", runes, want)
	}
}

func TestEncodeUTF16LEMatchesCanonicalLittleEndianOrdering(t *testing.T) {
	// Spec example: U+54C8 encodes to the two bytes 0xC8, 0x54 (low byte
	// first), followed by a two-byte NUL terminator.
	got := encodeUTF16LE([]rune{0x54C8})
	want := []byte{0xC8, 0x54, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEncodeUTF16LESplitsSupplementaryPlaneIntoSurrogatePair(t *testing.T) {
	got := encodeUTF16LE([]rune{0x1F600}) // outside the BMP
	if len(got) != 6 {
		t.Fatalf("got %d bytes, want 6 (one surrogate pair plus a 2-byte terminator): % x", len(got), got)
	}
	hi := uint16(got[0]) | uint16(got[1])<<8
	lo := uint16(got[2]) | uint16(got[3])<<8
	if hi < 0xD800 || hi > 0xDBFF {
		t.Fatalf("got high surrogate %#x, want one in [0xD800,0xDBFF]", hi)
	}
	if lo < 0xDC00 || lo > 0xDFFF {
		t.Fatalf("got low surrogate %#x, want one in [0xDC00,0xDFFF]", lo)
	}
}

func TestEncodeUTF32LEIsLittleEndianWithFourByteTerminator(t *testing.T) {
	got := encodeUTF32LE([]rune{0x54C8})
	want := []byte{0xC8, 0x54, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEncodeStringLiteralPlainStringIsUTF8WithOneByteTerminator(t *testing.T) {
	types := ctypes.NewArena()
	elemTy, buf := encodeStringLiteral(types, token.EncNone, []rune{'h', 'i'})
	if elemTy != types.Char() {
		t.Fatalf("got element type %v, want char", elemTy)
	}
	want := []byte{'h', 'i', 0}
	if !bytes.Equal(buf, want) {
		t.Fatalf("got % x, want % x", buf, want)
	}
}

func TestEncodeStringLiteralChar16UsesUnsignedShortElements(t *testing.T) {
	types := ctypes.NewArena()
	elemTy, buf := encodeStringLiteral(types, token.EncChar16, []rune{0x54C8})
	if elemTy != types.UShort() {
		t.Fatalf("got element type %v, want unsigned short", elemTy)
	}
	if len(buf) != 4 {
		t.Fatalf("got %d bytes, want 4 (one UTF-16 code unit plus terminator)", len(buf))
	}
}

func TestEncodeStringLiteralChar32UsesUnsignedIntElements(t *testing.T) {
	types := ctypes.NewArena()
	elemTy, buf := encodeStringLiteral(types, token.EncChar32, []rune{0x54C8})
	if elemTy != types.UInt() {
		t.Fatalf("got element type %v, want unsigned int", elemTy)
	}
	if len(buf) != 8 {
		t.Fatalf("got %d bytes, want 8 (one UTF-32 code point plus terminator)", len(buf))
	}
}

func TestReadStringLiteralEncodesWidePrefixAndSizesArrayInElements(t *testing.T) {
	toplevel, types := mustParse(t, `
		unsigned short *f(void) {
			return u"hi";
		}
	`)
	fn := toplevel[0]
	ret := fn.Body.List[0].ReturnVal
	// The array lvalue decays to a pointer on return; walk down to the
	// STATIC_LOCAL_VAR the decay wraps to inspect the literal directly.
	lit := ret
	for lit.Operand != nil {
		lit = lit.Operand
	}
	arrTy := types.At(lit.Type)
	if arrTy.Kind != ctypes.Array {
		t.Fatalf("got literal type kind %v, want Array", arrTy.Kind)
	}
	if arrTy.Elem != types.UShort() {
		t.Fatalf("got element type %v, want unsigned short (%v)", arrTy.Elem, types.UShort())
	}
	// "hi" -> 2 UTF-16 code units + 1 terminator unit = 3 elements.
	if arrTy.Len != 3 {
		t.Fatalf("got array length %d, want 3", arrTy.Len)
	}
	if len(lit.StrVal) != 6 {
		t.Fatalf("got %d encoded bytes, want 6", len(lit.StrVal))
	}
}
