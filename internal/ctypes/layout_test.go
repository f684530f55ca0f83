package ctypes

import "testing"

func TestStructLayoutPadding(t *testing.T) {
	a := NewArena()
	id := a.NewStruct(Struct, "")
	st := a.At(id)
	st.Fields = []Field{
		{Name: "c", Type: a.Char()},
		{Name: "i", Type: a.Int()},
		{Name: "l", Type: a.Long()},
	}
	LayoutStruct(a, id)

	want := []int{0, 4, 8}
	for i, off := range want {
		if got := st.Fields[i].Offset; got != off {
			t.Errorf("field %d offset = %d, want %d", i, got, off)
		}
	}
	if st.Size != 16 {
		t.Errorf("size = %d, want 16", st.Size)
	}
	if st.Align != 8 {
		t.Errorf("align = %d, want 8", st.Align)
	}
}

func TestBitfieldPacking(t *testing.T) {
	a := NewArena()
	id := a.NewStruct(Struct, "")
	st := a.At(id)
	st.Fields = []Field{
		{Name: "a", Type: a.Int(), IsBit: true, BitSize: 1},
		{Name: "b", Type: a.Int(), IsBit: true, BitSize: 2},
	}
	LayoutStruct(a, id)

	if st.Size != 4 {
		t.Errorf("size = %d, want 4", st.Size)
	}
	if st.Fields[0].Offset != 0 || st.Fields[0].BitOff != 0 {
		t.Errorf("field a: %+v", st.Fields[0])
	}
	if st.Fields[1].Offset != 0 || st.Fields[1].BitOff != 1 {
		t.Errorf("field b: %+v", st.Fields[1])
	}
}

func TestBitfieldOverflowOpensNewUnit(t *testing.T) {
	a := NewArena()
	id := a.NewStruct(Struct, "")
	st := a.At(id)
	st.Fields = []Field{
		{Name: "a", Type: a.Int(), IsBit: true, BitSize: 30},
		{Name: "b", Type: a.Int(), IsBit: true, BitSize: 10}, // does not fit remaining 2 bits
	}
	LayoutStruct(a, id)

	if st.Fields[1].Offset != 4 {
		t.Errorf("field b offset = %d, want 4 (new unit)", st.Fields[1].Offset)
	}
	if st.Size != 8 {
		t.Errorf("size = %d, want 8", st.Size)
	}
}

func TestNestedStructLayout(t *testing.T) {
	a := NewArena()
	innerID := a.NewStruct(Struct, "")
	inner := a.At(innerID)
	inner.Fields = []Field{
		{Name: "x", Type: a.Int()},
		{Name: "y", Type: a.Long()},
	}
	LayoutStruct(a, innerID)
	if inner.Size != 16 {
		t.Fatalf("inner size = %d, want 16", inner.Size)
	}

	outerID := a.NewStruct(Struct, "")
	outer := a.At(outerID)
	outer.Fields = []Field{
		{Name: "tag", Type: a.Int()},
		{Name: "nested", Type: innerID},
	}
	LayoutStruct(a, outerID)
	if outer.Size != 24 {
		t.Errorf("outer size = %d, want 24", outer.Size)
	}
	if outer.Fields[1].Offset != 8 {
		t.Errorf("nested offset = %d, want 8", outer.Fields[1].Offset)
	}
}

func TestFlexibleArrayMember(t *testing.T) {
	a := NewArena()
	arrID := a.NewArray(a.Int(), -1)
	id := a.NewStruct(Struct, "")
	st := a.At(id)
	st.Fields = []Field{
		{Name: "n", Type: a.Int()},
		{Name: "data", Type: arrID},
	}
	LayoutStruct(a, id)
	if st.Fields[1].Offset != 4 {
		t.Errorf("flexible member offset = %d, want 4", st.Fields[1].Offset)
	}
	if st.Size != 4 {
		t.Errorf("size = %d, want 4 (flexible member contributes nothing)", st.Size)
	}
}

func TestUnionLayout(t *testing.T) {
	a := NewArena()
	id := a.NewStruct(Union, "")
	u := a.At(id)
	u.Fields = []Field{
		{Name: "i", Type: a.Int()},
		{Name: "d", Type: a.Double()},
	}
	LayoutUnion(a, id)
	if u.Size != 8 || u.Align != 8 {
		t.Errorf("union = size %d align %d, want 8 8", u.Size, u.Align)
	}
	for _, f := range u.Fields {
		if f.Offset != 0 {
			t.Errorf("union field %q offset = %d, want 0", f.Name, f.Offset)
		}
	}
}

func TestAnonymousMemberFlattening(t *testing.T) {
	a := NewArena()
	innerID := a.NewStruct(Struct, "")
	a.At(innerID).Fields = []Field{{Name: "x", Type: a.Int()}}

	flat := Flatten(a, []Field{
		{Name: "tag", Type: a.Int()},
		{Name: "", Type: innerID},
	})
	if len(flat) != 2 || flat[1].Name != "x" {
		t.Fatalf("flatten = %+v", flat)
	}
}

func TestSelfReferentialStructCompatible(t *testing.T) {
	a := NewArena()
	id := a.NewStruct(Struct, "node")
	selfPtr := a.NewPtr(id)
	a.At(id).Fields = []Field{
		{Name: "next", Type: selfPtr},
		{Name: "v", Type: a.Int()},
	}
	if !Compatible(a, id, id) {
		t.Fatal("a self-referential struct type must be compatible with itself")
	}
}

func TestUsualArithmeticConversions(t *testing.T) {
	a := NewArena()
	tests := []struct {
		x, y ID
		want ID
	}{
		{a.Char(), a.Int(), a.Int()},
		{a.Int(), a.Double(), a.Double()},
		{a.Float(), a.Double(), a.Double()},
		{a.UInt(), a.Int(), a.UInt()},
		{a.Long(), a.ULong(), a.ULong()},
		{a.Int(), a.Long(), a.Long()},
	}
	for _, tt := range tests {
		if got := UsualArithmeticConversions(a, tt.x, tt.y); got != tt.want {
			t.Errorf("conv(%v,%v) = %v, want %v", a.At(tt.x).Kind, a.At(tt.y).Kind, a.At(got).Kind, a.At(tt.want).Kind)
		}
	}
}
