package ctypes

// align rounds n up to the next multiple of a (a must be a power of two).
func align(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) &^ (a - 1)
}

// Flatten expands anonymous struct/union members into their parent's
// field list at the position they occur, so a member of an anonymous
// nested struct can be looked up directly on the enclosing type (C11
// 6.7.2.1p13). It must run before LayoutStruct/LayoutUnion.
func Flatten(a *Arena, fields []Field) []Field {
	var out []Field
	for _, f := range fields {
		if f.Name == "" {
			if ft := a.At(f.Type); ft.Kind == Struct || ft.Kind == Union {
				out = append(out, Flatten(a, ft.Fields)...)
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// LayoutStruct assigns Offset/BitOff to every field of the struct id and
// sets its own Size/Align, applying C11 6.7.2.1's bitfield packing rules:
// consecutive bitfields share a storage unit sized by their declared
// type as long as they fit; a zero-width bitfield forces the next field
// into a fresh unit; a trailing incomplete array (flexible array member)
// contributes no size.
func LayoutStruct(a *Arena, id ID) {
	t := a.At(id)
	offset := 0
	maxAlign := 1

	unitOpen := false
	unitStart := 0
	unitSize := 0
	bitPos := 0

	flush := func() {
		if unitOpen {
			if end := unitStart + unitSize; end > offset {
				offset = end
			}
			unitOpen = false
		}
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		ft := a.At(f.Type)
		if ft.Align > maxAlign {
			maxAlign = ft.Align
		}

		if f.IsBit {
			if f.BitSize == 0 {
				flush()
				continue
			}
			sz := ft.Size
			if !unitOpen || bitPos+f.BitSize > unitSize*8 {
				flush()
				unitStart = align(offset, ft.Align)
				unitSize = sz
				bitPos = 0
				unitOpen = true
			}
			f.Offset = unitStart
			f.BitOff = bitPos
			bitPos += f.BitSize
			continue
		}

		flush()
		if ft.Kind == Array && ft.Len < 0 {
			f.Offset = align(offset, ft.Align)
			continue
		}
		offset = align(offset, ft.Align)
		f.Offset = offset
		offset += ft.Size
	}
	flush()

	t.Size = align(offset, maxAlign)
	t.Align = maxAlign
}

// LayoutUnion assigns every field offset 0 and sets the union's own
// Size/Align to the widest member (C11 6.7.2.1p16).
func LayoutUnion(a *Arena, id ID) {
	t := a.At(id)
	size, maxAlign := 0, 1
	for i := range t.Fields {
		f := &t.Fields[i]
		ft := a.At(f.Type)
		f.Offset = 0
		if f.IsBit {
			f.BitOff = 0
		}
		if ft.Size > size {
			size = ft.Size
		}
		if ft.Align > maxAlign {
			maxAlign = ft.Align
		}
	}
	t.Size = align(size, maxAlign)
	t.Align = maxAlign
}
