package ctypes

// Compatible implements the structural compatibility check of C11 6.2.7,
// restricted to what this compiler actually needs it for: redeclaration
// checking and struct/union field-list comparison. Pointer fields inside
// a struct/union comparison are treated as mutually compatible without
// recursing into their pointee types, which is what breaks the infinite
// recursion a naive implementation would hit on a self-referential struct
// such as `struct node { struct node *next; };` comparing against itself.
func Compatible(a *Arena, x, y ID) bool {
	return compatible(a, x, y, false)
}

func compatible(a *Arena, x, y ID, withinStruct bool) bool {
	if x == y {
		return true
	}
	tx, ty := a.At(x), a.At(y)
	if withinStruct && tx.Kind == Ptr && ty.Kind == Ptr {
		return true
	}
	if tx.Kind != ty.Kind {
		return false
	}
	switch tx.Kind {
	case Ptr:
		return compatible(a, tx.Elem, ty.Elem, withinStruct)
	case Array:
		if tx.Len >= 0 && ty.Len >= 0 && tx.Len != ty.Len {
			return false
		}
		return compatible(a, tx.Elem, ty.Elem, withinStruct)
	case Struct, Union:
		if tx.Tag != "" && ty.Tag != "" {
			return tx.Tag == ty.Tag
		}
		if len(tx.Fields) != len(ty.Fields) {
			return false
		}
		for i := range tx.Fields {
			if !compatible(a, tx.Fields[i].Type, ty.Fields[i].Type, true) {
				return false
			}
		}
		return true
	case Func:
		if tx.Variadic != ty.Variadic || len(tx.Params) != len(ty.Params) {
			return false
		}
		if !compatible(a, tx.Return, ty.Return, withinStruct) {
			return false
		}
		for i := range tx.Params {
			if !compatible(a, tx.Params[i], ty.Params[i], withinStruct) {
				return false
			}
		}
		return true
	default:
		return tx.Unsigned == ty.Unsigned
	}
}

// rank returns the conversion rank used by UsualArithmeticConversions;
// floats are ordered above every integer kind (C11 6.3.1.8p1).
func rank(a *Arena, id ID) int {
	t := a.At(id)
	switch t.Kind {
	case Float:
		return 100
	case Double:
		return 101
	case LDouble:
		return 102
	default:
		return sizeofRank(t.Kind)
	}
}

// UsualArithmeticConversions implements C11 6.3.1.8: the common type two
// arithmetic operands are converted to before a binary operator applies.
func UsualArithmeticConversions(a *Arena, x, y ID) ID {
	tx, ty := a.At(x), a.At(y)

	if tx.IsFloat() || ty.IsFloat() {
		if rank(a, x) >= rank(a, y) && tx.IsFloat() {
			return x
		}
		if ty.IsFloat() {
			return y
		}
		return x
	}

	// Integer promotion: anything narrower than int promotes to int
	// (C11 6.3.1.1p2); unsignedness of a promoted sub-int type is lost
	// because int can represent every value of a narrower type on this
	// LP64 target.
	px, py := promote(a, x), promote(a, y)
	tx, ty = a.At(px), a.At(py)

	if tx.Unsigned == ty.Unsigned {
		if rank(a, px) >= rank(a, py) {
			return px
		}
		return py
	}
	unsignedID, signedID := px, py
	if tx.Unsigned {
		unsignedID, signedID = px, py
	} else {
		unsignedID, signedID = py, px
	}
	if rank(a, unsignedID) >= rank(a, signedID) {
		return unsignedID
	}
	// Signed type can represent every value of the unsigned type: use it.
	if a.At(signedID).Size > a.At(unsignedID).Size {
		return signedID
	}
	// Otherwise both convert to the unsigned version of the signed type's
	// rank: unsigned long for long, otherwise unsigned long long.
	if a.At(signedID).Kind == Long {
		return a.ULong()
	}
	return a.ULLong()
}

// promote applies integer promotion (C11 6.3.1.1p2): bool/char/short
// (and a plain enum) become int.
func promote(a *Arena, id ID) ID {
	t := a.At(id)
	switch t.Kind {
	case Bool, Char, Short, Enum:
		return a.Int()
	}
	return id
}
