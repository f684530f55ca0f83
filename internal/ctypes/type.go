// Package ctypes implements the kind-tagged C type representation and its
// layout/compatibility/conversion rules, grounded on type.h/type.cpp.
//
// Per DESIGN NOTES ("potentially cyclic type graphs"), composite types are
// not linked by Go pointers but by arena indices (ID): a self-referential
// struct such as `struct N { struct N *next; }` stores its pointer field's
// pointee as an ID that happens to equal the struct's own ID, with no Go-
// level reference cycle for the garbage collector (or a naive walker) to
// trip over.
package ctypes

// Kind tags the C11 6.2.5 type categories this compiler supports.
type Kind int

const (
	Void Kind = iota
	Bool
	Char
	Short
	Int
	Long
	LLong
	Float
	Double
	LDouble
	Enum
	Ptr
	Array
	Struct
	Union
	Func
	Null // placeholder used while a declarator's base type is unresolved
)

// Qualifier is a bitmask of C11 6.7.3 type qualifiers.
type Qualifier int

const (
	QualConst Qualifier = 1 << iota
	QualRestrict
	QualVolatile
	QualAtomic
)

// StorageClass enumerates C11 6.7.1 storage-class specifiers.
type StorageClass int

const (
	SCNone StorageClass = iota
	SCTypedef
	SCExtern
	SCStatic
	SCThreadLocal
	SCAuto
	SCRegister
)

// ID is an arena index. The zero value is never a valid id for a
// composite type created via the constructors below (the arena reserves
// index 0 for Void on NewArena).
type ID int32

// InvalidID marks "no type" (e.g. a function's return type before the
// declarator is fully parsed).
const InvalidID ID = -1

// Field is one member of a struct or union, in declaration order.
type Field struct {
	Name string
	Type ID

	Offset int // byte offset within the enclosing object
	IsBit  bool
	BitOff  int
	BitSize int
}

// Type is a tagged-sum representation of every C type this compiler
// knows about, one struct covering all Kinds. Only the fields relevant
// to Kind are meaningful; the rest are zero.
type Type struct {
	Kind     Kind
	Size     int
	Align    int
	Unsigned bool

	Qualifiers   Qualifier
	StorageClass StorageClass
	Inline       bool
	Noreturn     bool

	// Not set by the parser: a struct/union member's offset and bit-field
	// position live on its Field, and these stay zero.
	Offset  int
	BitOff  int
	BitSize int

	Elem ID  // Ptr, Array: pointee / element type
	Len  int // Array: element count, or -1 if incomplete

	Tag    string // Struct, Union, Enum
	Fields []Field // Struct, Union, in declaration order

	Return   ID // Func
	Params   []ID
	Variadic bool
	OldStyle bool // K&R-style parameter list
}

// Arena owns every composite Type value created during one compilation
// and the builtin singleton ids.
type Arena struct {
	types []*Type

	voidID, boolID                          ID
	charID, scharID, ucharID                ID
	shortID, ushortID                       ID
	intID, uintID                           ID
	longID, ulongID                         ID
	llongID, ullongID                       ID
	floatID, doubleID, ldoubleID            ID
	enumID                                  ID
}

// NewArena creates an arena pre-populated with the builtin numeric types.
func NewArena() *Arena {
	a := &Arena{}
	a.voidID = a.install(Type{Kind: Void})
	a.boolID = a.install(Type{Kind: Bool, Size: 1, Align: 1})
	a.charID = a.install(Type{Kind: Char, Size: 1, Align: 1})
	a.scharID = a.charID
	a.ucharID = a.install(Type{Kind: Char, Size: 1, Align: 1, Unsigned: true})
	a.shortID = a.install(Type{Kind: Short, Size: 2, Align: 2})
	a.ushortID = a.install(Type{Kind: Short, Size: 2, Align: 2, Unsigned: true})
	a.intID = a.install(Type{Kind: Int, Size: 4, Align: 4})
	a.uintID = a.install(Type{Kind: Int, Size: 4, Align: 4, Unsigned: true})
	a.longID = a.install(Type{Kind: Long, Size: 8, Align: 8})
	a.ulongID = a.install(Type{Kind: Long, Size: 8, Align: 8, Unsigned: true})
	a.llongID = a.install(Type{Kind: LLong, Size: 8, Align: 8})
	a.ullongID = a.install(Type{Kind: LLong, Size: 8, Align: 8, Unsigned: true})
	a.floatID = a.install(Type{Kind: Float, Size: 4, Align: 4})
	a.doubleID = a.install(Type{Kind: Double, Size: 8, Align: 8})
	// long double: treated as binary64, identical to double -- see
	// DESIGN.md Open Question decisions.
	a.ldoubleID = a.install(Type{Kind: LDouble, Size: 8, Align: 8})
	a.enumID = a.install(Type{Kind: Enum, Size: 4, Align: 4})
	return a
}

func (a *Arena) install(t Type) ID {
	a.types = append(a.types, &t)
	return ID(len(a.types) - 1)
}

// At dereferences id. Panics on an invalid id: a well-typed AST never
// holds one, so reaching this at codegen time means an earlier pass let
// through a type it shouldn't have.
func (a *Arena) At(id ID) *Type {
	return a.types[id]
}

// NewHole reserves a placeholder id with no content yet, spliced in
// place later once a declarator knows what it really names -- see
// internal/parser's declarator reader for the technique this supports.
func (a *Arena) NewHole() ID {
	return a.install(Type{Kind: Null})
}

// Clone installs a fresh copy of id's Type, used when a declarator needs
// to attach its own storage-class/qualifiers/alignment to an otherwise
// shared base type (e.g. two declarators in one `int a, *b;` both start
// from the same `int` but must not alias one another's qualifiers).
func (a *Arena) Clone(id ID) ID {
	return a.install(*a.At(id))
}

func (a *Arena) Void() ID    { return a.voidID }
func (a *Arena) Bool() ID    { return a.boolID }
func (a *Arena) Char() ID    { return a.charID }
func (a *Arena) UChar() ID   { return a.ucharID }
func (a *Arena) Short() ID   { return a.shortID }
func (a *Arena) UShort() ID  { return a.ushortID }
func (a *Arena) Int() ID     { return a.intID }
func (a *Arena) UInt() ID    { return a.uintID }
func (a *Arena) Long() ID    { return a.longID }
func (a *Arena) ULong() ID   { return a.ulongID }
func (a *Arena) LLong() ID   { return a.llongID }
func (a *Arena) ULLong() ID  { return a.ullongID }
func (a *Arena) Float() ID   { return a.floatID }
func (a *Arena) Double() ID  { return a.doubleID }
func (a *Arena) LDouble() ID { return a.ldoubleID }
func (a *Arena) Enum() ID    { return a.enumID }

// NewPtr makes a fresh pointer-to-elem type.
func (a *Arena) NewPtr(elem ID) ID {
	return a.install(Type{Kind: Ptr, Size: 8, Align: 8, Elem: elem})
}

// NewArray makes a fresh array type; a negative length denotes an
// incomplete array.
func (a *Arena) NewArray(elem ID, length int) ID {
	et := a.At(elem)
	size := -1
	if length >= 0 {
		size = et.Size * length
	}
	return a.install(Type{Kind: Array, Size: size, Align: et.Align, Elem: elem, Len: length})
}

// NewStruct reserves an id for a struct/union before its field list is
// known, so that self-referential pointer fields can name it.
func (a *Arena) NewStruct(kind Kind, tag string) ID {
	return a.install(Type{Kind: kind, Tag: tag})
}

// NewFunc makes a fresh function type.
func (a *Arena) NewFunc(ret ID, params []ID, variadic, oldStyle bool) ID {
	return a.install(Type{Kind: Func, Return: ret, Params: params, Variadic: variadic, OldStyle: oldStyle})
}

// IsIntKind reports whether k is one of the integer kinds (including
// _Bool and enum, per C11 6.2.5p17-18).
func IsIntKind(k Kind) bool {
	switch k {
	case Bool, Char, Short, Int, Long, LLong, Enum:
		return true
	}
	return false
}

// IsFloatKind reports whether k is a real floating type.
func IsFloatKind(k Kind) bool {
	switch k {
	case Float, Double, LDouble:
		return true
	}
	return false
}

func (t *Type) IsInt() bool   { return IsIntKind(t.Kind) }
func (t *Type) IsFloat() bool { return IsFloatKind(t.Kind) }
func (t *Type) IsArith() bool { return t.IsInt() || t.IsFloat() }

// IsScalar reports whether t is arithmetic or a pointer (C11 6.2.5p21).
func (t *Type) IsScalar() bool {
	return t.IsArith() || t.Kind == Ptr
}

func (t *Type) IsStatic() bool { return t.StorageClass == SCStatic }

// SizeofRank orders integer kinds by conversion rank (C11 6.3.1.1p1),
// used by UsualArithmeticConversions.
func sizeofRank(k Kind) int {
	switch k {
	case Bool:
		return 0
	case Char:
		return 1
	case Short:
		return 2
	case Int, Enum:
		return 3
	case Long:
		return 4
	case LLong:
		return 5
	}
	return -1
}
