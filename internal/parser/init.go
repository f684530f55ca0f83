package parser

import (
	"sort"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// readInitializer reads the initializer bound to a freshly-declared
// variable v of type ty and returns it as a flat, offset-sorted list of
// INIT nodes, grounded on read_initializer/read_initializer_list: a
// brace-enclosed or string initializer recurses structurally, anything
// else is a single scalar assignment-expression.
func (p *Parser) readInitializer(v *ast.Node, ty ctypes.ID) []*ast.Node {
	t := p.types.At(ty)
	if isStringType(p.types, ty) || p.peek().Kind == token.Kind('{') {
		var list []*ast.Node
		p.readInitializerList(&list, ty, 0)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].InitOffset < list[j].InitOffset
		})
		return list
	}
	tok := p.peek()
	init := p.convert(p.readAssignExpr(), ctypes.InvalidID)
	if p.types.At(init.Type).IsArith() && p.types.At(init.Type).Kind != t.Kind {
		init = p.convert(init, ty)
	} else if !ctypes.Compatible(p.types, init.Type, ty) {
		init = p.assignConvert(init, ty)
	}
	return []*ast.Node{ast.NewInit(tok.Pos, ty, init, 0)}
}

func isStringType(a *ctypes.Arena, ty ctypes.ID) bool {
	t := a.At(ty)
	return t.Kind == ctypes.Array && a.At(t.Elem).Kind == ctypes.Char
}

// readInitializerList reads one brace-delimited initializer (or a bare
// string for a char array) at the given byte offset within the
// enclosing object.
func (p *Parser) readInitializerList(list *[]*ast.Node, ty ctypes.ID, offset int) {
	if isStringType(p.types, ty) {
		if p.peek().Kind == token.TSTRING {
			p.assignString(list, ty, p.next(), offset)
			return
		}
		if p.peek().Kind == token.Kind('{') {
			save := p.next()
			if p.peek().Kind == token.TSTRING {
				p.assignString(list, ty, p.next(), offset)
				p.expect(token.Kind('}'))
				return
			}
			p.unget(save)
		}
	}

	p.expect(token.Kind('{'))
	t := p.types.At(ty)
	switch t.Kind {
	case ctypes.Struct, ctypes.Union:
		p.readStructInitializerList(list, ty, offset)
	case ctypes.Array:
		p.readArrayInitializerList(list, ty, offset)
	default:
		wrap := p.types.NewArray(ty, 1)
		p.readArrayInitializerList(list, wrap, offset)
	}
}

// assignString spells a string literal's bytes out across a char
// array's elements, zero-filling the remainder (C11 6.7.9p14), sizing
// an incomplete array to the string's length.
func (p *Parser) assignString(list *[]*ast.Node, ty ctypes.ID, tok token.Token, offset int) {
	t := p.types.At(ty)
	str := append([]byte(nil), tok.Str...)
	str = append(str, 0)
	if t.Len < 0 {
		t.Len = len(str)
		t.Size = len(str)
	}
	charTy := p.types.Char()
	i := 0
	for ; i < t.Len && i < len(str); i++ {
		*list = append(*list, ast.NewInit(tok.Pos, charTy, ast.NewInt(tok.Pos, charTy, int64(str[i])), offset+i))
	}
	if i < len(str)-1 {
		p.warnf(tok.Pos, "initializer-string for array of chars is too long")
	}
	for ; i < t.Len; i++ {
		*list = append(*list, ast.NewInit(tok.Pos, charTy, ast.NewInt(tok.Pos, charTy, 0), offset+i))
	}
}

// readStructInitializerList reads a braced struct/union initializer
// list, supporting `.field = value` designators and positional
// elements continuing from the last used field index.
func (p *Parser) readStructInitializerList(list *[]*ast.Node, ty ctypes.ID, offset int) {
	t := p.types.At(ty)
	i := 0
	for {
		tok := p.peek()
		if p.accept(token.Kind('}')) {
			return
		}
		var fieldType ctypes.ID
		fieldOffset := 0
		if p.accept(token.Kind('.')) {
			nameTok := p.expect(token.TIDENT)
			f, ok := findField(p.types, ty, nameTok.Name)
			if !ok {
				p.errorf(nameTok.Pos, "unknown field %q specified in initializer", nameTok.Name)
				return
			}
			fieldType = f.Type
			fieldOffset = f.Offset
			for idx, cand := range t.Fields {
				if cand.Name == nameTok.Name {
					i = idx + 1
					break
				}
			}
		} else {
			if i >= len(t.Fields) {
				p.errorf(tok.Pos, "excess elements in struct or union initializer")
				return
			}
			fieldType = t.Fields[i].Type
			fieldOffset = t.Fields[i].Offset
			i++
		}
		p.readDesignatedInitializer(list, fieldType, offset+fieldOffset)
		if p.accept(token.Kind('}')) {
			return
		}
		if !p.accept(token.Kind(',')) {
			p.errorf(p.peek().Pos, "expected ','")
			return
		}
		if p.accept(token.Kind('}')) {
			return
		}
	}
}

// readArrayInitializerList reads a braced array initializer list,
// supporting `[index] = value` designators and positional elements;
// an incomplete array's length is fixed to one past the highest index
// used.
func (p *Parser) readArrayInitializerList(list *[]*ast.Node, ty ctypes.ID, offset int) {
	t := p.types.At(ty)
	i := 0
	n := 0
	for {
		tok := p.peek()
		if p.accept(token.Kind('}')) {
			break
		}
		var elemOffset int
		if p.accept(token.Kind('[')) {
			idx := int(p.readConstExpr().IntVal)
			p.expect(token.Kind(']'))
			if idx < 0 || (t.Len > 0 && idx >= t.Len) {
				p.errorf(tok.Pos, "array index in initializer exceeds array bounds")
				return
			}
			i = idx
			elemOffset = p.types.At(t.Elem).Size * idx
		} else {
			if t.Len >= 0 && i >= t.Len {
				p.errorf(tok.Pos, "excess elements in array initializer")
				return
			}
			elemOffset = p.types.At(t.Elem).Size * i
		}
		i++
		if i > n {
			n = i
		}
		p.readDesignatedInitializer(list, t.Elem, offset+elemOffset)
		if p.accept(token.Kind('}')) {
			break
		}
		if !p.accept(token.Kind(',')) {
			p.errorf(p.peek().Pos, "expected ','")
			return
		}
		if p.accept(token.Kind('}')) {
			break
		}
	}
	if t.Len < 0 {
		t.Len = n
		t.Size = p.types.At(t.Elem).Size * n
	}
}

// readDesignatedInitializer reads one element's value after its
// (possibly absent) designator: recurses into a nested brace list for
// an aggregate/array member, accepts one nested brace around a scalar
// member for symmetry with GCC's lenient brace elision, and otherwise
// reads a single assignment-expression.
func (p *Parser) readDesignatedInitializer(list *[]*ast.Node, ty ctypes.ID, offset int) {
	p.accept(token.Kind('='))
	t := p.types.At(ty)
	if t.Kind == ctypes.Struct || t.Kind == ctypes.Union || t.Kind == ctypes.Array {
		p.readInitializerList(list, ty, offset)
		return
	}
	if p.accept(token.Kind('{')) {
		p.readDesignatedInitializer(list, ty, offset)
		p.expect(token.Kind('}'))
		return
	}
	tok := p.peek()
	init := p.assignConvert(p.readAssignExpr(), ty)
	*list = append(*list, ast.NewInit(tok.Pos, ty, init, offset))
}
