package parser

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// declSpec is what read_decl_spec in the original returns bundled onto
// the Type itself; here it is kept apart until a concrete declarator
// gives it a type id to stick to, since several sibling declarators in
// one declaration (`int a, *b;`) share one declSpec but not one Type.
type declSpec struct {
	base       ctypes.ID
	storage    ctypes.StorageClass
	qualifiers ctypes.Qualifier
	inline     bool
	noreturn   bool
	align      int // -1 if unspecified
}

const (
	sizeNone = iota
	sizeShort
	sizeLong
	sizeLLong
)

// readDeclSpec parses a declaration-specifier list (C11 6.7): storage
// class, type qualifiers, function specifiers, _Alignas, and the
// type-specifier itself (builtin keyword, typedef name, struct/union,
// enum, or GNU typeof).
func (p *Parser) readDeclSpec() declSpec {
	firstTok := p.peek()
	if !p.isTypeName(firstTok) {
		p.errorf(firstTok.Pos, "type name expected, got %q", firstTok.String())
		return declSpec{base: p.types.Int(), align: -1}
	}

	var spec declSpec
	spec.align = -1
	var typ ctypes.ID = ctypes.InvalidID
	isDefType := false
	sig := token.Kind(0)
	size := sizeNone

	for {
		tok := p.next()
		if tok.Kind == token.TEOF {
			p.errorf(tok.Pos, "unexpected end of input in declaration specifiers")
			break
		}
		if tok.Kind == token.TIDENT {
			if def, ok := p.getTypedef(tok.Name); ok {
				if typ != ctypes.InvalidID {
					p.errorf(tok.Pos, "two or more data types in declaration specifiers")
				} else {
					isDefType = true
					typ = def
				}
				continue
			}
		}
		if !isTypeKeyword(tok.Kind) && !(tok.Kind == token.TIDENT && isDefType) {
			p.unget(tok)
			break
		}
		switch tok.Kind {
		case token.KW_TYPEDEF, token.KW_EXTERN, token.KW_STATIC, token.KW_THREAD_LOCAL, token.KW_AUTO, token.KW_REGISTER:
			if spec.storage != ctypes.SCNone {
				p.errorf(tok.Pos, "multiple storage classes in declaration specifiers")
			}
			spec.storage = storageClassOf(tok.Kind)
		case token.KW_CONST:
			spec.qualifiers |= ctypes.QualConst
		case token.KW_RESTRICT:
			spec.qualifiers |= ctypes.QualRestrict
		case token.KW_VOLATILE:
			spec.qualifiers |= ctypes.QualVolatile
		case token.KW_ATOMIC:
			spec.qualifiers |= ctypes.QualAtomic
		case token.KW_INLINE:
			spec.inline = true
		case token.KW_NORETURN:
			spec.noreturn = true
		case token.KW_VOID:
			typ = p.types.Void()
		case token.KW_BOOL:
			typ = p.types.Bool()
		case token.KW_CHAR:
			typ = p.types.Char()
		case token.KW_INT:
			typ = p.types.Int()
		case token.KW_FLOAT:
			typ = p.types.Float()
		case token.KW_DOUBLE:
			typ = p.types.Double()
		case token.KW_SIGNED, token.KW_UNSIGNED:
			if sig != 0 {
				p.errorf(tok.Pos, "multiple 'unsigned'/'signed'")
			}
			sig = tok.Kind
		case token.KW_SHORT:
			if size != sizeNone {
				p.errorf(tok.Pos, "both 'short' and 'long' in declaration specifiers")
			}
			size = sizeShort
		case token.KW_LONG:
			switch size {
			case sizeNone:
				size = sizeLong
			case sizeLong:
				size = sizeLLong
			default:
				p.errorf(tok.Pos, "too many 'long' in declaration specifiers")
			}
		case token.KW_STRUCT, token.KW_UNION:
			if typ != ctypes.InvalidID {
				p.errorf(tok.Pos, "two or more data types in declaration specifiers")
			}
			kind := ctypes.Struct
			if tok.Kind == token.KW_UNION {
				kind = ctypes.Union
			}
			typ = p.readStructOrUnionSpec(kind)
		case token.KW_ENUM:
			if typ != ctypes.InvalidID {
				p.errorf(tok.Pos, "two or more data types in declaration specifiers")
			}
			typ = p.readEnumSpec()
		case token.KW_ALIGNAS:
			v := p.readAlignas()
			if v > 0 && (spec.align == -1 || v < spec.align) {
				spec.align = v
			}
		case token.KW_TYPEOF:
			if typ != ctypes.InvalidID {
				p.errorf(tok.Pos, "two or more data types in declaration specifiers")
			}
			typ = p.readTypeof()
		default:
			p.unget(tok)
			goto done
		}
	}
done:
	if spec.align != -1 && spec.align&(spec.align-1) != 0 {
		p.errorf(firstTok.Pos, "alignment %d is not a power of 2", spec.align)
	}
	if isDefType {
		if sig != 0 || size != sizeNone {
			p.errorf(firstTok.Pos, "typedef type cannot be (un)signed or short/long")
		}
		spec.base = typ
		return spec
	}
	if typ == ctypes.InvalidID {
		typ = p.types.Int()
	}
	switch size {
	case sizeShort:
		if typ != p.types.Int() {
			p.errorf(firstTok.Pos, "both 'short' and another type in declaration specifiers")
		}
		typ = p.types.Short()
	case sizeLong:
		switch typ {
		case p.types.Int():
			typ = p.types.Long()
		case p.types.Double():
			typ = p.types.LDouble()
		default:
			p.errorf(firstTok.Pos, "both 'long' and another type in declaration specifiers")
		}
	case sizeLLong:
		if typ != p.types.Int() {
			p.errorf(firstTok.Pos, "both 'long long' and another type in declaration specifiers")
		}
		typ = p.types.LLong()
	}
	if sig != 0 {
		switch typ {
		case p.types.Char():
			if sig == token.KW_UNSIGNED {
				typ = p.types.UChar()
			}
		case p.types.Short():
			if sig == token.KW_UNSIGNED {
				typ = p.types.UShort()
			}
		case p.types.Int():
			if sig == token.KW_UNSIGNED {
				typ = p.types.UInt()
			}
		case p.types.Long():
			if sig == token.KW_UNSIGNED {
				typ = p.types.ULong()
			}
		case p.types.LLong():
			if sig == token.KW_UNSIGNED {
				typ = p.types.ULLong()
			}
		default:
			p.errorf(firstTok.Pos, "'signed'/'unsigned' invalid on this type")
		}
	}
	spec.base = typ
	return spec
}

// readDeclSpecOpt defaults the declaration-specifier list to plain `int`
// with a warning when no type name actually opens it -- only valid at
// external-declaration scope (C11 6.7.2p2 in its pre-C23 permissive form).
func (p *Parser) readDeclSpecOpt() declSpec {
	if p.isTypeName(p.peek()) {
		return p.readDeclSpec()
	}
	p.warnf(p.peek().Pos, "type defaults to 'int' in declaration")
	return declSpec{base: p.types.Int(), align: -1}
}

func storageClassOf(k token.Kind) ctypes.StorageClass {
	switch k {
	case token.KW_TYPEDEF:
		return ctypes.SCTypedef
	case token.KW_EXTERN:
		return ctypes.SCExtern
	case token.KW_STATIC:
		return ctypes.SCStatic
	case token.KW_THREAD_LOCAL:
		return ctypes.SCThreadLocal
	case token.KW_AUTO:
		return ctypes.SCAuto
	case token.KW_REGISTER:
		return ctypes.SCRegister
	}
	return ctypes.SCNone
}

// finishType materializes spec's storage class/qualifiers/alignment onto
// ty, cloning first so sibling declarators sharing one base type
// (`int a, *b;`) never alias each other's per-declarator attributes.
func (p *Parser) finishType(spec declSpec, ty ctypes.ID) ctypes.ID {
	if spec.storage == ctypes.SCNone && spec.qualifiers == 0 && !spec.inline && !spec.noreturn && spec.align == -1 {
		return ty
	}
	ty = p.types.Clone(ty)
	t := p.types.At(ty)
	if spec.storage != ctypes.SCTypedef {
		t.StorageClass = spec.storage
	} else {
		t.StorageClass = ctypes.SCTypedef
	}
	t.Qualifiers |= spec.qualifiers
	t.Inline = t.Inline || spec.inline
	t.Noreturn = t.Noreturn || spec.noreturn
	if spec.align != -1 && spec.align > t.Align {
		t.Align = spec.align
	}
	return ty
}

// readStructOrUnionSpec reads a struct-or-union-specifier, installing
// (or reusing) the tag in the current scope's tag namespace.
func (p *Parser) readStructOrUnionSpec(kind ctypes.Kind) ctypes.ID {
	tok := p.next()
	var id ctypes.ID
	if tok.Kind == token.TIDENT {
		if existing, ok := p.scope.GetTag(tok.Name); ok {
			if p.types.At(existing).Kind != kind {
				p.errorf(tok.Pos, "%q defined as wrong kind of tag", tok.Name)
			}
			id = existing
		} else {
			id = p.types.NewStruct(kind, tok.Name)
			p.scope.AddTag(tok.Name, id)
		}
	} else {
		if tok.Kind != token.Kind('{') {
			p.errorf(tok.Pos, "expected '{'")
			return p.types.Int()
		}
		p.unget(tok)
		id = p.types.NewStruct(kind, "")
	}
	if !p.accept(token.Kind('{')) {
		return id
	}
	fields := p.readStructDeclList()
	fields = ctypes.Flatten(p.types, fields)
	t := p.types.At(id)
	t.Fields = fields
	if kind == ctypes.Struct {
		ctypes.LayoutStruct(p.types, id)
	} else {
		ctypes.LayoutUnion(p.types, id)
	}
	return id
}

// readStructDeclList reads struct-declaration* up to (and consuming) the
// closing '}', handling anonymous struct/union members, bit-fields, and
// a nested _Static_assert.
func (p *Parser) readStructDeclList() []ctypes.Field {
	var fields []ctypes.Field
	for {
		tok := p.peek()
		if tok.Kind == token.KW_STATIC_ASSERT {
			p.readStaticAssert(p.next())
			continue
		}
		if !p.isTypeName(tok) {
			break
		}
		spec := p.readDeclSpec()
		if (p.types.At(spec.base).Kind == ctypes.Struct || p.types.At(spec.base).Kind == ctypes.Union) && p.accept(token.Kind(';')) {
			fields = append(fields, ctypes.Field{Type: spec.base})
			continue
		}
		for {
			var name string
			fieldType := p.readDeclarator(&name, spec.base, nil, dkOptional)
			if p.types.At(fieldType).Kind == ctypes.Void {
				p.errorf(tok.Pos, "field %q declared void", name)
			}
			f := ctypes.Field{Name: name, Type: fieldType}
			if p.accept(token.Kind(':')) {
				ft := p.types.At(fieldType)
				if !ft.IsInt() {
					p.errorf(tok.Pos, "non-integer type cannot be a bitfield")
				}
				val := int(p.readConstExpr().IntVal)
				maxSize := ft.Size * 8
				if ft.Kind == ctypes.Bool {
					maxSize = 1
				}
				if val < 0 || val > maxSize {
					p.errorf(tok.Pos, "invalid bitfield size %d", val)
				}
				if val == 0 && name != "" {
					p.errorf(tok.Pos, "zero-width bitfield needs to be unnamed")
				}
				f.IsBit = true
				f.BitSize = val
			}
			fields = append(fields, f)
			if p.accept(token.Kind(',')) {
				continue
			}
			if p.accept(token.Kind('}')) {
				p.warnf(tok.Pos, "no semicolon at end of struct or union")
				return fields
			}
			p.expect(token.Kind(';'))
			break
		}
	}
	p.expect(token.Kind('}'))
	return fields
}

// readEnumSpec reads an enum-specifier, folding each enumerator's value
// and installing it as an NK_LITERAL-producing constant in scope.
func (p *Parser) readEnumSpec() ctypes.ID {
	tok := p.next()
	var tagName string
	var existing ctypes.ID
	haveExisting := false
	if tok.Kind == token.TIDENT {
		tagName = tok.Name
		existing, haveExisting = p.scope.GetTag(tagName)
	} else {
		p.unget(tok)
	}
	if !p.accept(token.Kind('{')) {
		if haveExisting {
			return existing
		}
		if tagName == "" {
			p.errorf(tok.Pos, "expected identifier or '{'")
		}
		return p.types.Enum()
	}
	if haveExisting {
		p.errorf(tok.Pos, "redefinition of enum %q", tagName)
	}
	id := p.types.Enum()
	if tagName != "" {
		p.scope.AddTag(tagName, id)
	}
	var next int64
	for {
		if p.accept(token.Kind('}')) {
			break
		}
		nameTok := p.expect(token.TIDENT)
		val := next
		if p.accept(token.Kind('=')) {
			val = p.readConstExpr().IntVal
		}
		next = val + 1
		p.scope.Add(nameTok.Name, ast.NewInt(nameTok.Pos, p.types.Enum(), val))
		if p.accept(token.Kind(',')) {
			continue
		}
		p.expect(token.Kind('}'))
		break
	}
	return id
}

// readAlignas reads `_Alignas ( type-name | constant-expression )`.
func (p *Parser) readAlignas() int {
	p.expect(token.Kind('('))
	var v int
	if p.isTypeName(p.peek()) {
		v = p.types.At(p.readTypeName()).Align
	} else {
		v = int(p.readConstExpr().IntVal)
	}
	p.expect(token.Kind(')'))
	return v
}

// readTypeof implements the GNU `typeof(expr-or-type)` extension.
func (p *Parser) readTypeof() ctypes.ID {
	p.expect(token.Kind('('))
	var ty ctypes.ID
	if p.isTypeName(p.peek()) {
		ty = p.readTypeName()
	} else {
		ty = p.readExpr().Type
	}
	p.expect(token.Kind(')'))
	return ty
}

// readDeclarator implements C11 6.7.6's declarator grammar using the
// classic "hole type" technique (ported from read_declarator in the
// original): a parenthesized declarator's inner form is parsed first
// against a placeholder type, the suffix that follows the ')' is parsed
// against the real base type, and the placeholder is spliced in place
// once the real type is known -- this is what lets `int (*f)(void)` bind
// '*' to "pointer to function" rather than "function returning pointer".
func (p *Parser) readDeclarator(name *string, base ctypes.ID, params *[]*ast.Node, kind declaratorKind) ctypes.ID {
	if p.accept(token.Kind('(')) {
		if p.isTypeName(p.peek()) {
			return p.readParamList(base, params)
		}
		hole := p.types.NewHole()
		r := p.readDeclarator(name, hole, params, kind)
		p.expect(token.Kind(')'))
		real := p.readDeclaratorTail(base, params)
		*p.types.At(hole) = *p.types.At(real)
		return r
	}
	if p.accept(token.Kind('*')) {
		for p.accept(token.KW_CONST) || p.accept(token.KW_RESTRICT) || p.accept(token.KW_VOLATILE) || p.accept(token.KW_ATOMIC) {
		}
		return p.readDeclarator(name, p.types.NewPtr(base), params, kind)
	}
	tok := p.next()
	if tok.Kind == token.TIDENT {
		if kind == dkAbstract {
			p.errorf(tok.Pos, "identifier not expected in abstract declarator")
		} else if name != nil {
			*name = tok.Name
		}
		return p.readDeclaratorTail(base, params)
	}
	p.unget(tok)
	return p.readDeclaratorTail(base, params)
}

func (p *Parser) readDeclaratorTail(base ctypes.ID, params *[]*ast.Node) ctypes.ID {
	if p.accept(token.Kind('(')) {
		return p.readParamList(base, params)
	}
	if p.accept(token.Kind('[')) {
		return p.readArraySize(base)
	}
	return base
}

// readParamList reads a parameter-type-list (or an old-style K&R
// un-prototyped list) and builds the resulting function type.
func (p *Parser) readParamList(ret ctypes.ID, params *[]*ast.Node) ctypes.ID {
	rt := p.types.At(ret)
	if rt.Kind == ctypes.Func {
		p.errorf(token.Pos{}, "function returning a function")
	}
	if rt.Kind == ctypes.Array {
		p.errorf(token.Pos{}, "function returning an array")
	}

	tok := p.next()
	if tok.Kind == token.KW_VOID && p.accept(token.Kind(')')) {
		return p.types.NewFunc(ret, nil, false, false)
	}
	if tok.Kind == token.Kind(')') {
		return p.types.NewFunc(ret, nil, true, true)
	}
	if tok.Kind == token.P_ELLIPSIS {
		p.errorf(tok.Pos, "requires a named argument before '...'")
		return p.types.NewFunc(ret, nil, false, false)
	}
	p.unget(tok)

	if p.isTypeName(tok) {
		var paramTypes []ctypes.ID
		variadic := false
		typeOnly := params == nil
		for {
			t2 := p.peek()
			if p.accept(token.P_ELLIPSIS) {
				p.expect(token.Kind(')'))
				variadic = true
				break
			}
			if !p.isTypeName(t2) {
				p.errorf(t2.Pos, "type expected")
				break
			}
			spec := p.readDeclSpec()
			var pname string
			kind := dkConcrete
			if typeOnly {
				kind = dkOptional
			}
			ty := p.readDeclarator(&pname, spec.base, nil, kind)
			ty = p.finishType(spec, ty)
			ft := p.types.At(ty)
			switch ft.Kind {
			case ctypes.Array:
				ty = p.types.NewPtr(ft.Elem)
			case ctypes.Func:
				ty = p.types.NewPtr(ty)
			case ctypes.Void:
				p.errorf(t2.Pos, "parameter %q has incomplete type", pname)
			}
			paramTypes = append(paramTypes, ty)
			if !typeOnly {
				v := ast.NewLocalVar(t2.Pos, ty, pname)
				p.scope.Add(pname, v)
				*params = append(*params, v)
			}
			if p.accept(token.Kind(')')) {
				break
			}
			p.expect(token.Kind(','))
		}
		return p.types.NewFunc(ret, paramTypes, variadic, false)
	}

	if params == nil {
		p.errorf(tok.Pos, "invalid function declaration")
	}
	var paramTypes []ctypes.ID
	for {
		nameTok := p.next()
		if nameTok.Kind != token.TIDENT {
			p.errorf(nameTok.Pos, "invalid function declaration")
			break
		}
		paramTypes = append(paramTypes, p.types.Int())
		if params != nil {
			v := ast.NewLocalVar(nameTok.Pos, p.types.Int(), nameTok.Name)
			p.scope.Add(nameTok.Name, v)
			*params = append(*params, v)
		}
		if p.accept(token.Kind(')')) {
			break
		}
		p.expect(token.Kind(','))
	}
	return p.types.NewFunc(ret, paramTypes, false, true)
}

// readArraySize reads `[ constant-expression-opt ]` and whatever
// declarator-tail suffix follows it (so `int a[3][4]` nests correctly).
func (p *Parser) readArraySize(base ctypes.ID) ctypes.ID {
	length := -1
	if !p.accept(token.Kind(']')) {
		if p.accept(token.Kind('*')) {
			length = -1
		} else {
			length = int(p.readConstExpr().IntVal)
		}
		p.expect(token.Kind(']'))
	}
	elem := p.readDeclaratorTail(base, nil)
	if p.types.At(elem).Kind == ctypes.Func {
		p.errorf(token.Pos{}, "array of functions")
	}
	return p.types.NewArray(elem, length)
}

// readTypeName reads a type-name (spec-qualifier-list plus an optional
// abstract declarator), used by sizeof, casts, compound literals, and
// _Generic associations.
func (p *Parser) readTypeName() ctypes.ID {
	spec := p.readDeclSpec()
	ty := p.readDeclarator(nil, spec.base, nil, dkAbstract)
	return p.finishType(spec, ty)
}
