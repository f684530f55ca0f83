package parser

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// readExternalDecl reads one top-level `function-definition | declaration`,
// grounded on read_extern_decl: a declaration-specifier list followed by a
// declarator is parsed once, then disambiguated by what follows it -- a
// type-name or '{' means a K&R-style or braced function body, anything
// else means this was an ordinary (possibly multi-declarator) declaration.
func (p *Parser) readExternalDecl() {
	if p.peek().Kind == token.TEOF {
		return
	}
	tok := p.peek()
	basetype := p.readDeclSpecOpt()
	if p.accept(token.Kind(';')) {
		return
	}

	p.scope.In(ctypes.InvalidID)
	p.scope.ResetLabels()
	p.gotos = nil
	p.funcLocals = nil

	var name string
	var params []*ast.Node
	ty := p.readDeclarator(&name, basetype.base, &params, dkConcrete)
	ty = p.finishType(basetype, ty)

	next := p.peek()
	isFunc := p.isTypeName(next) || next.Kind == token.Kind('{')

	if isFunc {
		ft := p.types.At(ty)
		if ft.Kind != ctypes.Func {
			p.errorf(tok.Pos, "expected function declarator before '{'")
			p.scope.Out()
			return
		}
		if ft.Variadic && len(ft.Params) == 0 {
			ft.Variadic = false
		}
		if ft.OldStyle {
			p.readOldstyleParamType(ft, params)
		}

		fn := ast.NewGlobalVar(tok.Pos, ty, name)
		p.scope.AddGlobal(name, fn)

		if p.peek().Kind != token.Kind('{') {
			p.errorf(p.peek().Pos, "expected '{'")
			p.scope.Out()
			return
		}
		funcDef := p.readFuncBody(tok, ty, name, params)

		for _, g := range p.gotos {
			label, ok := p.scope.GetLabel(g.OriginLabel)
			if !ok {
				p.errorf(g.Pos, "label %q used but not defined", g.OriginLabel)
				continue
			}
			g.NormalLabel = label
		}

		p.scope.Out()
		p.toplevel = append(p.toplevel, funcDef)
		return
	}

	p.scope.Out()
	for {
		t := p.types.At(ty)
		switch {
		case t.StorageClass == ctypes.SCTypedef:
			p.scope.Add(name, ast.NewTypedef(tok.Pos, ty, name))
		case t.Kind == ctypes.Void:
			p.errorf(tok.Pos, "type void is not allowed")
			return
		default:
			v := ast.NewGlobalVar(tok.Pos, ty, name)
			p.scope.AddGlobal(name, v)
			decl := ast.NewDecl(tok.Pos, v)
			if p.accept(token.Kind('=')) {
				decl.InitList = p.readInitializer(v, ty)
				p.toplevel = append(p.toplevel, decl)
			} else if t.StorageClass != ctypes.SCExtern && t.Kind != ctypes.Func {
				p.toplevel = append(p.toplevel, decl)
			}
		}
		if p.accept(token.Kind(';')) {
			return
		}
		if !p.accept(token.Kind(',')) {
			p.errorf(p.peek().Pos, "';' or ',' are expected")
			return
		}
		name = ""
		ty = p.readDeclarator(&name, p.types.Clone(basetype.base), nil, dkConcrete)
		ty = p.finishType(basetype, ty)
	}
}

// readOldstyleParamType reads the K&R-style parameter-declaration list
// between an un-prototyped `f(a, b)` declarator and the function body,
// patching each untyped parameter (and the function type's own param
// list) with the real type once it's declared, grounded on
// read_oldstyle_param_type. Parameters left undeclared keep their
// implicit `int` type, as C89 allows.
func (p *Parser) readOldstyleParamType(ft *ctypes.Type, params []*ast.Node) {
	// Each of these declarations only patches an already-allocated
	// parameter's type by name; it deliberately does not go through
	// readDecl, since that would also register a second, unused stack
	// slot in p.funcLocals for every patched parameter.
	p.scope.In(ctypes.InvalidID)
	for {
		tok := p.peek()
		if tok.Kind == token.Kind('{') {
			break
		}
		if !p.isTypeName(tok) {
			p.errorf(tok.Pos, "K&R-style parameter declarator expected")
			p.scope.Out()
			return
		}
		spec := p.readDeclSpec()
		for {
			var pname string
			ty := p.readDeclarator(&pname, p.types.Clone(spec.base), nil, dkConcrete)
			ty = p.finishType(spec, ty)

			found := false
			for i, param := range params {
				if param.Name != pname {
					continue
				}
				param.Type = ty
				ft.Params[i] = ty
				found = true
				break
			}
			if !found {
				p.errorf(tok.Pos, "declaration for parameter %q but no such parameter", pname)
			}

			if p.accept(token.Kind(',')) {
				continue
			}
			break
		}
		p.expect(token.Kind(';'))
	}
	p.scope.Out()
}

// readFuncBody reads a function definition's compound-statement body,
// pushing the per-function scope that binds __func__/__FUNCTION__ and
// collects every LOCAL_VAR the body declares, grounded on read_func_body.
func (p *Parser) readFuncBody(tok token.Token, funcType ctypes.ID, name string, params []*ast.Node) *ast.Node {
	p.scope.In(funcType)

	charArr := p.types.NewArray(p.types.Char(), len(name)+1)
	label := p.labels.Static("func")
	fname := ast.NewStaticLocalVar(tok.Pos, charArr, label, label)
	fname.StrVal = append([]byte(name), 0)
	p.scope.Add("__func__", fname)
	p.scope.Add("__FUNCTION__", fname)

	body := p.readCompoundStmt()
	funcDef := ast.NewFuncDef(tok.Pos, funcType, name, params, body, p.funcLocals)

	p.scope.Out()
	return funcDef
}
