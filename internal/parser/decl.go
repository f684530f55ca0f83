package parser

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/token"
)

// readDecl reads one block-scope declaration -- `decl-spec
// init-declarator-list ';'` or a `_Static_assert` -- appending the
// resulting DECL nodes (those with an initializer, or any without one
// that isn't extern/a bare function prototype) to list, grounded on
// read_decl. isglobal only affects which variable constructor registers
// the name; it is always false from this compiler's actual call sites
// (inside a compound statement or a for-loop init clause), kept as a
// parameter for symmetry with the original.
func (p *Parser) readDecl(list *[]*ast.Node, isglobal bool) {
	tok := p.peek()
	if tok.Kind == token.KW_STATIC_ASSERT {
		p.readStaticAssert(p.next())
		return
	}
	spec := p.readDeclSpecOpt()
	if p.accept(token.Kind(';')) {
		return
	}
	for {
		var name string
		ty := p.readDeclarator(&name, p.types.Clone(spec.base), nil, dkConcrete)
		ty = p.finishType(spec, ty)
		t := p.types.At(ty)

		switch {
		case t.StorageClass == ctypes.SCTypedef:
			p.scope.Add(name, ast.NewTypedef(tok.Pos, ty, name))
		case t.IsStatic() && !isglobal:
			label := p.labels.Static(name)
			v := ast.NewStaticLocalVar(tok.Pos, ty, name, label)
			p.scope.Add(name, v)
			decl := ast.NewDecl(tok.Pos, v)
			if p.accept(token.Kind('=')) {
				p.scope.ClearLocal()
				decl.InitList = p.readInitializer(v, ty)
				p.scope.RecoverLocal()
			}
			p.toplevel = append(p.toplevel, decl)
		default:
			if t.Kind == ctypes.Void {
				p.errorf(tok.Pos, "variable %q declared void", name)
				break
			}
			var v *ast.Node
			if isglobal {
				v = ast.NewGlobalVar(tok.Pos, ty, name)
				p.scope.Add(name, v)
			} else {
				v = ast.NewLocalVar(tok.Pos, ty, name)
				p.scope.Add(name, v)
				p.funcLocals = append(p.funcLocals, v)
			}
			decl := ast.NewDecl(tok.Pos, v)
			if p.accept(token.Kind('=')) {
				decl.InitList = p.readInitializer(v, ty)
				*list = append(*list, decl)
			} else if t.StorageClass != ctypes.SCExtern && t.Kind != ctypes.Func {
				*list = append(*list, decl)
			}
		}

		if p.accept(token.Kind(';')) {
			return
		}
		if !p.accept(token.Kind(',')) {
			p.errorf(p.peek().Pos, "expected ';' or ','")
			return
		}
	}
}
