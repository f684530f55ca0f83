package codegen

import "github.com/kakitgogogo/mcc/internal/ast"

// genStmt lowers one statement-position node. Every DECL node reached
// here is an ordinary automatic local: readDecl routes static locals
// and compound-literal storage to the toplevel list instead, so by the
// time control flow reaches a DECL in a compound statement's list, it
// is simply "run this initializer now", with no deferred/lazy variant
// to support.
func (g *Generator) genStmt(node *ast.Node) {
	switch node.Kind {
	case ast.COMPOUND_STMT:
		for _, s := range node.List {
			g.genStmt(s)
		}
	case ast.IF:
		g.genIf(node)
	case ast.LABEL:
		g.e.Label(node.NormalLabel)
	case ast.JUMP:
		g.e.Instr1("jmp", node.NormalLabel)
	case ast.RETURN:
		if node.ReturnVal != nil {
			g.genExpr(node.ReturnVal)
		}
		g.e.Instr0("leave")
		g.e.Instr0("ret")
	case ast.DECL:
		g.genLocalDecl(node)
	default:
		g.genExpr(node)
	}
}

func (g *Generator) genIf(node *ast.Node) {
	g.genExpr(node.Cond)
	g.emitToBool(g.types.At(node.Cond.Type))
	g.e.Instr2("test", Reg("al"), Reg("al"))

	if node.Els == nil {
		end := g.newLabel("if_end")
		g.e.Instr1("je", end)
		g.genStmt(node.Then)
		g.e.Label(end)
		return
	}

	elseLabel := g.newLabel("if_else")
	end := g.newLabel("if_end")
	g.e.Instr1("je", elseLabel)
	g.genStmt(node.Then)
	g.e.Instr1("jmp", end)
	g.e.Label(elseLabel)
	g.genStmt(node.Els)
	g.e.Label(end)
}

func (g *Generator) genLocalDecl(node *ast.Node) {
	if len(node.InitList) == 0 {
		return
	}
	v := node.Var
	g.emitDeclInit(v.Type, node.InitList, v.Offset, g.types.At(v.Type).Size)
}
