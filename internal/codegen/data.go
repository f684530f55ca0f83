package codegen

import (
	"fmt"
	"math"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
)

// Generate lowers a whole translation unit's toplevel nodes in order,
// grounded on Generator::run's pass over the parsed program.
func (g *Generator) Generate(toplevel []*ast.Node) {
	for _, node := range toplevel {
		switch node.Kind {
		case ast.FUNC_DEF:
			g.genFuncDef(node)
		case ast.DECL:
			g.genGlobalDecl(node)
		}
	}
	g.flushPendingLiterals()
	g.e.Flush()
}

// genGlobalDecl routes a file-scope variable (including a promoted
// static local or compound literal) to .bss or .data depending on
// whether it has an initializer, grounded on emit_data/emit_bss's
// caller in generator.cpp.
func (g *Generator) genGlobalDecl(decl *ast.Node) {
	v := decl.Var
	ty := g.types.At(v.Type)
	if ty.StorageClass == ctypes.SCExtern && len(decl.InitList) == 0 {
		return
	}
	if len(decl.InitList) == 0 {
		g.emitBss(decl)
		return
	}
	g.emitData(decl)
}

func (g *Generator) emitBss(decl *ast.Node) {
	v := decl.Var
	ty := g.types.At(v.Type)
	if ty.IsStatic() {
		g.e.Directive(".lcomm", v.GlobalLabel, fmt.Sprintf("%d", ty.Size))
		return
	}
	g.e.Directive(".globl", v.GlobalLabel)
	g.e.Directive(".bss")
	g.e.Directive(".align", fmt.Sprintf("%d", ty.Align))
	g.e.Label(v.GlobalLabel)
	g.e.Directive(".zero", fmt.Sprintf("%d", ty.Size))
}

func (g *Generator) emitData(decl *ast.Node) {
	v := decl.Var
	ty := g.types.At(v.Type)
	if !ty.IsStatic() {
		g.e.Directive(".globl", v.GlobalLabel)
	}
	g.e.Directive(".data")
	g.e.Directive(".align", fmt.Sprintf("%d", ty.Align))
	g.e.Label(v.GlobalLabel)
	g.emitDataAux(decl.InitList, ty.Size)
}

// emitDataAux walks a flat, offset-sorted initializer list, emitting a
// directive per entry and a ".zero" run to cover any gap the
// initializer doesn't mention (C11 6.7.9p19/21), grounded on
// emit_data_aux.
func (g *Generator) emitDataAux(initList []*ast.Node, totalSize int) {
	pos := 0
	for _, init := range initList {
		if init.InitOffset > pos {
			g.e.Directive(".zero", fmt.Sprintf("%d", init.InitOffset-pos))
		}
		pos = init.InitOffset + g.emitDataPrimtype(init)
	}
	if totalSize > pos {
		g.e.Directive(".zero", fmt.Sprintf("%d", totalSize-pos))
	}
}

// emitDataPrimtype emits one initializer entry's constant bytes and
// returns how many bytes it consumed.
func (g *Generator) emitDataPrimtype(init *ast.Node) int {
	ty := g.types.At(init.Type)
	switch {
	case ty.Kind == ctypes.Array && init.Value.Kind == ast.LITERAL && init.Value.StrVal != nil:
		str := init.Value.StrVal
		g.emitAsciz(str)
		if pad := ty.Size - (len(str) + 1); pad > 0 {
			g.e.Directive(".zero", fmt.Sprintf("%d", pad))
		}
		return ty.Size
	case ty.Kind == ctypes.Float:
		bits := math.Float32bits(float32(g.constFloat(init.Value)))
		g.e.Directive(".long", fmt.Sprintf("%d", bits))
		return 4
	case ty.Kind == ctypes.Double || ty.Kind == ctypes.LDouble:
		bits := math.Float64bits(g.constFloat(init.Value))
		g.e.Directive(".quad", fmt.Sprintf("%d", bits))
		return 8
	default:
		v, label := g.constInt(init.Value)
		dir, size := dataDirectiveFor(ty.Size)
		switch {
		case label != "" && v != 0:
			g.e.Directive(dir, fmt.Sprintf("%s+%d", label, v))
		case label != "":
			g.e.Directive(dir, label)
		default:
			g.e.Directive(dir, fmt.Sprintf("%d", v))
		}
		return size
	}
}

func dataDirectiveFor(size int) (string, int) {
	switch size {
	case 1:
		return ".byte", 1
	case 2:
		return ".word", 2
	case 4:
		return ".long", 4
	default:
		return ".quad", 8
	}
}
