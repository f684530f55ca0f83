package codegen

import (
	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/ctypes"
)

// constInt folds node to a compile-time integer value, returning the
// label a non-empty result is relative to when the constant denotes a
// relocated address (e.g. `&g` or `&g + 3`) rather than a pure number.
// Used only for toplevel initializers, which C11 6.7.9p4 restricts to
// constant expressions; a well-typed initializer never reaches the
// default case below.
func (g *Generator) constInt(node *ast.Node) (value int64, label string) {
	switch node.Kind {
	case ast.LITERAL:
		return node.IntVal, ""
	case ast.CAST, ast.CONV:
		if node.Operand.Kind == ast.GLOBAL_VAR && g.types.At(node.Operand.Type).Kind == ctypes.Array {
			return 0, node.Operand.GlobalLabel
		}
		if node.Operand.Kind == ast.FUNC_DESG {
			return 0, node.Operand.Name
		}
		v, l := g.constInt(node.Operand)
		if l == "" && g.types.At(node.Type).IsInt() {
			v = truncInt(v, g.types.At(node.Type))
		}
		return v, l
	case ast.ADDR:
		return g.constAddr(node.Operand)
	case ast.Op('~'):
		v, l := g.constInt(node.Operand)
		return ^v, l
	case ast.Op('+'), ast.Op('-'):
		lv, ll := g.constInt(node.Left)
		rv, rl := g.constInt(node.Right)
		if ll != "" && rl != "" {
			ice("constant expression relates two relocated addresses")
		}
		label = ll
		if label == "" {
			label = rl
		}
		if node.Kind == ast.Op('-') {
			return lv - rv, label
		}
		return lv + rv, label
	}
	ice("expected a constant expression, got node kind %v", node.Kind)
	return 0, ""
}

// truncInt narrows v to ty's width, matching the bit pattern a real
// store of that size would keep.
func truncInt(v int64, ty *ctypes.Type) int64 {
	switch ty.Size {
	case 1:
		return int64(int8(v))
	case 2:
		return int64(int16(v))
	case 4:
		return int64(int32(v))
	}
	return v
}

// constAddr folds `&operand` to a (byte offset, label) pair.
func (g *Generator) constAddr(operand *ast.Node) (int64, string) {
	switch operand.Kind {
	case ast.GLOBAL_VAR:
		return 0, operand.GlobalLabel
	case ast.FUNC_DESG:
		return 0, operand.Name
	case ast.DEREF:
		// &*p folds to p itself.
		return g.constInt(operand.Operand)
	case ast.STRUCT_MEMBER:
		base, label := g.constAddr(operand.Struc)
		f := g.fieldOf(operand.Struc.Type, operand.FieldName)
		return base + int64(f.Offset), label
	}
	ice("invalid address constant for node kind %v", operand.Kind)
	return 0, ""
}

// constFloat folds node to a compile-time floating value.
func (g *Generator) constFloat(node *ast.Node) float64 {
	switch node.Kind {
	case ast.LITERAL:
		if g.types.At(node.Type).IsFloat() {
			return node.FloatVal
		}
		return float64(node.IntVal)
	case ast.CAST, ast.CONV:
		return g.constFloat(node.Operand)
	}
	ice("expected a constant floating expression, got node kind %v", node.Kind)
	return 0
}

// fieldOf finds name in strucType's already-flattened field list.
func (g *Generator) fieldOf(strucType ctypes.ID, name string) ctypes.Field {
	for _, f := range g.types.At(strucType).Fields {
		if f.Name == name {
			return f
		}
	}
	ice("unresolved field %q", name)
	return ctypes.Field{}
}
