package ast

import "strconv"

// LabelGen mints compiler-internal assembly labels and temporary names.
// The original kept a file-global counter for each of these (DESIGN
// NOTES "mutable global state"); here they are fields of a value the
// driver constructs once per translation unit and threads through the
// parser and code generator, so nothing survives between invocations of
// the library.
type LabelGen struct {
	label  int
	tmp    int
	static map[string]int
}

func NewLabelGen() *LabelGen {
	return &LabelGen{static: make(map[string]int)}
}

// Label mints a fresh branch-target label, ".L<N>".
func (g *LabelGen) Label() string {
	g.label++
	return ".L" + strconv.Itoa(g.label)
}

// Tmp mints a fresh compiler-temporary variable name, ".T<N>".
func (g *LabelGen) Tmp() string {
	g.tmp++
	return ".T" + strconv.Itoa(g.tmp)
}

// Static mints the asm label for the Nth static local variable or
// string literal named name within one translation unit, ".S<N>.<name>"
// so that distinct functions' same-named statics never collide.
func (g *LabelGen) Static(name string) string {
	g.static[name]++
	return ".S" + strconv.Itoa(g.static[name]) + "." + name
}
