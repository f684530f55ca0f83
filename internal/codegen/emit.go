// Package codegen lowers a typed AST to x86-64 System V assembly in GAS
// syntax, grounded on generator.h/generator.cpp. The original's per-node
// virtual codegen() method is replaced by one exhaustive switch over
// ast.Node.Kind, since Go has no class hierarchy to dispatch through.
package codegen

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Emitter is a thin, buffered GAS writer: one method per instruction
// arity plus label/directive/comment helpers, so the rest of the
// package never calls fmt.Fprintf directly.
type Emitter struct {
	out *bufio.Writer
}

// NewEmitter wraps w in a buffered writer ready for GAS output.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{out: bufio.NewWriter(w)}
}

// Flush drains any buffered output. Callers must invoke this once after
// the last emit call.
func (e *Emitter) Flush() error {
	return e.out.Flush()
}

// Instr0 emits a bare mnemonic ("leave", "ret", "cqto").
func (e *Emitter) Instr0(op string) {
	fmt.Fprintf(e.out, "\t%s\n", op)
}

// Instr1 emits a one-operand instruction ("push %rax", "jmp .L3").
func (e *Emitter) Instr1(op, a1 string) {
	fmt.Fprintf(e.out, "\t%s %s\n", op, a1)
}

// Instr2 emits a two-operand instruction in AT&T (src, dst) order.
func (e *Emitter) Instr2(op, a1, a2 string) {
	fmt.Fprintf(e.out, "\t%s %s, %s\n", op, a1, a2)
}

// Instr3 emits a three-operand instruction (rare: only imul's three-
// operand form and the like use this in practice).
func (e *Emitter) Instr3(op, a1, a2, a3 string) {
	fmt.Fprintf(e.out, "\t%s %s, %s, %s\n", op, a1, a2, a3)
}

// Label emits a bare label definition ("name:"), unindented.
func (e *Emitter) Label(name string) {
	fmt.Fprintf(e.out, "%s:\n", name)
}

// Directive emits an assembler directive (".globl foo", ".data 1").
func (e *Emitter) Directive(dir string, args ...string) {
	if len(args) == 0 {
		fmt.Fprintf(e.out, "\t%s\n", dir)
		return
	}
	fmt.Fprintf(e.out, "\t%s %s\n", dir, strings.Join(args, ", "))
}

// Comment emits a single-line GAS comment.
func (e *Emitter) Comment(format string, args ...interface{}) {
	fmt.Fprintf(e.out, "\t# %s\n", fmt.Sprintf(format, args...))
}

// Reg formats GAS's %-prefixed register syntax.
func Reg(name string) string { return "%" + name }

// Imm formats a GAS immediate operand.
func Imm(v int64) string { return fmt.Sprintf("$%d", v) }

// ImmU formats an unsigned-interpreted immediate operand, needed for
// 64-bit constants (pointers, long/long long literals) whose bit
// pattern matters more than its signed decimal spelling.
func ImmU(v uint64) string { return fmt.Sprintf("$%d", v) }

// Mem formats a base-register-relative memory operand ("-8(%rbp)").
func Mem(offset int, base string) string {
	if offset == 0 {
		return "(" + Reg(base) + ")"
	}
	return fmt.Sprintf("%d(%s)", offset, Reg(base))
}

// RipMem formats a RIP-relative memory operand for a global symbol
// ("label+4(%rip)"), the addressing mode every non-PIE-disabled global
// reference uses on this target.
func RipMem(label string, offset int) string {
	if offset == 0 {
		return fmt.Sprintf("%s(%%rip)", label)
	}
	return fmt.Sprintf("%s+%d(%%rip)", label, offset)
}
