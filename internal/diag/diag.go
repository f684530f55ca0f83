// Package diag implements the compiler's diagnostic taxonomy: I/O,
// lex, preprocessor, parse errors, semantic warnings, and the
// has_error gate that decides whether codegen runs at all.
//
// A *Bag is the per-invocation Context value threaded through the
// pipeline in place of package-level global error() / warning() free
// functions.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/logutils"

	"github.com/kakitgogogo/mcc/internal/token"
)

// Bag collects diagnostics for one compilation and exposes the
// "has_error" gate that stops codegen after a failed translation unit.
type Bag struct {
	out      io.Writer
	filter   *logutils.LevelFilter
	hasError bool
	warn     bool // -Wall-equivalent: emit Warning-level diagnostics
	debug    bool // -v-equivalent: emit Debug-level trace
}

// New returns a Bag writing to stderr, with warnings controlled by warn
// and debug tracing controlled by debug.
func New(warn, debug bool) *Bag {
	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "WARN", "ERROR"},
		MinLevel: logutils.LogLevel("WARN"),
		Writer:   os.Stderr,
	}
	if debug {
		filter.MinLevel = logutils.LogLevel("DEBUG")
	}
	return &Bag{out: filter, filter: filter, warn: warn, debug: debug}
}

// HasError reports whether any fatal/error diagnostic has been recorded.
// Codegen must not run when this is true.
func (b *Bag) HasError() bool { return b.hasError }

func (b *Bag) writeLevel(level, pos string, msg string) {
	line := fmt.Sprintf("[%s] %s: %s\n", level, pos, msg)
	io.WriteString(b.out, line)
}

// Errorf records a non-fatal, position-carrying error (lex/preprocessor/
// parse errors) and sets the has_error gate. Parsing and lexing
// continue after this call to surface more diagnostics in one run.
func (b *Bag) Errorf(pos token.Pos, format string, args ...interface{}) {
	b.hasError = true
	b.writeLevel("ERROR", pos.String(), fmt.Sprintf(format, args...))
}

// Fatalf records an error and terminates the process immediately
// (unrecoverable I/O errors, unreachable codegen invariants).
func (b *Bag) Fatalf(pos token.Pos, format string, args ...interface{}) {
	b.hasError = true
	b.writeLevel("ERROR", pos.String(), fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Warnf records a semantic warning (implicit function declaration,
// unknown escape, ...). Suppressed entirely unless warnings are enabled.
func (b *Bag) Warnf(pos token.Pos, format string, args ...interface{}) {
	if !b.warn {
		return
	}
	b.writeLevel("WARN", pos.String(), fmt.Sprintf(format, args...))
}

// Debugf emits a trace line (token dump, macro-expansion trace) at DEBUG
// level; filtered out unless debug tracing is enabled.
func (b *Bag) Debugf(format string, args ...interface{}) {
	b.writeLevel("DEBUG", "-", fmt.Sprintf(format, args...))
}
