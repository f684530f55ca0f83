// Package driver wires config, diag, and the five pipeline stages
// (source -> lexer -> preprocessor -> parser -> codegen) into one
// per-invocation compilation, then hands the generated assembly to
// the host's as/ld, matching std/compiler/main.go's shape: parse
// flags, run the pipeline, invoke the external toolchain, clean up.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kakitgogogo/mcc/internal/ast"
	"github.com/kakitgogogo/mcc/internal/codegen"
	"github.com/kakitgogogo/mcc/internal/config"
	"github.com/kakitgogogo/mcc/internal/cpp"
	"github.com/kakitgogogo/mcc/internal/cscope"
	"github.com/kakitgogogo/mcc/internal/ctypes"
	"github.com/kakitgogogo/mcc/internal/diag"
	"github.com/kakitgogogo/mcc/internal/lexer"
	"github.com/kakitgogogo/mcc/internal/parser"
	"github.com/kakitgogogo/mcc/internal/token"
)

// mccHeader is the implementation-provided header auto-included at
// lexer start, the way gcc auto-includes its own builtin macros
// header. It is looked up on the search path like any other system
// header rather than compiled in, so a host without it installed still
// compiles freestanding translation units that don't rely on it.
const mccHeader = "mcc.h"

// Run parses cfg's source files, one translation unit at a time, and
// drives each through to the stop stage cfg requests (-E/-S/-c or a
// full link). It returns the process exit code main should use.
func Run(cfg *config.Config) int {
	includeDirs := cfg.SearchIncludeDirs()

	var objects []string
	for _, src := range cfg.Inputs {
		if !config.FileExists(src) {
			fmt.Fprintf(os.Stderr, "mcc: %s: no such file or not readable\n", src)
			return 1
		}
		out, err := compileOne(cfg, src, includeDirs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mcc: %s: %v\n", src, err)
			return 1
		}
		if out != "" {
			objects = append(objects, out)
		}
	}

	if cfg.PreprocOnly || cfg.AsmOnly || cfg.ObjOnly {
		return 0
	}
	// Every entry in objects is a tempFile-created .o at this point
	// (compileOne only returns a caller-owned path under -c), so it's
	// safe to sweep them all once the link that consumes them is done.
	defer func() {
		for _, o := range objects {
			os.Remove(o)
		}
	}()
	if err := link(objects, cfg.OutputPath()); err != nil {
		fmt.Fprintf(os.Stderr, "mcc: link: %v\n", err)
		return 1
	}
	return 0
}

// compileOne runs one source file through the pipeline up to cfg's
// requested stop stage, returning the path of whatever it produced
// (empty for -E, which streams straight to stdout).
func compileOne(cfg *config.Config, src string, includeDirs []string) (string, error) {
	bag := diag.New(cfg.Warn, cfg.Debug)

	lex := lexer.New(bag)
	if err := lex.PushFile(src); err != nil {
		return "", err
	}
	if hdr := findOnPath(mccHeader, includeDirs); hdr != "" {
		if err := lex.PushFile(hdr); err != nil {
			return "", err
		}
	}

	pp := cpp.New(bag, lex, includeDirs)
	applyDefines(bag, pp, cfg)

	if cfg.PreprocOnly {
		return "", preprocessOnly(pp, os.Stdout)
	}

	types := ctypes.NewArena()
	scope := cscope.New()
	labels := ast.NewLabelGen()
	p := parser.New(pp, bag, types, scope, labels)
	toplevel := p.Parse()
	if bag.HasError() {
		return "", fmt.Errorf("compilation failed")
	}

	var asmPath string
	switch {
	case cfg.AsmOnly && cfg.Output != "":
		asmPath = cfg.Output
	case cfg.AsmOnly:
		asmPath = baseName(src) + ".s"
	default:
		tmp, err := tempFile(baseName(src), ".s")
		if err != nil {
			return "", err
		}
		asmPath = tmp
	}

	f, err := os.Create(asmPath)
	if err != nil {
		return "", err
	}
	emitter := codegen.NewEmitter(f)
	gen := codegen.New(emitter, types)
	gen.Generate(toplevel)
	if err := f.Close(); err != nil {
		return "", err
	}
	if bag.HasError() {
		os.Remove(asmPath)
		return "", fmt.Errorf("compilation failed")
	}

	if cfg.AsmOnly {
		return asmPath, nil
	}
	defer os.Remove(asmPath)

	objPath := baseName(src) + ".o"
	if cfg.ObjOnly && cfg.Output != "" {
		objPath = cfg.Output
	} else if !cfg.ObjOnly {
		tmp, err := tempFile(baseName(src), ".o")
		if err != nil {
			return "", err
		}
		objPath = tmp
	}
	if err := assemble(asmPath, objPath); err != nil {
		return "", err
	}
	return objPath, nil
}

// applyDefines seeds pp with cfg's -D/-U occurrences before any token
// is pulled from it, the same "#define name def" / "#undef name"
// effect cc1's command-line -D/-U handling has, reached here straight
// through the Preprocessor's own Define/Undef API instead of
// re-synthesizing and re-lexing directive text.
func applyDefines(bag *diag.Bag, pp *cpp.Preprocessor, cfg *config.Config) {
	for _, d := range cfg.Defines {
		body := lexer.LexString(bag, "<command-line>", []byte(d.Def))
		pp.Define(d.Name, &cpp.Macro{Kind: cpp.MKObject, Body: body})
	}
	for _, name := range cfg.Undefs {
		pp.Undef(name)
	}
}

// preprocessOnly drains pp to w, one token's spelling at a time, for -E.
func preprocessOnly(pp *cpp.Preprocessor, w *os.File) error {
	for {
		tok := pp.NextToken()
		if tok.Kind == token.TEOF {
			return nil
		}
		sep := " "
		if tok.BeginOfLine {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(w, "%s%s", sep, tok.String()); err != nil {
			return err
		}
	}
}

func assemble(asmPath, objPath string) error {
	as, err := findTool("as")
	if err != nil {
		return err
	}
	cmd := exec.Command(as, "--64", "-o", objPath, asmPath)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func link(objects []string, out string) error {
	ld, err := findTool("ld")
	if err != nil {
		return err
	}
	args := append([]string{"-o", out}, objects...)
	cmd := exec.Command(ld, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func findTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %v", name, err)
	}
	return path, nil
}

func findOnPath(name string, dirs []string) string {
	for _, d := range dirs {
		p := filepath.Join(d, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func tempFile(prefix, suffix string) (string, error) {
	f, err := os.CreateTemp("", "mcc-"+prefix+"-*"+suffix)
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	if dot := len(base) - len(filepath.Ext(base)); dot > 0 {
		base = base[:dot]
	}
	return base
}
