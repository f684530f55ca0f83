package config

import (
	"strings"
	"testing"
)

func TestParseAttachedAndSeparateFlags(t *testing.T) {
	cfg, err := Parse([]string{"-Iinc", "-I", "/usr/local/foo", "-DFOO", "-D", "BAR=2", "-UBAZ", "a.c"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantInc := []string{"inc", "/usr/local/foo"}
	if len(cfg.IncludeDirs) != len(wantInc) {
		t.Fatalf("IncludeDirs = %v, want %v", cfg.IncludeDirs, wantInc)
	}
	for i, d := range wantInc {
		if cfg.IncludeDirs[i] != d {
			t.Errorf("IncludeDirs[%d] = %q, want %q", i, cfg.IncludeDirs[i], d)
		}
	}
	if len(cfg.Defines) != 2 || cfg.Defines[0].Name != "FOO" || cfg.Defines[0].Def != "1" {
		t.Errorf("Defines[0] = %+v, want {FOO 1}", cfg.Defines[0])
	}
	if cfg.Defines[1].Name != "BAR" || cfg.Defines[1].Def != "2" {
		t.Errorf("Defines[1] = %+v, want {BAR 2}", cfg.Defines[1])
	}
	if len(cfg.Undefs) != 1 || cfg.Undefs[0] != "BAZ" {
		t.Errorf("Undefs = %v, want [BAZ]", cfg.Undefs)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "a.c" {
		t.Errorf("Inputs = %v, want [a.c]", cfg.Inputs)
	}
}

func TestParseModeFlags(t *testing.T) {
	cfg, err := Parse([]string{"-S", "-o", "out.s", "x.c"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.AsmOnly || cfg.Output != "out.s" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseRejectsConflictingModes(t *testing.T) {
	if _, err := Parse([]string{"-S", "-c", "x.c"}); err == nil {
		t.Fatalf("expected error for -S + -c")
	}
}

func TestParseRejectsNoInputs(t *testing.T) {
	if _, err := Parse([]string{"-S"}); err == nil {
		t.Fatalf("expected error for missing input files")
	}
}

func TestParseRejectsSharedOutputForMultipleInputs(t *testing.T) {
	if _, err := Parse([]string{"-c", "-o", "out.o", "a.c", "b.c"}); err == nil {
		t.Fatalf("expected error for -o with -c and multiple inputs")
	}
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	if _, err := Parse([]string{"-zzz", "x.c"}); err == nil {
		t.Fatalf("expected error for unrecognized flag")
	}
}

func TestOutputPathDerivesFromInput(t *testing.T) {
	cfg := &Config{Inputs: []string{"dir/prog.c"}, AsmOnly: true}
	if got := cfg.OutputPath(); got != "prog.s" {
		t.Errorf("OutputPath() = %q, want prog.s", got)
	}
	cfg2 := &Config{Inputs: []string{"prog.c"}, ObjOnly: true}
	if got := cfg2.OutputPath(); got != "prog.o" {
		t.Errorf("OutputPath() = %q, want prog.o", got)
	}
	cfg3 := &Config{Inputs: []string{"prog.c"}}
	if got := cfg3.OutputPath(); got != "a.out" {
		t.Errorf("OutputPath() = %q, want a.out", got)
	}
}

func TestOutputPathHonorsExplicitOutput(t *testing.T) {
	cfg := &Config{Inputs: []string{"prog.c"}, Output: "custom"}
	if got := cfg.OutputPath(); got != "custom" {
		t.Errorf("OutputPath() = %q, want custom", got)
	}
}

func TestStandardIncludeDirsListsAllFiveInOrder(t *testing.T) {
	want := []string{
		"/usr/local/mcc/include",
		"/usr/local/include",
		"/usr/include",
		"/usr/include/linux",
		"/usr/include/x86_64-linux-gnu",
	}
	if len(StandardIncludeDirs) != len(want) {
		t.Fatalf("StandardIncludeDirs = %v, want %v", StandardIncludeDirs, want)
	}
	for i, d := range want {
		if StandardIncludeDirs[i] != d {
			t.Errorf("StandardIncludeDirs[%d] = %q, want %q", i, StandardIncludeDirs[i], d)
		}
	}
}

func TestParseRejectsNonCSuffixInput(t *testing.T) {
	_, err := Parse([]string{"a.cpp"})
	if err == nil {
		t.Fatalf("expected error for a non-.c input file")
	}
	if !strings.Contains(err.Error(), ".c suffix") {
		t.Errorf("got error %q, want it to mention the .c suffix requirement", err)
	}
}

func TestParseRejectsTooManyInputs(t *testing.T) {
	args := make([]string, maxInputs+1)
	for i := range args {
		args[i] = "f.c"
	}
	_, err := Parse(args)
	if err == nil {
		t.Fatalf("expected error for more than %d input files", maxInputs)
	}
}

func TestParseAcceptsExactlyMaxInputs(t *testing.T) {
	args := make([]string, maxInputs)
	for i := range args {
		args[i] = "f.c"
	}
	cfg, err := Parse(args)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Inputs) != maxInputs {
		t.Errorf("got %d inputs, want %d", len(cfg.Inputs), maxInputs)
	}
}
