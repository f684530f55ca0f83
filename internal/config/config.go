// Package config collects one compiler invocation's command-line
// surface into a single value threaded through the rest of the
// pipeline, in place of the package-level flag variables the original
// implementation kept as globals (DESIGN NOTES "mutable global state").
package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Define is a -D name[=def] occurrence; the driver lexes Def and installs
// it as an object-like macro named Name before the translation unit is
// preprocessed.
type Define struct {
	Name string
	Def  string // "1" when no "=" was given; "-DX=" leaves it empty
}

// Config is the parsed form of a single mcc invocation.
type Config struct {
	IncludeDirs []string // -I, searched in order before the standard list
	Defines     []Define // -D, in command-line order
	Undefs      []string // -U, in command-line order
	Output      string   // -o; empty means derive from the (sole) input
	AsmOnly     bool     // -S: stop after emitting assembly
	ObjOnly     bool     // -c: stop after assembling, don't link
	PreprocOnly bool     // -E: stop after preprocessing
	Warn        bool     // -Wall-equivalent: enable diag.Bag warnings
	Debug       bool     // -v-equivalent: enable diag.Bag debug tracing
	Inputs      []string // positional .c source files, in order
}

// Parse walks args (typically os.Args[1:]) with a hand-rolled loop
// rather than the standard library flag package: -Idir/-I dir and
// -Dname=val/-D name=val must both be accepted, attached or separate,
// the way cc/gcc do, which flag.FlagSet cannot express directly. The
// loop shape is grounded on std/compiler/main.go's own
// "for i < len(os.Args)" argument scan.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "-I":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-I: missing argument")
			}
			cfg.IncludeDirs = append(cfg.IncludeDirs, args[i+1])
			i += 2
		case strings.HasPrefix(arg, "-I") && len(arg) > 2:
			cfg.IncludeDirs = append(cfg.IncludeDirs, arg[2:])
			i++
		case arg == "-D":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-D: missing argument")
			}
			cfg.Defines = append(cfg.Defines, parseDefine(args[i+1]))
			i += 2
		case strings.HasPrefix(arg, "-D") && len(arg) > 2:
			cfg.Defines = append(cfg.Defines, parseDefine(arg[2:]))
			i++
		case arg == "-U":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-U: missing argument")
			}
			cfg.Undefs = append(cfg.Undefs, args[i+1])
			i += 2
		case strings.HasPrefix(arg, "-U") && len(arg) > 2:
			cfg.Undefs = append(cfg.Undefs, arg[2:])
			i++
		case arg == "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-o: missing argument")
			}
			cfg.Output = args[i+1]
			i += 2
		case arg == "-S":
			cfg.AsmOnly = true
			i++
		case arg == "-c":
			cfg.ObjOnly = true
			i++
		case arg == "-E":
			cfg.PreprocOnly = true
			i++
		case arg == "-Wall":
			cfg.Warn = true
			i++
		case arg == "-v":
			cfg.Debug = true
			i++
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unrecognized flag %q", arg)
		default:
			cfg.Inputs = append(cfg.Inputs, arg)
			i++
		}
	}
	if cfg.AsmOnly && cfg.ObjOnly {
		return nil, fmt.Errorf("-S and -c are incompatible")
	}
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	if len(cfg.Inputs) > maxInputs {
		return nil, fmt.Errorf("too many input files (%d, max %d)", len(cfg.Inputs), maxInputs)
	}
	for _, src := range cfg.Inputs {
		if !strings.HasSuffix(src, ".c") {
			return nil, fmt.Errorf("%s: input file must have a .c suffix", src)
		}
	}
	if cfg.Output != "" && len(cfg.Inputs) > 1 && (cfg.AsmOnly || cfg.ObjOnly) {
		return nil, fmt.Errorf("-o cannot be used with -S/-c and multiple input files")
	}
	return cfg, nil
}

// maxInputs is the cap on source files accepted in one invocation.
const maxInputs = 100

// parseDefine splits "name=def" into a Define, defaulting Def to "1"
// when no "=" is present, matching -D's usual cc1 semantics.
func parseDefine(s string) Define {
	if eq := strings.IndexByte(s, '='); eq >= 0 {
		return Define{Name: s[:eq], Def: s[eq+1:]}
	}
	return Define{Name: s, Def: "1"}
}

// StandardIncludeDirs is the fallback search path appended after every
// -I directory, mirroring cc1's "/usr/include"-style built-in list.
var StandardIncludeDirs = []string{
	"/usr/local/mcc/include",
	"/usr/local/include",
	"/usr/include",
	"/usr/include/linux",
	"/usr/include/x86_64-linux-gnu",
}

// SearchIncludeDirs returns cfg's -I directories followed by the
// standard list, filtered to directories that actually exist and are
// accessible, checked with unix.Access rather than os.Stat so the
// check matches the access(2) semantics `cc`'s own include search
// uses (a directory the process can stat but not read still fails to
// resolve an #include).
func (c *Config) SearchIncludeDirs() []string {
	var out []string
	for _, dir := range append(append([]string{}, c.IncludeDirs...), StandardIncludeDirs...) {
		if unix.Access(dir, unix.R_OK) == nil {
			out = append(out, dir)
		}
	}
	return out
}

// OutputPath derives the path codegen/assembler/linker output should
// land at when -o wasn't given: the sole input's base name with its
// extension swapped for the one appropriate to the requested stop
// stage (.s for -S, .o for -c), "-" (standard output) for -E, and
// otherwise "a.out".
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	base := c.Inputs[0]
	if dot := strings.LastIndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	if slash := strings.LastIndexByte(base, '/'); slash >= 0 {
		base = base[slash+1:]
	}
	switch {
	case c.PreprocOnly:
		return "-"
	case c.AsmOnly:
		return base + ".s"
	case c.ObjOnly:
		return base + ".o"
	default:
		return "a.out"
	}
}

// FileExists reports whether path names a regular, readable file; unlike
// SearchIncludeDirs's R_OK check, it also rejects directories.
func FileExists(path string) bool {
	if unix.Access(path, unix.R_OK) != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
