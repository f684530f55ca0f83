package driver

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEmpty(path string) error {
	return os.WriteFile(path, nil, 0644)
}

func TestBaseNameStripsDirAndExt(t *testing.T) {
	cases := map[string]string{
		"prog.c":        "prog",
		"dir/sub/prog.c": "prog",
		"noext":         "noext",
	}
	for in, want := range cases {
		if got := baseName(filepath.FromSlash(in)); got != want {
			t.Errorf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindOnPathMissesWhenAbsent(t *testing.T) {
	if got := findOnPath("mcc.h", []string{t.TempDir()}); got != "" {
		t.Errorf("findOnPath found %q in an empty dir", got)
	}
}

func TestFindOnPathFindsFirstMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcc.h")
	if err := writeEmpty(path); err != nil {
		t.Fatalf("writeEmpty: %v", err)
	}
	if got := findOnPath("mcc.h", []string{t.TempDir(), dir}); got != path {
		t.Errorf("findOnPath = %q, want %q", got, path)
	}
}

func TestTempFileIsUnique(t *testing.T) {
	a, err := tempFile("x", ".s")
	if err != nil {
		t.Fatalf("tempFile: %v", err)
	}
	defer os.Remove(a)
	b, err := tempFile("x", ".s")
	if err != nil {
		t.Fatalf("tempFile: %v", err)
	}
	defer os.Remove(b)
	if a == b {
		t.Errorf("tempFile returned the same path twice: %q", a)
	}
}
