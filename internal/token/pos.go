// Package token defines the uniform token representation shared by the
// lexer, preprocessor and parser.
package token

import "fmt"

// Pos identifies a single point in a translation unit's source text.
// It is immutable once assigned; every token and AST node carries one.
type Pos struct {
	File string
	Row  int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Row, p.Col)
}

// IsValid reports whether p identifies a real source location.
func (p Pos) IsValid() bool {
	return p.File != ""
}
