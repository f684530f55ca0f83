package cpp

import "github.com/kakitgogogo/mcc/internal/token"

// MacroKind tags the three macro shapes the original Macro/ObjectMacro/
// FunctionMacro/PredefinedMacro hierarchy models.
type MacroKind int

const (
	MKObject MacroKind = iota
	MKFunction
	MKPredefined
)

// Macro is one #define'd or predefined name. Function macros additionally
// carry their parameter count and variadic flag; predefined macros carry
// a handler invoked at the use-site token instead of a fixed body.
type Macro struct {
	Kind     MacroKind
	Body     []token.Token
	NArgs    int
	Variadic bool
	Handler  func(use token.Token) token.Token
}

func newObjectMacro(body []token.Token) *Macro {
	return &Macro{Kind: MKObject, Body: body}
}

func newFunctionMacro(body []token.Token, nargs int, variadic bool) *Macro {
	return &Macro{Kind: MKFunction, Body: body, NArgs: nargs, Variadic: variadic}
}

func newPredefinedMacro(handler func(token.Token) token.Token) *Macro {
	return &Macro{Kind: MKPredefined, Handler: handler}
}
