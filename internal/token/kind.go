package token

// Kind is a compact integer token id. Single-character punctuators reuse
// their own rune value (e.g. Kind('+') == '+'); keywords and multi-character
// punctuators are allocated starting at KeywordBase so they never collide
// with the ASCII range a single-character punctuator can occupy.
type Kind int

const KeywordBase Kind = 256

// Keywords, in the order C11 6.4.1 groups them (type-specifier,
// type-qualifier, storage-class-specifier, function-specifier,
// alignment-specifier, the rest), followed by the multi-character
// punctuators that have no single ASCII byte to reuse.
const (
	KW_VOID Kind = KeywordBase + iota
	KW_CHAR
	KW_SHORT
	KW_INT
	KW_LONG
	KW_FLOAT
	KW_DOUBLE
	KW_SIGNED
	KW_UNSIGNED
	KW_BOOL

	KW_UNION
	KW_STRUCT
	KW_ENUM

	KW_CONST
	KW_RESTRICT
	KW_VOLATILE
	KW_ATOMIC
	KW_COMPLEX
	KW_IMAGINARY

	KW_TYPEDEF
	KW_TYPEOF
	KW_EXTERN
	KW_STATIC
	KW_THREAD_LOCAL
	KW_AUTO
	KW_REGISTER

	KW_INLINE
	KW_NORETURN

	KW_ALIGNAS

	KW_ALIGNOF
	KW_BREAK
	KW_CASE
	KW_CONTINUE
	KW_DEFAULT
	KW_DO
	KW_ELSE
	KW_FOR
	KW_GENERIC
	KW_GOTO
	KW_IF
	KW_RETURN
	KW_SIZEOF
	KW_STATIC_ASSERT
	KW_SWITCH
	KW_WHILE

	// punctuators with no one-byte spelling
	P_ARROW     // ->
	P_ASSIGN_ADD
	P_ASSIGN_AND
	P_ASSIGN_DIV
	P_ASSIGN_MOD
	P_ASSIGN_MUL
	P_ASSIGN_OR
	P_ASSIGN_SAL
	P_ASSIGN_SAR
	P_ASSIGN_SUB
	P_ASSIGN_XOR
	P_DEC // --
	P_EQ  // ==
	P_GE  // >=
	P_INC // ++
	P_LE  // <=
	P_LOGAND
	P_LOGOR
	P_NE
	P_SAL // <<
	P_SAR // >>
	P_ELLIPSIS // ...
	P_HASHHASH // ##

	// the kinds from here to TEOF also reach the parser; the ones after
	// TPP are internal to the lexer and preprocessor.
	firstNonParserKind

	TIDENT
	TNUMBER
	TCHAR
	TSTRING
	TEOF

	TPP // marker: kinds below this never reach the parser

	TINVALID
	TSPACE
	TNEWLINE
	TMACRO_PARAM
)

var keywordSpellings = map[string]Kind{
	"void": KW_VOID, "char": KW_CHAR, "short": KW_SHORT, "int": KW_INT,
	"long": KW_LONG, "float": KW_FLOAT, "double": KW_DOUBLE,
	"signed": KW_SIGNED, "unsigned": KW_UNSIGNED, "_Bool": KW_BOOL,
	"union": KW_UNION, "struct": KW_STRUCT, "enum": KW_ENUM,
	"const": KW_CONST, "restrict": KW_RESTRICT, "volatile": KW_VOLATILE,
	"_Atomic": KW_ATOMIC, "_Complex": KW_COMPLEX, "_Imaginary": KW_IMAGINARY,
	"typedef": KW_TYPEDEF, "typeof": KW_TYPEOF, "extern": KW_EXTERN,
	"static": KW_STATIC, "_Thread_local": KW_THREAD_LOCAL, "auto": KW_AUTO,
	"register": KW_REGISTER,
	"inline": KW_INLINE, "_Noreturn": KW_NORETURN,
	"_Alignas": KW_ALIGNAS,
	"_Alignof": KW_ALIGNOF, "break": KW_BREAK, "case": KW_CASE,
	"continue": KW_CONTINUE, "default": KW_DEFAULT, "do": KW_DO,
	"else": KW_ELSE, "for": KW_FOR, "_Generic": KW_GENERIC, "goto": KW_GOTO,
	"if": KW_IF, "return": KW_RETURN, "sizeof": KW_SIZEOF,
	"_Static_assert": KW_STATIC_ASSERT, "switch": KW_SWITCH, "while": KW_WHILE,
}

// Keyword looks up name as a C keyword, returning (kind, true) on a match.
// Keyword conversion is applied by the preprocessor as identifiers flow
// out of it.
func Keyword(name string) (Kind, bool) {
	k, ok := keywordSpellings[name]
	return k, ok
}

var kindNames = map[Kind]string{
	TIDENT: "identifier", TNUMBER: "number", TCHAR: "char-literal",
	TSTRING: "string-literal", TEOF: "EOF", TINVALID: "<invalid>",
	TSPACE: "<space>", TNEWLINE: "<newline>", TMACRO_PARAM: "<macro-param>",
	P_ARROW: "->", P_ASSIGN_ADD: "+=", P_ASSIGN_AND: "&=", P_ASSIGN_DIV: "/=",
	P_ASSIGN_MOD: "%=", P_ASSIGN_MUL: "*=", P_ASSIGN_OR: "|=",
	P_ASSIGN_SAL: "<<=", P_ASSIGN_SAR: ">>=", P_ASSIGN_SUB: "-=",
	P_ASSIGN_XOR: "^=", P_DEC: "--", P_EQ: "==", P_GE: ">=", P_INC: "++",
	P_LE: "<=", P_LOGAND: "&&", P_LOGOR: "||", P_NE: "!=", P_SAL: "<<",
	P_SAR: ">>", P_ELLIPSIS: "...", P_HASHHASH: "##",
}

func init() {
	for name, k := range keywordSpellings {
		kindNames[k] = name
	}
}

// String renders k for diagnostics; single-character punctuators render
// as themselves.
func (k Kind) String() string {
	if k >= 0 && k < KeywordBase {
		return string(rune(k))
	}
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "<unknown-kind>"
}

// IsKeyword reports whether k names one of the type/storage/statement
// keywords (not a punctuator).
func (k Kind) IsKeyword() bool {
	return k >= KW_VOID && k <= KW_WHILE
}

// IsTypeSpecifierKeyword reports whether k can begin a type-specifier,
// per C11 6.7.2.
func (k Kind) IsTypeSpecifierKeyword() bool {
	switch k {
	case KW_VOID, KW_CHAR, KW_SHORT, KW_INT, KW_LONG, KW_FLOAT, KW_DOUBLE,
		KW_SIGNED, KW_UNSIGNED, KW_BOOL, KW_UNION, KW_STRUCT, KW_ENUM,
		KW_COMPLEX, KW_IMAGINARY:
		return true
	}
	return false
}
