package cpp

import (
	"strconv"
	"time"

	"github.com/kakitgogogo/mcc/internal/token"
)

// initPredefinedMacros installs the C11 6.10.8 predefined macros plus the
// GNU-derived __BASE_FILE__/__INCLUDE_LEVEL__/__COUNTER__ this compiler's
// driver and diagnostics rely on.
func (p *Preprocessor) initPredefinedMacros() {
	now := time.Now()
	date := now.Format("Jan _2 2006")
	clock := now.Format("15:04:05")
	timestamp := now.Format("Mon Jan _2 15:04:05 2006")

	p.macros["__STDC__"] = newObjectMacro([]token.Token{token.NewNumber("1", token.Pos{})})
	p.macros["__DATE__"] = newPredefinedMacro(func(use token.Token) token.Token {
		return token.NewString([]byte(date), token.EncNone, use.Pos)
	})
	p.macros["__TIME__"] = newPredefinedMacro(func(use token.Token) token.Token {
		return token.NewString([]byte(clock), token.EncNone, use.Pos)
	})
	p.macros["__TIMESTAMP__"] = newPredefinedMacro(func(use token.Token) token.Token {
		return token.NewString([]byte(timestamp), token.EncNone, use.Pos)
	})
	p.macros["__FILE__"] = newPredefinedMacro(func(use token.Token) token.Token {
		return token.NewString([]byte(use.Pos.File), token.EncNone, use.Pos)
	})
	p.macros["__LINE__"] = newPredefinedMacro(func(use token.Token) token.Token {
		return token.NewNumber(strconv.Itoa(use.Pos.Row), use.Pos)
	})
	p.macros["__BASE_FILE__"] = newPredefinedMacro(func(use token.Token) token.Token {
		return token.NewString([]byte(p.lex.BaseFile()), token.EncNone, use.Pos)
	})
	p.macros["__INCLUDE_LEVEL__"] = newPredefinedMacro(func(use token.Token) token.Token {
		return token.NewNumber(strconv.Itoa(p.lex.IncludeDepth()), use.Pos)
	})
	p.macros["__COUNTER__"] = newPredefinedMacro(func(use token.Token) token.Token {
		v := p.counter
		p.counter++
		return token.NewNumber(strconv.Itoa(v), use.Pos)
	})
}
