package implicit

import (
	"strconv"
	"unicode"
)

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	funcopt struct {
		name string
		fn   Func
	}
	funcsopt map[string]Func
)

// parsectx holds general data for parsing.
type parsectx struct {
	// funcs is the set of function names that trigger special parsing for ids.
	funcs map[string]Func
	// resv is a reserved parsed node. parsearglist sets this when it parses a
	// single parenthesized term so that the parser can back it out to an
	// implicit multiplication if the function is niladic.
	resv *node
}

// known reports whether w is a name the lexer should produce as one token.
func (p *parsectx) known(w string) bool {
	return isVar(w) || p.funcs[w] != nil
}

// ParseFunc sets a function for parsing. To disable parsing a function, pass
// nil for fn. The name must consist of letters and must not be a variable.
func ParseFunc(name string, fn Func) ParseOption {
	checkFuncName(name)
	return &funcopt{name, fn}
}

func (o *funcopt) parseOption(p parsectx) parsectx {
	if p.funcs == nil {
		p.funcs = map[string]Func{}
	}
	p.funcs[o.name] = o.fn
	return p
}

// ParseFuncs sets a group of functions for parsing. To disable parsing any
// function, set it to nil.
func ParseFuncs(fns map[string]Func) ParseOption {
	for k := range fns {
		checkFuncName(k)
	}
	return funcsopt(fns)
}

func (o funcsopt) parseOption(p parsectx) parsectx {
	if p.funcs == nil {
		// Always make a copy.
		p.funcs = make(map[string]Func, len(o))
	}
	for k, v := range o {
		p.funcs[k] = v
	}
	return p
}

// DisableDefaultFuncs disables all default functions and constants during
// parsing. Their names become errors, since only x, y, and t are variables.
func DisableDefaultFuncs() ParseOption {
	return funcsopt(defaultFuncsDisabled())
}

func checkFuncName(name string) {
	if name == "" || isVar(name) {
		panic("implicit: invalid function name " + strconv.Quote(name))
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			panic("implicit: invalid function name " + strconv.Quote(name))
		}
	}
}
