package implicit

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer or real token.
	tokenNum
	// tokenIdent is a variable, constant, or function name.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
	// tokenSep is a function arguments separator, either , or ;.
	tokenSep
)

var tokenKindNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenNum:   "Num",
	tokenIdent: "Ident",
	tokenOp:    "Op",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenSep:   "Sep",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/^×÷"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in ClosedBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

func byteidcs(s string) []string {
	v := make([]string, len(s))
	for i, r := range s {
		v[i] = string(r)
	}
	return v
}

var (
	operstrs      = byteidcs(Operators)
	openbrackets  = byteidcs(OpenBrackets)
	closebrackets = byteidcs(CloseBrackets)
)

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	p    lexToken
	eof  bool
	// known reports whether a word is a variable, constant, or function
	// name. Identifier runs that are not known are split into known names.
	known func(string) bool
	// split holds the remaining pieces of a split identifier run.
	split []lexToken
	// back holds runes pushed back by lookahead, last first.
	back []rune
}

func lex(src io.RuneScanner, known func(string) bool) *lexer {
	return &lexer{
		src:   src,
		rune:  1,
		known: known,
	}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("implicit: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("implicit: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// readRune reads a rune from the pushback stack or the src and updates the
// lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	if n := len(l.back); n > 0 {
		r = l.back[n-1]
		l.back = l.back[:n-1]
		l.rune++
		return r, nil
	}
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unread pushes a rune back so that it is the next rune read.
func (l *lexer) unread(r rune) {
	l.back = append(l.back, r)
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered,
// the result is an EOF token with a nil error. Subsequent times, if the EOF
// token is not pushed, the result is an empty token with io.EOF.
func (l *lexer) next() (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if len(l.split) > 0 {
		tok := l.split[0]
		l.split = l.split[1:]
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	tok := lexToken{pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			tok.pos++
			continue
		case isDigit(r), r == '.':
			l.unread(r)
			if err := l.scanNum(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenNum
			return tok, nil
		case unicode.IsLetter(r):
			l.unread(r)
			l.scanIdent()
			return l.words(tok.pos, l.buf.String())
		case r == ',':
			tok.text = ","
			tok.kind = tokenSep
			return tok, nil
		case r == ';':
			tok.text = ";"
			tok.kind = tokenSep
			return tok, nil
		case r == '∞':
			tok.text = "∞"
			tok.kind = tokenNum
			return tok, nil
		default:
			if k := strings.IndexRune(Operators, r); k >= 0 {
				tok.text = operstrs[k]
				tok.kind = tokenOp
				return tok, nil
			}
			if k := strings.IndexRune(OpenBrackets, r); k >= 0 {
				tok.text = openbrackets[k]
				tok.kind = tokenOpen
				return tok, nil
			}
			if k := strings.IndexRune(CloseBrackets, r); k >= 0 {
				tok.text = closebrackets[k]
				tok.kind = tokenClose
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

// scanNum scans a decimal literal. The literal ends at the first rune that
// cannot continue it, so "2x" scans as 2 followed by the identifier x. An e
// or E continues the literal only when an exponent follows it; otherwise it
// starts an identifier, as in "2e" or "2exp(x)".
func (l *lexer) scanNum() error {
	var dig, dot, ed bool
scan:
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		switch {
		case isDigit(r):
			l.buf.WriteRune(r)
			if !ed {
				dig = true
			}
		case r == '.':
			l.buf.WriteRune(r)
			if dot || ed {
				return l.error("number")
			}
			dot = true
		case (r == 'e' || r == 'E') && dig && !ed:
			if !l.exponent(r) {
				break scan
			}
			ed = true
		default:
			l.unread(r)
			break scan
		}
	}
	if !dig {
		return l.error("number")
	}
	return nil
}

// exponent scans the sign and first digit of an exponent following the marker
// e. If they are not there, everything read is pushed back, including e.
func (l *lexer) exponent(e rune) bool {
	s, err := l.readRune()
	if err != nil {
		l.unread(e)
		return false
	}
	if s == '+' || s == '-' {
		d, err := l.readRune()
		if err == nil && isDigit(d) {
			l.buf.WriteRune(e)
			l.buf.WriteRune(s)
			l.buf.WriteRune(d)
			return true
		}
		if err == nil {
			l.unread(d)
		}
		l.unread(s)
		l.unread(e)
		return false
	}
	if isDigit(s) {
		l.buf.WriteRune(e)
		l.buf.WriteRune(s)
		return true
	}
	l.unread(s)
	l.unread(e)
	return false
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// scanIdent scans a run of letters.
func (l *lexer) scanIdent() {
	for {
		r, err := l.readRune()
		if err != nil {
			// next unreads the rune that decides ident scanning before
			// calling scanIdent, so we have scanned at least one rune.
			return
		}
		if !unicode.IsLetter(r) {
			l.unread(r)
			return
		}
		l.buf.WriteRune(r)
	}
}

// words turns an identifier run into tokens. A run that is itself a known
// name is one token. Otherwise it is split greedily into the longest known
// names from the left, so "xy" is x then y and "xsin" is x then sin. The
// first token is returned and the rest are queued.
func (l *lexer) words(pos int, run string) (lexToken, error) {
	if isInf(run) || l.known(run) {
		return wordToken(run, pos), nil
	}
	rs := []rune(run)
	var toks []lexToken
	for i := 0; i < len(rs); {
		j := len(rs)
		for ; j > i; j-- {
			w := string(rs[i:j])
			if isInf(w) || l.known(w) {
				break
			}
		}
		if j == i {
			return lexToken{pos: pos}, &IdentError{Col: pos + i, Name: string(rs[i:]), Word: run}
		}
		toks = append(toks, wordToken(string(rs[i:j]), pos+i))
		i = j
	}
	l.split = append(l.split, toks[1:]...)
	return toks[0], nil
}

func wordToken(w string, pos int) lexToken {
	if isInf(w) {
		return lexToken{text: w, kind: tokenNum, pos: pos}
	}
	return lexToken{text: w, kind: tokenIdent, pos: pos}
}

// isInf reports whether an identifier spells infinity, which lexes as a number.
func isInf(w string) bool {
	return w == "inf" || w == "Inf"
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number"
	// or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
