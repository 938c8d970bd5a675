package condition

import (
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenPath
	tokenNumber
	tokenString
	tokenBool
	tokenNull
	tokenOperator
	tokenLParen
	tokenRParen
)

type token struct {
	kind  tokenKind
	text  string
	pos   int
	value interface{}
}

// operand reports whether the token ends an operand. It decides whether a
// following '-' starts a negative number literal.
func (t token) operand() bool {
	switch t.kind {
	case tokenPath, tokenNumber, tokenString, tokenBool, tokenNull, tokenRParen:
		return true
	}
	return false
}

type lexer struct {
	input  string
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: input}
	for {
		l.skipSpace()
		if l.pos >= len(l.input) {
			l.tokens = append(l.tokens, token{kind: tokenEOF, pos: l.pos})
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) emit(kind tokenKind, start int, value interface{}) {
	l.tokens = append(l.tokens, token{
		kind:  kind,
		text:  l.input[start:l.pos],
		pos:   start,
		value: value,
	})
}

func (l *lexer) last() token {
	if len(l.tokens) == 0 {
		return token{kind: tokenEOF}
	}
	return l.tokens[len(l.tokens)-1]
}

func (l *lexer) next() error {
	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '(':
		l.pos++
		l.emit(tokenLParen, start, nil)
		return nil
	case ch == ')':
		l.pos++
		l.emit(tokenRParen, start, nil)
		return nil
	case ch == '"' || ch == '\'':
		return l.lexString(ch)
	case isDigit(ch) || (ch == '.' && isDigit(l.peekByte(1))):
		return l.lexNumber()
	case ch == '-' && (isDigit(l.peekByte(1)) || l.peekByte(1) == '.') && !l.last().operand():
		return l.lexNumber()
	case isIdentStart(ch):
		return l.lexPath()
	}

	return l.lexOperator()
}

func (l *lexer) lexOperator() error {
	start := l.pos
	ch := l.input[l.pos]
	next := l.peekByte(1)

	var op string
	switch ch {
	case '=':
		if next != '=' {
			return syntaxError(l.input, start, "unsupported operator '='; use '=='")
		}
		op = "=="
	case '!':
		op = "!"
		if next == '=' {
			op = "!="
		}
	case '<', '>':
		op = string(ch)
		if next == '=' {
			op += "="
		}
	case '&':
		if next != '&' {
			return syntaxError(l.input, start, "unsupported operator '&'; use '&&'")
		}
		op = "&&"
	case '|':
		if next != '|' {
			return syntaxError(l.input, start, "unsupported operator '|'; use '||'")
		}
		op = "||"
	default:
		return syntaxError(l.input, start, "unsupported operator %q", string(ch))
	}

	l.pos += len(op)
	if (op == "==" || op == "!=") && l.peekByte(0) == '=' {
		return syntaxError(l.input, start, "unsupported operator %q", op+"=")
	}
	l.emit(tokenOperator, start, op)
	return nil
}

func (l *lexer) lexString(quote byte) error {
	start := l.pos
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == quote:
			l.pos++
			l.emit(tokenString, start, sb.String())
			return nil
		case ch == '\\' && l.pos+1 < len(l.input):
			l.pos++
			switch esc := l.input[l.pos]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(esc)
			}
			l.pos++
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
	return syntaxError(l.input, start, "unterminated string literal")
}

func (l *lexer) lexNumber() error {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if c := l.peekByte(0); c == 'e' || c == 'E' {
		l.pos++
		if c := l.peekByte(0); c == '+' || c == '-' {
			l.pos++
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && isIdentStart(l.input[l.pos]) {
		return syntaxError(l.input, start, "malformed number %q", l.input[start:l.pos+1])
	}

	value, err := strconv.ParseFloat(l.input[start:l.pos], 64)
	if err != nil {
		return syntaxError(l.input, start, "malformed number %q", l.input[start:l.pos])
	}
	l.emit(tokenNumber, start, value)
	return nil
}

// lexPath reads an identifier and any ".segment" continuations as one token.
// Segments after the first may start with a digit so that "items.0" works.
func (l *lexer) lexPath() error {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	for l.peekByte(0) == '.' {
		if !isIdentPart(l.peekByte(1)) {
			return syntaxError(l.input, l.pos, "expected property name after '.'")
		}
		l.pos++
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
	}

	switch text := l.input[start:l.pos]; text {
	case "true", "false":
		l.emit(tokenBool, start, text == "true")
	case "null", "undefined":
		l.emit(tokenNull, start, nil)
	default:
		l.emit(tokenPath, start, text)
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
