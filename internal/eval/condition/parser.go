package condition

import (
	"strings"
)

// binaryPrecedence lists the supported binary operators. Higher binds tighter.
var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3,
	"!=": 3,
	"<":  4,
	"<=": 4,
	">":  4,
	">=": 4,
}

// Parse parses a condition into an expression tree.
func Parse(expression string) (Node, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, syntaxError(expression, 0, "empty condition")
	}

	tokens, err := tokenize(expression)
	if err != nil {
		return nil, err
	}

	p := &parser{expression: expression, tokens: tokens}
	node, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, syntaxError(expression, tok.pos, "unexpected token %q", tok.text)
	}
	return node, nil
}

type parser struct {
	expression string
	tokens     []token
	pos        int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

// parseBinary implements precedence climbing over binaryPrecedence. All
// operators are left associative.
func (p *parser) parseBinary(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokenOperator {
			return left, nil
		}
		op := tok.value.(string)
		prec, ok := binaryPrecedence[op]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.advance()

		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if tok := p.peek(); tok.kind == tokenOperator && tok.value == "!" {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.advance()

	switch tok.kind {
	case tokenLParen:
		inner, err := p.parseBinary(1)
		if err != nil {
			return nil, err
		}
		if closing := p.advance(); closing.kind != tokenRParen {
			return nil, syntaxError(p.expression, closing.pos, "missing closing ')'")
		}
		return inner, nil

	case tokenPath:
		if p.peek().kind == tokenLParen {
			return nil, syntaxError(p.expression, tok.pos, "function calls are not supported: %s(...)", tok.text)
		}
		segments := strings.Split(tok.text, ".")
		return &pathNode{path: tok.text, segments: segments}, nil

	case tokenNumber, tokenString, tokenBool, tokenNull:
		if p.peek().kind == tokenLParen {
			return nil, syntaxError(p.expression, tok.pos, "unexpected '(' after literal %s", tok.text)
		}
		return &literalNode{value: tok.value}, nil

	case tokenEOF:
		return nil, syntaxError(p.expression, tok.pos, "unexpected end of condition")
	}

	return nil, syntaxError(p.expression, tok.pos, "unexpected token %q", tok.text)
}
