package parser

import (
	"strconv"

	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/lexer"
	"github.com/nilp0inter/grace/internal/token"
)

// MaxRecursionDepth bounds nesting so a pathological input fails with a
// diagnostic instead of blowing the goroutine stack.
const MaxRecursionDepth = 10000

// Parser turns the token stream of a single source expression into an AST.
// The whole input must be one expression; trailing tokens are an error.
type Parser struct {
	l      *lexer.Lexer
	errors []*diagnostics.DiagnosticError

	curToken  token.Token
	peekToken token.Token
	depth     int
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the complete input as one expression.
func Parse(input string) (ast.Expression, []*diagnostics.DiagnosticError) {
	p := New(lexer.New(input))
	expr := p.ParseExpression()
	if expr != nil && !p.curTokenIs(token.EOF) {
		p.addErrorf(p.curToken, "unexpected %q after expression", p.curToken.Lexeme)
	}
	return expr, p.errors
}

func (p *Parser) Errors() []*diagnostics.DiagnosticError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

// expect consumes the current token if it has the wanted type, otherwise
// records an error and returns false.
func (p *Parser) expect(t token.Type) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addErrorf(p.curToken, "expected %q, found %q", string(t), p.curToken.Lexeme)
	return false
}

func (p *Parser) addErrorf(tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError(diagnostics.ErrP001, tok, format, args...))
}

func (p *Parser) enter(tok token.Token) bool {
	p.depth++
	if p.depth > MaxRecursionDepth {
		p.errors = append(p.errors, diagnostics.NewError(
			diagnostics.ErrP003,
			tok,
			"expression too deeply nested",
		))
		return false
	}
	return true
}

func (p *Parser) leave() { p.depth-- }

// ParseExpression parses at the loosest level: lambda, let, if and
// annotated operator expressions all live here.
func (p *Parser) ParseExpression() ast.Expression {
	if !p.enter(p.curToken) {
		return nil
	}
	defer p.leave()

	switch p.curToken.Type {
	case token.LAMBDA:
		return p.parseLambda()
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	}
	return p.parseAnnotated()
}

// \x -> body
func (p *Parser) parseLambda() ast.Expression {
	tok := p.curToken
	p.nextToken()
	if !p.curTokenIs(token.IDENT) {
		p.addErrorf(p.curToken, "expected parameter name after %q, found %q", "\\", p.curToken.Lexeme)
		return nil
	}
	param := p.curToken.Lexeme
	p.nextToken()
	if !p.expect(token.ARROW) {
		return nil
	}
	body := p.ParseExpression()
	if body == nil {
		return nil
	}
	return &ast.Lambda{Token: tok, Parameter: param, Body: body}
}

// let x = e1 let y : T = e2 in body
func (p *Parser) parseLet() ast.Expression {
	tok := p.curToken
	var bindings []*ast.Binding
	for p.curTokenIs(token.LET) {
		bindTok := p.curToken
		p.nextToken()
		if !p.curTokenIs(token.IDENT) {
			p.addErrorf(p.curToken, "expected binding name after let, found %q", p.curToken.Lexeme)
			return nil
		}
		name := p.curToken.Lexeme
		p.nextToken()

		binding := &ast.Binding{Token: bindTok, Name: name}
		if p.curTokenIs(token.COLON) {
			p.nextToken()
			annotation := p.parseType()
			if annotation == nil {
				return nil
			}
			binding.Annotation = annotation
		}
		if !p.expect(token.EQUALS) {
			return nil
		}
		value := p.ParseExpression()
		if value == nil {
			return nil
		}
		binding.Value = value
		bindings = append(bindings, binding)
	}
	if !p.expect(token.IN) {
		return nil
	}
	body := p.ParseExpression()
	if body == nil {
		return nil
	}
	return &ast.Let{Token: tok, Bindings: bindings, Body: body}
}

// if predicate then consequent else alternative
func (p *Parser) parseIf() ast.Expression {
	tok := p.curToken
	p.nextToken()
	predicate := p.ParseExpression()
	if predicate == nil {
		return nil
	}
	if !p.expect(token.THEN) {
		return nil
	}
	consequent := p.ParseExpression()
	if consequent == nil {
		return nil
	}
	if !p.expect(token.ELSE) {
		return nil
	}
	alternative := p.ParseExpression()
	if alternative == nil {
		return nil
	}
	return &ast.If{Token: tok, Predicate: predicate, Then: consequent, Else: alternative}
}

// operator expression with an optional trailing annotation; the annotation
// binds loosest of all.
func (p *Parser) parseAnnotated() ast.Expression {
	tok := p.curToken
	expr := p.parseOperator(0)
	if expr == nil {
		return nil
	}
	if p.curTokenIs(token.COLON) {
		p.nextToken()
		annotation := p.parseType()
		if annotation == nil {
			return nil
		}
		return &ast.Annotation{Token: tok, Expression: expr, Type: annotation}
	}
	return expr
}

// Binary operator precedence (higher = binds tighter). All operators are
// left-associative.
var operatorPrecedence = map[token.Type]int{
	token.OR:     1,
	token.AND:    2,
	token.PLUS:   3,
	token.TIMES:  4,
	token.APPEND: 5,
}

func (p *Parser) parseOperator(minPrecedence int) ast.Expression {
	if !p.enter(p.curToken) {
		return nil
	}
	defer p.leave()

	left := p.parseApplication()
	if left == nil {
		return nil
	}
	for {
		precedence, ok := operatorPrecedence[p.curToken.Type]
		if !ok || precedence < minPrecedence {
			return left
		}
		opToken := p.curToken
		p.nextToken()
		right := p.parseOperator(precedence + 1)
		if right == nil {
			return nil
		}
		left = &ast.Operator{Token: opToken, Op: opToken.Lexeme, Left: left, Right: right}
	}
}

func (p *Parser) parseApplication() ast.Expression {
	fn := p.parseProjection()
	if fn == nil {
		return nil
	}
	for p.startsAtom() {
		arg := p.parseProjection()
		if arg == nil {
			return nil
		}
		fn = &ast.Application{Function: fn, Argument: arg}
	}
	return fn
}

func (p *Parser) parseProjection() ast.Expression {
	expr := p.parseAtom()
	if expr == nil {
		return nil
	}
	for p.curTokenIs(token.DOT) {
		p.nextToken()
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.UPIDENT) {
			p.addErrorf(p.curToken, "expected field label after %q, found %q", ".", p.curToken.Lexeme)
			return nil
		}
		expr = &ast.Projection{Token: p.curToken, Record: expr, Label: p.curToken.Lexeme}
		p.nextToken()
	}
	return expr
}

// startsAtom reports whether the current token can begin an application
// argument.
func (p *Parser) startsAtom() bool {
	switch p.curToken.Type {
	case token.IDENT, token.UPIDENT, token.BUILTIN, token.NATURAL, token.TEXT,
		token.TRUE, token.FALSE, token.LPAREN, token.LBRACE, token.LBRACKET,
		token.PATH, token.MERGE:
		return true
	}
	return false
}

func (p *Parser) parseAtom() ast.Expression {
	if !p.enter(p.curToken) {
		return nil
	}
	defer p.leave()

	tok := p.curToken
	switch tok.Type {
	case token.IDENT:
		p.nextToken()
		variable := &ast.Variable{Token: tok, Name: tok.Lexeme}
		// x@2 skips two shadowed bindings named x.
		if p.curTokenIs(token.AT) {
			p.nextToken()
			if !p.curTokenIs(token.NATURAL) {
				p.addErrorf(p.curToken, "expected index after %q, found %q", "@", p.curToken.Lexeme)
				return nil
			}
			index, err := strconv.Atoi(p.curToken.Lexeme)
			if err != nil {
				p.addErrorf(p.curToken, "invalid variable index %q", p.curToken.Lexeme)
				return nil
			}
			variable.Index = index
			p.nextToken()
		}
		return variable
	case token.UPIDENT:
		p.nextToken()
		return &ast.Alternative{Token: tok, Name: tok.Lexeme}
	case token.BUILTIN:
		p.nextToken()
		return &ast.Builtin{Token: tok, Name: tok.Lexeme}
	case token.NATURAL:
		p.nextToken()
		value, err := strconv.ParseUint(tok.Lexeme, 10, 64)
		if err != nil {
			p.addErrorf(tok, "invalid natural literal %q", tok.Lexeme)
			return nil
		}
		return &ast.NaturalLiteral{Token: tok, Value: value}
	case token.TEXT:
		p.nextToken()
		return &ast.TextLiteral{Token: tok, Value: tok.Lexeme}
	case token.TRUE:
		p.nextToken()
		return &ast.BoolLiteral{Token: tok, Value: true}
	case token.FALSE:
		p.nextToken()
		return &ast.BoolLiteral{Token: tok, Value: false}
	case token.PATH:
		p.nextToken()
		return &ast.Embed{Token: tok, Path: tok.Lexeme}
	case token.MERGE:
		p.nextToken()
		handlers := p.parseProjection()
		if handlers == nil {
			return nil
		}
		return &ast.Merge{Token: tok, Handlers: handlers}
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseRecordLiteral()
	case token.LPAREN:
		p.nextToken()
		expr := p.ParseExpression()
		if expr == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return expr
	}
	p.addErrorf(tok, "unexpected %q", tok.Lexeme)
	return nil
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.curToken
	p.nextToken()
	var elements []ast.Expression
	for !p.curTokenIs(token.RBRACKET) {
		if p.curTokenIs(token.EOF) {
			p.addErrorf(tok, "unterminated list literal")
			return nil
		}
		element := p.ParseExpression()
		if element == nil {
			return nil
		}
		elements = append(elements, element)
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.ListLiteral{Token: tok, Elements: elements}
}

func (p *Parser) parseRecordLiteral() ast.Expression {
	tok := p.curToken
	p.nextToken()
	var fields []ast.RecordField
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addErrorf(tok, "unterminated record literal")
			return nil
		}
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.UPIDENT) {
			p.addErrorf(p.curToken, "expected field label, found %q", p.curToken.Lexeme)
			return nil
		}
		fieldTok := p.curToken
		p.nextToken()
		if !p.expect(token.COLON) {
			return nil
		}
		value := p.ParseExpression()
		if value == nil {
			return nil
		}
		fields = append(fields, ast.RecordField{Token: fieldTok, Label: fieldTok.Lexeme, Value: value})
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return &ast.RecordLiteral{Token: tok, Fields: fields}
}
