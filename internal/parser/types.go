package parser

import (
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/lexer"
	"github.com/nilp0inter/grace/internal/token"
	"github.com/nilp0inter/grace/internal/typesystem"
)

// The type grammar mirrors the printer's precedence ladder: quantifiers and
// arrows at the loosest layer, List application in the middle, and
// variables, primitives, records and unions at the tightest.

// ParseType parses the complete input as one type.
func ParseType(input string) (typesystem.Type, []*diagnostics.DiagnosticError) {
	p := New(lexer.New(input))
	t := p.parseType()
	if t != nil && !p.curTokenIs(token.EOF) {
		p.addTypeErrorf(p.curToken, "unexpected %q after type", p.curToken.Lexeme)
		return nil, p.errors
	}
	return t, p.errors
}

func (p *Parser) addTypeErrorf(tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError(diagnostics.ErrP002, tok, format, args...))
}

func (p *Parser) parseType() typesystem.Type {
	if !p.enter(p.curToken) {
		return nil
	}
	defer p.leave()

	switch p.curToken.Type {
	case token.FORALL:
		return p.parseQuantifier(true)
	case token.EXISTS:
		return p.parseQuantifier(false)
	}
	return p.parseTypeArrow()
}

// forall a (r : Fields) . body
func (p *Parser) parseQuantifier(universal bool) typesystem.Type {
	p.nextToken()

	type binder struct {
		name   string
		domain typesystem.Domain
	}
	var binders []binder
	for !p.curTokenIs(token.DOT) {
		switch p.curToken.Type {
		case token.IDENT:
			binders = append(binders, binder{name: p.curToken.Lexeme, domain: typesystem.DomainType})
			p.nextToken()
		case token.LPAREN:
			p.nextToken()
			if !p.curTokenIs(token.IDENT) {
				p.addTypeErrorf(p.curToken, "expected variable name, found %q", p.curToken.Lexeme)
				return nil
			}
			name := p.curToken.Lexeme
			p.nextToken()
			if !p.expect(token.COLON) {
				return nil
			}
			domain, ok := parseDomain(p.curToken.Lexeme)
			if !ok {
				p.addTypeErrorf(p.curToken, "unknown quantifier domain %q", p.curToken.Lexeme)
				return nil
			}
			p.nextToken()
			if !p.expect(token.RPAREN) {
				return nil
			}
			binders = append(binders, binder{name: name, domain: domain})
		default:
			p.addTypeErrorf(p.curToken, "expected quantified variable, found %q", p.curToken.Lexeme)
			return nil
		}
	}
	if len(binders) == 0 {
		p.addTypeErrorf(p.curToken, "quantifier binds no variables")
		return nil
	}
	if !p.expect(token.DOT) {
		return nil
	}
	body := p.parseType()
	if body == nil {
		return nil
	}
	for i := len(binders) - 1; i >= 0; i-- {
		b := binders[i]
		if universal {
			body = typesystem.Forall{Name: b.name, Domain: b.domain, Body: body}
		} else {
			body = typesystem.Exists{Name: b.name, Domain: b.domain, Body: body}
		}
	}
	return body
}

func parseDomain(name string) (typesystem.Domain, bool) {
	switch name {
	case "Type":
		return typesystem.DomainType, true
	case "Fields":
		return typesystem.DomainFields, true
	case "Alternatives":
		return typesystem.DomainAlternatives, true
	}
	return typesystem.DomainType, false
}

func (p *Parser) parseTypeArrow() typesystem.Type {
	left := p.parseTypeApply()
	if left == nil {
		return nil
	}
	if p.curTokenIs(token.ARROW) {
		p.nextToken()
		right := p.parseType()
		if right == nil {
			return nil
		}
		return typesystem.TArrow{Input: left, Output: right}
	}
	return left
}

func (p *Parser) parseTypeApply() typesystem.Type {
	if p.curTokenIs(token.UPIDENT) && p.curToken.Lexeme == "List" {
		p.nextToken()
		element := p.parseTypeAtom()
		if element == nil {
			return nil
		}
		return typesystem.TList{Element: element}
	}
	return p.parseTypeAtom()
}

func (p *Parser) parseTypeAtom() typesystem.Type {
	if !p.enter(p.curToken) {
		return nil
	}
	defer p.leave()

	tok := p.curToken
	switch tok.Type {
	case token.UPIDENT:
		switch tok.Lexeme {
		case "Bool":
			p.nextToken()
			return typesystem.BoolType
		case "Natural":
			p.nextToken()
			return typesystem.NaturalType
		case "Text":
			p.nextToken()
			return typesystem.TextType
		}
		p.addTypeErrorf(tok, "unknown type constructor %q", tok.Lexeme)
		return nil
	case token.IDENT:
		p.nextToken()
		return typesystem.TVar{Name: tok.Lexeme}
	case token.LBRACE:
		return p.parseRecordType()
	case token.LANGLE:
		return p.parseUnionType()
	case token.LPAREN:
		p.nextToken()
		t := p.parseType()
		if t == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return t
	}
	p.addTypeErrorf(tok, "unexpected %q in type", tok.Lexeme)
	return nil
}

// { x: Natural, y: Bool | r }
func (p *Parser) parseRecordType() typesystem.Type {
	tok := p.curToken
	p.nextToken()
	fields, tail, ok := p.parseFieldList(token.RBRACE, tok)
	if !ok {
		return nil
	}
	record := typesystem.TRecord{Fields: fields, Tail: typesystem.EmptyRow{}}
	if tail != "" {
		record.Tail = typesystem.VarRow{Name: tail}
	}
	return record
}

// < Left: Natural, Right: Bool | v >
func (p *Parser) parseUnionType() typesystem.Type {
	tok := p.curToken
	p.nextToken()
	alternatives, tail, ok := p.parseFieldList(token.RANGLE, tok)
	if !ok {
		return nil
	}
	union := typesystem.TUnion{Alternatives: alternatives, Tail: typesystem.EmptyVariant{}}
	if tail != "" {
		union.Tail = typesystem.VarVariant{Name: tail}
	}
	return union
}

// parseFieldList parses `label : type` entries up to the closing token,
// with an optional `| tailvar` before the close. Returns the tail variable
// name ("" when the row/variant is closed).
func (p *Parser) parseFieldList(closing token.Type, open token.Token) ([]typesystem.Field, string, bool) {
	var fields []typesystem.Field
	tail := ""
	for !p.curTokenIs(closing) {
		if p.curTokenIs(token.EOF) {
			p.addTypeErrorf(open, "unterminated %q", open.Lexeme)
			return nil, "", false
		}
		if p.curTokenIs(token.PIPE) {
			p.nextToken()
			if !p.curTokenIs(token.IDENT) {
				p.addTypeErrorf(p.curToken, "expected tail variable after %q, found %q", "|", p.curToken.Lexeme)
				return nil, "", false
			}
			tail = p.curToken.Lexeme
			p.nextToken()
			break
		}
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.UPIDENT) {
			p.addTypeErrorf(p.curToken, "expected label, found %q", p.curToken.Lexeme)
			return nil, "", false
		}
		label := p.curToken.Lexeme
		p.nextToken()
		if !p.expect(token.COLON) {
			return nil, "", false
		}
		fieldType := p.parseType()
		if fieldType == nil {
			return nil, "", false
		}
		fields = append(fields, typesystem.Field{Label: label, Type: fieldType})
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(token.PIPE) {
			continue
		}
		break
	}
	if !p.expect(closing) {
		return nil, "", false
	}
	return fields, tail, true
}
