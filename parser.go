package rabbit

import "fmt"

type Parser struct {
	l         *Lexer
	curToken  Token
	peekToken Token
	errors    []string
	depth     int
	maxDepth  int
}

func NewParser(l *Lexer) *Parser {
	p := &Parser{
		l:        l,
		errors:   []string{},
		maxDepth: GetRuntimeConfig().MaxExpressionDepth,
	}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) expectPeek(t TokenType) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead (line %d, col %d)",
		t, p.peekToken.Type, p.peekToken.Line, p.peekToken.Column)
	p.errors = append(p.errors, msg)
}

func (p *Parser) Errors() []string {
	return p.errors
}

// Diagnostics exposes the lexical complaints recorded while feeding
// this parser.
func (p *Parser) Diagnostics() []Diagnostic {
	return p.l.Diagnostics()
}

// ParseProgram consumes the whole token stream and returns the concrete
// parse tree. The first syntax error is fatal: the return is nil and no
// partial tree is kept.
func (p *Parser) ParseProgram() *ParseNode {
	program := &ParseNode{Rule: RuleProgram}
	for p.curToken.Type != EOF {
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		program.Children = append(program.Children, stmt)
		if p.peekToken.Type == SEMICOLON {
			p.nextToken()
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() *ParseNode {
	switch p.curToken.Type {
	case RETURN:
		return p.parseReturnStatement()
	case IDENT, BUILTIN:
		if p.peekToken.Type == ASSIGN {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseAssignStatement handles both assignment forms; the target's
// lexeme kind picks the rule, nothing else distinguishes them.
func (p *Parser) parseAssignStatement() *ParseNode {
	rule := RuleAssignVar
	if p.curToken.Type == BUILTIN {
		rule = RuleAssignBuiltin
	}
	node := &ParseNode{Rule: rule, Token: p.curToken}
	p.nextToken()
	p.nextToken()
	value := p.parseExpression(0)
	if value == nil {
		return nil
	}
	node.Children = append(node.Children, value)
	return node
}

func (p *Parser) parseReturnStatement() *ParseNode {
	node := &ParseNode{Rule: RuleReturnStmt, Token: p.curToken}
	p.nextToken()
	value := p.parseExpression(0)
	if value == nil {
		return nil
	}
	node.Children = append(node.Children, value)
	return node
}

func (p *Parser) parseExpressionStatement() *ParseNode {
	node := &ParseNode{Rule: RuleExprStmt, Token: p.curToken}
	expr := p.parseExpression(0)
	if expr == nil {
		return nil
	}
	node.Children = append(node.Children, expr)
	return node
}

func (p *Parser) parseExpression(precedence int) *ParseNode {
	if !p.enterExpression() {
		return nil
	}
	defer p.leaveExpression()

	var leftExp *ParseNode
	switch p.curToken.Type {
	case LPAREN:
		p.nextToken()
		exp := p.parseExpression(0)
		if exp == nil {
			return nil
		}
		if !p.expectPeek(RPAREN) {
			return nil
		}
		// Grouping is transparent: no node survives the parentheses.
		leftExp = exp
	case NUMBER:
		leftExp = &ParseNode{Rule: RuleNumber, Token: p.curToken}
	case STRING:
		leftExp = &ParseNode{Rule: RuleString, Token: p.curToken}
	case IDENT, BUILTIN:
		// An immediately following '(' forces the call production; the
		// callee's lexeme kind alone decides builtin_call vs func_call.
		if p.peekToken.Type == LPAREN {
			leftExp = p.parseCall()
			if leftExp == nil {
				return nil
			}
		} else if p.curToken.Type == BUILTIN {
			leftExp = &ParseNode{Rule: RuleBuiltinRef, Token: p.curToken}
		} else {
			leftExp = &ParseNode{Rule: RuleVar, Token: p.curToken}
		}
	default:
		p.errors = append(p.errors, fmt.Sprintf("unexpected token %s in expression (line %d, col %d)",
			p.curToken.Type, p.curToken.Line, p.curToken.Column))
		return nil
	}

	for p.peekToken.Type != SEMICOLON && precedence < p.peekPrecedence() {
		p.nextToken()
		leftExp = p.parseInfixExpression(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) parseInfixExpression(left *ParseNode) *ParseNode {
	var rule string
	switch p.curToken.Type {
	case PLUS:
		rule = RuleAdd
	case MINUS:
		rule = RuleSub
	case ASTERISK:
		rule = RuleMul
	case SLASH:
		rule = RuleDiv
	case POWER:
		rule = RulePow
	default:
		p.errors = append(p.errors, fmt.Sprintf("unexpected token %s in expression (line %d, col %d)",
			p.curToken.Type, p.curToken.Line, p.curToken.Column))
		return nil
	}
	node := &ParseNode{Rule: rule, Token: p.curToken}
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	node.Children = []*ParseNode{left, right}
	return node
}

func (p *Parser) parseCall() *ParseNode {
	rule := RuleFuncCall
	if p.curToken.Type == BUILTIN {
		rule = RuleBuiltinCall
	}
	node := &ParseNode{Rule: rule, Token: p.curToken}
	if !p.expectPeek(LPAREN) {
		return nil
	}
	if p.peekToken.Type == RPAREN {
		p.nextToken()
		return node
	}
	p.nextToken()
	args := p.parseExpressionList(COMMA)
	if args == nil {
		return nil
	}
	node.Children = args
	if !p.expectPeek(RPAREN) {
		return nil
	}
	return node
}

func (p *Parser) parseExpressionList(separator TokenType) []*ParseNode {
	list := []*ParseNode{}
	first := p.parseExpression(0)
	if first == nil {
		return nil
	}
	list = append(list, first)
	for p.peekToken.Type == separator {
		p.nextToken()
		p.nextToken()
		next := p.parseExpression(0)
		if next == nil {
			return nil
		}
		list = append(list, next)
	}
	return list
}

func (p *Parser) enterExpression() bool {
	if p.maxDepth > 0 && p.depth >= p.maxDepth {
		p.errors = append(p.errors, fmt.Sprintf("expression nesting exceeds depth limit %d (line %d, col %d)",
			p.maxDepth, p.curToken.Line, p.curToken.Column))
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leaveExpression() {
	p.depth--
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return 0
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return 0
}
