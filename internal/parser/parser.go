package parser

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"tortuga/internal/flow"
	"tortuga/internal/lexer"
	"tortuga/internal/logic"
	"tortuga/internal/token"
	"tortuga/internal/value"
)

const (
	_           int = iota
	LOWEST          // statement level
	LOGICAL_OR      // or
	LOGICAL_AND     // and
	EQUALS          // ==
	COMPARISON      // > or <
	SUM             // +
	PRODUCT         // *
	PREFIX          // -X or not X
	CALL            // myFunction(X)
)

var precedences = map[token.TokenType]int{
	token.OR:       LOGICAL_OR,
	token.AND:      LOGICAL_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       COMPARISON,
	token.LT_EQ:    COMPARISON,
	token.GT:       COMPARISON,
	token.GT_EQ:    COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   CALL,
}

var binaryOps = map[token.TokenType]logic.Op{
	token.PLUS:     logic.OP_ADD,
	token.MINUS:    logic.OP_SUB,
	token.ASTERISK: logic.OP_MUL,
	token.SLASH:    logic.OP_DIV,
	token.PERCENT:  logic.OP_MOD,
	token.EQ:       logic.OP_EQ,
	token.NOT_EQ:   logic.OP_NOT_EQ,
	token.LT:       logic.OP_LT,
	token.LT_EQ:    logic.OP_LT_EQ,
	token.GT:       logic.OP_GT,
	token.GT_EQ:    logic.OP_GT_EQ,
	token.AND:      logic.OP_AND,
	token.OR:       logic.OP_OR,
}

type (
	prefixParseFn func() logic.Expr
	infixParseFn  func(logic.Expr) logic.Expr
)

// Parser turns a token stream into logic tree nodes. It stops at the first error.
type Parser struct {
	tokenizer lexer.Tokenizer
	err       *flow.Signal

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l lexer.Tokenizer) *Parser {
	p := &Parser{tokenizer: l}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NOTHING, p.parseNothing)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for t := range binaryOps {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.tokenizer.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) failed() bool {
	return p.err != nil
}

// Err returns the first error met, or nil.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// fail records the first error only; everything after it is noise.
func (p *Parser) fail(at token.Token, message string, args ...any) {
	if p.err != nil {
		return
	}
	if at.Type == token.ILLEGAL {
		if utf8.RuneCountInString(at.Literal) == 1 {
			p.err = flow.Parse(at.Line, "unexpected character %q", at.Literal)
		} else {
			p.err = flow.Parse(at.Line, "%s", at.Literal)
		}
		return
	}
	p.err = flow.Parse(at.Line, message, args...)
	p.err.Incomplete = at.Type == token.EOF
}

func (p *Parser) peekError(t token.TokenType) {
	p.fail(p.peekToken, "expected %s, got %s", token.Describe(t), describe(p.peekToken))
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// expectLineEnd requires the statement on the current token to be the last one on its line.
func (p *Parser) expectLineEnd() bool {
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		p.nextToken()
		return true
	}
	p.fail(p.peekToken, "expected end of line, got %s", describe(p.peekToken))
	return false
}

func describe(t token.Token) string {
	switch t.Type {
	case token.STRING:
		return strconv.Quote(t.Literal)
	case token.IDENT, token.INT, token.FLOAT:
		return "'" + t.Literal + "'"
	}
	return token.Describe(t.Type)
}

// ParseModule parses a whole source unit: global variables and procedures.
func (p *Parser) ParseModule(name string) *logic.Module {
	m := &logic.Module{Name: name}

	for !p.curTokenIs(token.EOF) && !p.failed() {
		switch p.curToken.Type {
		case token.NEWLINE:
		case token.FUNCTION:
			if proc := p.parseFunction(name); proc != nil {
				m.Procedures = append(m.Procedures, proc)
			}
		case token.VAR:
			if decl := p.parseVarStatement(); decl != nil && p.expectLineEnd() {
				m.Globals = append(m.Globals, decl)
			}
		default:
			p.fail(p.curToken, "expected 'function' or 'var', got %s", describe(p.curToken))
		}
		if p.curTokenIs(token.EOF) {
			break
		}
		p.nextToken()
	}

	if p.failed() {
		return nil
	}
	return m
}

// ParseStatements parses a bare statement list up to end of input.
func (p *Parser) ParseStatements() *logic.Block {
	block := &logic.Block{Pos: logic.Pos{LineNo: p.curToken.Line}}

	for !p.curTokenIs(token.EOF) && !p.failed() {
		if !p.curTokenIs(token.NEWLINE) {
			stmt := p.parseStatement()
			if stmt == nil || !p.expectLineEnd() {
				break
			}
			block.Statements = append(block.Statements, stmt)
		}
		if p.curTokenIs(token.EOF) {
			break
		}
		p.nextToken()
	}

	if p.failed() {
		return nil
	}
	return block
}

func (p *Parser) parseFunction(module string) *logic.UserProc {
	proc := &logic.UserProc{Pos: logic.Pos{LineNo: p.curToken.Line}, Module: module}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	proc.Ident = p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	proc.Params = p.parseParameters()
	if proc.Params == nil && p.failed() {
		return nil
	}

	if !p.expectPeek(token.NEWLINE) {
		return nil
	}

	body, _ := p.parseBlock("function", token.ENDFUNCTION)
	if body == nil {
		return nil
	}
	proc.Body = body

	if !p.expectLineEnd() {
		return nil
	}
	return proc
}

func (p *Parser) parseParameters() []string {
	params := []string{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	params = append(params, p.curToken.Literal)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		params = append(params, p.curToken.Literal)
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

// parseBlock reads statements until one of the terminators and leaves curToken on
// it. The current token must be the NEWLINE that ends the block header.
func (p *Parser) parseBlock(opener string, terminators ...token.TokenType) (*logic.Block, token.TokenType) {
	block := &logic.Block{Pos: logic.Pos{LineNo: p.peekToken.Line}}

	for {
		p.nextToken()

		switch {
		case p.curTokenIs(token.NEWLINE):
			continue
		case p.curTokenIs(token.EOF):
			p.fail(p.curToken, "missing %s to close '%s'", token.Describe(terminators[0]), opener)
			return nil, token.EOF
		}
		for _, t := range terminators {
			if p.curTokenIs(t) {
				return block, t
			}
		}

		stmt := p.parseStatement()
		if stmt == nil {
			return nil, token.ILLEGAL
		}
		block.Statements = append(block.Statements, stmt)

		if !p.peekTokenIs(token.NEWLINE) {
			p.fail(p.peekToken, "expected end of line, got %s", describe(p.peekToken))
			return nil, token.ILLEGAL
		}
		p.nextToken()
	}
}

func (p *Parser) parseStatement() logic.Stmt {
	switch p.curToken.Type {
	case token.VAR:
		if s := p.parseVarStatement(); s != nil {
			return s
		}
	case token.IF:
		if s := p.parseIfStatement(); s != nil {
			return s
		}
	case token.WHILE:
		if s := p.parseWhileStatement(); s != nil {
			return s
		}
	case token.FOR:
		if s := p.parseForStatement(); s != nil {
			return s
		}
	case token.REPEAT:
		if s := p.parseRepeatStatement(); s != nil {
			return s
		}
	case token.RETURN:
		return p.parseReturnStatement()
	case token.HALT:
		return &logic.Halt{Pos: logic.Pos{LineNo: p.curToken.Line}}
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			if s := p.parseAssignStatement(); s != nil {
				return s
			}
			return nil
		}
		if s := p.parseCallStatement(); s != nil {
			return s
		}
	case token.FUNCTION:
		p.fail(p.curToken, "procedures cannot be nested")
	default:
		p.fail(p.curToken, "expected a statement, got %s", describe(p.curToken))
	}
	return nil
}

func (p *Parser) parseVarStatement() *logic.VarDecl {
	stmt := &logic.VarDecl{Pos: logic.Pos{LineNo: p.curToken.Line}}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseAssignStatement() *logic.Assign {
	stmt := &logic.Assign{Pos: logic.Pos{LineNo: p.curToken.Line}, Name: p.curToken.Literal}

	p.nextToken() // =
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseCallStatement() *logic.CallStmt {
	line := p.curToken.Line
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	call, ok := expr.(*logic.Call)
	if !ok {
		p.fail(p.curToken, "expression %s is not a statement", expr.String())
		return nil
	}
	return &logic.CallStmt{Pos: logic.Pos{LineNo: line}, Call: call}
}

func (p *Parser) parseIfStatement() *logic.If {
	stmt := &logic.If{Pos: logic.Pos{LineNo: p.curToken.Line}}

	for {
		p.nextToken()
		cond := p.parseExpression(LOWEST)
		if cond == nil || !p.expectPeek(token.NEWLINE) {
			return nil
		}

		body, end := p.parseBlock("if", token.ENDIF, token.ELSEIF, token.ELSE)
		if body == nil {
			return nil
		}
		stmt.Branches = append(stmt.Branches, &logic.Branch{Cond: cond, Body: body})

		switch end {
		case token.ELSEIF:
			continue
		case token.ELSE:
			if !p.expectPeek(token.NEWLINE) {
				return nil
			}
			elseBody, _ := p.parseBlock("if", token.ENDIF)
			if elseBody == nil {
				return nil
			}
			stmt.Else = elseBody
		}
		return stmt
	}
}

func (p *Parser) parseWhileStatement() *logic.While {
	stmt := &logic.While{Pos: logic.Pos{LineNo: p.curToken.Line}}

	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil || !p.expectPeek(token.NEWLINE) {
		return nil
	}

	body, _ := p.parseBlock("while", token.ENDWHILE)
	if body == nil {
		return nil
	}
	stmt.Body = body
	return stmt
}

func (p *Parser) parseForStatement() *logic.For {
	stmt := &logic.For{Pos: logic.Pos{LineNo: p.curToken.Line}}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Var = p.curToken.Literal

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	if stmt.From = p.parseExpression(LOWEST); stmt.From == nil {
		return nil
	}

	if !p.expectPeek(token.TO) {
		return nil
	}
	p.nextToken()
	if stmt.To = p.parseExpression(LOWEST); stmt.To == nil {
		return nil
	}

	if p.peekTokenIs(token.STEP) {
		p.nextToken()
		p.nextToken()
		if stmt.Step = p.parseExpression(LOWEST); stmt.Step == nil {
			return nil
		}
	}

	if !p.expectPeek(token.NEWLINE) {
		return nil
	}
	body, _ := p.parseBlock("for", token.ENDFOR)
	if body == nil {
		return nil
	}
	stmt.Body = body
	return stmt
}

func (p *Parser) parseRepeatStatement() *logic.Repeat {
	stmt := &logic.Repeat{Pos: logic.Pos{LineNo: p.curToken.Line}}

	p.nextToken()
	stmt.Count = p.parseExpression(LOWEST)
	if stmt.Count == nil || !p.expectPeek(token.NEWLINE) {
		return nil
	}

	body, _ := p.parseBlock("repeat", token.ENDREPEAT)
	if body == nil {
		return nil
	}
	stmt.Body = body
	return stmt
}

func (p *Parser) parseReturnStatement() logic.Stmt {
	stmt := &logic.Return{Pos: logic.Pos{LineNo: p.curToken.Line}}

	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) logic.Expr {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.fail(p.curToken, "expected an expression, got %s", describe(p.curToken))
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	if p.failed() {
		return nil
	}
	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) pos() logic.Pos {
	return logic.Pos{LineNo: p.curToken.Line}
}

func (p *Parser) parseIdentifier() logic.Expr {
	return &logic.VarRef{Pos: p.pos(), Name: p.curToken.Literal}
}

func (p *Parser) parseNothing() logic.Expr {
	return &logic.Literal{Pos: p.pos(), Value: value.Nothing}
}

func (p *Parser) parseBoolean() logic.Expr {
	return &logic.Literal{Pos: p.pos(), Value: value.Bool(p.curTokenIs(token.TRUE))}
}

func (p *Parser) parseIntegerLiteral() logic.Expr {
	n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.fail(p.curToken, "integer literal %s out of range", p.curToken.Literal)
		return nil
	}
	return &logic.Literal{Pos: p.pos(), Value: value.Int(n)}
}

func (p *Parser) parseFloatLiteral() logic.Expr {
	f, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.fail(p.curToken, "could not parse %q as a number", p.curToken.Literal)
		return nil
	}
	return &logic.Literal{Pos: p.pos(), Value: value.Float(f)}
}

func (p *Parser) parseStringLiteral() logic.Expr {
	return &logic.Literal{Pos: p.pos(), Value: value.Str(p.curToken.Literal)}
}

func (p *Parser) parsePrefixExpression() logic.Expr {
	expression := &logic.Unary{Pos: p.pos(), Op: logic.OP_NEG}
	if p.curTokenIs(token.NOT) {
		expression.Op = logic.OP_NOT
	}

	p.nextToken()

	expression.Operand = p.parseExpression(PREFIX)
	if expression.Operand == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left logic.Expr) logic.Expr {
	expression := &logic.Binary{
		Pos:  p.pos(),
		Op:   binaryOps[p.curToken.Type],
		Left: left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() logic.Expr {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseCallExpression(function logic.Expr) logic.Expr {
	ref, ok := function.(*logic.VarRef)
	if !ok {
		p.fail(p.curToken, "cannot call %s", function.String())
		return nil
	}
	call := &logic.Call{Pos: ref.Pos, Name: ref.Name}
	call.Args = p.parseExpressionList(token.RPAREN)
	if call.Args == nil {
		return nil
	}
	return call
}

func (p *Parser) parseExpressionList(end token.TokenType) []logic.Expr {
	list := []logic.Expr{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	if exp := p.parseExpression(LOWEST); exp != nil {
		list = append(list, exp)
	} else {
		return nil
	}

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil
		}
		list = append(list, exp)
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

// String renders the parser state for debugging.
func (p *Parser) String() string {
	return fmt.Sprintf("parser{cur=%s %q, peek=%s %q}", p.curToken.Type, p.curToken.Literal, p.peekToken.Type, p.peekToken.Literal)
}
